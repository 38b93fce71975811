// Command gen-token signs a bearer token for LOCAL_AUTH_MODE=hs256 setups.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		ttl      time.Duration
		audience string
	)
	cmd := &cobra.Command{
		Use:           "gen-token [subject]",
		Short:         "Print an HS256 token signed with LOCAL_AUTH_SHARED_SECRET",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := os.Getenv("DASHBOARD_OWNER")
			if len(args) == 1 {
				sub = args[0]
			}
			if sub == "" {
				sub = "local-user"
			}
			tok, err := signToken(os.Getenv("LOCAL_AUTH_SHARED_SECRET"), sub, audience, ttl, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&audience, "audience", "", "optional aud claim")
	return cmd
}

func signToken(secret, sub, audience string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("LOCAL_AUTH_SHARED_SECRET must be set")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if audience != "" {
		claims["aud"] = audience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
