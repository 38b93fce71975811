package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"start-page/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		todosTable     string
		shortcutsTable string
		timeout        time.Duration
	)
	cmd := &cobra.Command{
		Use:           "storage-init",
		Short:         "Create the start page tables if they do not exist",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
				log.SetLevel(log.DebugLevel)
			}
			log.Info("storage init starting")

			connStr := os.Getenv("STORAGE_CONNECTION_STRING")
			if connStr == "" {
				return errors.New("missing STORAGE_CONNECTION_STRING")
			}
			svc, err := storage.NewServiceClient(connStr)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := storage.EnsureTables(ctx, svc, todosTable, shortcutsTable); err != nil {
				return err
			}
			log.WithField("tables", []string{todosTable, shortcutsTable}).Info("storage init complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&todosTable, "todos-table", envOr("TODOS_TABLE", "todos"), "todos table name")
	cmd.Flags().StringVar(&shortcutsTable, "shortcuts-table", envOr("SHORTCUTS_TABLE", "shortcuts"), "shortcuts table name")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
