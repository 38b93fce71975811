package storage

import (
	"context"
	"errors"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	log "github.com/sirupsen/logrus"
)

// EnsureTables creates every named table that does not exist yet. Empty names
// are skipped.
func EnsureTables(ctx context.Context, svc *aztables.ServiceClient, names ...string) error {
	for _, name := range names {
		if name == "" {
			continue
		}
		_, err := svc.NewClient(name).CreateTable(ctx, nil)
		if err == nil {
			log.WithField("table", name).Info("table created")
			continue
		}
		if !alreadyExists(err) {
			return wrapError("create", name, err)
		}
		log.WithField("table", name).Debug("table already exists")
	}
	return nil
}

func alreadyExists(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists)
}
