// Package factory builds backend dependencies (document store, blob store)
// from configuration so service wiring stays declarative.
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultshq/vaults-governance/internal/blob"
	"github.com/vaultshq/vaults-governance/internal/blob/azure"
	"github.com/vaultshq/vaults-governance/internal/blob/fsblob"
	"github.com/vaultshq/vaults-governance/internal/config"
	"github.com/vaultshq/vaults-governance/internal/identity"
	storepkg "github.com/vaultshq/vaults-governance/internal/store"
	storepg "github.com/vaultshq/vaults-governance/internal/store/postgres"
	storelite "github.com/vaultshq/vaults-governance/internal/store/sqlite"
)

// NewStore returns a store.Store for the configured DB driver.
// Postgres launches an async bootstrap check; the store is returned
// immediately for fast startup.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		go func() {
			bootstrapCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := storepg.Bootstrap(bootstrapCtx, cfg.PostgresDSN); err != nil {
				log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("store bootstrap check failed")
			} else {
				log.Debug().Str("driver", cfg.DBDriver).Msg("store bootstrap check completed")
			}
		}()
		return storepg.NewWithDB(db), nil
	case "sqlite":
		db, err := storelite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return storelite.NewWithDB(db), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

// NewBlobStore returns the archival blob store for the configured driver.
func NewBlobStore(cfg *config.Config, tokens identity.TokenSource) (blob.Store, error) {
	switch cfg.BlobDriver {
	case "filesystem":
		return fsblob.New(cfg.BlobRoot)
	case "azure":
		return azure.New(cfg.AzureBlobEndpoint, cfg.AzureContainer, tokens), nil
	default:
		return nil, fmt.Errorf("unknown BLOB_DRIVER: %s", cfg.BlobDriver)
	}
}
