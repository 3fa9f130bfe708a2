package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stampcard/internal/client/config"
	"github.com/dmitrijs2005/stampcard/internal/client/store"
	"github.com/dmitrijs2005/stampcard/internal/client/store/kv"
	"github.com/dmitrijs2005/stampcard/internal/client/store/remote"
	"github.com/dmitrijs2005/stampcard/internal/client/store/sqlite"
)

// openerFor picks the record store backend named in the config.
func openerFor(cfg *config.Config) (store.OpenFunc, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.MemoryOpener(store.NewMemoryConn()), nil

	case config.BackendSQLite:
		return sqlite.Opener(cfg.SQLitePath), nil

	case config.BackendFile:
		path := cfg.KVFilePath
		return kv.Opener(func(ctx context.Context) (kv.Medium, error) {
			m, err := kv.NewFileMedium(path)
			if err != nil {
				return nil, err
			}
			return m, nil
		}), nil

	case config.BackendRedis:
		url, prefix := cfg.RedisURL, cfg.RedisPrefix
		return kv.Opener(func(ctx context.Context) (kv.Medium, error) {
			m, err := kv.NewRedisMediumFromURL(ctx, url, prefix)
			if err != nil {
				return nil, err
			}
			return m, nil
		}), nil

	case config.BackendRemote:
		return remote.Opener(cfg.ServerAddr, cfg.RPCTimeout), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
