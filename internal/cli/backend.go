package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/cardsheet/pkg/cache"
	"github.com/matzehuels/cardsheet/pkg/compose"
	"github.com/matzehuels/cardsheet/pkg/config"
	"github.com/matzehuels/cardsheet/pkg/httputil"
	"github.com/matzehuels/cardsheet/pkg/media"
	"github.com/matzehuels/cardsheet/pkg/pipeline"
	"github.com/matzehuels/cardsheet/pkg/render/card"
	"github.com/matzehuels/cardsheet/pkg/session"
	"github.com/matzehuels/cardsheet/pkg/storage"
	"github.com/matzehuels/cardsheet/pkg/storage/memory"
	"github.com/matzehuels/cardsheet/pkg/storage/mongo"
)

// =============================================================================
// Backends
// =============================================================================

// backends are the storage, session, cache and upload services selected by
// the configuration.
type backends struct {
	store    storage.Store
	sessions session.Store
	cache    cache.Cache
	keyer    cache.Keyer
	uploader media.Uploader
	local    *media.LocalStore

	closers []func(context.Context) error
}

// openBackends connects the services named in cfg. With inMemory, documents
// and sessions live in process regardless of cfg.
func openBackends(ctx context.Context, cfg *config.Config, inMemory bool, logger *log.Logger) (_ *backends, err error) {
	b := &backends{keyer: cache.NewDefaultKeyer()}
	defer func() {
		if err != nil {
			b.close(context.WithoutCancel(ctx))
		}
	}()

	if inMemory || cfg.Mongo.URI == "" {
		logger.Warn("using in-memory storage, data is lost on exit")
		b.store = memory.New()
	} else {
		st, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout.Duration,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("connected to MongoDB", "database", cfg.Mongo.Database)
		b.store = st
		b.closers = append(b.closers, st.Close)
	}

	if err := b.openSessionsAndCache(ctx, cfg, inMemory, logger); err != nil {
		return nil, err
	}

	b.local, err = media.NewLocalStore(cfg.Media.Dir, cfg.Server.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Cloudinary.Enabled() {
		b.uploader, err = media.NewCloudinary(media.CloudinaryConfig{
			CloudName: cfg.Cloudinary.CloudName,
			APIKey:    cfg.Cloudinary.APIKey,
			APISecret: cfg.Cloudinary.APISecret,
		}, httputil.NewClient(0))
		if err != nil {
			return nil, err
		}
		logger.Info("uploading images to Cloudinary", "cloud", cfg.Cloudinary.CloudName)
	} else {
		b.uploader = b.local
		logger.Info("storing uploads on disk", "dir", b.local.Dir())
	}
	return b, nil
}

func (b *backends) openSessionsAndCache(ctx context.Context, cfg *config.Config, inMemory bool, logger *log.Logger) error {
	if cfg.Redis.Addr != "" && !inMemory {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		b.sessions = session.NewRedisStore(client)
		if !cfg.Cache.Disabled {
			b.cache = cache.NewRedisCache(client)
			b.keyer = cache.NewScopedKeyer(b.keyer, cfg.Mongo.Database+":")
		}
		logger.Info("connected to Redis", "addr", cfg.Redis.Addr)
	} else if inMemory {
		b.sessions = session.NewMemoryStore()
	} else {
		fs, err := session.NewFileStore(filepath.Join(config.DataHome(), appName, "sessions"))
		if err != nil {
			return err
		}
		b.sessions = fs
	}

	if b.cache == nil {
		b.cache = newCache(cfg)
	}
	return nil
}

// newCache returns the raster cache for cfg, falling back to no caching when
// the cache directory cannot be created.
func newCache(cfg *config.Config) cache.Cache {
	if cfg.Cache.Disabled {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return c
}

// runner returns an export runner that renders cards with images fetched
// through the shared cache.
func (b *backends) runner(logger *log.Logger) *pipeline.Runner {
	fetcher := media.NewFetcher(media.WithCache(b.cache, b.keyer), media.WithLocalStore(b.local))
	return pipeline.NewRunner(card.NewRenderer(fetcher), b.cache, b.keyer, logger)
}

// close releases connections in reverse order of opening.
func (b *backends) close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if b.sessions != nil {
		errs = append(errs, b.sessions.Close())
	}
	if b.cache != nil {
		errs = append(errs, b.cache.Close())
	}
	b.closers = nil
	return errors.Join(errs...)
}

// exportDefaults converts the [export] config section.
func exportDefaults(cfg *config.Config) pipeline.Options {
	opts := pipeline.Options{
		Layout:   cfg.Export.Layout,
		PageSize: cfg.Export.PageSize,
		Quality:  compose.Quality(cfg.Export.Quality),
	}
	opts.SetDefaults()
	return opts
}
