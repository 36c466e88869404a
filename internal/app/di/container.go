package di

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/muratoffalex/manobot/internal/ai"
	"github.com/muratoffalex/manobot/internal/cache"
	"github.com/muratoffalex/manobot/internal/chat"
	"github.com/muratoffalex/manobot/internal/commands"
	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/database"
	"github.com/muratoffalex/manobot/internal/identity"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/media"
	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/muratoffalex/manobot/internal/network"
	"github.com/muratoffalex/manobot/internal/pending"
	"github.com/muratoffalex/manobot/internal/persona"
	"github.com/muratoffalex/manobot/internal/queue"
	"github.com/muratoffalex/manobot/internal/router"
	"github.com/muratoffalex/manobot/internal/scheduler"
	"github.com/muratoffalex/manobot/internal/service"
	"github.com/muratoffalex/manobot/internal/store"
	"github.com/muratoffalex/manobot/internal/telegram"
)

const userCachePromoteTTL = time.Hour

type Container struct {
	Client     messenger.Client
	Logger     logger.Logger
	Cfg        *config.Config
	Queue      *queue.Queue
	Scheduler  *scheduler.Scheduler
	Localizer  *service.Localizer
	HttpClient *http.Client
	Cache      cache.Cache
	Storage    store.Backend
	Profiles   *store.Profiles
	Histories  *store.Histories
	Replies    *pending.Correlator
	Identities *identity.Resolver
	Personas   *persona.Selector
	AI         *ai.ProviderRegistry
	Assistant  *chat.Assistant
	Companion  *chat.Companion
	Media      *media.Service
	Commands   *commands.Registry
	Router     *router.Router

	kv        *badger.DB
	closeOnce sync.Once
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logCfg := cfg.Log()
	l := logger.NewLogrusLogger(&logCfg)

	httpClient, err := network.SetupHTTPClient(network.NewAPIClientConfig(cfg.HTTP()), l)
	if err != nil {
		return nil, err
	}

	backend, kv, err := OpenStorage(cfg.Storage(), l)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Logger:     l,
		Cfg:        cfg,
		HttpClient: httpClient,
		Storage:    backend,
		kv:         kv,
	}

	c.Cache = cache.NewMemoryCache()
	if kv != nil {
		c.Cache = cache.NewMultiLevelCache(cache.NewMemoryCache(), cache.NewKVCache(kv, "cache:"), userCachePromoteTTL, l)
	}

	api, err := telegram.Connect(cfg.Telegram().Token, httpClient)
	if err != nil {
		c.Close()
		return nil, err
	}
	l.WithField("username", api.Self.UserName).Info("Bot API initialized")
	c.Client = telegram.NewBotClient(api, cfg.Telegram(), c.Cache, l)

	if err := c.Wire(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Wire builds every domain service from Cfg, Logger, Client, HttpClient and
// Storage, which must already be set.
func (c *Container) Wire(ctx context.Context) error {
	cfg, l := c.Cfg, c.Logger

	localizer, err := service.NewLocalizer(cfg.Global().InterfaceLanguage)
	if err != nil {
		return fmt.Errorf("create localizer: %w", err)
	}
	c.Localizer = localizer

	if c.Scheduler == nil {
		if c.Scheduler, err = scheduler.New(l); err != nil {
			return err
		}
	}
	if c.Queue == nil {
		c.Queue = queue.NewQueue(l.WithField("component", "queue"))
	}

	c.Profiles = store.NewProfiles(c.Storage)
	if err := c.Profiles.Load(ctx); err != nil {
		return err
	}
	c.Histories = store.NewHistories(c.Storage)
	if err := c.Histories.Load(ctx); err != nil {
		return err
	}
	l.WithField("profiles", c.Profiles.Len()).Info("Storage loaded")

	bot := cfg.Bot()
	c.Replies = pending.NewCorrelator()
	c.Identities = identity.NewResolver(bot.OwnerID, bot.OwnerName, c.Profiles, c.Client, l)
	c.Personas = persona.NewSelector(bot.OwnerName, bot.OwnerAlias)

	if c.AI == nil {
		if c.AI, err = ai.NewRegistryFromConfig(ctx, cfg.AI().Providers, c.HttpClient, l); err != nil {
			return err
		}
	}

	chatCfg := cfg.Chat()
	chatChain, err := ai.NewChain(c.AI, chatCfg.Chain, chatCfg.Timeout, l.WithField("component", "chat"))
	if err != nil {
		return err
	}
	c.Assistant = chat.NewAssistant(chatChain, c.Histories, c.Personas, localizer, chatCfg, l)

	assistantCfg := cfg.Assistant()
	if assistantCfg.Enabled {
		companionChain, err := ai.NewChain(c.AI, assistantCfg.Chain, assistantCfg.Timeout, l.WithField("component", "companion"))
		if err != nil {
			return err
		}
		c.Companion = chat.NewCompanion(companionChain, localizer, assistantCfg, l)
	}

	if c.Media == nil {
		if c.Media, err = c.newMediaService(); err != nil {
			return err
		}
	}

	c.Commands = commands.NewRegistry()
	c.Router = router.New(bot.WakeWords, router.WithRegistry(c.Commands.Has))
	return nil
}

func (c *Container) newMediaService() (*media.Service, error) {
	mediaCfg := c.Cfg.Media()
	maxSize, err := mediaCfg.MaxBytes()
	if err != nil {
		return nil, err
	}
	downloadClient, err := network.SetupHTTPClient(network.NewDownloadClientConfig(c.Cfg.HTTP()), c.Logger)
	if err != nil {
		return nil, err
	}

	log := c.Logger.WithField("component", "media")
	return media.NewService(mediaCfg, media.ServiceDeps{
		Searcher:   media.NewYTDLPSearcher(c.Cfg.HTTP().GetProxy(), log),
		Resolver:   media.NewProviderResolver(mediaCfg.APIURL, mediaCfg.APIKey, c.HttpClient, log),
		Prober:     media.NewHeadProber(c.HttpClient),
		Downloader: media.NewDownloader(downloadClient, mediaCfg.GetTempDirectory(), maxSize),
		Client:     c.Client,
		Replies:    c.Replies,
		Scheduler:  c.Scheduler,
		Localizer:  c.Localizer,
		Logger:     log,
	})
}

// OpenStorage returns the backend for the configured driver. The badger
// handle is returned too so the user cache can share it.
func OpenStorage(cfg config.StorageConfig, log logger.Logger) (store.Backend, *badger.DB, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		return store.MemoryBackend{}, nil, nil
	case config.StorageJSON:
		b, err := store.NewJSONBackend(cfg.JSONDirectory)
		return b, nil, err
	case config.StorageSQLite:
		b, err := database.NewSQLiteDB(cfg.SQLiteDSN, log)
		return b, nil, err
	case config.StorageBadger:
		db, err := store.OpenBadger(cfg.BadgerDirectory, cfg.BadgerInMemory, log)
		if err != nil {
			return nil, nil, err
		}
		return store.NewBadgerBackend(db), db, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", store.ErrUnknownDriver, cfg.Driver)
	}
}

// Close stops the scheduler and closes storage. Calls after the first are
// no-ops.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		if c.Scheduler != nil {
			if err := c.Scheduler.Stop(); err != nil {
				c.Logger.WithError(err).Warn("Failed to stop scheduler")
			}
		}
		if c.Storage != nil {
			if err := c.Storage.Close(); err != nil {
				c.Logger.WithError(err).Warn("Failed to close storage")
			}
		}
	})
}
