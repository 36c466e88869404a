package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/muratoffalex/manobot/internal/app/di"
	"github.com/muratoffalex/manobot/internal/commands/assistant"
	"github.com/muratoffalex/manobot/internal/commands/goibot"
	"github.com/muratoffalex/manobot/internal/commands/help"
	"github.com/muratoffalex/manobot/internal/commands/moderation"
	"github.com/muratoffalex/manobot/internal/commands/restart"
	"github.com/muratoffalex/manobot/internal/commands/youtube"
	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/core"
	"github.com/muratoffalex/manobot/internal/logger"
)

// RestartExitCode asks the process supervisor to start the bot again.
const RestartExitCode = 3

const limiterPruneInterval = 10 * time.Minute

type Application struct {
	Logger    logger.Logger
	cfg       *config.Config
	bot       *core.Bot
	di        *di.Container
	cancel    context.CancelFunc
	restarted atomic.Bool
}

func New(ctx context.Context, configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	container.Logger.Info("DI Container created")

	return NewWithContainer(container), nil
}

// NewWithContainer builds the bot over an already wired container and
// registers every enabled command.
func NewWithContainer(container *di.Container) *Application {
	app := &Application{
		Logger: container.Logger,
		cfg:    container.Cfg,
		di:     container,
		bot: core.NewBot(
			container.Client,
			container.Commands,
			container.Replies,
			container.Cfg.Bot().CommandPrefix,
			container.Logger.WithField("component", "bot"),
		),
	}
	app.registerCommands()
	return app
}

// Listeners are tried in registration order, so goibot sees wake words
// before the companion sees its trigger.
func (a *Application) registerCommands() {
	if a.enabled(goibot.CommandName) {
		a.bot.RegisterCommand(goibot.New(a.di))
	}
	if a.enabled(assistant.CommandName) && a.di.Companion != nil {
		a.bot.RegisterCommand(assistant.New(a.di))
	}
	if a.enabled(youtube.VideoCommandName) {
		a.bot.RegisterCommand(youtube.NewVideo(a.di))
	}
	if a.enabled(youtube.MusicCommandName) {
		a.bot.RegisterCommand(youtube.NewMusic(a.di))
	}
	if a.enabled(help.CommandName) {
		a.bot.RegisterCommand(help.New(a.di))
	}
	if a.enabled(moderation.KickCommandName) {
		a.bot.RegisterCommand(moderation.NewKick(a.di))
	}
	if a.enabled(moderation.BanCommandName) {
		a.bot.RegisterCommand(moderation.NewBan(a.di))
	}
	if a.enabled(restart.CommandName) {
		a.bot.RegisterCommand(restart.New(a.di, a.Restart))
	}
}

func (a *Application) enabled(name string) bool {
	return a.cfg.GetCommandConfig(name).Enabled
}

// Run starts the background jobs and the bot and blocks until ctx is done,
// the event stream ends or Restart is called. The container is closed on
// return.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	defer cancel()
	defer a.di.Close()

	if err := a.scheduleJobs(); err != nil {
		return err
	}
	a.di.Scheduler.Start()

	a.Logger.WithField("commands", len(a.di.Commands.All())).Info("Starting application")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return a.bot.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutting down")
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	a.Logger.Info("Application stopped")
	return err
}

func (a *Application) scheduleJobs() error {
	replies := a.di.Replies
	err := a.di.Scheduler.Every("pending-sweep", a.cfg.Pending().SweepInterval, func() {
		if n := replies.Sweep(time.Now()); n > 0 {
			a.Logger.WithField("expired", n).Debug("Swept pending replies")
		}
	})
	if err != nil {
		return err
	}

	err = a.di.Scheduler.Every("limiter-prune", limiterPruneInterval, func() {
		a.di.Queue.Prune()
	})
	if err != nil {
		return err
	}

	if purger, ok := a.di.Cache.(interface{ Purge() int }); ok {
		return a.di.Scheduler.Every("cache-purge", time.Hour, func() {
			purger.Purge()
		})
	}
	return nil
}

// Restart stops Run; ExitCode then reports RestartExitCode.
func (a *Application) Restart() {
	a.restarted.Store(true)
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *Application) ExitCode() int {
	if a.restarted.Load() {
		return RestartExitCode
	}
	return 0
}
