package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/cirodil/tenhens/internal/config"
	"github.com/cirodil/tenhens/internal/dashboard"
	"github.com/cirodil/tenhens/internal/scheduler"
	"github.com/cirodil/tenhens/internal/service"
	"github.com/cirodil/tenhens/internal/store"
	"github.com/cirodil/tenhens/internal/telegram"
)

type App struct {
	cfg config.Config
	log *zap.Logger
	bot *tgbotapi.BotAPI

	repo   store.Repo
	router *telegram.Router
	web    *dashboard.Server
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	return &App{cfg: cfg, log: log, bot: bot}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting tenhens",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Int("admins", len(a.cfg.AdminIDs)),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	svc := service.New(a.repo)
	a.router = telegram.NewRouter(a.bot, a.log, svc, a.repo, a.cfg.AdminIDs, a.cfg.DonateURL)

	a.web, err = dashboard.NewServer(a.log, svc, dashboard.NewAuth(a.repo))
	if err != nil {
		a.log.Error("dashboard init failed", zap.Error(err))
		return err
	}
	go func() {
		if err := a.web.Start(a.cfg.HTTPAddr); err != nil {
			a.log.Error("dashboard server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Daily reminder loop; the router doubles as its message sender.
	sched := scheduler.New(a.repo, a.log, a.router)
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Run(ctx)
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			<-schedDone

			// Create a short-lived shutdown context and cancel it immediately after use.
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.web.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("dashboard shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
