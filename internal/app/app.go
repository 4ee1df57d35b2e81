package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/handlers/api"
	"github.com/iwtcode/oeeMonitor/internal/handlers/telegram"
	"github.com/iwtcode/oeeMonitor/internal/handlers/ws"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
	"github.com/iwtcode/oeeMonitor/internal/normalizer"
	"github.com/iwtcode/oeeMonitor/internal/repository"
	"github.com/iwtcode/oeeMonitor/internal/services"
	"github.com/iwtcode/oeeMonitor/internal/shift"
	"github.com/iwtcode/oeeMonitor/internal/synchronizer"
	"github.com/iwtcode/oeeMonitor/internal/usecases"
)

func New() *fx.App {
	return fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Provide(
			// Config
			oeeMonitor.LoadConfig,
			newLogger,

			// Repository
			repository.NewPostgresRepository,
			repository.NewActivityRepository,
			repository.NewSubscriberRepository,

			// Services
			services.NewTelemetrySource,
			services.NewShiftCache,
			services.NewInfluxWriter,
			services.NewNatsPublisher,

			// Core
			normalizer.New,
			newWindower,
			newSynchronizer,

			// Usecases
			usecases.NewMonitoringUsecase,
			usecases.NewAnalyticsUsecase,
			usecases.NewSubscriptionUsecase,

			// HTTP / WebSocket
			ws.NewHub,
			api.NewHandler,

			// Telegram Handlers
			telegram.NewMenu,
			telegram.NewCommandHandler,
			telegram.NewCallbackHandler,
			telegram.NewRouter,
			newBot,
		),
		fx.Invoke(
			registerPublishers,
			runSynchronizer,
			startHTTP,
			startBot,
		),
	)
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func newWindower(cfg *oeeMonitor.Config) *shift.Windower {
	return shift.NewWindower(cfg.Location())
}

func newSynchronizer(cfg *oeeMonitor.Config, source interfaces.TelemetrySource, norm *normalizer.Normalizer, log *zap.Logger) *synchronizer.Synchronizer {
	return synchronizer.New(source, norm, log, synchronizer.Options{
		Interval: cfg.PollInterval,
		Timeout:  cfg.FetchTimeout,
	})
}

// newBot returns nil when TG_TOKEN is not set.
func newBot(cfg *oeeMonitor.Config, router *telegram.Router, log *zap.Logger) (*telegram.Bot, error) {
	if cfg.TgToken == "" {
		log.Info("TG_TOKEN is empty, telegram bot disabled")
		return nil, nil
	}
	return telegram.NewBot(cfg, router, log)
}

type publishersIn struct {
	fx.In

	Sync          *synchronizer.Synchronizer
	Hub           *ws.Hub
	Influx        *services.InfluxWriter
	Nats          *services.NatsPublisher
	Bot           *telegram.Bot
	Subscriptions interfaces.SubscriptionUsecase
	Log           *zap.Logger
}

// registerPublishers подписывает всех потребителей на изменения списка станков
func registerPublishers(lc fx.Lifecycle, in publishersIn) {
	log := in.Log.Named("publish")

	publishers := map[string]interfaces.StatePublisher{"ws": in.Hub}
	if in.Influx != nil {
		publishers["influx"] = in.Influx
	}
	if in.Nats != nil {
		publishers["nats"] = in.Nats
	}
	if in.Bot != nil {
		publishers["telegram"] = telegram.NewNotifier(in.Bot.Bot, in.Subscriptions, in.Log)
	}

	var unsubscribe []func()
	for name, p := range publishers {
		unsubscribe = append(unsubscribe, in.Sync.Subscribe(func(ctx context.Context, machines []models.MachineState) {
			if err := p.Publish(ctx, machines); err != nil {
				log.Warn("publisher failed", zap.String("publisher", name), zap.Error(err))
			}
		}))
		log.Info("publisher registered", zap.String("publisher", name))
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			for _, fn := range unsubscribe {
				fn()
			}
			in.Hub.Close()
			if in.Influx != nil {
				in.Influx.Close()
			}
			if in.Nats != nil {
				in.Nats.Close()
			}
			return nil
		},
	})
}

func runSynchronizer(lc fx.Lifecycle, sync *synchronizer.Synchronizer, source interfaces.TelemetrySource, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				sync.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				log.Warn("synchronizer did not stop in time")
			}
			return source.Close()
		},
	})
}

func startHTTP(lc fx.Lifecycle, cfg *oeeMonitor.Config, handler *api.Handler, hub *ws.Hub, log *zap.Logger) {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(handler, hub.Handle),
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				log.Info("🌐 HTTP сервер запущен", zap.String("addr", srv.Addr))
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func startBot(lifecycle fx.Lifecycle, bot *telegram.Bot, log *zap.Logger) {
	if bot == nil {
		return
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("🔥 Бот запускается...")
				bot.Start()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			bot.Stop()
			return nil
		},
	})
}
