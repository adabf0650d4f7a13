package di

import (
	"go.uber.org/fx"

	"github.com/caterlane/caterpay/internal/adapter/alert"
	"github.com/caterlane/caterpay/internal/adapter/processor"
	"github.com/caterlane/caterpay/internal/app"
	"github.com/caterlane/caterpay/internal/config"
	"github.com/caterlane/caterpay/internal/logger"
	"github.com/caterlane/caterpay/internal/server/http/handlers"
	"github.com/caterlane/caterpay/internal/server/http/router"
	"github.com/caterlane/caterpay/internal/storage/postgres"
	"github.com/caterlane/caterpay/internal/usecase"
	"github.com/caterlane/caterpay/internal/worker"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		processor.Module,
		alert.Module,
		fx.Provide(func(n alert.Notifier) usecase.AlertNotifier { return n }),
		usecase.Module,
		fx.Provide(func(client processor.Client) app.VerificationProvider { return client }),
		fx.Provide(
			func(f *app.CateringFacade) handlers.CateringFacade { return f },
			func(d *worker.IPNDispatcher) handlers.NotificationSink { return d },
			func(s *postgres.Storage) handlers.HealthFacade { return s },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
