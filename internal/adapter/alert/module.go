package alert

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/caterlane/caterpay/internal/config"
)

// Module exposes the alert notifier to the fx graph. The webhook notifier is
// used when a URL is configured; otherwise alerts only reach the log.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) (Notifier, error) {
	if p.Config.AlertWebhookURL == "" {
		return NewLogNotifier(p.Logger), nil
	}
	return NewWebhookNotifier(p.Config.AlertWebhookURL, p.Logger)
}
