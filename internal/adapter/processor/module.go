package processor

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/caterlane/caterpay/internal/config"
)

// Module exposes the verification client implementation to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.ProcessorVerifyURL, p.Config.VerifyTimeout, p.Logger)
}
