package dnb

import (
	"log/slog"

	"partnersearch/internal/platform/config"
)

// New returns the client selected by DNB_MODE.
func New(cfg config.DNB, logger *slog.Logger, metrics *Metrics) Client {
	if cfg.Mode == config.DNBModeLive {
		logger.Info("using D&B Direct Plus API", "base_url", cfg.BaseURL)
		return NewHTTPClient(cfg.BaseURL, cfg.APIKey, cfg.APISecret, cfg.Timeout,
			WithLogger(logger),
			WithMetrics(metrics),
		)
	}
	logger.Info("using mock D&B data set")
	return NewMockClient(nil)
}
