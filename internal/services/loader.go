package services

import (
	"log/slog"

	"scorecard/internal/config"
	"scorecard/internal/scorecard"
)

// NewLoader builds a loader for the configured input format.
func NewLoader(in config.InputConfig, logger *slog.Logger) *scorecard.Loader {
	opts := scorecard.ReadOptions{
		Encoding:  in.Encoding,
		Delimiter: in.DelimiterRune(),
		Columns:   scorecard.ColumnMode(in.Columns),
	}
	return scorecard.NewLoader(opts, scorecard.DefaultRules(), logger)
}

// NewCache returns nil when caching is disabled.
func NewCache(cfg config.CacheConfig) *scorecard.Cache {
	if !cfg.Enabled {
		return nil
	}
	return scorecard.NewCache(cfg.TTL, cfg.MaxEntries)
}
