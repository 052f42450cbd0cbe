package settings

import "context"

type contextKey struct{}

var settingsContextKey = contextKey{}

// WithConfig attaches Settings to ctx, retrievable with FromContext.
func WithConfig(ctx context.Context, cfg *Settings) context.Context {
	return context.WithValue(ctx, settingsContextKey, cfg)
}

// FromContext returns the Settings previously attached with WithConfig.
// It panics if none was attached; cmd/root attaches one to the root
// command's context in mainCommand, before any subcommand body runs.
func FromContext(ctx context.Context) *Settings {
	cfg, ok := ctx.Value(settingsContextKey).(*Settings)
	if !ok || cfg == nil {
		panic("settings.FromContext: no Settings attached to context")
	}

	return cfg
}
