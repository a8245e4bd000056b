package atrng

import (
	"context"
	"time"
)

// Plugin extends a Client. Plugins are initialized by Start in
// registration order and shut down by Stop in reverse order.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// IntervalSetter changes scheduler periods at runtime. *Client implements it.
type IntervalSetter interface {
	SetIntervals(keepalive, discard time.Duration)
}

// PluginConfig is handed to Plugin.Initialize.
type PluginConfig struct {
	Logger    Logger
	Intervals IntervalSetter
}
