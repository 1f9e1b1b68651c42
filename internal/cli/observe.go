package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"draftboard/pkg/observability"
)

// logHooks emits debug log lines for render, cache, and sync events. The
// serve command registers it so --verbose surfaces what the renderer and
// websocket hub are doing.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(logger *log.Logger) {
	h := &logHooks{logger: logger}
	observability.SetRenderHooks(h)
	observability.SetCacheHooks(h)
	observability.SetSyncHooks(h)
}

func (h *logHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render start", "format", format)
}

func (h *logHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("render complete", "format", format, "bytes", size, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnClientConnect(connections int) {
	h.logger.Debug("sync client connected", "connections", connections)
}

func (h *logHooks) OnClientDisconnect(connections int) {
	h.logger.Debug("sync client disconnected", "connections", connections)
}

func (h *logHooks) OnBroadcast(eventType string, clients int) {
	h.logger.Debug("sync broadcast", "event", eventType, "clients", clients)
}
