package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// charmbracelet logger. Errors are logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger. A nil logger uses the
// package default logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("obs")}
}

// Install registers h for every hook category.
func (h *LogHooks) Install() {
	SetSelectionHooks(h)
	SetStoreHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnResolve(_ context.Context, op string, adjusted, rejected bool, reason string, d time.Duration) {
	if rejected {
		h.logger.Debug("resolve", "op", op, "rejected", true, "reason", reason, "took", d)
		return
	}
	h.logger.Debug("resolve", "op", op, "adjusted", adjusted, "took", d)
}

func (h *LogHooks) OnLevelChange(_ context.Context, from, to int) {
	h.logger.Debug("unlock level", "from", from, "to", to)
}

func (h *LogHooks) OnStoreGet(_ context.Context, backend string, hit bool, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("store get failed", "backend", backend, "err", err)
		return
	}
	h.logger.Debug("store get", "backend", backend, "hit", hit, "took", d)
}

func (h *LogHooks) OnStoreSet(_ context.Context, backend string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("store set failed", "backend", backend, "err", err)
		return
	}
	h.logger.Debug("store set", "backend", backend, "bytes", size, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Warn("request failed", "method", method, "path", path, "err", err)
}
