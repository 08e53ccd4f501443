package instrumentation

import (
	"log/slog"
	"time"
)

// SlogHooks implements Hooks by logging each bracketed event through
// log/slog. Node update spans are logged at Debug (high-volume, one pair
// per node per moment); driver iteration spans are logged at Debug too,
// since on a busy stream they fire once per moment.
type SlogHooks struct {
	logger      *slog.Logger
	nodeStarted map[int]time.Time
}

// NewSlogHooks builds a SlogHooks around logger, defaulting to
// slog.Default() if logger is nil.
func NewSlogHooks(logger *slog.Logger) *SlogHooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogHooks{logger: logger, nodeStarted: make(map[int]time.Time)}
}

var _ Hooks = (*SlogHooks)(nil)

func (h *SlogHooks) DataLogicUpdateBegin() {
	h.logger.Debug("lsp: data logic update begin")
}

func (h *SlogHooks) DataLogicUpdateEnd() {
	h.logger.Debug("lsp: data logic update end")
}

func (h *SlogHooks) NodeUpdateBegin(nodeIndex int) {
	h.nodeStarted[nodeIndex] = time.Now()
	h.logger.Debug("lsp: node update begin", "node", nodeIndex)
}

func (h *SlogHooks) NodeUpdateEnd(nodeIndex int) {
	start, ok := h.nodeStarted[nodeIndex]
	if !ok {
		h.logger.Debug("lsp: node update end", "node", nodeIndex)
		return
	}
	delete(h.nodeStarted, nodeIndex)
	h.logger.Debug("lsp: node update end", "node", nodeIndex, "duration", time.Since(start))
}

func (h *SlogHooks) HandleNodeOutput(nodeIndex int, output any) {
	h.logger.Debug("lsp: node output", "node", nodeIndex, "output", output)
}
