package collector

import (
	"context"
	"strconv"

	"github.com/fakeyudi/statusline/internal/session"
)

// ContextUsage is the consumed share of the context window.
type ContextUsage struct {
	Used    int64 // tokens consumed
	Total   int64 // context window size in tokens
	Percent int64 // floor of used_percentage
}

// Tier buckets a usage percentage for coloring.
type Tier int

const (
	TierLow    Tier = iota // below 50%
	TierMedium             // 50% to 79%
	TierHigh               // 80% and above
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	default:
		return "high"
	}
}

// TierFor maps a usage percentage to its display tier.
func TierFor(percent int64) Tier {
	switch {
	case percent < 50:
		return TierLow
	case percent < 80:
		return TierMedium
	default:
		return TierHigh
	}
}

// Tier returns the display tier of u.
func (u ContextUsage) Tier() Tier {
	return TierFor(u.Percent)
}

// ContextCollector extracts context-window usage from the snapshot.
type ContextCollector struct{}

// Collect implements Collector. Usage is nil unless both used_percentage and
// context_window_size are present.
func (ContextCollector) Collect(_ context.Context, snap *session.Snapshot) (CollectorResult, error) {
	u, ok := ExtractUsage(snap)
	if !ok {
		return CollectorResult{}, nil
	}
	return CollectorResult{Usage: &u}, nil
}

// ExtractUsage computes usage from the snapshot's context_window fields.
func ExtractUsage(snap *session.Snapshot) (ContextUsage, bool) {
	pct, ok := snap.UsedPercentage()
	if !ok {
		return ContextUsage{}, false
	}
	size, ok := snap.ContextWindowSize()
	if !ok {
		return ContextUsage{}, false
	}
	used, ok := session.FloorInt64(pct / 100 * float64(size))
	if !ok {
		return ContextUsage{}, false
	}
	percent, ok := session.FloorInt64(pct)
	if !ok {
		return ContextUsage{}, false
	}
	return ContextUsage{Used: used, Total: size, Percent: percent}, true
}

// FormatTokens abbreviates a token count: 1000 and above become whole
// thousands with a "k" suffix, truncated rather than rounded.
func FormatTokens(tokens int64) string {
	if tokens >= 1000 {
		return strconv.FormatInt(tokens/1000, 10) + "k"
	}
	return strconv.FormatInt(tokens, 10)
}
