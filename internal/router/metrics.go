package router

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/farmstay/internal/domain"
)

const (
	CounterInfoHits      = "info_hits"
	CounterBookingStarts = "booking_starts"
)

// Counters receives usage counts from the classifier.
type Counters interface {
	Inc(name string)
}

// Diagnostics receives one record per classified message.
type Diagnostics interface {
	Record(rec DiagnosticRecord)
}

type DiagnosticRecord struct {
	Intent      domain.Intent
	Confidence  float64
	MatchedKey  string
	IsInterrupt bool
	Step        domain.Step
	Message     string
	Timestamp   time.Time
}

// AtomicCounters is an in-process Counters implementation safe for concurrent use.
type AtomicCounters struct {
	mu     sync.RWMutex
	values map[string]*atomic.Int64
}

var _ Counters = (*AtomicCounters)(nil)

func NewAtomicCounters() *AtomicCounters {
	return &AtomicCounters{values: make(map[string]*atomic.Int64)}
}

func (c *AtomicCounters) Inc(name string) {
	c.mu.RLock()
	v, ok := c.values[name]
	c.mu.RUnlock()
	if !ok {
		c.mu.Lock()
		if v, ok = c.values[name]; !ok {
			v = new(atomic.Int64)
			c.values[name] = v
		}
		c.mu.Unlock()
	}
	v.Add(1)
}

// Snapshot returns a copy of the current counts.
func (c *AtomicCounters) Snapshot() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int64, len(c.values))
	for k, v := range c.values {
		out[k] = v.Load()
	}
	return out
}

type ZapDiagnostics struct {
	logger *zap.Logger
}

var _ Diagnostics = (*ZapDiagnostics)(nil)

func NewZapDiagnostics(logger *zap.Logger) *ZapDiagnostics {
	return &ZapDiagnostics{logger: logger.Named("router")}
}

func (d *ZapDiagnostics) Record(rec DiagnosticRecord) {
	d.logger.Info("message routed",
		zap.String("intent", string(rec.Intent)),
		zap.Float64("confidence", rec.Confidence),
		zap.String("matched_key", rec.MatchedKey),
		zap.Bool("is_interrupt", rec.IsInterrupt),
		zap.String("booking_step", string(rec.Step)),
		zap.String("message", rec.Message),
		zap.Time("ts", rec.Timestamp),
	)
}

type nopCounters struct{}

func (nopCounters) Inc(string) {}

type nopDiagnostics struct{}

func (nopDiagnostics) Record(DiagnosticRecord) {}
