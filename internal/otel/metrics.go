package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nisdos/shellsig/internal/model"
)

const meterName = "shellsig"

// Metrics holds all OTEL metric instruments for shellsig.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Command counters (partitioned by shell + outcome via attributes)
	Commands metric.Int64Counter
	Failures metric.Int64Counter

	// OSC sequences decoded from PTY output
	SequencesDecoded metric.Int64Counter
	SequencesDropped metric.Int64Counter

	// LLM token counters (partitioned by provider + model via attributes)
	InputTokens  metric.Int64Counter
	OutputTokens metric.Int64Counter

	// Explanation cache counters
	ExplainCacheHits   metric.Int64Counter
	ExplainCacheMisses metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	// --- Command counters ---

	m.Commands, err = meter.Int64Counter("commands.total",
		metric.WithDescription("Total commands observed, partitioned by shell and outcome"))
	if err != nil {
		return nil, err
	}

	m.Failures, err = meter.Int64Counter("commands.failures",
		metric.WithDescription("Commands that exited non-zero, excluding interrupts"))
	if err != nil {
		return nil, err
	}

	// --- OSC sequence counters ---

	m.SequencesDecoded, err = meter.Int64Counter("osc.sequences.decoded",
		metric.WithDescription("command-exit OSC sequences successfully decoded from PTY output"))
	if err != nil {
		return nil, err
	}

	m.SequencesDropped, err = meter.Int64Counter("osc.sequences.dropped",
		metric.WithDescription("OSC sequences discarded as malformed or oversized"))
	if err != nil {
		return nil, err
	}

	// --- LLM token counters ---

	m.InputTokens, err = meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total LLM input tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.OutputTokens, err = meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total LLM output tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	// --- Explanation cache counters ---

	m.ExplainCacheHits, err = meter.Int64Counter("explain_cache.hits",
		metric.WithDescription("Number of explanation cache hits (same failure context, reused previous explanation)"))
	if err != nil {
		return nil, err
	}

	m.ExplainCacheMisses, err = meter.Int64Counter("explain_cache.misses",
		metric.WithDescription("Number of explanation cache misses (new failure, changed context, or TTL expired)"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// outcome maps an exit status to a coarse metric attribute.
func outcome(status int) string {
	switch {
	case status == 0:
		return "ok"
	case status == model.InterruptStatus:
		return "interrupt"
	default:
		return "failure"
	}
}

// RecordCommand records an observed command completion.
func (m *Metrics) RecordCommand(ctx context.Context, shell string, status int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("shell.name", shell),
		attribute.String("command.outcome", outcome(status)),
	)
	m.Commands.Add(ctx, 1, attrs)
	if status != 0 && status != model.InterruptStatus {
		m.Failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("shell.name", shell),
			attribute.Int("command.status", status),
		))
	}
}

// RecordSequenceDecoded records a successfully decoded command-exit sequence.
func (m *Metrics) RecordSequenceDecoded(ctx context.Context) {
	if m == nil {
		return
	}
	m.SequencesDecoded.Add(ctx, 1)
}

// RecordSequenceDropped records a malformed or oversized sequence.
func (m *Metrics) RecordSequenceDropped(ctx context.Context) {
	if m == nil {
		return
	}
	m.SequencesDropped.Add(ctx, 1)
}

// RecordTokens records LLM token usage on the metric counters.
func (m *Metrics) RecordTokens(ctx context.Context, provider, model string, input, output int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
	m.InputTokens.Add(ctx, input, attrs)
	m.OutputTokens.Add(ctx, output, attrs)
}

// RecordCacheHit records an explanation cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.ExplainCacheHits.Add(ctx, 1)
}

// RecordCacheMiss records an explanation cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.ExplainCacheMisses.Add(ctx, 1)
}
