package sdklog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coretrace "github.com/open-telemetry/sdk-core/trace"
)

type capturingProcessor struct {
	mu      sync.Mutex
	records []Record
}

func (p *capturingProcessor) OnEmit(r Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r)
}
func (p *capturingProcessor) ForceFlush(context.Context) error { return nil }
func (p *capturingProcessor) Shutdown(context.Context) error   { return nil }

func (p *capturingProcessor) all() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Record(nil), p.records...)
}

func TestEmitFansOutToEveryProcessorInOrder(t *testing.T) {
	var order []int
	first := &orderingProcessor{id: 1, order: &order}
	second := &orderingProcessor{id: 2, order: &order}

	provider := NewLoggerProvider(WithLogRecordProcessor(first), WithLogRecordProcessor(second))
	logger := provider.Logger("test")

	logger.Emit("hello")

	require.Equal(t, []int{1, 2}, order)
}

type orderingProcessor struct {
	id    int
	order *[]int
}

func (p *orderingProcessor) OnEmit(Record)                     { *p.order = append(*p.order, p.id) }
func (p *orderingProcessor) ForceFlush(context.Context) error { return nil }
func (p *orderingProcessor) Shutdown(context.Context) error   { return nil }

func TestEmitCarriesSpanContextForCorrelation(t *testing.T) {
	proc := &capturingProcessor{}
	provider := NewLoggerProvider(WithLogRecordProcessor(proc))
	logger := provider.Logger("test")

	sc := coretrace.NewSpanContext(coretrace.SpanContextConfig{
		TraceID:    coretrace.TraceID{1},
		SpanID:     coretrace.SpanID{1},
		TraceFlags: coretrace.FlagsSampled,
	})
	logger.Emit("correlated", WithSpanContext(sc))

	records := proc.all()
	require.Len(t, records, 1)
	assert.Equal(t, sc.TraceID(), records[0].TraceID)
	assert.Equal(t, sc.SpanID(), records[0].SpanID)
}

func TestEmitDefaultsSeverityToInfo(t *testing.T) {
	proc := &capturingProcessor{}
	provider := NewLoggerProvider(WithLogRecordProcessor(proc))
	logger := provider.Logger("test")

	logger.Emit("plain")

	records := proc.all()
	require.Len(t, records, 1)
	assert.Equal(t, SeverityInfo, records[0].Severity)
}

func TestLoggerProviderShutdownIsIdempotentAcrossProcessors(t *testing.T) {
	exp := &recordingExporter{}
	blp := NewBatchLogRecordProcessor(exp)
	provider := NewLoggerProvider(WithLogRecordProcessor(blp))

	require.NoError(t, provider.Shutdown(context.Background()))
	require.NoError(t, provider.Shutdown(context.Background()))
	assert.Equal(t, int32(1), exp.shutdown)
}

func TestLoggerReturnsSameInstanceForSameScope(t *testing.T) {
	provider := NewLoggerProvider()
	a := provider.Logger("svc")
	b := provider.Logger("svc")
	assert.Same(t, a, b)
}
