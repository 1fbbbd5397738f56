package sdktrace

import (
	"crypto/rand"
	"sync"

	coretrace "github.com/open-telemetry/sdk-core/trace"
)

// IDGenerator produces new trace and span IDs. Pluggable so tests can supply
// deterministic sequences; the default uses crypto/rand, matching the
// upstream SDK's default generator (and stdlib is the right call here: no
// pack dependency offers a "trace id generator", this is pure domain logic
// spec.md §3 itself defines).
type IDGenerator interface {
	NewIDs(parent coretrace.SpanContext) (coretrace.TraceID, coretrace.SpanID)
	NewSpanID(traceID coretrace.TraceID) coretrace.SpanID
}

type randomIDGenerator struct {
	mu sync.Mutex
}

// NewRandomIDGenerator returns the default crypto/rand-backed generator.
func NewRandomIDGenerator() IDGenerator { return &randomIDGenerator{} }

func (g *randomIDGenerator) NewSpanID(_ coretrace.TraceID) coretrace.SpanID {
	g.mu.Lock()
	defer g.mu.Unlock()
	var sid coretrace.SpanID
	for {
		_, _ = rand.Read(sid[:])
		if sid.IsValid() {
			return sid
		}
	}
}

func (g *randomIDGenerator) NewIDs(parent coretrace.SpanContext) (coretrace.TraceID, coretrace.SpanID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var tid coretrace.TraceID
	if parent.IsValid() {
		tid = parent.TraceID()
	} else {
		for {
			_, _ = rand.Read(tid[:])
			if tid.IsValid() {
				break
			}
		}
	}
	var sid coretrace.SpanID
	for {
		_, _ = rand.Read(sid[:])
		if sid.IsValid() {
			break
		}
	}
	return tid, sid
}
