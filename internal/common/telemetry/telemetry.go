// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"strings"
	"sync"
	"time"

	"github.com/sentinela-id/sentinela/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once

	vectorSearchTotal     *expvar.Int
	vectorSearchLatencyMS *expvar.Int

	embedBatchTotal *expvar.Int
	embedTextsTotal *expvar.Int

	generateTotal     *expvar.Map
	generateLatencyMS *expvar.Map

	indexBuildTotal *expvar.Map
)

func ensureInit() {
	initOnce.Do(func() {
		vectorSearchTotal = expvar.NewInt("sentinela_vector_search_total")
		vectorSearchLatencyMS = expvar.NewInt("sentinela_vector_search_latency_ms")

		embedBatchTotal = expvar.NewInt("sentinela_embed_batches_total")
		embedTextsTotal = expvar.NewInt("sentinela_embed_texts_total")

		generateTotal = expvar.NewMap("sentinela_generate_total")
		generateLatencyMS = expvar.NewMap("sentinela_generate_latency_ms")

		indexBuildTotal = expvar.NewMap("sentinela_index_build_total")
	})
}

// StartSpan records a debug trace span around an operation. The returned
// function closes the span and logs its duration with any extra attrs.
func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...interface{})) {
	ensureInit()
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.Debug("trace: start", "span", name)
	return ctx, func(attrs ...interface{}) {
		if sp == nil {
			return
		}
		duration := time.Since(sp.start)
		logger.Debug("trace: end", append([]interface{}{"span", name, "dur", duration}, attrs...)...)
	}
}

func RecordVectorSearch(duration time.Duration) {
	ensureInit()
	vectorSearchTotal.Add(1)
	if duration > 0 {
		vectorSearchLatencyMS.Add(duration.Milliseconds())
	}
}

func RecordEmbedBatch(texts int) {
	ensureInit()
	if texts <= 0 {
		return
	}
	embedBatchTotal.Add(1)
	embedTextsTotal.Add(int64(texts))
}

func RecordGeneration(outcome string, duration time.Duration) {
	ensureInit()
	key := strings.TrimSpace(strings.ToLower(outcome))
	if key == "" {
		key = "unknown"
	}
	generateTotal.Add(key, 1)
	if duration > 0 {
		generateLatencyMS.Add(key, duration.Milliseconds())
	}
}

func RecordIndexBuild(backend string) {
	ensureInit()
	key := strings.TrimSpace(strings.ToLower(backend))
	if key == "" {
		key = "unknown"
	}
	indexBuildTotal.Add(key, 1)
}

func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}
