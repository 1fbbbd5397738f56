package sdkmetric

import "github.com/open-telemetry/sdk-core/attribute"

// defaultCardinalityLimit is spec.md §4.2's default per-stream attribute
// set cap: 2000 series per stream including the overflow series, so 1999
// distinct sets before further sets fall back to the overflow series.
const defaultCardinalityLimit = 2000

// overflowAttributeSet is the sentinel attribute set every measurement
// past a stream's cardinality cap is folded into (spec.md §4.2: "a single
// series with the attribute set {otel.metric.overflow=true}, rather than
// being dropped").
var overflowAttributeSet = attribute.NewSet(attribute.Bool("otel.metric.overflow", true))
