package autoconfig

import (
	"strings"

	"github.com/open-telemetry/sdk-core/attribute"
)

// resourceAttributesFromProperty parses the OTEL_RESOURCE_ATTRIBUTES wire
// format ("key1=value1,key2=value2"), matching spec.md §4.5's resource
// detector chain. Malformed pairs are skipped rather than failing the
// whole build, consistent with the reference implementation treating
// resource detection as best-effort.
func resourceAttributesFromProperty(raw string) []attribute.KeyValue {
	var out []attribute.KeyValue
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out = append(out, attribute.String(strings.TrimSpace(k), strings.TrimSpace(v)))
	}
	return out
}

func serviceNameAttribute(name string) attribute.KeyValue {
	return attribute.String("service.name", name)
}
