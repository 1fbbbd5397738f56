// Package resource provides the minimal Resource type referenced by the
// tracing and metrics pipelines. Resource *discovery* (environment,
// cloud-provider, process detectors) is out of scope per spec.md §1;
// this package only models the immutable attribute set attached to every
// span and metric point once a Resource has been built by some other
// means.
package resource

import "github.com/open-telemetry/sdk-core/attribute"

// Resource is an immutable set of attributes describing the entity
// producing telemetry.
type Resource struct {
	set attribute.Set
}

// Empty is the zero Resource.
var Empty = Resource{}

// NewSchemaless builds a Resource from kvs with no schema URL tracking,
// sufficient for this core's purposes (concrete resource detectors are a
// Non-goal).
func NewSchemaless(kvs ...attribute.KeyValue) Resource {
	return Resource{set: attribute.NewSet(kvs...)}
}

// Attributes returns the resource's attribute set.
func (r Resource) Attributes() attribute.Set { return r.set }

// Merge combines r with other; attributes in other take precedence on
// conflicting keys, matching the autoconfigure resource-provider merge
// order described in spec.md §4.5 step 3.
func Merge(r, other Resource) Resource {
	merged := r.set.ToSlice()
	merged = append(merged, other.set.ToSlice()...)
	return Resource{set: attribute.NewSet(merged...)}
}
