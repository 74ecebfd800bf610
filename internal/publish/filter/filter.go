/*
Package filter implements the per-sink event allowlist: a pure predicate
deciding whether an event kind is permitted to leave the process via a given
sink. It is evaluated inside a PublisherClient so filtering cost is
attributed to that sink's metrics, not to the shared buffer.
*/
package filter

import "github.com/cuemby/ray-aggregator/internal/model"

// Predicate reports whether an event of kind k may be published.
type Predicate func(k model.Kind) bool

// DefaultExposableKinds is the default allowlist for the HTTP sink: task and
// driver-job events, but not profiling events.
var DefaultExposableKinds = []model.Kind{
	model.KindTaskDefinition,
	model.KindTaskExecution,
	model.KindActorTaskDefinition,
	model.KindActorTaskExecution,
	model.KindDriverJobDefinition,
	model.KindDriverJobExecution,
}

// New builds a Predicate from a set of permitted event kinds (the agent
// parses them from the names in Config.ExposableEventTypes).
func New(exposable []model.Kind) Predicate {
	allowed := make(map[model.Kind]bool, len(exposable))
	for _, k := range exposable {
		allowed[k] = true
	}
	return func(k model.Kind) bool {
		return allowed[k]
	}
}

// Allow always permits every event kind, for an HTTP client that should
// filter nothing. The control-plane client applies no predicate at all.
func Allow(model.Kind) bool { return true }
