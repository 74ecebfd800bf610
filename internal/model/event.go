/*
Package model defines the data types that flow through the aggregator: the
immutable Event value, the batches publishers hand to sinks, and the
task-attempt metadata that accompanies control-plane publishes.
*/
package model

// Kind is the closed enumeration of event kinds the aggregator understands.
// It mirrors the event types a Ray-style event source emits.
type Kind int32

const (
	KindUnknown Kind = iota
	KindTaskDefinition
	KindTaskExecution
	KindActorTaskDefinition
	KindActorTaskExecution
	KindDriverJobDefinition
	KindDriverJobExecution
	KindTaskProfile
)

// String returns the wire name used for filter configuration and metric labels.
func (k Kind) String() string {
	switch k {
	case KindTaskDefinition:
		return "TASK_DEFINITION_EVENT"
	case KindTaskExecution:
		return "TASK_EXECUTION_EVENT"
	case KindActorTaskDefinition:
		return "ACTOR_TASK_DEFINITION_EVENT"
	case KindActorTaskExecution:
		return "ACTOR_TASK_EXECUTION_EVENT"
	case KindDriverJobDefinition:
		return "DRIVER_JOB_DEFINITION_EVENT"
	case KindDriverJobExecution:
		return "DRIVER_JOB_EXECUTION_EVENT"
	case KindTaskProfile:
		return "TASK_PROFILE_EVENT"
	default:
		return "UNKNOWN_EVENT"
	}
}

// KindFromString parses the wire name produced by Kind.String back into a
// Kind, returning KindUnknown for anything it doesn't recognize.
func KindFromString(name string) Kind {
	switch name {
	case "TASK_DEFINITION_EVENT":
		return KindTaskDefinition
	case "TASK_EXECUTION_EVENT":
		return KindTaskExecution
	case "ACTOR_TASK_DEFINITION_EVENT":
		return KindActorTaskDefinition
	case "ACTOR_TASK_EXECUTION_EVENT":
		return KindActorTaskExecution
	case "DRIVER_JOB_DEFINITION_EVENT":
		return KindDriverJobDefinition
	case "DRIVER_JOB_EXECUTION_EVENT":
		return KindDriverJobExecution
	case "TASK_PROFILE_EVENT":
		return KindTaskProfile
	default:
		return KindUnknown
	}
}

// Severity is the log level the producer attached to the event.
type Severity int32

const (
	SeverityUnspecified Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityFatal
)

// Timestamp is a wall-clock time expressed as the wire format producers send:
// seconds since epoch plus a nanosecond remainder, rather than time.Time, so
// that serialization to the HTTP/gRPC payload round-trips exactly.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// Event is an immutable unit of telemetry. Once appended to the buffer it is
// never mutated; publishers and filters only ever read it.
type Event struct {
	ID                 []byte
	SourceKind         string
	Kind               Kind
	SourceAggregatorID string
	Timestamp          Timestamp
	Severity           Severity
	Message            []byte
}

// Batch is an ordered, contiguous slice of Events delivered to one consumer
// in a single WaitForBatch call. It is owned by exactly one publisher at a
// time and must not be retained past the publish attempt it was built for.
type Batch []Event

// TaskAttemptID identifies the task attempt a TaskMetadata record describes.
type TaskAttemptID string

// TaskMetadata is the latest-wins metadata record merged into the
// TaskMetadataBuffer at ingress and drained alongside the next control-plane
// publish.
type TaskMetadata struct {
	TaskAttemptID TaskAttemptID
	JobID         string
	Attributes    map[string]string
}
