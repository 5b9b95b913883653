package model

// Command is the requested analysis operation.
type Command string

const (
	CommandAnalyze   Command = "analyze"
	CommandReAnalyze Command = "re-analyze"
)

// EventKind represents how a run was triggered.
type EventKind string

const (
	EventComment  EventKind = "comment"
	EventSchedule EventKind = "schedule"
	EventDispatch EventKind = "dispatch"
)

// Intent is the parsed, structured representation of a triggering request.
// It is derived once per trigger and never persisted.
type Intent struct {
	Command           Command
	PackageFilter     string // exact package name, empty means all packages
	AdditionalComment string // reviewer-provided context, passed to the model verbatim
	IncludePrevious   bool
	Silent            bool // no comment writes at all
	PostComment       bool
}
