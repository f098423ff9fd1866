package domain

// Instance is one running invocation of the game process, uniquely tagged
// for the lifetime of that process.
type Instance struct {
	InstanceID       string
	ProfileName      string
	HasSignaledReady bool
	ExitCode         *int
}

type EventKind string

const (
	EventReady          EventKind = "ready"
	EventStdoutLine     EventKind = "stdout"
	EventStderrLine     EventKind = "stderr"
	EventExit           EventKind = "exit"
	EventTokenRefreshed EventKind = "token-refreshed"
)

// InstanceEvent is a lifecycle or output event tagged with the instance it
// belongs to. Consumers never infer identity from content.
type InstanceEvent struct {
	InstanceID string
	Kind       EventKind
	Line       string

	// Exit only.
	ExitCode        int
	Signal          string
	CrashReportPath string

	// Token refresh only.
	Identity *Identity
}

// ExitStatus is the terminal state reported by the process watcher.
type ExitStatus struct {
	Code            int
	Signal          string
	CrashReportPath string
}
