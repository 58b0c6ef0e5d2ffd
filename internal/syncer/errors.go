package syncer

import "fmt"

// InvocationError reports an external tool invocation that could not be
// launched or exited nonzero. It is never retried.
type InvocationError struct {
	Field string
	Err   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("sync invocation failed for field %q: %v", e.Field, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// AuditTrailError reports an audit log that was missing, empty when
// results were expected, or not readable as tabular data. After a
// reported-successful invocation this is a contract violation between the
// orchestrator and the tool.
type AuditTrailError struct {
	Path   string
	Reason string
	Err    error
}

func (e *AuditTrailError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("audit trail %s unreadable: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("audit trail %s unreadable: %s", e.Path, e.Reason)
}

func (e *AuditTrailError) Unwrap() error { return e.Err }

// InjectionError reports a constructed tool argument that contained shell
// control characters and was refused before execution.
type InjectionError struct {
	Arg string
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("refusing argument with shell control characters: %q", e.Arg)
}

// EmptyAfterFilterError reports a field whose synced paths were all
// removed by the output suffix filter.
type EmptyAfterFilterError struct {
	Field  string
	Suffix string
}

func (e *EmptyAfterFilterError) Error() string {
	return fmt.Sprintf("field %q: no synced file matches suffix %q", e.Field, e.Suffix)
}
