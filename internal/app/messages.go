package app

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}

// ClearStatusMsg resets the status line after a save notice.
type ClearStatusMsg struct{}
