package model

// Status reports what a core operation did to its target.
// Operations that cannot resolve a target are not errors; they
// report StatusSkippedNoTarget and leave state untouched.
type Status string

const (
	// StatusApplied means the target was found and updated.
	StatusApplied Status = "applied"
	// StatusSkippedNoTarget means no target matched and nothing changed.
	StatusSkippedNoTarget Status = "skipped_no_target"
)

// Applied reports whether the status is StatusApplied.
func (s Status) Applied() bool {
	return s == StatusApplied
}
