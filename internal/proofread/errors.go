package proofread

import "errors"

var (
	// ErrConfigurationMissing means no analysis credential is configured.
	ErrConfigurationMissing = errors.New("analysis credential is not configured")
	// ErrEmptyScope means neither the selection nor the body had text to check.
	ErrEmptyScope = errors.New("nothing to analyze")
	// ErrAnalysisUnavailable means the mandatory correctness pass failed.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	// ErrMutationNotFound means an accepted suggestion matched no whole word in the document.
	ErrMutationNotFound = errors.New("text not found in document")
	ErrRunInProgress    = errors.New("a check is already running")
	ErrInvalidTask      = errors.New("invalid task configuration")
	ErrUnknownCategory  = errors.New("unknown suggestion category")
	// ErrDecode means a response carried no parseable structured payload.
	ErrDecode = errors.New("structured payload missing or malformed")
)

// UserVisible reports whether err should be shown to the user as a notice.
// Everything else is absorbed and only logged.
func UserVisible(err error) bool {
	return errors.Is(err, ErrConfigurationMissing) ||
		errors.Is(err, ErrEmptyScope) ||
		errors.Is(err, ErrAnalysisUnavailable) ||
		errors.Is(err, ErrMutationNotFound) ||
		errors.Is(err, ErrRunInProgress) ||
		errors.Is(err, ErrInvalidTask)
}

// Notice is the short, transient message a panel shows for a user-visible error.
func Notice(err error) string {
	switch {
	case errors.Is(err, ErrConfigurationMissing):
		return "Add an API key in settings first."
	case errors.Is(err, ErrEmptyScope):
		return "Select some text or place the cursor in a document with text."
	case errors.Is(err, ErrAnalysisUnavailable):
		return "The check failed. Verify your API key and try again."
	case errors.Is(err, ErrMutationNotFound):
		return "The text was not found; it may have changed elsewhere."
	case errors.Is(err, ErrRunInProgress):
		return "A check is already running."
	case errors.Is(err, ErrInvalidTask):
		return "Unknown tone or register selection."
	default:
		return ""
	}
}
