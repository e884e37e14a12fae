package notify

// StepFailure is any error raised while running the step. Its message is the
// underlying error's text only; Step is kept for structured logs.
type StepFailure struct {
	Step string
	Err  error
}

func (e *StepFailure) Error() string { return e.Err.Error() }

func (e *StepFailure) Unwrap() error { return e.Err }
