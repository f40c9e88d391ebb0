package model

// AnalysisResult is the uniform outcome returned to every caller. Exactly one
// branch is valid: use Success or Failure to build one.
type AnalysisResult struct {
	ok      bool
	text    string
	message string
}

// Success wraps the analysis text produced by a provider.
func Success(text string) AnalysisResult {
	return AnalysisResult{ok: true, text: text}
}

// Failure wraps a user-facing error message.
func Failure(message string) AnalysisResult {
	return AnalysisResult{message: message}
}

// FailureFromError converts err into a Failure using its message.
func FailureFromError(err error) AnalysisResult {
	if err == nil {
		return Failure("unknown error")
	}
	return Failure(err.Error())
}

func (r AnalysisResult) IsSuccess() bool {
	return r.ok
}

// Text returns the analysis text; empty for failures.
func (r AnalysisResult) Text() string {
	return r.text
}

// Message returns the failure message; empty for successes.
func (r AnalysisResult) Message() string {
	return r.message
}

// Map transforms the text of a success and leaves failures untouched.
func (r AnalysisResult) Map(fn func(string) string) AnalysisResult {
	if !r.ok {
		return r
	}
	return Success(fn(r.text))
}
