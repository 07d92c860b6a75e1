package analyzer

import "fmt"

// analysisFailedMessage is the localized user-facing failure message.
const analysisFailedMessage = "Analyse fehlgeschlagen"

// JSONParseError means the model's output was not valid JSON. The raw
// text is kept for diagnostics; the query fails without retry.
type JSONParseError struct {
	Raw string
	Err error
}

func (e *JSONParseError) Error() string {
	return fmt.Sprintf("model response is not valid JSON: %v", e.Err)
}

func (e *JSONParseError) Unwrap() error { return e.Err }

// CoercionError means a model-supplied field value could not be coerced
// to its expected type. Fails the whole query.
type CoercionError struct {
	Party string
	Field string
	Value any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %s.%s value %v", e.Party, e.Field, e.Value)
}

// AnalysisError is the only error type that crosses the analyzer boundary.
// It carries a localized message for callers and wraps the underlying
// cause for logs.
type AnalysisError struct {
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

func wrapAnalysisError(err error) *AnalysisError {
	return &AnalysisError{Message: analysisFailedMessage, Err: err}
}
