package models

import "errors"

// Domain error taxonomy. Handlers and services match on these with errors.Is.
var (
	// ErrOracleUnavailable marks a transient generation failure (API error or
	// timeout). The oracle client absorbs these with its retry policy.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrSchemaViolation marks a structured response that does not satisfy the
	// expected schema. Never retried: a prompt/schema mismatch will not
	// self-correct.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrNotReady is returned when a caller requests the full result of an
	// assessment that has not reached a terminal completed state.
	ErrNotReady = errors.New("assessment not ready")

	// ErrNotFound is returned for unknown assessment ids.
	ErrNotFound = errors.New("assessment not found")

	// ErrInvalidQuestionnaire is returned synchronously at submission when the
	// questionnaire fails validation. No record is created in that case.
	ErrInvalidQuestionnaire = errors.New("invalid questionnaire")
)
