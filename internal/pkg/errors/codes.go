package errors

import "net/http"

var (
	ErrNotFound = New(
		"NOT_FOUND",
		"Entity not found",
		http.StatusNotFound,
	)

	ErrConflict = New(
		"CONFLICT",
		"Entity conflicts with an existing record",
		http.StatusConflict,
	)

	ErrAccessDenied = New(
		"ACCESS_DENIED",
		"Operation rejected by the access policy",
		http.StatusForbidden,
	)

	ErrUnresolvedReference = New(
		"UNRESOLVED_REFERENCE",
		"Reference could not be resolved to a stored entity",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidTransition = New(
		"INVALID_TRANSITION",
		"Workflow transition not permitted",
		http.StatusConflict,
	)

	ErrValidationFailed = New(
		"VALIDATION_FAILED",
		"Validation failed",
		http.StatusBadRequest,
	)

	ErrUnauthorized = New(
		"UNAUTHORIZED",
		"Authentication required",
		http.StatusUnauthorized,
	)

	ErrTooManyRequests = New(
		"TOO_MANY_REQUESTS",
		"Too many requests",
		http.StatusTooManyRequests,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)

// NotFound builds a NotFound error naming the entity and the lookup key.
func NotFound(entity, key string) *AppError {
	return ErrNotFound.
		WithMessage("%s %q not found", entity, key).
		WithDetails(map[string]interface{}{"entity": entity, "key": key})
}

// InvalidTransition names the rejected workflow edge.
func InvalidTransition(from, to string) *AppError {
	return ErrInvalidTransition.
		WithMessage("transition %s -> %s is not permitted", from, to).
		WithDetails(map[string]interface{}{"from": from, "to": to})
}

// UnresolvedReference names the reference that could not be mapped.
func UnresolvedReference(kind, ref string) *AppError {
	return ErrUnresolvedReference.
		WithMessage("%s reference %q could not be resolved", kind, ref).
		WithDetails(map[string]interface{}{"kind": kind, "ref": ref})
}

// Violation is one field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validation builds a ValidationFailed error listing every violation.
func Validation(violations ...Violation) *AppError {
	msg := "Validation failed"
	if len(violations) == 1 {
		msg = violations[0].Field + ": " + violations[0].Message
	}
	return ErrValidationFailed.
		WithMessage("%s", msg).
		WithDetails(map[string]interface{}{"violations": violations})
}
