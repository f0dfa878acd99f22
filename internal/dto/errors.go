package dto

// BaseError is the single error body returned by the API.
// Code is machine-oriented (snake_case), Message is short and human-readable,
// Details carries extra context, Fields lists per-field validation problems.
type BaseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

func NewValidationError(msg string, fields []FieldError) BaseError {
	return BaseError{Code: "validation_error", Message: msg, Fields: fields}
}

func NewUnauthorizedError(msg string) BaseError {
	return BaseError{Code: "unauthorized", Message: msg}
}

func NewNotFoundError(msg string) BaseError {
	return BaseError{Code: "not_found", Message: msg}
}

func NewConflictError(msg string) BaseError {
	return BaseError{Code: "conflict", Message: msg}
}

func NewInsufficientStockError(details string) BaseError {
	return BaseError{Code: "insufficient_stock", Message: "not enough stock", Details: details}
}

func NewIllegalTransitionError(details string) BaseError {
	return BaseError{Code: "illegal_transition", Message: "status change not allowed", Details: details}
}

func NewDuplicateRequestError(details string) BaseError {
	return BaseError{Code: "duplicate_request", Message: "request already processed", Details: details}
}

func NewUnavailableError(details string) BaseError {
	return BaseError{Code: "storage_unavailable", Message: "storage temporarily unavailable", Details: details}
}

func NewInternalError(details string) BaseError {
	return BaseError{Code: "internal_error", Message: "internal server error", Details: details}
}
