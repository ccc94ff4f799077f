package errors

// EngineError covers the façade-level failure modes from spec.md §7 that
// are not specific to one shard file: ALREADY_EXISTS, NOT_FOUND, and
// INVALID_CONFIG.
type EngineError struct {
	*baseError
	resource string // "database", "index:<name>", or the rejected config field.
}

// NewEngineError creates a new façade-level error.
func NewEngineError(code ErrorCode, msg string) *EngineError {
	return &EngineError{baseError: NewBaseError(nil, code, msg)}
}

// WithMessage updates the error message while maintaining the EngineError type.
func (ee *EngineError) WithMessage(msg string) *EngineError {
	ee.baseError.WithMessage(msg)
	return ee
}

// WithCode sets the error code while preserving the EngineError type.
func (ee *EngineError) WithCode(code ErrorCode) *EngineError {
	ee.baseError.WithCode(code)
	return ee
}

// WithResource records which database or index the error concerns.
func (ee *EngineError) WithResource(resource string) *EngineError {
	ee.resource = resource
	return ee
}

// WithDetail adds contextual information while maintaining the EngineError type.
func (ee *EngineError) WithDetail(key string, value any) *EngineError {
	ee.baseError.WithDetail(key, value)
	return ee
}

// Resource returns the database or index name the error concerns.
func (ee *EngineError) Resource() string {
	return ee.resource
}

// NewAlreadyExistsError builds the ALREADY_EXISTS error for create-over-
// existing-meta and duplicate add_index calls.
func NewAlreadyExistsError(resource string) *EngineError {
	return NewEngineError(ErrorCodeAlreadyExists, "resource already exists").
		WithResource(resource)
}

// NewNotFoundError builds the NOT_FOUND error for open-of-absent-database
// and lookups of unregistered indexes.
func NewNotFoundError(resource string) *EngineError {
	return NewEngineError(ErrorCodeNotFound, "resource not found").
		WithResource(resource)
}

// NewInvalidConfigError builds the INVALID_CONFIG error raised at create
// time: a malformed hash_limit, an unknown hash name, or an empty entry_map.
func NewInvalidConfigError(field, reason string) *EngineError {
	return NewEngineError(ErrorCodeInvalidConfig, "invalid database configuration").
		WithResource(field).
		WithDetail("reason", reason)
}
