package trips

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func errTripNotFound() *Error {
	return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
}

func errValidation(field, detail string) *Error {
	return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid " + field, Details: map[string]any{field: detail}}
}
