package es

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TransportError means the server could not be reached or its answer could not be read
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseError is an error status returned by the server
type ResponseError struct {
	Op         string
	StatusCode int
	Type       string
	Reason     string
}

// Error implements the error interface
func (e *ResponseError) Error() string {
	if e.Type == "" && e.Reason == "" {
		return fmt.Sprintf("%s: [%d %s]", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: [%d] %s: %s", e.Op, e.StatusCode, e.Type, e.Reason)
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}

// IsTransport reports whether err is a communication failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// errorBody is the error envelope. "error" is an object on modern servers and a string on old ones.
type errorBody struct {
	Status int         `json:"status"`
	Error  errorDetail `json:"error"`
}

type errorDetail struct {
	Type      string       `json:"type"`
	Reason    string       `json:"reason"`
	RootCause []ErrorCause `json:"root_cause"`
	plain     string
}

func (b *errorDetail) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return codec.Unmarshal(data, &b.plain)
	}
	type alias errorDetail
	var a alias
	if err := codec.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = errorDetail(a)
	return nil
}

// parseError builds a ResponseError from an error response, tolerating bodies that are not JSON
func parseError(op string, res *response) error {
	re := &ResponseError{Op: op, StatusCode: res.StatusCode}
	if res.Body == nil {
		return re
	}
	data, err := io.ReadAll(res.Body)
	if err != nil || len(data) == 0 {
		return re
	}

	var body errorBody
	if err := codec.Unmarshal(data, &body); err != nil {
		re.Reason = strings.TrimSpace(string(data))
		return re
	}

	switch {
	case body.Error.plain != "":
		re.Reason = body.Error.plain
	case body.Error.Type != "":
		re.Type = body.Error.Type
		re.Reason = body.Error.Reason
	case len(body.Error.RootCause) > 0:
		re.Type = body.Error.RootCause[0].Type
		re.Reason = body.Error.RootCause[0].Reason
	}
	return re
}
