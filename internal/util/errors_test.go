package util

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aryankumar/esadmin/internal/es"
)

func TestClusterError(t *testing.T) {
	baseErr := errors.New("connection failed")
	clusterErr := WrapClusterError("test-cluster", baseErr)

	if clusterErr == nil {
		t.Fatal("expected error, got nil")
	}

	expectedMsg := `cluster "test-cluster": connection failed`
	if clusterErr.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, clusterErr.Error())
	}

	// Test unwrapping
	if !errors.Is(clusterErr, baseErr) {
		t.Error("expected cluster error to wrap base error")
	}

	// Test nil wrapping
	nilErr := WrapClusterError("test", nil)
	if nilErr != nil {
		t.Errorf("expected nil, got %v", nilErr)
	}
}

func TestMultiError(t *testing.T) {
	t.Run("empty multi-error", func(t *testing.T) {
		m := &MultiError{}
		if m.ErrorOrNil() != nil {
			t.Error("expected nil for empty multi-error")
		}
	})

	t.Run("single error", func(t *testing.T) {
		err := errors.New("test error")
		m := NewMultiError([]error{err})

		if m.Error() != "test error" {
			t.Errorf("expected %q, got %q", "test error", m.Error())
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errors := []error{
			errors.New("error 1"),
			errors.New("error 2"),
			errors.New("error 3"),
		}
		m := NewMultiError(errors)

		msg := m.Error()
		if !strings.Contains(msg, "3 errors occurred") {
			t.Errorf("expected message to contain '3 errors occurred', got %q", msg)
		}
		if !strings.Contains(msg, "error 1") {
			t.Errorf("expected message to contain 'error 1', got %q", msg)
		}
	})

	t.Run("filtering nil errors", func(t *testing.T) {
		errors := []error{
			errors.New("error 1"),
			nil,
			errors.New("error 2"),
			nil,
		}
		m := NewMultiError(errors)

		if len(m.Errors) != 2 {
			t.Errorf("expected 2 errors, got %d", len(m.Errors))
		}
	})

	t.Run("add errors", func(t *testing.T) {
		m := &MultiError{}
		m.Add(errors.New("error 1"))
		m.Add(nil) // Should not be added
		m.Add(errors.New("error 2"))

		if len(m.Errors) != 2 {
			t.Errorf("expected 2 errors, got %d", len(m.Errors))
		}
	})

	t.Run("many errors truncation", func(t *testing.T) {
		m := &MultiError{}
		for i := 0; i < 20; i++ {
			m.Add(fmt.Errorf("error %d", i+1))
		}

		msg := m.Error()
		if !strings.Contains(msg, "and 10 more errors") {
			t.Errorf("expected truncation message, got %q", msg)
		}
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with value", func(t *testing.T) {
		err := NewValidationError("max-retries", -3, "must not be negative")
		expectedMsg := `validation failed for field "max-retries" (value: -3): must not be negative`
		if err.Error() != expectedMsg {
			t.Errorf("expected %q, got %q", expectedMsg, err.Error())
		}
	})

	t.Run("without value", func(t *testing.T) {
		err := NewValidationError("name", nil, "name is required")
		expectedMsg := `validation failed for field "name": name is required`
		if err.Error() != expectedMsg {
			t.Errorf("expected %q, got %q", expectedMsg, err.Error())
		}
	})

	t.Run("matches invalid input", func(t *testing.T) {
		err := fmt.Errorf("wait-task: %w", NewValidationError("task", "n1", "missing task number"))
		if !errors.Is(err, ErrInvalidInput) {
			t.Error("expected validation error to match ErrInvalidInput")
		}
	})
}

func TestErrorCheckers(t *testing.T) {
	notFound := &es.ResponseError{Op: "get document", StatusCode: 404, Type: "index_not_found_exception", Reason: "no such index [a]"}
	unauthorized := &es.ResponseError{Op: "cluster health", StatusCode: 401, Type: "security_exception", Reason: "missing authentication credentials"}
	transport := &es.TransportError{Op: "info", Err: errors.New("dial tcp 127.0.0.1:9200: connect: connection refused")}

	tests := []struct {
		name     string
		err      error
		checker  func(error) bool
		expected bool
	}{
		{
			name:     "timeout error",
			err:      ErrTimeout,
			checker:  IsTimeout,
			expected: true,
		},
		{
			name:     "wrapped timeout error",
			err:      fmt.Errorf("operation failed: %w", ErrTimeout),
			checker:  IsTimeout,
			expected: true,
		},
		{
			name:     "cancelled error",
			err:      fmt.Errorf("%w: %w", ErrCancelled, context.Canceled),
			checker:  IsCancelled,
			expected: true,
		},
		{
			name:     "server not found",
			err:      WrapClusterError("local", notFound),
			checker:  IsNotFound,
			expected: true,
		},
		{
			name:     "cluster not found",
			err:      ErrClusterNotFound,
			checker:  IsNotFound,
			expected: true,
		},
		{
			name:     "connection error",
			err:      ErrConnectionFailed,
			checker:  IsConnectionError,
			expected: true,
		},
		{
			name:     "transport error",
			err:      transport,
			checker:  IsConnectionError,
			expected: true,
		},
		{
			name:     "permission error",
			err:      unauthorized,
			checker:  IsPermissionError,
			expected: true,
		},
		{
			name:     "not found is not a permission error",
			err:      notFound,
			checker:  IsPermissionError,
			expected: false,
		},
		{
			name:     "unrelated error",
			err:      errors.New("something else"),
			checker:  IsTimeout,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.checker(tt.err)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "nil error",
			err:      nil,
			contains: "",
		},
		{
			name:     "timeout error",
			err:      ErrTimeout,
			contains: "timed out",
		},
		{
			name:     "cancelled error",
			err:      ErrCancelled,
			contains: "cancelled",
		},
		{
			name:     "cluster unavailable",
			err:      fmt.Errorf("after 7 attempts: %w", ErrClusterUnavailable),
			contains: "--health-retries",
		},
		{
			name:     "not found error",
			err:      &es.ResponseError{Op: "get templates", StatusCode: 404, Reason: "missing"},
			contains: "not found",
		},
		{
			name:     "cluster not found",
			err:      ErrClusterNotFound,
			contains: "esadmin cluster list",
		},
		{
			name:     "connection error",
			err:      &es.TransportError{Op: "info", Err: errors.New("EOF")},
			contains: "connect to cluster",
		},
		{
			name:     "permission error",
			err:      &es.ResponseError{Op: "delete index", StatusCode: 403, Type: "security_exception"},
			contains: "Permission denied",
		},
		{
			name:     "invalid config",
			err:      ErrInvalidConfig,
			contains: "Invalid configuration",
		},
		{
			name:     "invalid input",
			err:      NewValidationError("task", "abc", "expected node:number"),
			contains: "Invalid input",
		},
		{
			name:     "already exists",
			err:      ErrAlreadyExists,
			contains: "already exists",
		},
		{
			name:     "unknown error",
			err:      errors.New("custom error message"),
			contains: "custom error message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FriendlyError(tt.err)
			if tt.contains == "" {
				if msg != "" {
					t.Errorf("expected empty string, got %q", msg)
				}
				return
			}

			if !strings.Contains(msg, tt.contains) {
				t.Errorf("expected message to contain %q, got %q", tt.contains, msg)
			}
		})
	}
}

func TestCombineErrors(t *testing.T) {
	t.Run("all nil errors", func(t *testing.T) {
		err := CombineErrors(nil, nil, nil)
		if err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("mixed nil and non-nil errors", func(t *testing.T) {
		err := CombineErrors(
			errors.New("error 1"),
			nil,
			errors.New("error 2"),
		)
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		msg := err.Error()
		if !strings.Contains(msg, "error 1") || !strings.Contains(msg, "error 2") {
			t.Errorf("expected combined error message, got %q", msg)
		}
	})
}

func TestWrapErrorf(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("wrap error", func(t *testing.T) {
		wrapped := WrapErrorf(baseErr, "failed to process file %q", "test.txt")
		expectedMsg := `failed to process file "test.txt": base error`
		if wrapped.Error() != expectedMsg {
			t.Errorf("expected %q, got %q", expectedMsg, wrapped.Error())
		}

		if !errors.Is(wrapped, baseErr) {
			t.Error("expected wrapped error to contain base error")
		}
	})

	t.Run("wrap nil error", func(t *testing.T) {
		wrapped := WrapErrorf(nil, "this should be nil")
		if wrapped != nil {
			t.Errorf("expected nil, got %v", wrapped)
		}
	})
}

func TestClusterErrorUnwrap(t *testing.T) {
	baseErr := errors.New("cluster health: [503] master_not_discovered_exception")
	clusterErr := &ClusterError{
		ClusterName: "logs-prod",
		Err:         baseErr,
	}

	// Test errors.Is
	if !errors.Is(clusterErr, baseErr) {
		t.Error("errors.Is should find wrapped error")
	}

	// Test errors.As
	var ce *ClusterError
	if !errors.As(clusterErr, &ce) {
		t.Error("errors.As should find ClusterError")
	}
	if ce.ClusterName != "logs-prod" {
		t.Errorf("expected cluster name %q, got %q", "logs-prod", ce.ClusterName)
	}
}

func TestMultiErrorUnwrap(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")
	err3 := errors.New("error 3")

	m := NewMultiError([]error{err1, err2, err3})

	// Check if MultiError implements Unwrap() []error
	unwrapped := m.Unwrap()
	if len(unwrapped) != 3 {
		t.Errorf("expected 3 unwrapped errors, got %d", len(unwrapped))
	}

	// Verify errors.Is works with MultiError
	if !errors.Is(m, err1) {
		t.Error("errors.Is should find err1 in MultiError")
	}
	if !errors.Is(m, err2) {
		t.Error("errors.Is should find err2 in MultiError")
	}
	if !errors.Is(m, err3) {
		t.Error("errors.Is should find err3 in MultiError")
	}
}
