package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunErrorUnwrapsToRunFailed(t *testing.T) {
	err := fmt.Errorf("discover: %w", &RunError{RunID: "r1", Message: "boom"})

	assert.True(t, Is(err, ErrRunFailed))
	assert.False(t, IsClientFault(err))

	var runErr *RunError
	if assert.True(t, As(err, &runErr)) {
		assert.Equal(t, "boom", runErr.Message)
	}
}

func TestIsClientFault(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "invalid input", err: fmt.Errorf("claim c1: %w", ErrInvalidInput), want: true},
		{name: "dependency unavailable", err: fmt.Errorf("clustering: %w", ErrDependencyUnavailable), want: true},
		{name: "not found", err: ErrNotFound, want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClientFault(tt.err))
		})
	}
}
