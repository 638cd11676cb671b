package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrConfig", ErrConfig},
		{"ErrAuth", ErrAuth},
		{"ErrTransport", ErrTransport},
		{"ErrProtocol", ErrProtocol},
		{"ErrNoSuchRange", ErrNoSuchRange},
		{"ErrParse", ErrParse},
		{"ErrStore", ErrStore},
		{"ErrCancelled", ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Uniqueness(t *testing.T) {
	allErrors := []error{
		ErrNotFound, ErrInvalidInput, ErrConfig, ErrAuth, ErrTransport,
		ErrProtocol, ErrNoSuchRange, ErrParse, ErrStore, ErrCancelled,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

func TestErrors_WithWrapping(t *testing.T) {
	wrapped := fmtErrorf(ErrTransport)
	assert.True(t, errors.Is(wrapped, ErrTransport))
	assert.Contains(t, wrapped.Error(), "nntp transport error")
}

func fmtErrorf(err error) error {
	return errors.Join(errors.New("dial tcp: i/o timeout"), err)
}

func TestErrors_InSwitchStatement(t *testing.T) {
	testErr := ErrNoSuchRange

	var result string
	switch {
	case errors.Is(testErr, ErrNoSuchRange):
		result = "no such range"
	case errors.Is(testErr, ErrTransport):
		result = "transport"
	default:
		result = "unknown"
	}

	assert.Equal(t, "no such range", result)
}

func TestErrors_ComparingWithIs(t *testing.T) {
	assert.True(t, errors.Is(ErrStore, ErrStore))

	wrapped := errors.Join(errors.New("context"), ErrStore)
	assert.True(t, errors.Is(wrapped, ErrStore))

	assert.False(t, errors.Is(ErrStore, ErrParse))
}

func TestErrors_DirectComparison(t *testing.T) {
	assert.Equal(t, ErrNotFound, ErrNotFound)
	assert.NotEqual(t, ErrNotFound, ErrStore)
}

func TestErrors_RetryableKinds(t *testing.T) {
	retryable := []error{ErrTransport, ErrProtocol}
	nonRetryable := []error{ErrNoSuchRange, ErrAuth, ErrConfig, ErrStore}

	for _, err := range retryable {
		assert.NotErrorIs(t, err, ErrNoSuchRange)
	}
	for _, err := range nonRetryable {
		assert.NotErrorIs(t, err, ErrTransport)
	}
}
