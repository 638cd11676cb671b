package nntp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroupResponse_Valid(t *testing.T) {
	info, err := parseGroupResponse("5000 100 5099 alt.test")
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), info.EstimatedCount)
	assert.Equal(t, uint64(100), info.Low)
	assert.Equal(t, uint64(5099), info.High)
}

func TestParseGroupResponse_TooFewFields(t *testing.T) {
	_, err := parseGroupResponse("5000 100")
	assert.Error(t, err)
}

func TestParseGroupResponse_NonNumeric(t *testing.T) {
	_, err := parseGroupResponse("five hundred low alt.test")
	assert.Error(t, err)
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, isAuthFailure(481))
	assert.True(t, isAuthFailure(482))
	assert.True(t, isAuthFailure(502))
	assert.False(t, isAuthFailure(281))
	assert.False(t, isAuthFailure(200))
}
