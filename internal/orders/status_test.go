package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPlaced, StatusProcessing, true},
		{StatusPlaced, StatusCancelled, true},
		{StatusPlaced, StatusShipped, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusPlaced, false},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusProcessing, false},
		{StatusCancelled, StatusPlaced, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatusPlaced))
	assert.False(t, IsTerminal(StatusProcessing))
	assert.True(t, IsTerminal(StatusShipped))
	assert.True(t, IsTerminal(StatusCancelled))
}
