package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGigStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, GigStatusOpen.CanTransitionTo(GigStatusAssigned))
	assert.False(t, GigStatusAssigned.CanTransitionTo(GigStatusOpen))
	assert.False(t, GigStatusAssigned.CanTransitionTo(GigStatusAssigned))
	assert.False(t, GigStatusOpen.CanTransitionTo(GigStatusOpen))
}

func TestNewBidStatus(t *testing.T) {
	s, err := NewBidStatus("hired")
	assert.NoError(t, err)
	assert.True(t, s.IsFinal())

	_, err = NewBidStatus("accepted")
	assert.Error(t, err)

	assert.False(t, BidStatusPending.IsFinal())
}
