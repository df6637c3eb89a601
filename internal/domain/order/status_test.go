package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{
		StatusCreated, StatusPublished, StatusAssigned,
		StatusInDelivery, StatusDelivered, StatusCancelled,
	} {
		assert.True(t, s.Valid(), "status %s", s)
	}

	assert.False(t, StatusNone.Valid())
	assert.False(t, Status("created").Valid(), "literals are case sensitive")
	assert.False(t, Status("UNKNOWN").Valid())
}

func TestStatus_CanMoveTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusCreated:    {StatusPublished, StatusCancelled},
		StatusPublished:  {StatusAssigned, StatusCancelled},
		StatusAssigned:   {StatusInDelivery, StatusCancelled},
		StatusInDelivery: {StatusDelivered},
		StatusDelivered:  {},
		StatusCancelled:  {},
	}

	all := []Status{
		StatusCreated, StatusPublished, StatusAssigned,
		StatusInDelivery, StatusDelivered, StatusCancelled,
	}
	for from, targets := range allowed {
		ok := make(map[Status]bool, len(targets))
		for _, to := range targets {
			ok[to] = true
		}
		for _, to := range all {
			assert.Equal(t, ok[to], from.CanMoveTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())

	for _, s := range []Status{StatusCreated, StatusPublished, StatusAssigned, StatusInDelivery} {
		assert.False(t, s.Terminal(), "status %s", s)
	}
}

func TestStatus_InterestsMutable(t *testing.T) {
	assert.True(t, StatusPublished.InterestsMutable())

	for _, s := range []Status{
		StatusCreated, StatusAssigned, StatusInDelivery,
		StatusDelivered, StatusCancelled,
	} {
		assert.False(t, s.InterestsMutable(), "status %s", s)
	}
}
