package statemachine

import (
	"testing"

	"restaurant-api/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		ok       bool
	}{
		{models.StatusPending, models.StatusPreparing, true},
		{models.StatusPreparing, models.StatusDelivering, true},
		{models.StatusDelivering, models.StatusDelivered, true},
		{models.StatusPending, models.StatusCanceled, true},
		{models.StatusPreparing, models.StatusCanceled, true},
		{models.StatusDelivering, models.StatusCanceled, true},
		{models.StatusPending, models.StatusPending, true},

		{models.StatusPending, models.StatusDelivered, false},
		{models.StatusPreparing, models.StatusPending, false},
		{models.StatusDelivered, models.StatusCanceled, false},
		{models.StatusDelivered, models.StatusPending, false},
		{models.StatusCanceled, models.StatusPreparing, false},
		{models.StatusPending, models.OrderStatus("cooking"), false},
	}

	for _, testCase := range tests {
		t.Run(string(testCase.from)+"->"+string(testCase.to), func(t *testing.T) {
			err := CanTransition(testCase.from, testCase.to)
			if testCase.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusDelivered))
	assert.True(t, IsTerminal(models.StatusCanceled))
	assert.False(t, IsTerminal(models.StatusPending))

	err := CanTransition(models.StatusCanceled, models.StatusDelivered)
	assert.ErrorContains(t, err, "none (terminal state)")
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.ElementsMatch(t,
		[]models.OrderStatus{models.StatusDelivering, models.StatusCanceled},
		ValidTransitionsFrom(models.StatusPreparing))
}
