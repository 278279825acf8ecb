package circulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeFine(t *testing.T) {
	due := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("on time", func(t *testing.T) {
		assert.Equal(t, 0.0, ComputeFine(due, due, 5))
	})

	t.Run("three days late at rate 5", func(t *testing.T) {
		assert.Equal(t, 15.0, ComputeFine(due, due.AddDate(0, 0, 3), 5))
	})

	t.Run("returned early", func(t *testing.T) {
		assert.Equal(t, 0.0, ComputeFine(due, due.AddDate(0, 0, -1), 5))
	})

	t.Run("partial day not charged", func(t *testing.T) {
		assert.Equal(t, 0.0, ComputeFine(due, due.Add(23*time.Hour), 5))
		assert.Equal(t, 5.0, ComputeFine(due, due.Add(25*time.Hour), 5))
	})

	t.Run("different rate", func(t *testing.T) {
		assert.Equal(t, 25.0, ComputeFine(due, due.AddDate(0, 0, 10), 2.5))
	})
}

func TestIsDamaged(t *testing.T) {
	assert.True(t, IsDamaged("Damaged"))
	assert.True(t, IsDamaged("damaged"))
	assert.False(t, IsDamaged("Good"))
	assert.False(t, IsDamaged(""))
}
