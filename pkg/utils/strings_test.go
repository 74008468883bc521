package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadding(t *testing.T) {
	t.Run("Should pad on the left to the target length", func(t *testing.T) {
		assert.Equal(t, "000123", PadLeft("123", 6, '0'))
		assert.Equal(t, "1234567", PadLeft("1234567", 6, '0'))
	})

	t.Run("Should pad on the right counting characters", func(t *testing.T) {
		assert.Equal(t, "CAFé  ", PadRight("CAFé", 6, ' '))
	})

	t.Run("Should truncate by characters", func(t *testing.T) {
		assert.Equal(t, "CAFé", Truncate("CAFé SHIPPING", 4))
		assert.Equal(t, "ACME", Truncate("ACME", 10))
		assert.Equal(t, "ACME", Truncate("ACME", -1))
	})
}
