package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsValidAndOrdered(t *testing.T) {
	t.Parallel()

	first := New()
	second := New()

	require.NoError(t, Validate(first))
	require.NoError(t, Validate(second))
	assert.NotEqual(t, first, second)
	assert.LessOrEqual(t, first[:13], second[:13])
}

func TestValidate_RejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "run-1", "not-a-uuid-at-all-000000000000000000"} {
		assert.Error(t, Validate(raw), raw)
	}
}
