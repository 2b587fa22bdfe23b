package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetDefaultBus() {
	defaultBus.mu.Lock()
	defaultBus.bus = nil
	defaultBus.provider = nil
	defaultBus.mu.Unlock()
}

func TestDefault_CreatedOnceFromProvider(t *testing.T) {
	resetDefaultBus()
	t.Cleanup(resetDefaultBus)

	calls := 0
	injected := NewBus(WithName("injected"))
	require.NoError(t, SetDefaultProvider(func() *Bus {
		calls++
		return injected
	}))

	assert.Same(t, injected, Default())
	assert.Same(t, injected, Default())
	assert.Equal(t, 1, calls)

	err := SetDefaultProvider(func() *Bus { return NewBus() })
	assert.ErrorIs(t, err, ErrDefaultBusFrozen)
	assert.Same(t, injected, Default())
}

func TestDefault_WithoutProvider(t *testing.T) {
	resetDefaultBus()
	t.Cleanup(resetDefaultBus)

	b := Default()
	require.NotNil(t, b)
	assert.Equal(t, "default", b.Name())
}
