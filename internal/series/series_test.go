package series

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/chartkit/internal/event"
)

func TestSeries_DataEvents(t *testing.T) {
	bus := event.NewBus()
	s := New("temp", WithBus(bus), WithData([][]float64{{0, 1}}))

	changes := 0
	event.On(bus, DataChangedTopic(s), func(*Series) { changes++ })

	s.Append([]float64{1, 2}, []float64{2, 3})
	s.Append()
	s.SetData([][]float64{{5, 5}})

	assert.Equal(t, 2, changes, "empty append is silent")
	assert.Equal(t, [][]float64{{5, 5}}, s.Data())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "temp", s.Name())
	assert.NotEmpty(t, s.ID())
}

func TestSeries_Destroy(t *testing.T) {
	bus := event.NewBus()
	s := New("temp", WithBus(bus))

	destroyed := 0
	changes := 0
	event.On(bus, DestroyedTopic(s), func(*Series) { destroyed++ })
	event.On(bus, DataChangedTopic(s), func(*Series) { changes++ })

	s.Destroy()
	s.Destroy()
	s.SetData([][]float64{{1}})

	assert.Equal(t, 1, destroyed)
	assert.Zero(t, changes)
	assert.True(t, s.IsDestroyed())
	assert.Empty(t, s.Data())
}

func TestSeries_AppendDoesNotWriteIntoCallerRows(t *testing.T) {
	bus := event.NewBus()
	backing := make([][]float64, 1, 4)
	backing[0] = []float64{0, 1}
	spare := backing[:2]

	s := New("temp", WithBus(bus), WithData(backing))
	s.Append([]float64{9, 9})
	assert.Nil(t, spare[1], "spare capacity of the caller's slice is untouched")

	s.SetData(backing)
	s.Append([]float64{8, 8})
	assert.Nil(t, spare[1])

	out := s.Data()
	_ = append(out, []float64{7, 7})
	assert.Equal(t, [][]float64{{0, 1}, {8, 8}}, s.Data())
}
