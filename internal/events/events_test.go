package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    int64
	Value string
}

func newRowStore() *Store[row] {
	return NewStore(func(r row) int64 { return r.ID })
}

func TestStoreInsertAppends(t *testing.T) {
	s := newRowStore()
	s.Apply(Insert, 1, row{1, "a"})
	s.Apply(Insert, 2, row{2, "b"})
	assert.Equal(t, []row{{1, "a"}, {2, "b"}}, s.Snapshot())
}

func TestStoreUpdateReplacesByID(t *testing.T) {
	s := newRowStore()
	s.Reset([]row{{1, "a"}, {2, "b"}})
	s.Apply(Update, 1, row{1, "a2"})
	assert.Equal(t, []row{{1, "a2"}, {2, "b"}}, s.Snapshot())
}

func TestStoreUpdateOfUnknownIDInserts(t *testing.T) {
	s := newRowStore()
	s.Apply(Update, 9, row{9, "late"})
	assert.Equal(t, []row{{9, "late"}}, s.Snapshot())
}

func TestStoreDeleteRemovesByID(t *testing.T) {
	s := newRowStore()
	s.Reset([]row{{1, "a"}, {2, "b"}, {3, "c"}})
	s.Apply(Delete, 2, row{})
	assert.Equal(t, []row{{1, "a"}, {3, "c"}}, s.Snapshot())

	// Deleting an absent row is a no-op.
	s.Apply(Delete, 42, row{})
	assert.Equal(t, []row{{1, "a"}, {3, "c"}}, s.Snapshot())
}

func TestStoreLastWriteWins(t *testing.T) {
	s := newRowStore()
	s.Reset([]row{{1, "fetched"}})
	s.Apply(Update, 1, row{1, "push-1"})
	s.Apply(Update, 1, row{1, "push-2"})
	require.Len(t, s.Snapshot(), 1)
	assert.Equal(t, "push-2", s.Snapshot()[0].Value)
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := newRowStore()
	s.Reset([]row{{1, "a"}})
	snap := s.Snapshot()
	snap[0].Value = "mutated"
	assert.Equal(t, "a", s.Snapshot()[0].Value)
}

func TestStoreSubscribe(t *testing.T) {
	s := newRowStore()
	var calls int
	s.Subscribe(func() { calls++ })
	s.Reset([]row{{1, "a"}})
	s.Apply(Insert, 2, row{2, "b"})
	s.Apply(Delete, 1, row{})
	assert.Equal(t, 3, calls)
}
