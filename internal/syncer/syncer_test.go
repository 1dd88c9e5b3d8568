package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

type row struct {
	ID    uint64
	Key   int64
	Value string
}

type remote struct {
	Key   int64
	Value string
}

// mapStore collects upserts and deletes so a test can run Sync without a real
// transaction.
type mapStore struct {
	rows   map[uint64]row
	nextID uint64
}

func newMapStore(existing ...row) *mapStore {
	s := &mapStore{rows: make(map[uint64]row)}
	for _, r := range existing {
		s.rows[r.ID] = r
		if r.ID >= s.nextID {
			s.nextID = r.ID
		}
	}
	return s
}

func (s *mapStore) syncer() *Syncer[row, remote, int64] {
	return &Syncer[row, remote, int64]{
		LocalKey:  func(r row) (int64, bool) { return r.Key, r.Key != 0 },
		RemoteKey: func(r remote) (int64, bool) { return r.Key, r.Key != 0 },
		Map: func(r remote, current *row) row {
			mapped := row{Key: r.Key, Value: r.Value}
			if current != nil {
				mapped.ID = current.ID
			}
			return mapped
		},
		Upsert: func(tx *bbolt.Tx, r *row) error {
			if r.ID == 0 {
				s.nextID++
				r.ID = s.nextID
			}
			s.rows[r.ID] = *r
			return nil
		},
		Delete: func(tx *bbolt.Tx, r row) error {
			delete(s.rows, r.ID)
			return nil
		},
	}
}

func (s *mapStore) current() []row {
	out := make([]row, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	return out
}

func (s *mapStore) byKey(key int64) (row, bool) {
	for _, r := range s.rows {
		if r.Key == key {
			return r, true
		}
	}
	return row{}, false
}

func TestSyncReconcilesAddUpdateDelete(t *testing.T) {
	store := newMapStore(
		row{ID: 1, Key: 1, Value: "one"},
		row{ID: 2, Key: 2, Value: "two"},
		row{ID: 3, Key: 3, Value: "three"},
	)

	result, err := store.syncer().Sync(nil, store.current(), []remote{
		{Key: 2, Value: "two"},
		{Key: 3, Value: "three updated"},
		{Key: 4, Value: "four"},
	}, true)
	require.NoError(t, err)

	assert.Len(t, result.Added, 1)
	assert.Len(t, result.Updated, 2)
	assert.Len(t, result.Deleted, 1)
	assert.Len(t, store.rows, 3)

	_, ok := store.byKey(1)
	assert.False(t, ok, "key 1 should be deleted")

	updated, ok := store.byKey(3)
	require.True(t, ok)
	assert.Equal(t, "three updated", updated.Value)
	assert.EqualValues(t, 3, updated.ID, "surrogate ID must survive the update")

	added, ok := store.byKey(4)
	require.True(t, ok)
	assert.NotZero(t, added.ID)
}

func TestSyncKeepsUnmatchedRowsWhenNotRemoving(t *testing.T) {
	store := newMapStore(
		row{ID: 1, Key: 1, Value: "one"},
	)

	result, err := store.syncer().Sync(nil, store.current(), []remote{
		{Key: 2, Value: "two"},
	}, false)
	require.NoError(t, err)

	assert.Empty(t, result.Deleted)
	assert.Len(t, store.rows, 2)
	_, ok := store.byKey(1)
	assert.True(t, ok)
}

func TestSyncSkipsIdenticalRows(t *testing.T) {
	upserts := 0
	store := newMapStore(row{ID: 1, Key: 1, Value: "one"})
	s := store.syncer()
	inner := s.Upsert
	s.Upsert = func(tx *bbolt.Tx, r *row) error {
		upserts++
		return inner(tx, r)
	}

	_, err := s.Sync(nil, store.current(), []remote{{Key: 1, Value: "one"}}, true)
	require.NoError(t, err)
	assert.Zero(t, upserts, "unchanged row must not be rewritten")
}

func TestSyncDeletesUnkeyedLocalRows(t *testing.T) {
	store := newMapStore(
		row{ID: 1, Key: 0, Value: "orphan"},
		row{ID: 2, Key: 2, Value: "two"},
	)

	result, err := store.syncer().Sync(nil, store.current(), []remote{
		{Key: 2, Value: "two"},
	}, true)
	require.NoError(t, err)

	assert.Len(t, result.Deleted, 1)
	_, ok := store.rows[1]
	assert.False(t, ok)
}
