// Package syncer reconciles an authoritative remote list against a local
// collection: rows whose key is still present remotely are updated (merged),
// new keys are inserted, and keys no longer present remotely are deleted.
package syncer

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// Syncer diffs remote values of type N against local rows of type L, matched
// by a shared key K. All callbacks run inside the transaction passed to Sync,
// so a crash or error mid-sync leaves the collection untouched.
type Syncer[L any, N any, K comparable] struct {
	// LocalKey extracts the reconciliation key from a local row. ok=false
	// rows are treated as unmatched and deleted when RemoveNotMatched.
	LocalKey func(L) (K, bool)
	// RemoteKey extracts the reconciliation key from a remote value. ok=false
	// values are skipped.
	RemoteKey func(N) (K, bool)
	// Map converts a remote value into a local row. current is the matched
	// existing row, or nil for a new insert; implementations must carry over
	// the local surrogate ID from current.
	Map func(remote N, current *L) L
	// Upsert persists a new or changed row.
	Upsert func(tx *bbolt.Tx, row *L) error
	// Delete removes a row no longer present remotely.
	Delete func(tx *bbolt.Tx, row L) error

	Logger logrus.FieldLogger
}

// Result reports what a Sync call changed.
type Result[L any] struct {
	Added   []L
	Updated []L
	Deleted []L
}

// Sync reconciles remote against current inside tx. When removeNotMatched is
// false, local rows without a remote counterpart are kept.
func (s *Syncer[L, N, K]) Sync(tx *bbolt.Tx, current []L, remote []N, removeNotMatched bool) (Result[L], error) {
	var result Result[L]

	pending := make(map[K]L, len(current))
	var unkeyed []L
	for _, row := range current {
		key, ok := s.LocalKey(row)
		if !ok {
			unkeyed = append(unkeyed, row)
			continue
		}
		pending[key] = row
	}

	var added []L
	for _, remoteValue := range remote {
		key, ok := s.RemoteKey(remoteValue)
		if !ok {
			continue
		}

		if existing, ok := pending[key]; ok {
			mapped := s.Map(remoteValue, &existing)
			if !reflect.DeepEqual(existing, mapped) {
				if err := s.Upsert(tx, &mapped); err != nil {
					return Result[L]{}, fmt.Errorf("failed to update row: %w", err)
				}
			}
			delete(pending, key)
			result.Updated = append(result.Updated, mapped)
		} else {
			added = append(added, s.Map(remoteValue, nil))
		}
	}

	if removeNotMatched {
		for _, row := range pending {
			if err := s.Delete(tx, row); err != nil {
				return Result[L]{}, fmt.Errorf("failed to delete row: %w", err)
			}
			result.Deleted = append(result.Deleted, row)
		}
		for _, row := range unkeyed {
			if err := s.Delete(tx, row); err != nil {
				return Result[L]{}, fmt.Errorf("failed to delete row: %w", err)
			}
			result.Deleted = append(result.Deleted, row)
		}
	}

	for i := range added {
		if err := s.Upsert(tx, &added[i]); err != nil {
			return Result[L]{}, fmt.Errorf("failed to insert row: %w", err)
		}
	}
	result.Added = added

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"added":   len(result.Added),
			"updated": len(result.Updated),
			"deleted": len(result.Deleted),
		}).Debug("Sync completed")
	}

	return result, nil
}
