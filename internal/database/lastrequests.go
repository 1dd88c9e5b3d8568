package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// The last-request ledger records, per (request kind, entity ID) pair, when
// the matching remote resource was last fetched successfully. Collection
// writers record success inside the same transaction that persists the
// fetched data, so a rolled-back write never marks the collection fresh.

// TxRecordRequestSuccess upserts the ledger row for (kind, entityID) with the
// current time. Writes are last-write-wins.
func (db *Database) TxRecordRequestSuccess(tx *bbolt.Tx, kind models.RequestKind, entityID uint64) error {
	return db.txRecordRequestAt(tx, kind, entityID, time.Now())
}

func (db *Database) txRecordRequestAt(tx *bbolt.Tx, kind models.RequestKind, entityID uint64, ts time.Time) error {
	var existing models.LastRequest
	err := db.store.TxFindOne(tx, &existing,
		bolthold.Where("Kind").Eq(kind).And("EntityID").Eq(entityID))
	switch {
	case err == nil:
		existing.Timestamp = ts
		return db.store.TxUpdate(tx, existing.ID, &existing)
	case errors.Is(err, bolthold.ErrNotFound):
		record := models.LastRequest{Kind: kind, EntityID: entityID, Timestamp: ts}
		return db.store.TxInsert(tx, bolthold.NextSequence(), &record)
	default:
		return fmt.Errorf("failed to look up last request: %w", err)
	}
}

// RecordRequestSuccess is TxRecordRequestSuccess in its own transaction.
func (db *Database) RecordRequestSuccess(kind models.RequestKind, entityID uint64) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return db.TxRecordRequestSuccess(tx, kind, entityID)
	})
}

// LastRequestTime returns the recorded timestamp for (kind, entityID), or
// ok=false when no fetch has been recorded yet.
func (db *Database) LastRequestTime(kind models.RequestKind, entityID uint64) (time.Time, bool, error) {
	var record models.LastRequest
	err := db.store.FindOne(&record,
		bolthold.Where("Kind").Eq(kind).And("EntityID").Eq(entityID))
	if errors.Is(err, bolthold.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return record.Timestamp, true, nil
}

// IsRequestStale reports whether the last recorded fetch is older than
// threshold, or has never happened.
func (db *Database) IsRequestStale(kind models.RequestKind, entityID uint64, threshold time.Duration) (bool, error) {
	ts, ok, err := db.LastRequestTime(kind, entityID)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return time.Since(ts) >= threshold, nil
}

// IsRequestValid is the logical negation of IsRequestStale.
func (db *Database) IsRequestValid(kind models.RequestKind, entityID uint64, threshold time.Duration) (bool, error) {
	stale, err := db.IsRequestStale(kind, entityID, threshold)
	return !stale, err
}

// HasBeenRequested reports whether any fetch has ever been recorded for
// (kind, entityID).
func (db *Database) HasBeenRequested(kind models.RequestKind, entityID uint64) (bool, error) {
	_, ok, err := db.LastRequestTime(kind, entityID)
	return ok, err
}

// ListLastRequests returns every ledger row, most recent first.
func (db *Database) ListLastRequests() ([]models.LastRequest, error) {
	var records []models.LastRequest
	err := db.store.Find(&records, (&bolthold.Query{}).SortBy("Timestamp").Reverse())
	return records, err
}

// TxDeleteLastRequest removes the ledger row for (kind, entityID), forcing the
// next read of the matching collection to refresh.
func (db *Database) TxDeleteLastRequest(tx *bbolt.Tx, kind models.RequestKind, entityID uint64) error {
	return db.store.TxDeleteMatching(tx, &models.LastRequest{},
		bolthold.Where("Kind").Eq(kind).And("EntityID").Eq(entityID))
}

// TxDeleteLastRequestsOfKind removes every ledger row of one request kind.
func (db *Database) TxDeleteLastRequestsOfKind(tx *bbolt.Tx, kind models.RequestKind) error {
	return db.store.TxDeleteMatching(tx, &models.LastRequest{},
		bolthold.Where("Kind").Eq(kind))
}

// TxDeleteLastRequests removes every ledger row, used on full cache
// invalidation.
func (db *Database) TxDeleteLastRequests(tx *bbolt.Tx) error {
	return db.store.TxDeleteMatching(tx, &models.LastRequest{}, nil)
}
