package database

import (
	"fmt"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Generic accessors for paginated collection entries (trending, popular,
// anticipated, recommended). T is the entry type and must carry Page and
// PageOrder fields.

// FindPage returns the entries stored for a page, in page order.
func FindPage[T any](db *Database, page int) ([]*T, error) {
	var entries []*T
	err := db.store.Find(&entries, bolthold.Where("Page").Eq(page).SortBy("PageOrder"))
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAllEntries returns every entry of the collection, ordered by page then
// page order.
func FindAllEntries[T any](db *Database) ([]*T, error) {
	var entries []*T
	err := db.store.Find(&entries, (&bolthold.Query{}).SortBy("Page", "PageOrder"))
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// TxReplacePage atomically replaces the stored entries for a page. Page 0
// replaces the entire collection, so that a shrinking result set cannot leave
// stale tail pages behind; page N>0 replaces only that page.
func TxReplacePage[T any](db *Database, tx *bbolt.Tx, page int, entries []*T) error {
	if page == 0 {
		if err := db.store.TxDeleteMatching(tx, new(T), nil); err != nil {
			return fmt.Errorf("failed to clear collection: %w", err)
		}
	} else {
		if err := db.store.TxDeleteMatching(tx, new(T), bolthold.Where("Page").Eq(page)); err != nil {
			return fmt.Errorf("failed to clear page %d: %w", page, err)
		}
	}

	for _, entry := range entries {
		if err := db.store.TxInsert(tx, bolthold.NextSequence(), entry); err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
	}
	return nil
}

// DeletePage removes the entries for a page; page 0 removes the whole
// collection, mirroring TxReplacePage.
func DeletePage[T any](db *Database, page int) error {
	return db.Update(func(tx *bbolt.Tx) error {
		if page == 0 {
			return db.store.TxDeleteMatching(tx, new(T), nil)
		}
		return db.store.TxDeleteMatching(tx, new(T), bolthold.Where("Page").Eq(page))
	})
}

// TxDeleteAllEntries removes every entry of the collection inside a
// transaction.
func TxDeleteAllEntries[T any](db *Database, tx *bbolt.Tx) error {
	return db.store.TxDeleteMatching(tx, new(T), nil)
}

// CountEntries returns the number of stored entries for the collection.
func CountEntries[T any](db *Database) (int, error) {
	return db.store.Count(new(T), nil)
}
