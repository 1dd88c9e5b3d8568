// Package database wraps the embedded bolthold store used as the local
// source of truth. All mutating access goes through Update, which runs its
// function inside a single bbolt transaction; readers observe either the
// pre- or post-transaction state, never a partial write.
package database

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store.
type Database struct {
	store    *bolthold.Store
	notifier *Notifier
}

// New opens (creating if needed) the database at path.
func New(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{
		store:    store,
		notifier: NewNotifier(),
	}, nil
}

// Close closes the database.
func (db *Database) Close() error {
	return db.store.Close()
}

// Update runs fn inside a single read-write transaction. If fn returns an
// error the transaction is rolled back and nothing is persisted.
func (db *Database) Update(fn func(tx *bbolt.Tx) error) error {
	return db.store.Bolt().Update(fn)
}

// Notify publishes a change notification for the given topics. Callers invoke
// it after a successful Update so that subscribers only ever observe
// committed state.
func (db *Database) Notify(topics ...string) {
	for _, topic := range topics {
		db.notifier.Publish(topic)
	}
}

// Subscribe returns a channel that receives a signal whenever the topic is
// notified, plus a cancel function releasing the subscription.
func (db *Database) Subscribe(topic string) (<-chan struct{}, func()) {
	return db.notifier.Subscribe(topic)
}
