package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = bolthold.ErrNotFound

// GetShow retrieves a show by its local ID.
func (db *Database) GetShow(id uint64) (*models.Show, error) {
	var show models.Show
	if err := db.store.Get(id, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// TxGetShow retrieves a show by its local ID inside a transaction.
func (db *Database) TxGetShow(tx *bbolt.Tx, id uint64) (*models.Show, error) {
	var show models.Show
	if err := db.store.TxGet(tx, id, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// TxSaveShow upserts a show inside a transaction. New shows are inserted with
// a generated ID; existing shows are updated in place.
func (db *Database) TxSaveShow(tx *bbolt.Tx, show *models.Show) error {
	now := time.Now()
	show.UpdatedAt = now
	if show.ID == 0 {
		show.CreatedAt = now
		return db.store.TxInsert(tx, bolthold.NextSequence(), show)
	}
	return db.store.TxUpdate(tx, show.ID, show)
}

// TxGetShowIDOrSavePlaceholder resolves the local ID for a show referenced by
// remote data. If a row already exists for any of the show's external IDs its
// ID is returned; otherwise a placeholder row is inserted. The operation is
// idempotent, so collection writers can call it for every entry they persist.
func (db *Database) TxGetShowIDOrSavePlaceholder(tx *bbolt.Tx, show models.Show) (uint64, error) {
	if !show.HasExternalID() {
		return 0, errors.New("show has no external ID")
	}

	existing, err := db.txFindShowByExternalID(tx, show)
	if err != nil && !errors.Is(err, bolthold.ErrNotFound) {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	placeholder := show
	if err := db.TxSaveShow(tx, &placeholder); err != nil {
		return 0, fmt.Errorf("failed to save placeholder show: %w", err)
	}
	return placeholder.ID, nil
}

func (db *Database) txFindShowByExternalID(tx *bbolt.Tx, show models.Show) (*models.Show, error) {
	var found models.Show

	if show.TraktID != 0 {
		err := db.store.TxFindOne(tx, &found, bolthold.Where("TraktID").Eq(show.TraktID))
		if err == nil {
			return &found, nil
		}
		if !errors.Is(err, bolthold.ErrNotFound) {
			return nil, err
		}
	}
	if show.TmdbID != 0 {
		err := db.store.TxFindOne(tx, &found, bolthold.Where("TmdbID").Eq(show.TmdbID))
		if err == nil {
			return &found, nil
		}
		if !errors.Is(err, bolthold.ErrNotFound) {
			return nil, err
		}
	}
	if show.ImdbID != "" {
		err := db.store.TxFindOne(tx, &found, bolthold.Where("ImdbID").Eq(show.ImdbID))
		if err == nil {
			return &found, nil
		}
		if !errors.Is(err, bolthold.ErrNotFound) {
			return nil, err
		}
	}
	return nil, bolthold.ErrNotFound
}

// GetShows retrieves the shows for the given local IDs, keyed by ID. Missing
// rows are simply absent from the result.
func (db *Database) GetShows(ids []uint64) (map[uint64]models.Show, error) {
	out := make(map[uint64]models.Show, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		var show models.Show
		err := db.store.Get(id, &show)
		if errors.Is(err, bolthold.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = show
	}
	return out, nil
}

// SearchShows returns shows whose title contains the query, case-insensitive.
func (db *Database) SearchShows(query string) ([]*models.Show, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	var shows []*models.Show
	err := db.store.Find(&shows, bolthold.Where("Title").MatchFunc(func(ra *bolthold.RecordAccess) (bool, error) {
		show, ok := ra.Record().(*models.Show)
		if !ok || show.Title == nil {
			return false, nil
		}
		return strings.Contains(strings.ToLower(*show.Title), query), nil
	}))
	return shows, err
}

// CountShows returns the number of locally known shows.
func (db *Database) CountShows() (int, error) {
	return db.store.Count(&models.Show{}, nil)
}
