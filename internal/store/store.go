// Package store implements the remote-backed collection store used for every
// Trakt/TMDb-sourced collection: read the local snapshot as a stream, refresh
// it from the network when stale or forced, and de-duplicate concurrent
// fetches per key.
package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves the remote value for a key, already mapped into local
// entity shapes. Bounded retry, if any, belongs inside the fetcher.
type Fetcher[K comparable, N any] func(ctx context.Context, key K) (N, error)

// SourceOfTruth adapts the local database to a store. Write persists a fetched
// network value N; Read produces the local representation L.
type SourceOfTruth[K comparable, N any, L any] struct {
	// Read returns the current local snapshot for key. ok=false means no
	// value is stored. Read must return stored data even when it is stale.
	Read func(ctx context.Context, key K) (value L, ok bool, err error)
	// Write persists a fetched value inside a single transaction and records
	// the fetch in the last-request ledger.
	Write func(ctx context.Context, key K, value N) error
	// Delete removes the stored value for key.
	Delete func(ctx context.Context, key K) error
	// DeleteAll removes every stored value of the collection.
	DeleteAll func(ctx context.Context) error
	// Subscribe returns a channel signalled whenever the underlying
	// collection changes, plus a cancel function.
	Subscribe func() (<-chan struct{}, func())
}

// Validator reports whether the stored value for key is still fresh, usually
// by consulting the last-request ledger with a collection-specific threshold.
type Validator[K comparable] func(ctx context.Context, key K) (bool, error)

// Store orchestrates reads, writes, staleness checks and in-flight
// de-duplication for one collection.
type Store[K comparable, N any, L any] struct {
	name   string
	fetch  Fetcher[K, N]
	source SourceOfTruth[K, N, L]
	fresh  Validator[K]
	logger *logrus.Logger

	flight singleflight.Group
}

// New builds a store. name labels log lines and metrics.
func New[K comparable, N any, L any](
	name string,
	fetcher Fetcher[K, N],
	source SourceOfTruth[K, N, L],
	validator Validator[K],
	logger *logrus.Logger,
) *Store[K, N, L] {
	return &Store[K, N, L]{
		name:   name,
		fetch:  fetcher,
		source: source,
		fresh:  validator,
		logger: logger,
	}
}

// Get returns the value for key, refreshing from the network first when the
// local value is absent, stale, or forceRefresh is set. A failed refresh is
// returned as an error; the stored value is left untouched.
func (s *Store[K, N, L]) Get(ctx context.Context, key K, forceRefresh bool) (L, error) {
	var zero L

	value, ok, err := s.source.Read(ctx, key)
	if err != nil {
		return zero, err
	}

	if ok && !forceRefresh {
		fresh, err := s.fresh(ctx, key)
		if err != nil {
			return zero, err
		}
		if fresh {
			localHits.WithLabelValues(s.name).Inc()
			return value, nil
		}
		staleReads.WithLabelValues(s.name).Inc()
	}

	if err := s.Refresh(ctx, key); err != nil {
		return zero, err
	}

	value, _, err = s.source.Read(ctx, key)
	return value, err
}

// Refresh unconditionally runs one fetch-and-persist cycle for key.
// Concurrent calls for the same key share a single remote fetch; calls for
// different keys proceed independently.
func (s *Store[K, N, L]) Refresh(ctx context.Context, key K) error {
	_, err, _ := s.flight.Do(fmt.Sprintf("%v", key), func() (interface{}, error) {
		fetches.WithLabelValues(s.name).Inc()

		value, err := s.fetch(ctx, key)
		if err != nil {
			fetchErrors.WithLabelValues(s.name).Inc()
			return nil, fmt.Errorf("fetch failed: %w", err)
		}
		if err := s.source.Write(ctx, key, value); err != nil {
			return nil, fmt.Errorf("failed to persist fetched value: %w", err)
		}
		return nil, nil
	})
	return err
}

// Stream emits the current local snapshot for key immediately (even when
// stale), triggers a refresh when the value is absent or stale, and re-emits
// whenever the collection changes, until ctx is cancelled. Refresh failures
// are logged, never delivered on the stream; the last known snapshot stands.
func (s *Store[K, N, L]) Stream(ctx context.Context, key K) <-chan L {
	out := make(chan L, 1)

	go func() {
		defer close(out)

		changes, cancel := s.source.Subscribe()
		defer cancel()

		value, ok, err := s.source.Read(ctx, key)
		if err != nil {
			s.logger.WithError(err).WithField("store", s.name).Error("Failed to read local snapshot")
			return
		}
		if ok {
			select {
			case out <- value:
			case <-ctx.Done():
				return
			}
		}

		fresh := false
		if ok {
			fresh, err = s.fresh(ctx, key)
			if err != nil {
				s.logger.WithError(err).WithField("store", s.name).Error("Staleness check failed")
			}
		}
		if !fresh {
			go func() {
				if err := s.Refresh(ctx, key); err != nil {
					s.logger.WithError(err).WithFields(logrus.Fields{
						"store": s.name,
						"key":   key,
					}).Warn("Refresh failed, serving cached value")
				}
			}()
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				value, ok, err := s.source.Read(ctx, key)
				if err != nil {
					s.logger.WithError(err).WithField("store", s.name).Error("Failed to re-read local snapshot")
					continue
				}
				if !ok {
					continue
				}
				select {
				case out <- value:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Clear removes the stored value for key.
func (s *Store[K, N, L]) Clear(ctx context.Context, key K) error {
	return s.source.Delete(ctx, key)
}

// ClearAll removes every stored value of the collection.
func (s *Store[K, N, L]) ClearAll(ctx context.Context) error {
	return s.source.DeleteAll(ctx)
}
