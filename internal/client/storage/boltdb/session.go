package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/portfolio-tracker/internal/client/storage"
)

var currentSessionKey = []byte("current")

// SaveAuth replaces the stored session
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if auth == nil {
		return errors.New("session is nil")
	}

	raw, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	return s.update(func(b *bbolt.Bucket) error {
		return b.Put(currentSessionKey, raw)
	})
}

// GetAuth returns storage.ErrAuthNotFound if nobody is logged in
func (s *Storage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	var auth storage.AuthData

	err := s.view(func(b *bbolt.Bucket) error {
		raw := b.Get(currentSessionKey)
		if raw == nil {
			return storage.ErrAuthNotFound
		}
		// raw живёт только внутри транзакции, Unmarshal копирует
		if err := json.Unmarshal(raw, &auth); err != nil {
			return fmt.Errorf("decode session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &auth, nil
}

// DeleteAuth removes the stored session
func (s *Storage) DeleteAuth(ctx context.Context) error {
	return s.update(func(b *bbolt.Bucket) error {
		if b.Get(currentSessionKey) == nil {
			return storage.ErrAuthNotFound
		}
		return b.Delete(currentSessionKey)
	})
}

func (s *Storage) update(fn func(b *bbolt.Bucket) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return errors.New("session bucket not found")
		}
		return fn(b)
	})
}

func (s *Storage) view(fn func(b *bbolt.Bucket) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return errors.New("session bucket not found")
		}
		return fn(b)
	})
}
