package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltBackend stores each namespace in its own bbolt bucket.
type BoltBackend struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	return &BoltBackend{db: db}, nil
}

// Path returns the database file path.
func (b *BoltBackend) Path() string {
	return b.db.Path()
}

// Get implements Backend.
func (b *BoltBackend) Get(ns, key string) ([]byte, bool, error) {
	var value []byte
	found := false
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ns))
		if bucket == nil {
			return nil
		}
		v := bucket.Get([]byte(key))
		if v == nil {
			return nil
		}
		// v is only valid for the life of the transaction
		value = append([]byte(nil), v...)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// Put implements Backend.
func (b *BoltBackend) Put(ns, key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(ns))
		if err != nil {
			return fmt.Errorf("failed to create namespace %s: %w", ns, err)
		}
		return bucket.Put([]byte(key), value)
	})
}

// Delete implements Backend.
func (b *BoltBackend) Delete(ns, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ns))
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
}

// Clear implements Backend.
func (b *BoltBackend) Clear() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		var names [][]byte
		err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, append([]byte(nil), name...))
			return nil
		})
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("failed to erase namespace %s: %w", name, err)
			}
		}
		return nil
	})
}

// Dump implements Backend.
func (b *BoltBackend) Dump() (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, bucket *bolt.Bucket) error {
			entries := make(map[string]string)
			if err := bucket.ForEach(func(k, v []byte) error {
				entries[string(k)] = string(v)
				return nil
			}); err != nil {
				return err
			}
			if len(entries) > 0 {
				out[string(name)] = entries
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close implements Backend.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}
