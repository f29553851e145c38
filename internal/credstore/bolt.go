package credstore

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"tasktrack/internal/service"
)

var credentialsBucket = []byte("credentials")

// Bolt stores the tokens in a bbolt database, one key per token.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the credentials database at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open credentials db: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(credentialsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create credentials bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Load() (service.TokenPair, error) {
	var pair service.TokenPair
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(credentialsBucket)
		if bucket == nil {
			return nil
		}
		pair.AccessToken = string(bucket.Get([]byte(AccessTokenKey)))
		pair.RefreshToken = string(bucket.Get([]byte(RefreshTokenKey)))
		return nil
	})
	if err != nil {
		return service.TokenPair{}, fmt.Errorf("read credentials: %w", err)
	}
	return pair, nil
}

func (b *Bolt) SetAccessToken(token string) error {
	return b.put(AccessTokenKey, token)
}

func (b *Bolt) SetRefreshToken(token string) error {
	return b.put(RefreshTokenKey, token)
}

func (b *Bolt) Clear() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(credentialsBucket)
		if err := bucket.Delete([]byte(AccessTokenKey)); err != nil {
			return err
		}
		return bucket.Delete([]byte(RefreshTokenKey))
	})
}

// Close releases the database file lock.
func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) put(key, value string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(credentialsBucket)
		if value == "" {
			return bucket.Delete([]byte(key))
		}
		return bucket.Put([]byte(key), []byte(value))
	})
}
