package bolt

import (
	"github.com/boltdb/bolt"

	"github.com/bobinette/atelier/session"
)

type Store struct {
	driver *Driver
}

func NewStore(driver *Driver) *Store {
	return &Store{
		driver: driver,
	}
}

func (s *Store) Load() (session.Tokens, error) {
	var tokens session.Tokens
	err := s.driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)

		tokens.AccessToken = string(bucket.Get([]byte(session.AccessTokenKey)))
		tokens.RefreshToken = string(bucket.Get([]byte(session.RefreshTokenKey)))
		return nil
	})
	if err != nil {
		return session.Tokens{}, err
	}

	return tokens, nil
}

// Save writes both tokens in a single transaction.
func (s *Store) Save(tokens session.Tokens) error {
	return s.driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)

		if err := bucket.Put([]byte(session.AccessTokenKey), []byte(tokens.AccessToken)); err != nil {
			return err
		}
		return bucket.Put([]byte(session.RefreshTokenKey), []byte(tokens.RefreshToken))
	})
}

// Clear deletes both tokens in a single transaction.
func (s *Store) Clear() error {
	return s.driver.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)

		if err := bucket.Delete([]byte(session.AccessTokenKey)); err != nil {
			return err
		}
		return bucket.Delete([]byte(session.RefreshTokenKey))
	})
}
