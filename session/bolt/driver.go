package bolt

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

var sessionBucket = []byte("session")

type Driver struct {
	store *bolt.DB
}

// Open opens the bolt database at path, creating its directory with
// owner-only permissions if needed.
func (d *Driver) Open(path string) error {
	if d.store != nil {
		return errors.New("store already open")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	store, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return err
	}

	err = store.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		store.Close()
		return err
	}

	d.store = store
	return nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	if d.store != nil {
		err := d.store.Close()
		d.store = nil
		return err
	}
	return nil
}

// DefaultPath returns where the session database lives: ATELIER_SESSION_FILE
// if set, $XDG_CONFIG_HOME/atelier/session.db otherwise.
func DefaultPath() string {
	if envPath := os.Getenv("ATELIER_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "atelier-session.db")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "atelier", "session.db")
}
