package nvs

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerOpener opens namespaced Stores backed by a single shared badger
// database, the way the original firmware's single NVS flash partition is
// shared by all of the guard's namespaces.
type BadgerOpener struct {
	db *badger.DB
}

// OpenBadger opens (creating if necessary) a badger database rooted at dir
// and returns an Opener over it.
func OpenBadger(dir string) (*BadgerOpener, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("nvs: open badger at %q: %w", dir, err)
	}
	return &BadgerOpener{db: db}, nil
}

// Close closes the underlying database. It is safe to call once all Stores
// opened from this Opener are done being used.
func (o *BadgerOpener) Close() error {
	return o.db.Close()
}

// Open implements Opener. readOnly is advisory: badger transactions are
// always read-write at the engine level, so a "read-only" BadgerStore just
// refuses to call Put/Remove.
func (o *BadgerOpener) Open(namespace string, readOnly bool) (Store, error) {
	if namespace == "" {
		return nil, &ErrOpenFailed{Namespace: namespace, Err: errors.New("empty namespace")}
	}
	return &BadgerStore{db: o.db, prefix: namespace + "/", readOnly: readOnly}, nil
}

// BadgerStore is a namespace-scoped Store backed by badger.
type BadgerStore struct {
	db       *badger.DB
	prefix   string
	readOnly bool
}

func (s *BadgerStore) key(k string) []byte {
	return []byte(s.prefix + k)
}

func (s *BadgerStore) GetU32(key string, def uint32) uint32 {
	var v uint32 = def
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 4 {
				return fmt.Errorf("nvs: %s: want 4 bytes, got %d", key, len(val))
			}
			v = binary.BigEndian.Uint32(val)
			return nil
		})
	})
	return v
}

func (s *BadgerStore) PutU32(key string, v uint32) (int, error) {
	if s.readOnly {
		return 0, errReadOnly
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(key), buf)
	}); err != nil {
		return 0, err
	}
	return 4, nil
}

func (s *BadgerStore) GetU8(key string, def uint8) uint8 {
	var v uint8 = def
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 1 {
				return fmt.Errorf("nvs: %s: want 1 byte, got %d", key, len(val))
			}
			v = val[0]
			return nil
		})
	})
	return v
}

func (s *BadgerStore) PutU8(key string, v uint8) (int, error) {
	if s.readOnly {
		return 0, errReadOnly
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(key), []byte{v})
	}); err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *BadgerStore) GetString(key string, out []byte) int {
	n := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) > len(out) {
				return fmt.Errorf("nvs: %s: buffer too small", key)
			}
			n = copy(out, val)
			return nil
		})
	})
	return n
}

func (s *BadgerStore) PutString(key string, v string) int {
	if s.readOnly {
		return 0
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(key), []byte(v))
	}); err != nil {
		return 0
	}
	return len(v)
}

func (s *BadgerStore) Exists(key string) bool {
	found := false
	_ = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.key(key))
		found = err == nil
		return nil
	})
	return found
}

func (s *BadgerStore) Remove(key string) error {
	if s.readOnly {
		return errReadOnly
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Close is a no-op: the underlying *badger.DB is owned by BadgerOpener and
// shared across namespaces, matching the original's short-lived
// Preferences.begin()/end() brackets around one shared NVS partition.
func (s *BadgerStore) Close() error { return nil }

var errReadOnly = errors.New("nvs: store opened read-only")
