package storage

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"trainsys/client/internal/logging"
)

// Badger хранит значения во встроенной базе badger на диске.
type Badger struct {
	db     *badger.DB
	prefix string
	logger *logging.Logger
}

// OpenBadger открывает (или создаёт) базу в каталоге dir.
func OpenBadger(dir, prefix string, logger *logging.Logger) (*Badger, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger directory is empty")
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", dir, err)
	}
	logger.Debugf("session storage opened: badger %s", dir)
	return &Badger{db: db, prefix: prefix, logger: logger}, nil
}

func (b *Badger) key(key string) []byte {
	return []byte(b.prefix + key)
}

func (b *Badger) Load(key string) (string, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("badger load %s: %w", key, err)
	}
	return string(value), nil
}

func (b *Badger) Save(key, value string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("badger save %s: %w", key, err)
	}
	return nil
}

func (b *Badger) Remove(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key(key))
	})
	if err != nil {
		return fmt.Errorf("badger remove %s: %w", key, err)
	}
	return nil
}

func (b *Badger) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
