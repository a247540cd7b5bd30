// Package storage содержит долговременные key-value хранилища клиента.
package storage

import (
	"errors"
	"fmt"

	"trainsys/client/internal/config"
	"trainsys/client/internal/logging"
)

// ErrNotFound возвращается, если ключ отсутствует в хранилище.
var ErrNotFound = errors.New("storage: key not found")

// Backend описывает строковое key-value хранилище с явным закрытием.
type Backend interface {
	Load(key string) (string, error)
	Save(key, value string) error
	Remove(key string) error
	Close() error
}

// Open создаёт хранилище по настройкам конфигурации.
func Open(cfg config.StorageConfig, logger *logging.Logger) (Backend, error) {
	switch cfg.Driver {
	case config.StorageBadger, "":
		return OpenBadger(cfg.Path, cfg.KeyPrefix, logger)
	case config.StorageRedis:
		return OpenRedis(cfg.RedisURL, cfg.KeyPrefix, logger)
	case config.StorageMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
