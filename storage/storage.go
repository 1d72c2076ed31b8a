// Package storage opens the local storage configured for the client.
package storage

import (
	"io"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/storage/inmem"
	"github.com/trezcool/gyaanbuddy/storage/sqlite"
)

// Storage is a LocalStorage holding resources.
type Storage interface {
	core.LocalStorage
	io.Closer
}

// Open opens the SQLite storage at conf.Path, or an in-memory one when no path is configured.
func Open(conf core.StorageConfig) (Storage, error) {
	if conf.Path == "" {
		return inmemstore.New(), nil
	}
	return sqlitestore.Open(conf.Path)
}
