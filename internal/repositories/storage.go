package repositories

import (
	"context"
	"errors"
	"net/http"
)

// AuthKey is the storage key holding the session token.
const AuthKey = "auth"

var ErrKeyNotFound = errors.New("storage key not found")

// Storage is the persistent key/value store a browser session writes its token to.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// StorageFactory binds a Storage to the browser session of one request.
type StorageFactory func(w http.ResponseWriter, r *http.Request) (Storage, error)
