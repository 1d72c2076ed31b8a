package core

import "context"

// TokenKey is the local storage key holding the auth token.
const TokenKey = "gyaan_buddy_token"

// LocalStorage is a small persisted key/value store, the client's equivalent of browser local storage.
// Get returns "" and no error when the key is absent.
type LocalStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
