// Package localstore is the client's persistent local storage area,
// the on-disk analog of the browser's localStorage. It holds exactly
// three keys (token, user, cart) and makes no cross-process
// coordination guarantees: last writer wins.
package localstore

import "errors"

// Keys mirror the local-storage keys of the original web client.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyCart  = "cart"
)

var ErrNotFound = errors.New("localstore: key not found")

// Store is a minimal key/value surface. Consumers define this
// interface; implementations live alongside it.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
