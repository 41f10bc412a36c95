// ABOUTME: Remote backend collaborator contract
// ABOUTME: Four logical tables, each supporting insert, update by id, and delete by id
package remote

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrOffline is returned by clients that know they cannot reach the
// backend without attempting a call.
var ErrOffline = errors.New("backend unreachable")

// Backend is the three-verb contract the sync layer needs from the
// hosted service. Query and auth semantics beyond an authenticated
// session are out of scope.
type Backend interface {
	Insert(ctx context.Context, table string, data json.RawMessage) error
	Update(ctx context.Context, table, id string, data json.RawMessage) error
	Delete(ctx context.Context, table, id string) error

	// Ping probes connectivity; used by the queue's online tracking.
	Ping(ctx context.Context) error
}
