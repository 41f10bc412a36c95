// ABOUTME: In-memory Backend for tests
// ABOUTME: Records calls per table and supports failure injection and offline simulation
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Call records one backend invocation for assertions.
type Call struct {
	Verb  string
	Table string
	ID    string
}

// Fake is an in-memory Backend used across the test suites.
type Fake struct {
	mu      sync.Mutex
	rows    map[string]map[string]json.RawMessage
	calls   []Call
	failErr error
	failIf  func(Call) error
	offline bool
}

// NewFake creates an empty fake backend.
func NewFake() *Fake {
	return &Fake{rows: map[string]map[string]json.RawMessage{}}
}

// Fail makes every subsequent call return err (nil restores success).
func (f *Fake) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failErr = err
}

// FailIf installs a per-call failure predicate; a non-nil return fails
// just that call. Useful for partial-replay scenarios.
func (f *Fake) FailIf(fn func(Call) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failIf = fn
}

// SetOffline simulates losing connectivity: Ping and all verbs fail.
func (f *Fake) SetOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

func (f *Fake) Insert(ctx context.Context, table string, data json.RawMessage) error {
	return f.apply("insert", table, idFromData(data), data)
}

func (f *Fake) Update(ctx context.Context, table, id string, data json.RawMessage) error {
	return f.apply("update", table, id, data)
}

func (f *Fake) Delete(ctx context.Context, table, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := Call{Verb: "delete", Table: table, ID: id}
	f.calls = append(f.calls, call)
	if err := f.err(call); err != nil {
		return err
	}
	if rows, ok := f.rows[table]; ok {
		delete(rows, id)
	}
	return nil
}

func (f *Fake) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return ErrOffline
	}
	return nil
}

func (f *Fake) apply(verb, table, id string, data json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := Call{Verb: verb, Table: table, ID: id}
	f.calls = append(f.calls, call)
	if err := f.err(call); err != nil {
		return err
	}
	if f.rows[table] == nil {
		f.rows[table] = map[string]json.RawMessage{}
	}
	f.rows[table][id] = append(json.RawMessage(nil), data...)
	return nil
}

func (f *Fake) err(call Call) error {
	if f.offline {
		return fmt.Errorf("%w: fake backend offline", ErrOffline)
	}
	if f.failErr != nil {
		return f.failErr
	}
	if f.failIf != nil {
		return f.failIf(call)
	}
	return nil
}

// Calls returns a copy of the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Row returns the stored payload for table/id, if any.
func (f *Fake) Row(table, id string) (json.RawMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[table][id]
	return row, ok
}

// RowCount returns the number of rows held for a table.
func (f *Fake) RowCount(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[table])
}

func idFromData(data json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(data, &probe)
	return probe.ID
}
