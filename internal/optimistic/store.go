// Package optimistic keeps a local list of rows that is changed before the
// server confirms a write and put back the way it was when the write fails.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TempPrefix marks keys of rows the server has not assigned an ID yet
const TempPrefix = "tmp-"

// ErrUnknownRow is returned when a mutation names a key the store does not hold
var ErrUnknownRow = errors.New("row not found")

// Kind is the type of a pending mutation
type Kind int

const (
	Create Kind = iota
	Update
	Delete
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// Mutation is a change applied locally and awaiting the server's answer
type Mutation[T any] struct {
	Kind Kind
	Key  string
	// Row is the optimistic value: the new row for create and update, the
	// removed row for delete.
	Row T

	snapshot T
	index    int
}

type entry[T any] struct {
	key string
	row T
}

// Store is an ordered set of keyed rows with optimistic create, update and
// delete. Only one mutation per row is expected in flight at a time.
type Store[T any] struct {
	mu      sync.Mutex
	keyOf   func(T) string
	entries []entry[T]
	banner  string
	now     func() time.Time
}

// New creates an empty store. keyOf returns the server key of a confirmed row.
func New[T any](keyOf func(T) string) *Store[T] {
	return &Store[T]{keyOf: keyOf, now: time.Now}
}

// Replace swaps the whole contents for rows fresh from the server
func (s *Store[T]) Replace(rows []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make([]entry[T], 0, len(rows))
	for _, row := range rows {
		s.entries = append(s.entries, entry[T]{key: s.keyOf(row), row: row})
	}
}

// Rows returns a copy of the rows in store order
func (s *Store[T]) Rows() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]T, len(s.entries))
	for i, e := range s.entries {
		rows[i] = e.row
	}
	return rows
}

// Keys returns the row keys in store order
func (s *Store[T]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.key
	}
	return keys
}

// Get returns the row stored under key
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(key); i >= 0 {
		return s.entries[i].row, true
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Keyed is a row with the key the store holds it under
type Keyed[T any] struct {
	Key string
	Row T
}

// View returns the rows keep accepts, ordered by less. Either may be nil.
func (s *Store[T]) View(keep func(T) bool, less func(a, b T) bool) []Keyed[T] {
	s.mu.Lock()
	rows := make([]Keyed[T], 0, len(s.entries))
	for _, e := range s.entries {
		if keep == nil || keep(e.row) {
			rows = append(rows, Keyed[T]{Key: e.key, Row: e.row})
		}
	}
	s.mu.Unlock()

	if less != nil {
		sort.SliceStable(rows, func(i, j int) bool { return less(rows[i].Row, rows[j].Row) })
	}
	return rows
}

// IsTemp reports whether key belongs to a row still waiting for its server ID
func IsTemp(key string) bool {
	return strings.HasPrefix(key, TempPrefix)
}

// BeginCreate appends row under a temporary key
func (s *Store[T]) BeginCreate(row T) Mutation[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := TempPrefix + strconv.FormatInt(s.now().UnixNano(), 10)
	for s.indexOf(key) >= 0 {
		key += "_"
	}
	s.entries = append(s.entries, entry[T]{key: key, row: row})
	return Mutation[T]{Kind: Create, Key: key, Row: row, index: len(s.entries) - 1}
}

// BeginUpdate snapshots the row under key and applies change to it in place
func (s *Store[T]) BeginUpdate(key string, change func(*T)) (Mutation[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		return Mutation[T]{}, fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}
	snapshot := s.entries[i].row
	updated := snapshot
	change(&updated)
	s.entries[i].row = updated
	return Mutation[T]{Kind: Update, Key: key, Row: updated, snapshot: snapshot, index: i}, nil
}

// BeginDelete removes the row under key, remembering where it was
func (s *Store[T]) BeginDelete(key string) (Mutation[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		return Mutation[T]{}, fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}
	removed := s.entries[i].row
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return Mutation[T]{Kind: Delete, Key: key, Row: removed, snapshot: removed, index: i}, nil
}

// Commit settles a mutation with the row the server returned. For a create the
// temporary row is replaced and takes the server key; serverRow is ignored for
// a delete.
func (s *Store[T]) Commit(m Mutation[T], serverRow T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.Kind == Delete {
		return
	}
	i := s.indexOf(m.Key)
	if i < 0 {
		// reloaded while the request was in flight
		return
	}
	s.entries[i] = entry[T]{key: s.keyOf(serverRow), row: serverRow}
}

// Rollback undoes a mutation the server rejected and raises the banner
func (s *Store[T]) Rollback(m Mutation[T], cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch m.Kind {
	case Create:
		if i := s.indexOf(m.Key); i >= 0 {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
		}
	case Update:
		if i := s.indexOf(m.Key); i >= 0 {
			s.entries[i].row = m.snapshot
		}
	case Delete:
		if s.indexOf(m.Key) < 0 {
			at := min(m.index, len(s.entries))
			s.entries = append(s.entries, entry[T]{})
			copy(s.entries[at+1:], s.entries[at:])
			s.entries[at] = entry[T]{key: m.Key, row: m.snapshot}
		}
	}

	if cause != nil {
		s.banner = fmt.Sprintf("%s failed: %v", m.Kind, cause)
	}
}

// Banner is the last rollback message, empty once dismissed
func (s *Store[T]) Banner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

func (s *Store[T]) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = ""
}

// Settle commits m when err is nil and rolls it back otherwise
func (s *Store[T]) Settle(m Mutation[T], serverRow T, err error) {
	if err != nil {
		s.Rollback(m, err)
		return
	}
	s.Commit(m, serverRow)
}

// RunCreate inserts row optimistically, calls save and settles the result
func (s *Store[T]) RunCreate(ctx context.Context, row T, save func(context.Context, T) (T, error)) (T, error) {
	m := s.BeginCreate(row)
	saved, err := save(ctx, row)
	s.Settle(m, saved, err)
	return saved, err
}

// RunUpdate applies change optimistically, calls save with the changed row
// and settles the result.
func (s *Store[T]) RunUpdate(ctx context.Context, key string, change func(*T), save func(context.Context, T) (T, error)) (T, error) {
	m, err := s.BeginUpdate(key, change)
	if err != nil {
		var zero T
		return zero, err
	}
	saved, err := save(ctx, m.Row)
	s.Settle(m, saved, err)
	return saved, err
}

// RunDelete removes the row optimistically and restores it if remove fails
func (s *Store[T]) RunDelete(ctx context.Context, key string, remove func(context.Context, T) error) error {
	m, err := s.BeginDelete(key)
	if err != nil {
		return err
	}
	err = remove(ctx, m.Row)
	var zero T
	s.Settle(m, zero, err)
	return err
}

func (s *Store[T]) indexOf(key string) int {
	for i, e := range s.entries {
		if e.key == key {
			return i
		}
	}
	return -1
}
