package optimistic

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type row struct {
	ID   uint
	Name string
}

func rowKey(r row) string { return strconv.FormatUint(uint64(r.ID), 10) }

func newStore(rows ...row) *Store[row] {
	s := New(rowKey)
	s.now = func() time.Time { return time.Unix(0, 1700000000000000000) }
	s.Replace(rows)
	return s
}

var errServer = errors.New("500 internal error")

func TestCreate_TempRowReplacedOnCommit(t *testing.T) {
	s := newStore(row{ID: 1, Name: "Oak"})

	m := s.BeginCreate(row{Name: "Elm"})
	assert.True(t, IsTemp(m.Key))
	assert.Equal(t, "tmp-1700000000000000000", m.Key)
	assert.Equal(t, []string{"1", m.Key}, s.Keys(), "temp row is visible before the server answers")

	s.Commit(m, row{ID: 7, Name: "Elm"})
	assert.Equal(t, []string{"1", "7"}, s.Keys())
	got, ok := s.Get("7")
	require.True(t, ok)
	assert.Equal(t, "Elm", got.Name)
	assert.Empty(t, s.Banner())
}

func TestCreate_RollbackRemovesTempRow(t *testing.T) {
	s := newStore(row{ID: 1, Name: "Oak"})

	m := s.BeginCreate(row{Name: "Elm"})
	s.Rollback(m, errServer)

	assert.Equal(t, []row{{ID: 1, Name: "Oak"}}, s.Rows())
	assert.Contains(t, s.Banner(), "create failed")
	assert.Contains(t, s.Banner(), "500 internal error")

	s.Dismiss()
	assert.Empty(t, s.Banner())
}

func TestCreate_TempKeysStayUnique(t *testing.T) {
	s := newStore()
	a := s.BeginCreate(row{Name: "a"})
	b := s.BeginCreate(row{Name: "b"})
	assert.NotEqual(t, a.Key, b.Key)
}

func TestUpdate_RollbackRestoresSnapshot(t *testing.T) {
	s := newStore(row{ID: 1, Name: "Oak"}, row{ID: 2, Name: "Elm"})

	m, err := s.BeginUpdate("2", func(r *row) { r.Name = "Elm Court" })
	require.NoError(t, err)
	got, _ := s.Get("2")
	assert.Equal(t, "Elm Court", got.Name)

	s.Rollback(m, errServer)
	got, _ = s.Get("2")
	assert.Equal(t, "Elm", got.Name)
	assert.Contains(t, s.Banner(), "update failed")

	_, err = s.BeginUpdate("99", func(*row) {})
	assert.ErrorIs(t, err, ErrUnknownRow)
}

func TestDelete_RollbackRestoresPosition(t *testing.T) {
	s := newStore(row{ID: 1, Name: "a"}, row{ID: 2, Name: "b"}, row{ID: 3, Name: "c"})

	m, err := s.BeginDelete("2")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, s.Keys())

	s.Rollback(m, errServer)
	assert.Equal(t, []string{"1", "2", "3"}, s.Keys())
	assert.Contains(t, s.Banner(), "delete failed")
}

func TestRunHelpers(t *testing.T) {
	ctx := context.Background()
	s := newStore(row{ID: 1, Name: "Oak"})

	saved, err := s.RunCreate(ctx, row{Name: "Elm"}, func(_ context.Context, r row) (row, error) {
		assert.Equal(t, 2, s.Len(), "row inserted before the call")
		r.ID = 5
		return r, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), saved.ID)
	assert.Equal(t, []string{"1", "5"}, s.Keys())

	_, err = s.RunUpdate(ctx, "5", func(r *row) { r.Name = "" }, func(context.Context, row) (row, error) {
		return row{}, errServer
	})
	assert.ErrorIs(t, err, errServer)
	got, _ := s.Get("5")
	assert.Equal(t, "Elm", got.Name)

	err = s.RunDelete(ctx, "1", func(_ context.Context, r row) error {
		assert.Equal(t, "Oak", r.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, s.Keys())
}

func TestView_FilterAndSort(t *testing.T) {
	s := newStore(row{ID: 1, Name: "maple"}, row{ID: 2, Name: "birch"}, row{ID: 3, Name: "cedar"})

	rows := s.View(func(r row) bool { return r.Name != "cedar" }, func(a, b row) bool { return a.Name < b.Name })
	assert.Equal(t, []Keyed[row]{
		{Key: "2", Row: row{ID: 2, Name: "birch"}},
		{Key: "1", Row: row{ID: 1, Name: "maple"}},
	}, rows)
	assert.Len(t, s.Rows(), 3, "view leaves the store untouched")
}

// A failed mutation of any kind leaves the store exactly as it was.
func TestRollback_RestoresPriorState(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(rt, "rows")
		initial := make([]row, n)
		for i := range initial {
			initial[i] = row{ID: uint(i + 1), Name: rapid.StringMatching(`[a-z]{1,6}`).Draw(rt, "name")}
		}
		s := newStore(initial...)

		var m Mutation[row]
		kind := rapid.SampledFrom([]Kind{Create, Update, Delete}).Draw(rt, "kind")
		if n == 0 {
			kind = Create
		}
		switch kind {
		case Create:
			m = s.BeginCreate(row{Name: "new"})
		case Update:
			key := rowKey(initial[rapid.IntRange(0, n-1).Draw(rt, "target")])
			var err error
			m, err = s.BeginUpdate(key, func(r *row) { r.Name = strings.ToUpper(r.Name) + "!" })
			require.NoError(rt, err)
		case Delete:
			key := rowKey(initial[rapid.IntRange(0, n-1).Draw(rt, "target")])
			var err error
			m, err = s.BeginDelete(key)
			require.NoError(rt, err)
		}

		s.Rollback(m, errServer)
		if n == 0 {
			assert.Empty(rt, s.Rows())
		} else {
			assert.Equal(rt, initial, s.Rows())
		}
		assert.NotEmpty(rt, s.Banner())
	})
}
