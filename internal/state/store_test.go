package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/project-dashboard/internal/model"
)

func task(id, title string) model.Task {
	return model.Task{ID: id, Title: title, Status: model.StatusTodo}
}

func TestStoreListLifecycle(t *testing.T) {
	s := NewStore[model.Task]()
	assert.Equal(t, StatusIdle, s.Status())

	tk := s.BeginList()
	assert.Equal(t, StatusLoading, s.Status())
	require.True(t, s.ResolveList(tk, []model.Task{task("1", "a"), task("2", "b")}))
	assert.Equal(t, StatusSucceeded, s.Status())
	assert.Len(t, s.List(), 2)

	boom := errors.New("boom")
	tk = s.BeginList()
	require.True(t, s.RejectList(tk, boom))
	assert.Equal(t, StatusFailed, s.Status())
	assert.Equal(t, boom, s.Err())
	assert.Len(t, s.List(), 2, "failed refresh keeps cached items")

	tk = s.BeginList()
	require.True(t, s.ResolveList(tk, []model.Task{task("3", "c")}))
	assert.NoError(t, s.Err())
	assert.Equal(t, []model.Task{task("3", "c")}, s.List())
}

func TestStoreDropsSupersededListResult(t *testing.T) {
	s := NewStore[model.Task]()
	first := s.BeginList()
	second := s.BeginList()

	require.True(t, s.ResolveList(second, []model.Task{task("new", "fresh")}))
	assert.False(t, s.ResolveList(first, []model.Task{task("old", "stale")}))
	assert.False(t, s.RejectList(first, errors.New("late")))

	assert.Equal(t, []model.Task{task("new", "fresh")}, s.List())
	assert.Equal(t, StatusSucceeded, s.Status())
}

func TestStoreDuplicateIDsCollapse(t *testing.T) {
	s := NewStore[model.Task]()
	tk := s.BeginList()
	s.ResolveList(tk, []model.Task{task("1", "a"), task("2", "b"), task("1", "a2")})

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].Title)
}

func TestStoreLateDetailIsDropped(t *testing.T) {
	s := NewStore[model.Task]()
	s.Focus("t1")
	s.Focus("t2")

	assert.True(t, s.ResolveDetail(task("t2", "second")))
	assert.False(t, s.ResolveDetail(task("t1", "first")))

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "t2", cur.ID)
}

func TestStoreRejectDetail(t *testing.T) {
	s := NewStore[model.Task]()
	s.Focus("t1")
	s.ResolveDetail(task("t1", "one"))

	s.Focus("t1")
	s.RejectDetail("t1", errors.New("flaky"))
	_, ok := s.Current()
	assert.True(t, ok, "same-id detail survives a failed refresh")

	s.Focus("t2")
	s.RejectDetail("t2", errors.New("gone"))
	_, ok = s.Current()
	assert.False(t, ok, "detail for another id is cleared")
	assert.Equal(t, StatusFailed, s.DetailStatus())
	assert.Equal(t, StatusIdle, s.Status())

	assert.False(t, s.RejectDetail("t1", errors.New("stale")))
}

func TestStoreFailedDetailLeavesListStatus(t *testing.T) {
	s := NewStore[model.Task]()
	s.ResolveList(s.BeginList(), []model.Task{task("a", "one")})

	s.Focus("zz")
	assert.Equal(t, StatusLoading, s.DetailStatus())
	assert.Equal(t, StatusSucceeded, s.Status())

	s.RejectDetail("zz", errors.New("not found"))
	assert.Equal(t, StatusFailed, s.DetailStatus())
	assert.Equal(t, StatusSucceeded, s.Status())
	assert.Equal(t, 1, s.Len())
	assert.Error(t, s.Err())
}

func TestStoreDetailDoesNotSettleListInFlight(t *testing.T) {
	s := NewStore[model.Task]()
	ticket := s.BeginList()

	s.Focus("a")
	s.ResolveDetail(task("a", "one"))
	assert.Equal(t, StatusSucceeded, s.DetailStatus())
	assert.Equal(t, StatusLoading, s.Status())

	require.True(t, s.ResolveList(ticket, []model.Task{task("a", "one")}))
	assert.Equal(t, StatusSucceeded, s.Status())

	s.Blur()
	assert.Equal(t, StatusIdle, s.DetailStatus())
	assert.Equal(t, StatusSucceeded, s.Status())
}

func TestStoreDetailReplacesListEntry(t *testing.T) {
	s := NewStore[model.Task]()
	s.ResolveList(s.BeginList(), []model.Task{task("t1", "old")})
	s.Focus("t1")
	s.ResolveDetail(task("t1", "new"))

	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "new", got.Title)
}

func TestStorePutAndRemove(t *testing.T) {
	s := NewStore[model.Task]()
	s.Put(task("1", "a"))
	s.Put(task("2", "b"))
	s.Put(task("1", "a-updated"))
	assert.Equal(t, []model.Task{task("1", "a-updated"), task("2", "b")}, s.List())

	s.Focus("2")
	s.ResolveDetail(task("2", "b"))
	require.True(t, s.Remove("2"))
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.FocusID())
	_, ok = s.Get("2")
	assert.False(t, ok)

	assert.False(t, s.Remove("missing"))
}

func TestStorePutUpdatesCurrent(t *testing.T) {
	s := NewStore[model.Task]()
	s.Focus("1")
	s.ResolveDetail(task("1", "a"))
	s.Put(task("1", "b"))

	cur, _ := s.Current()
	assert.Equal(t, "b", cur.Title)
}

func TestStoreHydrateOnlyWhenEmpty(t *testing.T) {
	s := NewStore[model.Task]()
	require.True(t, s.Hydrate([]model.Task{task("c1", "cached")}))
	assert.Len(t, s.List(), 1)
	assert.Equal(t, StatusIdle, s.Status())

	assert.False(t, s.Hydrate([]model.Task{task("c2", "again")}))

	s2 := NewStore[model.Task]()
	s2.BeginList()
	assert.False(t, s2.Hydrate([]model.Task{task("c1", "cached")}))
}

func TestStoreResetInvalidatesTickets(t *testing.T) {
	s := NewStore[model.Task]()
	tk := s.BeginList()
	s.Reset()

	assert.False(t, s.ResolveList(tk, []model.Task{task("1", "a")}))
	assert.Empty(t, s.List())
	assert.Equal(t, StatusIdle, s.Status())
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s := NewStore[model.Task]()
	s.Put(task("1", "a"))
	s.Focus("1")
	s.ResolveDetail(task("1", "a"))

	snap := s.Snapshot()
	snap.Items[0].Title = "mutated"
	snap.Current.Title = "mutated"

	got, _ := s.Get("1")
	cur, _ := s.Current()
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, "a", cur.Title)
}

func TestStoreConcurrentCompletions(t *testing.T) {
	s := NewStore[model.Task]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk := s.BeginList()
			s.ResolveList(tk, []model.Task{task("1", "x")})
			s.Put(task("2", "y"))
		}(i)
	}
	wg.Wait()

	_, ok := s.Get("2")
	assert.True(t, ok)
}

func TestPendingSettleAndRollback(t *testing.T) {
	p := NewPending[model.Member]()
	a := p.Add("p1", model.Member{User: model.UserRef{ID: "u1"}, Role: model.RoleDeveloper})
	b := p.Add("p1", model.Member{User: model.UserRef{ID: "u2"}, Role: model.RoleTester})
	require.NotEqual(t, a, b)

	entries := p.List("p1")
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Confirmed())

	assert.Equal(t, 1, p.Settle("p1", a))
	assert.Len(t, p.List("p1"), 1)
	assert.Equal(t, 1, p.Rollback("p1", b))
	assert.Empty(t, p.List("p1"))
	assert.Zero(t, p.Rollback("p1", b))
}

func TestMergeMarksConfirmed(t *testing.T) {
	p := NewPending[model.Member]()
	p.Add("p1", model.Member{User: model.UserRef{ID: "u2"}})

	merged := Merge([]model.Member{{User: model.UserRef{ID: "u1"}}}, p.List("p1"))
	require.Len(t, merged, 2)
	assert.True(t, merged[0].Confirmed())
	assert.False(t, merged[1].Confirmed())
}

func TestAppStateCommentsAndReset(t *testing.T) {
	a := New()
	c := a.Comments("t1")
	assert.Same(t, c, a.Comments("t1"))
	c.Put(model.Comment{ID: "c1", TaskID: "t1"})

	a.SetViewer(model.User{ID: "u1"})
	a.Tasks.Put(task("t1", "a"))
	a.Reset()

	assert.Empty(t, a.Viewer().ID)
	assert.Zero(t, a.Tasks.Len())
	assert.Zero(t, a.Comments("t1").Len())
}
