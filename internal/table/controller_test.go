package table

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects callback invocations; timer callbacks arrive on another
// goroutine.
type recorder struct {
	mu          sync.Mutex
	states      []State
	paginations []Pagination
	globals     []string
	fetches     []FetchRequest
	errs        []error
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnStateChange: func(s State) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.states = append(r.states, s)
		},
		OnPaginationChange: func(p Pagination) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.paginations = append(r.paginations, p)
		},
		OnGlobalFilterChange: func(v string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.globals = append(r.globals, v)
		},
		OnFetch: func(req FetchRequest) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.fetches = append(r.fetches, req)
		},
		OnError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, err)
		},
	}
}

func (r *recorder) globalCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.globals...)
}

func (r *recorder) stateCalls() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func (r *recorder) fetchCalls() []FetchRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FetchRequest(nil), r.fetches...)
}

func (r *recorder) lastFetch(t *testing.T) FetchRequest {
	t.Helper()
	calls := r.fetchCalls()
	require.NotEmpty(t, calls)
	return calls[len(calls)-1]
}

func newClientController(t *testing.T, rec *recorder, clock clockwork.Clock) *Controller[employee] {
	t.Helper()
	c := New(Config[employee]{
		InitialPageSize: 2,
		MaxPageSize:     50,
		Columns:         employeeColumns(),
		Clock:           clock,
		Callbacks:       rec.callbacks(),
	})
	t.Cleanup(c.Close)
	return c
}

func newServerController(t *testing.T, rec *recorder, clock clockwork.Clock) *Controller[employee] {
	t.Helper()
	c := New(Config[employee]{
		ServerPagination: true,
		InitialPageSize:  10,
		Columns:          employeeColumns(),
		Clock:            clock,
		Callbacks:        rec.callbacks(),
	})
	t.Cleanup(c.Close)
	return c
}

func TestController_ClientModePagesLocally(t *testing.T) {
	rec := &recorder{}
	c := newClientController(t, rec, clockwork.NewFakeClock())

	c.SetData(employees())
	view := c.View()
	assert.Equal(t, ModeClient, view.Mode)
	assert.Equal(t, []int{1, 2}, ids(view.Rows))
	assert.Equal(t, Metadata{TotalItems: 5, TotalPages: 3, CurrentPage: 1}, view.Meta)

	c.NextPage()
	assert.Equal(t, []int{3, 4}, ids(c.View().Rows))
	c.NextPage()
	c.NextPage()
	assert.Equal(t, 2, c.State().Pagination.PageIndex)
	assert.Equal(t, []int{5}, ids(c.View().Rows))

	c.ToggleSort("salary")
	assert.Equal(t, 0, c.State().Pagination.PageIndex)
	assert.Equal(t, []int{5, 2}, ids(c.View().Rows))

	assert.Empty(t, rec.fetchCalls())
	assert.False(t, c.Loading())
	assert.Equal(t, []Pagination{{PageIndex: 1, PageSize: 2}, {PageIndex: 2, PageSize: 2}, {PageIndex: 0, PageSize: 2}}, rec.paginations)
	assert.Len(t, rec.states, 3)
}

func TestController_ClientModeClampsOnShrink(t *testing.T) {
	rec := &recorder{}
	c := newClientController(t, rec, clockwork.NewFakeClock())
	c.SetData(employees())
	c.SetPageIndex(2)

	c.SetData(employees()[:3])

	assert.Equal(t, 1, c.State().Pagination.PageIndex)
	assert.Equal(t, []int{3}, ids(c.View().Rows))
	assert.Equal(t, Pagination{PageIndex: 1, PageSize: 2}, rec.paginations[len(rec.paginations)-1])
}

func TestController_ClientModeResultReturnsAllFilteredRows(t *testing.T) {
	rec := &recorder{}
	c := newClientController(t, rec, clockwork.NewFakeClock())
	c.SetData(employees())

	c.SetColumnFilter("dept", "Engineering")
	c.SetSorting([]Sort{{ColumnID: "salary", Desc: true}, {ColumnID: "nope"}})

	assert.Equal(t, []int{3, 1}, ids(c.Result()))
	assert.Equal(t, []Sort{{ColumnID: "salary", Desc: true}}, c.State().Sorting)
}

func TestController_UnknownColumnsAreIgnored(t *testing.T) {
	rec := &recorder{}
	c := newClientController(t, rec, clockwork.NewFakeClock())

	c.ToggleSort("nope")
	c.SetColumnFilter("nope", "x")

	assert.Empty(t, rec.states)
	assert.Nil(t, c.State().ColumnFilters)
}

func TestController_NoOpTransitionsDoNotEmit(t *testing.T) {
	rec := &recorder{}
	c := newClientController(t, rec, clockwork.NewFakeClock())
	c.SetData(employees())

	c.PrevPage()
	c.SetPagination(Pagination{PageIndex: 0, PageSize: 2})
	c.Reset()

	assert.Empty(t, rec.states)
	assert.Empty(t, rec.paginations)
}

func TestController_SearchUpdatesRowsImmediatelyButDebouncesEmission(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	c := newClientController(t, rec, clock)
	c.SetData(employees())

	c.SetGlobalFilter("sales")

	assert.Equal(t, []int{2}, ids(c.View().Rows))
	assert.Empty(t, rec.globalCalls())

	clock.Advance(DefaultDebounceWindow)
	require.Eventually(t, func() bool { return len(rec.globalCalls()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"sales"}, rec.globalCalls())
}

func TestController_ClientSearchCommitsStateOnEveryKeystroke(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	c := newClientController(t, rec, clock)
	c.SetData(employees())
	c.NextPage()
	require.Len(t, rec.stateCalls(), 1)

	c.SetGlobalFilter("sal")
	c.SetGlobalFilter("sales")

	states := rec.stateCalls()
	require.Len(t, states, 3)
	assert.Equal(t, "sal", states[1].GlobalFilter)
	assert.Equal(t, 0, states[1].Pagination.PageIndex)
	assert.Equal(t, "sales", states[2].GlobalFilter)
	assert.Empty(t, rec.globalCalls())

	clock.Advance(DefaultDebounceWindow)
	require.Eventually(t, func() bool { return len(rec.globalCalls()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"sales"}, rec.globalCalls())
	assert.Len(t, rec.stateCalls(), 3)
}

func TestController_PendingSearchSupersedesInflightFetch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	c := newServerController(t, rec, clock)

	c.SetPageIndex(2)
	first := rec.lastFetch(t)
	assert.Equal(t, 3, first.Descriptor.Page)

	c.SetGlobalFilter("eng")
	assert.Equal(t, 0, c.State().Pagination.PageIndex)

	applied := c.Complete(first.Seq, Response[employee]{
		Items: employees()[:1],
		Meta:  Metadata{TotalItems: 50, TotalPages: 5, CurrentPage: 3},
	}, nil)
	assert.False(t, applied)
	assert.Equal(t, 0, c.State().Pagination.PageIndex)
	assert.True(t, c.Loading())
	assert.Empty(t, c.View().Rows)

	clock.Advance(DefaultDebounceWindow)
	require.Eventually(t, func() bool { return len(rec.fetchCalls()) == 2 }, time.Second, time.Millisecond)
	second := rec.lastFetch(t)
	assert.Equal(t, 1, second.Descriptor.Page)
	assert.Equal(t, "eng", second.Descriptor.Search)

	assert.True(t, c.Complete(second.Seq, Response[employee]{
		Items: employees()[:2],
		Meta:  Metadata{TotalItems: 2, TotalPages: 1, CurrentPage: 1},
	}, nil))
	assert.Equal(t, 0, c.State().Pagination.PageIndex)
	assert.False(t, c.Loading())
}

func TestController_ErasedSearchReplacesSupersededFetch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	c := newServerController(t, rec, clock)

	c.Refresh()
	first := rec.lastFetch(t)
	c.SetGlobalFilter("x")
	c.SetGlobalFilter("")
	assert.False(t, c.Complete(first.Seq, Response[employee]{Meta: Metadata{TotalItems: 1}}, nil))

	clock.Advance(DefaultDebounceWindow)
	require.Eventually(t, func() bool { return len(rec.fetchCalls()) == 2 }, time.Second, time.Millisecond)
	second := rec.lastFetch(t)
	assert.Greater(t, second.Seq, first.Seq)
	assert.Empty(t, second.Descriptor.Search)
	assert.Empty(t, rec.globalCalls())
}

func TestController_KeystrokesCoalesceIntoOneEmission(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	c := newServerController(t, rec, clock)

	for _, v := range []string{"e", "eng", "engin", "enginee", "engineering"} {
		c.SetGlobalFilter(v)
		clock.Advance(40 * time.Millisecond)
	}
	assert.Empty(t, rec.globalCalls())
	assert.Empty(t, rec.fetchCalls())
	assert.False(t, c.Loading())

	clock.Advance(300 * time.Millisecond)

	require.Eventually(t, func() bool { return len(rec.fetchCalls()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"engineering"}, rec.globalCalls())
	req := rec.lastFetch(t)
	assert.Equal(t, "engineering", req.Descriptor.Search)
	assert.Equal(t, 1, req.Descriptor.Page)
	assert.True(t, c.Loading())

	// A later tick must not re-emit.
	clock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Len(t, rec.globalCalls(), 1)
}

func TestController_ErasedWithinWindowEmitsNothing(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	c := newServerController(t, rec, clock)

	c.SetGlobalFilter("x")
	c.SetGlobalFilter("")
	clock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)

	assert.Empty(t, rec.globalCalls())
	assert.Empty(t, rec.fetchCalls())
}

func TestController_DiscreteChangeFlushesPendingSearch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	c := newServerController(t, rec, clock)

	c.SetGlobalFilter("ann")
	c.ToggleSort("name")

	assert.Equal(t, []string{"ann"}, rec.globalCalls())
	require.Len(t, rec.fetchCalls(), 1)
	req := rec.lastFetch(t)
	assert.Equal(t, "ann", req.Descriptor.Search)
	assert.Equal(t, "name", req.Descriptor.SortBy)

	clock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Len(t, rec.fetchCalls(), 1)
}

func TestController_NegativeWindowDisablesDebounce(t *testing.T) {
	rec := &recorder{}
	c := New(Config[employee]{
		Columns:        employeeColumns(),
		DebounceWindow: -1,
		Callbacks:      rec.callbacks(),
	})

	c.SetGlobalFilter("a")
	c.SetGlobalFilter("an")

	assert.Equal(t, []string{"a", "an"}, rec.globalCalls())
}

func TestController_ServerFetchCycle(t *testing.T) {
	rec := &recorder{}
	c := newServerController(t, rec, clockwork.NewFakeClock())

	c.Refresh()
	req := rec.lastFetch(t)
	assert.Equal(t, uint64(1), req.Seq)
	assert.Equal(t, FetchDescriptor{Page: 1, Limit: 10}, req.Descriptor)
	assert.True(t, c.Loading())

	ok := c.Complete(req.Seq, Response[employee]{
		Items: employees()[:2],
		Meta:  Metadata{TotalItems: 25, TotalPages: 3, CurrentPage: 1},
	}, nil)

	require.True(t, ok)
	view := c.View()
	assert.False(t, view.Loading)
	assert.NoError(t, view.Err)
	assert.Equal(t, []int{1, 2}, ids(view.Rows))
	assert.Equal(t, Metadata{TotalItems: 25, TotalPages: 3, CurrentPage: 1}, view.Meta)

	c.NextPage()
	assert.Equal(t, 2, rec.lastFetch(t).Descriptor.Page)
}

func TestController_StaleResponseIsDiscarded(t *testing.T) {
	rec := &recorder{}
	c := newServerController(t, rec, clockwork.NewFakeClock())

	c.Refresh()
	first := rec.lastFetch(t)
	c.ToggleSort("salary")
	second := rec.lastFetch(t)
	require.Greater(t, second.Seq, first.Seq)
	assert.Equal(t, "salary", second.Descriptor.SortBy)

	stale := c.Complete(first.Seq, Response[employee]{Items: employees()[:1], Meta: Metadata{TotalItems: 1}}, nil)
	assert.False(t, stale)
	assert.True(t, c.Loading())
	assert.Empty(t, c.View().Rows)

	fresh := c.Complete(second.Seq, Response[employee]{Items: employees()[1:3], Meta: Metadata{TotalItems: 2}}, nil)
	assert.True(t, fresh)
	assert.False(t, c.Loading())
	assert.Equal(t, []int{2, 3}, ids(c.View().Rows))

	// A duplicate delivery is also stale.
	assert.False(t, c.Complete(second.Seq, Response[employee]{}, nil))
}

func TestController_ServerPageWinsSilently(t *testing.T) {
	rec := &recorder{}
	c := newServerController(t, rec, clockwork.NewFakeClock())
	c.SetPageIndex(4)
	req := rec.lastFetch(t)
	fetches := len(rec.fetchCalls())

	c.Complete(req.Seq, Response[employee]{
		Items: employees()[:1],
		Meta:  Metadata{TotalItems: 30, TotalPages: 3, CurrentPage: 3},
	}, nil)

	assert.Equal(t, 2, c.State().Pagination.PageIndex)
	assert.Len(t, rec.fetchCalls(), fetches)
	assert.False(t, c.Loading())
}

func TestController_ServerClampsOnShrinkWithOneCorrectiveFetch(t *testing.T) {
	rec := &recorder{}
	c := newServerController(t, rec, clockwork.NewFakeClock())
	c.Refresh()
	c.Complete(rec.lastFetch(t).Seq, Response[employee]{Items: employees(), Meta: Metadata{TotalItems: 50, CurrentPage: 1}}, nil)
	c.SetPageIndex(4)
	req := rec.lastFetch(t)
	assert.Equal(t, 5, req.Descriptor.Page)

	c.Complete(req.Seq, Response[employee]{Meta: Metadata{TotalItems: 12, TotalPages: 2, CurrentPage: 5}}, nil)

	corrective := rec.lastFetch(t)
	assert.Equal(t, req.Seq+1, corrective.Seq)
	assert.Equal(t, 2, corrective.Descriptor.Page)
	assert.Equal(t, 1, c.State().Pagination.PageIndex)
	assert.True(t, c.Loading())
	// Last rows stay visible until the corrective page arrives.
	assert.Len(t, c.View().Rows, 5)

	c.Complete(corrective.Seq, Response[employee]{Items: employees()[:2], Meta: Metadata{TotalItems: 12, TotalPages: 2, CurrentPage: 2}}, nil)
	assert.False(t, c.Loading())
	assert.Equal(t, corrective.Seq, rec.lastFetch(t).Seq)
}

func TestController_ServerClampsPageSizeChangeToKnownTotal(t *testing.T) {
	rec := &recorder{}
	c := newServerController(t, rec, clockwork.NewFakeClock())
	c.Refresh()
	c.Complete(rec.lastFetch(t).Seq, Response[employee]{Meta: Metadata{TotalItems: 45, CurrentPage: 1}}, nil)
	c.SetPageIndex(4)

	c.SetPageSize(25)

	assert.Equal(t, Pagination{PageIndex: 1, PageSize: 25}, c.State().Pagination)
	assert.Equal(t, 2, rec.lastFetch(t).Descriptor.Page)
}

func TestController_ServerErrorKeepsLastRows(t *testing.T) {
	rec := &recorder{}
	c := newServerController(t, rec, clockwork.NewFakeClock())
	c.Refresh()
	c.Complete(rec.lastFetch(t).Seq, Response[employee]{Items: employees()[:3], Meta: Metadata{TotalItems: 3}}, nil)

	c.Refresh()
	boom := errors.New("backend unavailable")
	ok := c.Complete(rec.lastFetch(t).Seq, Response[employee]{}, boom)

	require.True(t, ok)
	view := c.View()
	assert.False(t, view.Loading)
	assert.ErrorIs(t, view.Err, boom)
	assert.Equal(t, []int{1, 2, 3}, ids(view.Rows))
	assert.Equal(t, 3, view.Meta.TotalItems)
	assert.Equal(t, []error{boom}, rec.errs)
}

func TestController_AbortClearsLoading(t *testing.T) {
	rec := &recorder{}
	c := newServerController(t, rec, clockwork.NewFakeClock())
	c.Refresh()
	req := rec.lastFetch(t)

	c.Abort()

	assert.False(t, c.Loading())
	assert.False(t, c.Complete(req.Seq, Response[employee]{Items: employees()}, nil))
	assert.Empty(t, c.View().Rows)
}

func TestController_CallbacksMayReenter(t *testing.T) {
	var c *Controller[employee]
	var errs []error
	c = New(Config[employee]{
		ServerPagination: true,
		Columns:          employeeColumns(),
		Callbacks: Callbacks{
			OnFetch: func(req FetchRequest) {
				rows := employees()[:req.Descriptor.Limit]
				c.Complete(req.Seq, Response[employee]{Items: rows, Meta: Metadata{TotalItems: 5}}, nil)
			},
			OnError: func(err error) { errs = append(errs, err) },
		},
	})
	defer c.Close()

	c.SetPageSize(3)

	assert.False(t, c.Loading())
	assert.Equal(t, []int{1, 2, 3}, ids(c.View().Rows))
	assert.Empty(t, errs)
}

func TestController_SetDataIgnoredInServerMode(t *testing.T) {
	rec := &recorder{}
	c := newServerController(t, rec, clockwork.NewFakeClock())

	c.SetData(employees())

	assert.Empty(t, c.View().Rows)
	assert.Empty(t, rec.states)
}
