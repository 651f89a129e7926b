package table

import (
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	// DefaultPageSize is used when Config.InitialPageSize is unset.
	DefaultPageSize = 10
	// DefaultDebounceWindow is the quiescence window for global filter input.
	DefaultDebounceWindow = 300 * time.Millisecond
)

// Callbacks are the outbound hooks of a Controller. All are optional. They
// run outside the controller lock, in commit order, and may call back in.
type Callbacks struct {
	// OnStateChange fires on every committed transition.
	OnStateChange func(State)
	// OnPaginationChange fires only when the page index or size changed.
	OnPaginationChange func(Pagination)
	// OnGlobalFilterChange fires once per quiescent burst of text input.
	OnGlobalFilterChange func(string)
	// OnFetch asks the owning feature to run a server-mode request.
	OnFetch func(FetchRequest)
	// OnError receives server-mode fetch failures.
	OnError func(error)
}

// Response is the owning feature's answer to a FetchRequest.
type Response[R any] struct {
	Items []R
	Meta  Metadata
}

// Config declares a table instance.
type Config[R any] struct {
	ServerPagination bool
	InitialPageSize  int
	MaxPageSize      int // zero leaves the page size unbounded
	DefaultSort      []Sort
	Columns          []Column[R]
	// DebounceWindow coalesces global filter emissions. Zero uses
	// DefaultDebounceWindow; a negative window disables coalescing.
	DebounceWindow time.Duration
	Clock          clockwork.Clock
	Logger         *zerolog.Logger
	Callbacks      Callbacks
}

// View is a read-only copy of what a table should render.
type View[R any] struct {
	Mode    Mode
	State   State
	Rows    []R
	Meta    Metadata
	Loading bool
	Err     error
}

// Controller reconciles table state with either an in-memory dataset or a
// server-paginated endpoint.
type Controller[R any] struct {
	mu     sync.Mutex
	mode   Mode
	cols   *columnSet[R]
	store  store
	cb     Callbacks
	clock  clockwork.Clock
	window time.Duration
	log    zerolog.Logger

	data      []R
	filtered  []R
	visible   []R
	meta      Metadata
	metaKnown bool

	// Server fetch cycle. seq is the token of the latest issued request.
	seq          uint64
	inflight     bool
	inflightPage int
	lastErr      error

	debounce      clockwork.Timer
	debounceGen   uint64
	pendingGlobal bool

	emittedPagination Pagination
	emittedGlobal     string

	queue    []emission
	draining bool
}

// New builds a Controller from cfg. The mode is fixed for its lifetime.
func New[R any](cfg Config[R]) *Controller[R] {
	pageSize := cfg.InitialPageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	window := cfg.DebounceWindow
	if window == 0 {
		window = DefaultDebounceWindow
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	c := &Controller[R]{
		mode:   ResolveMode(cfg.ServerPagination),
		cols:   newColumnSet(cfg.Columns),
		cb:     cfg.Callbacks,
		clock:  clock,
		window: window,
	}
	c.log = logger.With().Str("component", "table").Str("mode", c.mode.String()).Logger()

	var sorting []Sort
	for _, s := range cfg.DefaultSort {
		if c.cols.has(s.ColumnID) {
			sorting = append(sorting, s)
		}
	}
	c.store = newStore(pageSize, cfg.MaxPageSize, sorting)
	c.emittedPagination = c.store.state.Pagination
	if c.mode == ModeClient {
		c.recomputeLocked()
	}
	return c
}

// Mode reports whether the table pages locally or on the server.
func (c *Controller[R]) Mode() Mode {
	return c.mode
}

// State returns a copy of the current table state.
func (c *Controller[R]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.state.clone()
}

// Loading reports whether a server fetch is in flight.
func (c *Controller[R]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight
}

// View returns the visible rows, metadata and fetch status.
func (c *Controller[R]) View() View[R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View[R]{
		Mode:    c.mode,
		State:   c.store.state.clone(),
		Rows:    slices.Clone(c.visible),
		Meta:    c.meta,
		Loading: c.inflight,
		Err:     c.lastErr,
	}
}

// Result returns every row that passes the current filters, sorted. In server
// mode only the current page is known.
func (c *Controller[R]) Result() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeServer {
		return slices.Clone(c.visible)
	}
	return slices.Clone(c.filtered)
}

// SetPagination replaces the page window. Out-of-range values are clamped.
func (c *Controller[R]) SetPagination(next Pagination) {
	c.mu.Lock()
	if next.PageIndex < 0 || next.PageSize <= 0 {
		c.log.Debug().Int("page_index", next.PageIndex).Int("page_size", next.PageSize).Msg("clamping invalid pagination")
	}
	c.applyLocked(c.store.setPagination(next), false)
	c.unlockAndFlush()
}

// SetPageIndex moves to a zero-based page, keeping the page size.
func (c *Controller[R]) SetPageIndex(index int) {
	c.mu.Lock()
	next := c.store.state.Pagination
	next.PageIndex = index
	c.applyLocked(c.store.setPagination(next), false)
	c.unlockAndFlush()
}

// SetPageSize changes the page size, keeping the page index.
func (c *Controller[R]) SetPageSize(size int) {
	c.mu.Lock()
	next := c.store.state.Pagination
	next.PageSize = size
	c.applyLocked(c.store.setPagination(next), false)
	c.unlockAndFlush()
}

// NextPage advances one page; the last page is sticky.
func (c *Controller[R]) NextPage() {
	c.mu.Lock()
	next := c.store.state.Pagination
	if c.metaKnown && next.PageIndex >= c.meta.TotalPages-1 {
		c.mu.Unlock()
		return
	}
	next.PageIndex++
	c.applyLocked(c.store.setPagination(next), false)
	c.unlockAndFlush()
}

// PrevPage goes back one page; the first page is sticky.
func (c *Controller[R]) PrevPage() {
	c.mu.Lock()
	next := c.store.state.Pagination
	next.PageIndex--
	c.applyLocked(c.store.setPagination(next), false)
	c.unlockAndFlush()
}

// SetSorting replaces the sort sequence. Unknown columns and duplicates are
// dropped.
func (c *Controller[R]) SetSorting(next []Sort) {
	c.mu.Lock()
	known := make([]Sort, 0, len(next))
	for _, s := range next {
		if c.cols.has(s.ColumnID) {
			known = append(known, s)
			continue
		}
		c.log.Debug().Str("column", s.ColumnID).Msg("ignoring sort on unknown column")
	}
	c.applyLocked(c.store.setSorting(known), false)
	c.unlockAndFlush()
}

// ToggleSort applies a header click on columnID.
func (c *Controller[R]) ToggleSort(columnID string) {
	c.mu.Lock()
	if !c.cols.has(columnID) {
		c.log.Debug().Str("column", columnID).Msg("ignoring sort on unknown column")
		c.mu.Unlock()
		return
	}
	c.applyLocked(c.store.toggleSort(columnID), false)
	c.unlockAndFlush()
}

// SetColumnFilter sets or, for an empty value, clears a column filter.
func (c *Controller[R]) SetColumnFilter(columnID string, value FilterValue) {
	c.mu.Lock()
	if !c.cols.has(columnID) {
		c.log.Debug().Str("column", columnID).Msg("ignoring filter on unknown column")
		c.mu.Unlock()
		return
	}
	c.applyLocked(c.store.setColumnFilter(columnID, value), false)
	c.unlockAndFlush()
}

// SetGlobalFilter replaces the free-text filter. Emissions are coalesced over
// the debounce window; client-mode rows update immediately.
func (c *Controller[R]) SetGlobalFilter(value string) {
	c.mu.Lock()
	c.applyLocked(c.store.setGlobalFilter(value), true)
	c.unlockAndFlush()
}

// Reset restores the initial page size, default sort and empty filters.
func (c *Controller[R]) Reset() {
	c.mu.Lock()
	c.applyLocked(c.store.reset(), false)
	c.unlockAndFlush()
}

// SetData supplies the full dataset in client mode. rows is read, never
// modified. Ignored in server mode.
func (c *Controller[R]) SetData(rows []R) {
	c.mu.Lock()
	if c.mode != ModeClient {
		c.log.Debug().Int("rows", len(rows)).Msg("ignoring SetData on server-paginated table")
		c.mu.Unlock()
		return
	}
	c.data = rows
	c.recomputeLocked()
	if c.store.state.Pagination != c.emittedPagination {
		st := c.store.state.clone()
		p := st.Pagination
		c.emittedPagination = p
		c.queue = append(c.queue, emission{state: &st, pagination: &p})
	}
	c.unlockAndFlush()
}

// Refresh recomputes a client-mode table or issues a server fetch for the
// current state, superseding any in-flight request.
func (c *Controller[R]) Refresh() {
	c.mu.Lock()
	switch {
	case c.mode == ModeClient:
		c.recomputeLocked()
	case c.pendingGlobal:
		c.emitLocked()
	default:
		req := c.beginFetchLocked()
		c.queue = append(c.queue, emission{fetch: &req})
	}
	c.unlockAndFlush()
}

// Complete delivers the outcome of the request identified by seq. It returns
// false when the response was stale and discarded.
func (c *Controller[R]) Complete(seq uint64, resp Response[R], err error) bool {
	c.mu.Lock()
	if c.mode != ModeServer || !c.inflight || seq != c.seq {
		c.log.Debug().Uint64("seq", seq).Uint64("latest", c.seq).Msg("discarding stale response")
		c.mu.Unlock()
		return false
	}
	c.inflight = false

	if err != nil {
		c.lastErr = err
		c.log.Warn().Err(err).Uint64("seq", seq).Msg("fetch failed; keeping last rows")
		c.queue = append(c.queue, emission{err: err})
		c.unlockAndFlush()
		return true
	}
	c.lastErr = nil

	meta := normalizeMeta(resp.Meta, c.store.state.Pagination.PageSize, c.inflightPage)
	if meta.TotalItems > 0 && meta.CurrentPage > meta.TotalPages {
		c.log.Debug().Int("page", meta.CurrentPage).Int("total_pages", meta.TotalPages).Msg("requested page past the end; clamping")
		meta.CurrentPage = meta.TotalPages
		c.meta = meta
		c.metaKnown = true
		c.store.state.Pagination.PageIndex = meta.TotalPages - 1
		c.emitLocked()
		c.unlockAndFlush()
		return true
	}

	c.visible = slices.Clone(resp.Items)
	c.meta = meta
	c.metaKnown = true
	if index := meta.CurrentPage - 1; index != c.store.state.Pagination.PageIndex {
		c.log.Debug().Int("local", c.store.state.Pagination.PageIndex+1).Int("server", meta.CurrentPage).Msg("adopting server page")
		c.store.state.Pagination.PageIndex = index
		// The server already answered for this page.
		c.emittedPagination = c.store.state.Pagination
	}
	c.unlockAndFlush()
	return true
}

// Abort forgets the in-flight request; its response will be discarded.
func (c *Controller[R]) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight {
		c.log.Debug().Uint64("seq", c.seq).Msg("aborting fetch")
	}
	c.inflight = false
}

// Close stops a pending debounce timer without emitting.
func (c *Controller[R]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopDebounceLocked()
}

// applyLocked reacts to a committed transition. typed marks free-text input,
// the only change that is debounced.
func (c *Controller[R]) applyLocked(ch change, typed bool) {
	if ch == 0 {
		return
	}
	if c.mode == ModeClient {
		c.recomputeLocked()
	} else {
		c.clampServerPageLocked()
	}

	if ch.paginationOnly() && c.store.state.Pagination == c.emittedPagination {
		return
	}
	if typed && c.window > 0 {
		if c.mode == ModeClient {
			c.emitStateLocked()
		} else {
			c.supersedeLocked()
		}
		c.scheduleGlobalLocked()
		return
	}
	c.emitLocked()
}

func (c *Controller[R]) recomputeLocked() {
	res := runPipeline(c.cols, c.store.state, c.data)
	if res.pageIndex != c.store.state.Pagination.PageIndex {
		c.log.Debug().Int("from", c.store.state.Pagination.PageIndex).Int("to", res.pageIndex).Msg("clamping page index")
		c.store.state.Pagination.PageIndex = res.pageIndex
	}
	c.visible = res.visible
	c.filtered = res.filtered
	c.meta = res.meta
	c.metaKnown = true
}

func (c *Controller[R]) clampServerPageLocked() {
	if !c.metaKnown {
		return
	}
	pages := TotalPages(c.meta.TotalItems, c.store.state.Pagination.PageSize)
	if c.store.state.Pagination.PageIndex > pages-1 {
		c.store.state.Pagination.PageIndex = pages - 1
	}
}

// emitLocked commits the current state: it cancels any pending text
// debounce (its value rides along) and, in server mode, issues a fetch.
func (c *Controller[R]) emitLocked() {
	c.stopDebounceLocked()

	st := c.store.state.clone()
	e := emission{state: &st}
	if st.Pagination != c.emittedPagination {
		p := st.Pagination
		e.pagination = &p
		c.emittedPagination = p
	}
	if st.GlobalFilter != c.emittedGlobal {
		g := st.GlobalFilter
		e.global = &g
		c.emittedGlobal = g
	}
	if c.mode == ModeServer {
		req := c.beginFetchLocked()
		e.fetch = &req
	}
	c.queue = append(c.queue, e)
}

// emitStateLocked commits a client-mode search keystroke. Only
// OnGlobalFilterChange waits for the debounce window.
func (c *Controller[R]) emitStateLocked() {
	st := c.store.state.clone()
	e := emission{state: &st}
	if st.Pagination != c.emittedPagination {
		p := st.Pagination
		e.pagination = &p
		c.emittedPagination = p
	}
	c.queue = append(c.queue, e)
}

// supersedeLocked invalidates the in-flight token while a server-mode search
// waits out the debounce window, so its response cannot overwrite the reset
// page. Loading stays true until the debounced fetch goes out.
func (c *Controller[R]) supersedeLocked() {
	if !c.inflight {
		return
	}
	c.log.Debug().Uint64("superseded", c.seq).Msg("pending search supersedes in-flight fetch")
	c.seq++
}

func (c *Controller[R]) beginFetchLocked() FetchRequest {
	if c.inflight {
		c.log.Debug().Uint64("superseded", c.seq).Msg("superseding in-flight fetch")
	}
	c.seq++
	c.inflight = true
	c.inflightPage = c.store.state.Pagination.PageIndex + 1
	return FetchRequest{Seq: c.seq, Descriptor: buildDescriptor(c.cols, c.store.state)}
}

func (c *Controller[R]) scheduleGlobalLocked() {
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.pendingGlobal = true
	c.debounceGen++
	gen := c.debounceGen
	c.debounce = c.clock.AfterFunc(c.window, func() { c.flushGlobal(gen) })
}

func (c *Controller[R]) stopDebounceLocked() {
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.pendingGlobal = false
	c.debounceGen++
}

func (c *Controller[R]) flushGlobal(gen uint64) {
	c.mu.Lock()
	if gen != c.debounceGen || !c.pendingGlobal {
		c.mu.Unlock()
		return
	}
	c.debounce = nil
	c.pendingGlobal = false
	st := c.store.state
	if c.mode == ModeClient {
		if st.GlobalFilter == c.emittedGlobal {
			c.mu.Unlock()
			return
		}
		g := st.GlobalFilter
		c.emittedGlobal = g
		c.queue = append(c.queue, emission{global: &g})
		c.unlockAndFlush()
		return
	}
	// Typed and erased inside the window. A superseded fetch still needs
	// replacing.
	if st.GlobalFilter == c.emittedGlobal && st.Pagination == c.emittedPagination && !c.inflight {
		c.mu.Unlock()
		return
	}
	c.emitLocked()
	c.unlockAndFlush()
}

// unlockAndFlush releases the lock and dispatches queued emissions in order.
// A nested call from inside a callback only enqueues; the outer drain
// dispatches it.
func (c *Controller[R]) unlockAndFlush() {
	if c.draining || len(c.queue) == 0 {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.queue) > 0 {
		e := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		e.dispatch(c.cb)
		c.mu.Lock()
	}
	c.queue = nil
	c.draining = false
	c.mu.Unlock()
}

func normalizeMeta(m Metadata, pageSize, requestedPage int) Metadata {
	if m.TotalItems < 0 {
		m.TotalItems = 0
	}
	if m.TotalPages <= 0 {
		m.TotalPages = TotalPages(m.TotalItems, pageSize)
	}
	if m.CurrentPage <= 0 {
		m.CurrentPage = requestedPage
	}
	if m.TotalItems == 0 && m.CurrentPage > m.TotalPages {
		m.CurrentPage = m.TotalPages
	}
	return m
}

type emission struct {
	state      *State
	pagination *Pagination
	global     *string
	fetch      *FetchRequest
	err        error
}

func (e emission) dispatch(cb Callbacks) {
	if e.state != nil && cb.OnStateChange != nil {
		cb.OnStateChange(*e.state)
	}
	if e.pagination != nil && cb.OnPaginationChange != nil {
		cb.OnPaginationChange(*e.pagination)
	}
	if e.global != nil && cb.OnGlobalFilterChange != nil {
		cb.OnGlobalFilterChange(*e.global)
	}
	if e.fetch != nil && cb.OnFetch != nil {
		cb.OnFetch(*e.fetch)
	}
	if e.err != nil && cb.OnError != nil {
		cb.OnError(e.err)
	}
}
