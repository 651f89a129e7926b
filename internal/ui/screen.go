package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/five82/steward/internal/backend"
	"github.com/five82/steward/internal/logging"
	"github.com/five82/steward/internal/state"
	"github.com/five82/steward/internal/table"
)

// screen is one list view. tableScreen[R] is the only implementation; the
// interface lets the model hold screens of different row types.
type screen interface {
	resource() backend.Resource
	title() string
	mode() table.Mode

	nextPage()
	prevPage()
	pageSize() int
	setPageSize(size int)
	toggleSortColumn(n int) bool
	search() string
	setSearch(value string)
	cycleStatus() string
	statusLabel() string
	reset()
	refresh()

	load(store *state.Store)
	takeFetches(ctx context.Context) []tea.Cmd
	complete(msg fetchResultMsg) bool
	loading() bool

	moveSelection(delta int)
	selectEdge(last bool)
	view() screenView

	pollSource() (backend.Resource, func(ctx context.Context) (any, error))
	close()
}

// column declares one rendered column.
type column[R any] struct {
	ID         string
	Title      string
	Width      int
	Searchable bool
	Param      string
	Value      func(R) any
	Format     func(R) string
	// Status marks the column whose cell picks the row's status colour.
	Status bool
}

func (c column[R]) text(row R) string {
	switch {
	case c.Format != nil:
		return c.Format(row)
	case c.Value != nil:
		return formatValue(c.Value(row))
	}
	return ""
}

// filterOption is one step of the "f" status filter cycle.
type filterOption struct {
	Label string
	Value table.FilterValue
}

// statusFilter cycles a single column through fixed values.
type statusFilter struct {
	Column  string
	Options []filterOption
}

// screenDef describes a screen before it is bound to a controller.
type screenDef[R any] struct {
	Resource    backend.Resource
	Title       string
	ServerPaged bool
	Columns     []column[R]
	DefaultSort []table.Sort
	Filter      *statusFilter
}

// screenDeps are the shared collaborators of every screen.
type screenDeps struct {
	fetcher     backend.Fetcher
	pageSize    int
	maxPageSize int
	debounce    time.Duration
	clock       clockwork.Clock
	logger      zerolog.Logger
	wake        func()
}

// screenView is what the renderer needs from a screen.
type screenView struct {
	Title    string
	Mode     table.Mode
	Headers  []header
	Rows     [][]cell
	Selected int
	Meta     table.Metadata
	State    table.State
	Loading  bool
	Err      error
	Filter   string
}

type header struct {
	Title   string
	Width   int
	Sorted  bool
	Desc    bool
	SortPos int
}

type cell struct {
	Text   string
	Status string
}

type tableScreen[R any] struct {
	def      screenDef[R]
	ctrl     *table.Controller[R]
	fetcher  backend.Fetcher
	log      zerolog.Logger
	selected int
	filterAt int

	mu      sync.Mutex
	pending []table.FetchRequest
	cancel  context.CancelFunc
	version uint64
}

func newTableScreen[R any](def screenDef[R], serverPaged bool, deps screenDeps) *tableScreen[R] {
	s := &tableScreen[R]{
		def:     def,
		fetcher: deps.fetcher,
		log:     logging.Component(deps.logger, "screen").With().Str("resource", string(def.Resource)).Logger(),
	}

	cols := make([]table.Column[R], 0, len(def.Columns))
	for _, c := range def.Columns {
		cols = append(cols, table.Column[R]{ID: c.ID, Searchable: c.Searchable, Value: c.Value, Param: c.Param})
	}

	logger := s.log
	s.ctrl = table.New(table.Config[R]{
		ServerPagination: serverPaged,
		InitialPageSize:  deps.pageSize,
		MaxPageSize:      deps.maxPageSize,
		DefaultSort:      def.DefaultSort,
		Columns:          cols,
		DebounceWindow:   deps.debounce,
		Clock:            deps.clock,
		Logger:           &logger,
		Callbacks: table.Callbacks{
			OnFetch: func(req table.FetchRequest) {
				s.mu.Lock()
				s.pending = append(s.pending, req)
				s.mu.Unlock()
				if deps.wake != nil {
					deps.wake()
				}
			},
			OnGlobalFilterChange: func(value string) {
				s.log.Debug().Str("search", value).Msg("search committed")
				// Client-mode rows already reflect the search; the model only
				// needs a redraw when the debounce fires off the UI goroutine.
				if deps.wake != nil {
					deps.wake()
				}
			},
			OnError: func(err error) {
				s.log.Warn().Err(err).Msg("fetch failed")
			},
		},
	})
	return s
}

func (s *tableScreen[R]) resource() backend.Resource { return s.def.Resource }
func (s *tableScreen[R]) title() string              { return s.def.Title }
func (s *tableScreen[R]) mode() table.Mode           { return s.ctrl.Mode() }
func (s *tableScreen[R]) loading() bool              { return s.ctrl.Loading() }

func (s *tableScreen[R]) nextPage() {
	s.ctrl.NextPage()
	s.selected = 0
}

func (s *tableScreen[R]) prevPage() {
	s.ctrl.PrevPage()
	s.selected = 0
}

func (s *tableScreen[R]) pageSize() int {
	return s.ctrl.State().Pagination.PageSize
}

func (s *tableScreen[R]) setPageSize(size int) {
	s.ctrl.SetPageSize(size)
	s.clampSelection()
}

// toggleSortColumn toggles the sort on the n-th (1-based) visible column.
func (s *tableScreen[R]) toggleSortColumn(n int) bool {
	if n < 1 || n > len(s.def.Columns) {
		return false
	}
	s.ctrl.ToggleSort(s.def.Columns[n-1].ID)
	s.selected = 0
	return true
}

func (s *tableScreen[R]) search() string {
	return s.ctrl.State().GlobalFilter
}

func (s *tableScreen[R]) setSearch(value string) {
	s.ctrl.SetGlobalFilter(value)
	s.clampSelection()
}

func (s *tableScreen[R]) cycleStatus() string {
	f := s.def.Filter
	if f == nil || len(f.Options) == 0 {
		return ""
	}
	s.filterAt = (s.filterAt + 1) % (len(f.Options) + 1)
	if s.filterAt == 0 {
		s.ctrl.SetColumnFilter(f.Column, nil)
	} else {
		s.ctrl.SetColumnFilter(f.Column, f.Options[s.filterAt-1].Value)
	}
	s.selected = 0
	return s.statusLabel()
}

func (s *tableScreen[R]) statusLabel() string {
	if s.def.Filter == nil || s.filterAt == 0 {
		return "All"
	}
	return s.def.Filter.Options[s.filterAt-1].Label
}

func (s *tableScreen[R]) reset() {
	s.filterAt = 0
	s.selected = 0
	s.ctrl.Reset()
}

func (s *tableScreen[R]) refresh() {
	s.ctrl.Refresh()
}

// load feeds a client-mode controller from the poller's snapshot.
func (s *tableScreen[R]) load(store *state.Store) {
	if store == nil || s.ctrl.Mode() != table.ModeClient {
		return
	}
	version := store.Version()
	if version == s.version {
		return
	}
	s.version = version
	snap := store.Snapshot(s.def.Resource)
	if !snap.Loaded {
		return
	}
	s.ctrl.SetData(state.Rows[R](snap))
	s.clampSelection()
}

// takeFetches turns queued fetch requests into commands. Only the newest
// request is worth running; older ones are cancelled and would be discarded
// on arrival anyway.
func (s *tableScreen[R]) takeFetches(ctx context.Context) []tea.Cmd {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	if len(pending) == 0 {
		s.mu.Unlock()
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	req := pending[len(pending)-1]
	s.log.Debug().Uint64("seq", req.Seq).Str("query", req.Descriptor.Query().Encode()).Msg("fetching page")
	return []tea.Cmd{s.fetchCmd(reqCtx, req)}
}

func (s *tableScreen[R]) fetchCmd(ctx context.Context, req table.FetchRequest) tea.Cmd {
	fetcher := s.fetcher
	resource := s.def.Resource
	return func() tea.Msg {
		msg := fetchResultMsg{resource: resource, seq: req.Seq}
		if fetcher == nil {
			msg.err = fmt.Errorf("list %s: no backend configured", resource)
			return msg
		}
		page, err := backend.List[R](ctx, fetcher, resource, req.Descriptor.Query())
		msg.rows = page.Items
		msg.meta = table.Metadata{
			TotalItems:  page.Pagination.TotalItems,
			TotalPages:  page.Pagination.TotalPages,
			CurrentPage: page.Pagination.CurrentPage,
		}
		msg.err = err
		return msg
	}
}

func (s *tableScreen[R]) complete(msg fetchResultMsg) bool {
	rows, _ := msg.rows.([]R)
	ok := s.ctrl.Complete(msg.seq, table.Response[R]{Items: rows, Meta: msg.meta}, msg.err)
	if ok {
		s.clampSelection()
	}
	return ok
}

func (s *tableScreen[R]) moveSelection(delta int) {
	n := len(s.ctrl.View().Rows)
	if n == 0 {
		s.selected = 0
		return
	}
	s.selected = min(max(s.selected+delta, 0), n-1)
}

func (s *tableScreen[R]) selectEdge(last bool) {
	if !last {
		s.selected = 0
		return
	}
	s.selected = max(len(s.ctrl.View().Rows)-1, 0)
}

func (s *tableScreen[R]) clampSelection() {
	n := len(s.ctrl.View().Rows)
	if s.selected >= n {
		s.selected = max(n-1, 0)
	}
}

func (s *tableScreen[R]) view() screenView {
	v := s.ctrl.View()
	out := screenView{
		Title:    s.def.Title,
		Mode:     v.Mode,
		Selected: s.selected,
		Meta:     v.Meta,
		State:    v.State,
		Loading:  v.Loading,
		Err:      v.Err,
		Filter:   s.statusLabel(),
	}
	for _, c := range s.def.Columns {
		h := header{Title: c.Title, Width: c.Width}
		if desc, pos, ok := v.State.SortFor(c.ID); ok {
			h.Sorted, h.Desc, h.SortPos = true, desc, pos
		}
		out.Headers = append(out.Headers, h)
	}
	for _, row := range v.Rows {
		cells := make([]cell, 0, len(s.def.Columns))
		for _, c := range s.def.Columns {
			text := c.text(row)
			ce := cell{Text: text}
			if c.Status {
				ce.Status = strings.ToLower(strings.TrimSpace(text))
			}
			cells = append(cells, ce)
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

func (s *tableScreen[R]) pollSource() (backend.Resource, func(ctx context.Context) (any, error)) {
	if s.ctrl.Mode() != table.ModeClient {
		return "", nil
	}
	fetcher := s.fetcher
	resource := s.def.Resource
	return resource, func(ctx context.Context) (any, error) {
		return backend.ListAll[R](ctx, fetcher, resource, nil)
	}
}

func (s *tableScreen[R]) close() {
	s.ctrl.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
