package ui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/five82/steward/internal/backend"
	"github.com/five82/steward/internal/config"
	"github.com/five82/steward/internal/logging"
	"github.com/five82/steward/internal/logtail"
	"github.com/five82/steward/internal/prefs"
	"github.com/five82/steward/internal/state"
	"github.com/five82/steward/internal/table"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Fetcher   backend.Fetcher
	Store     *state.Store
	Logger    zerolog.Logger
	Clock     clockwork.Clock
	// Tick is how often the model re-reads the store. Defaults to a second.
	Tick time.Duration
}

// PollSource is a client-paged resource the poller should keep fresh.
type PollSource struct {
	Resource backend.Resource
	Fetch    func(ctx context.Context) (any, error)
}

type (
	tickMsg         time.Time
	storeUpdatedMsg struct{}
	wakeMsg         struct{}
	prefsSavedMsg   struct{ err error }
	activityMsg     struct {
		entries []logtail.Entry
		err     error
	}
	fetchResultMsg struct {
		resource backend.Resource
		seq      uint64
		rows     any
		meta     table.Metadata
		err      error
	}
)

// programRef lets callbacks fired off the UI goroutine reach the program.
type programRef struct {
	p atomic.Pointer[tea.Program]
}

// send delivers msg without blocking the caller. Program.Send blocks until
// the event loop reads it, which would deadlock when called from Update.
func (r *programRef) send(msg tea.Msg) {
	if p := r.p.Load(); p != nil {
		go p.Send(msg)
	}
}

// Model is the root bubbletea model.
type Model struct {
	ctx       context.Context
	cfg       config.Config
	prefs     prefs.Prefs
	prefsPath string
	store     *state.Store
	log       zerolog.Logger
	tick      time.Duration
	program   *programRef

	screens []screen
	active  int

	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	pager   paginator.Model
	search  textinput.Model

	width, height int
	ready         bool
	searching     bool
	showHelp      bool
	showActivity  bool
	activity      viewport.Model
	entries       []logtail.Entry
	status        string
}

// New builds the model and its screens.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ref := &programRef{}
	logger := logging.Component(opts.Logger, "ui")
	deps := screenDeps{
		fetcher:  opts.Fetcher,
		debounce: opts.Config.DebounceWindow(),
		clock:    opts.Clock,
		logger:   opts.Logger,
		wake:     func() { ref.send(wakeMsg{}) },
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	pager := paginator.New()
	pager.Type = paginator.Dots

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "search"
	input.CharLimit = 120

	return Model{
		ctx:       ctx,
		cfg:       opts.Config,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		store:     opts.Store,
		log:       logger,
		tick:      tick,
		program:   ref,
		screens:   buildScreens(opts.Config, opts.Prefs, deps),
		theme:     GetTheme(opts.Prefs.Theme),
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		pager:     pager,
		search:    input,
	}
}

// PollSources lists the resources whose screens page in memory.
func (m Model) PollSources() []PollSource {
	var out []PollSource
	for _, s := range m.screens {
		if resource, fetch := s.pollSource(); fetch != nil {
			out = append(out, PollSource{Resource: resource, Fetch: fetch})
		}
	}
	return out
}

// StoreUpdated tells a running program that the store changed. Safe from any
// goroutine.
func (m Model) StoreUpdated() {
	m.program.send(storeUpdatedMsg{})
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	defer m.close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.program.p.Store(p)
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, tickCmd(m.tick)}
	for _, s := range m.screens {
		if s.mode() == table.ModeServer {
			s.refresh()
		} else {
			s.load(m.store)
		}
	}
	cmds = append(cmds, m.drainFetches()...)
	return tea.Batch(cmds...)
}

// Update implements tea.Model. Every message may have queued fetches on a
// screen, so they are drained after each step.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	cmds := append([]tea.Cmd{cmd}, m.drainFetches()...)
	return m, tea.Batch(cmds...)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.activity = viewport.New(max(msg.Width-2, 1), max(m.bodyHeight()-2, 1))
		m.activity.SetContent(m.renderActivityLines())
		m.activity.GotoBottom()
		m.ready = true
		return m, nil

	case tickMsg:
		m.loadClientScreens()
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.showActivity {
			cmds = append(cmds, loadActivityCmd(m.cfg.LogPath()))
		}
		return m, tea.Batch(cmds...)

	case storeUpdatedMsg:
		m.loadClientScreens()
		return m, nil

	case wakeMsg:
		// Fetches queued by a debounce timer are drained by Update.
		return m, nil

	case fetchResultMsg:
		for _, s := range m.screens {
			if s.resource() == msg.resource {
				if !s.complete(msg) {
					m.log.Debug().Str("resource", string(msg.resource)).Uint64("seq", msg.seq).Msg("stale page discarded")
				}
				break
			}
		}
		return m, nil

	case activityMsg:
		if msg.err != nil {
			m.status = "activity log: " + msg.err.Error()
			return m, nil
		}
		m.entries = msg.entries
		atBottom := m.activity.AtBottom()
		m.activity.SetContent(m.renderActivityLines())
		if atBottom {
			m.activity.GotoBottom()
		}
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.status = "save preferences: " + msg.err.Error()
			m.log.Warn().Err(msg.err).Msg("save preferences failed")
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	body := m.renderScreen()
	if m.showActivity {
		body = m.renderActivity()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusLine(),
		m.renderCommandBar(),
	)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.showActivity {
		return m.handleActivityKey(msg)
	}

	s := m.current()
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		return m, savePrefsCmd(m.prefsPath, m.prefs)
	case key.Matches(msg, m.keys.Activity):
		m.showActivity = true
		return m, loadActivityCmd(m.cfg.LogPath())
	case key.Matches(msg, m.keys.NextScreen):
		m.active = (m.active + 1) % len(m.screens)
		m.current().load(m.store)
	case key.Matches(msg, m.keys.PrevScreen):
		m.active = (m.active - 1 + len(m.screens)) % len(m.screens)
		m.current().load(m.store)
	case key.Matches(msg, m.keys.Up):
		s.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		s.moveSelection(1)
	case key.Matches(msg, m.keys.Top):
		s.selectEdge(false)
	case key.Matches(msg, m.keys.Bottom):
		s.selectEdge(true)
	case key.Matches(msg, m.keys.NextPage):
		s.nextPage()
	case key.Matches(msg, m.keys.PrevPage):
		s.prevPage()
	case key.Matches(msg, m.keys.GrowPage):
		return m.stepPageSize(1)
	case key.Matches(msg, m.keys.ShrinkPage):
		return m.stepPageSize(-1)
	case key.Matches(msg, m.keys.Sort):
		if n, ok := sortKey(msg.String()); ok {
			s.toggleSortColumn(n)
		}
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(s.search())
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Clear):
		if s.search() != "" {
			s.setSearch("")
		}
	case key.Matches(msg, m.keys.Status):
		if label := s.cycleStatus(); label != "" {
			m.status = "status: " + label
		}
	case key.Matches(msg, m.keys.Reset):
		s.reset()
		m.status = "table reset"
	case key.Matches(msg, m.keys.Refresh):
		s.refresh()
	}
	return m, nil
}

// handleSearchKey forwards typing to the input and every edit to the
// controller, which coalesces the keystrokes itself.
func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := m.current()
	switch {
	case key.Matches(msg, m.keys.Clear):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		s.setSearch("")
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != s.search() {
		s.setSearch(value)
	}
	return m, cmd
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Activity), key.Matches(msg, m.keys.Clear):
		m.showActivity = false
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}
	var cmd tea.Cmd
	m.activity, cmd = m.activity.Update(msg)
	return m, cmd
}

func (m Model) stepPageSize(dir int) (Model, tea.Cmd) {
	s := m.current()
	size := stepPageSize(s.pageSize(), dir, m.cfg.MaxPageSize)
	if size == s.pageSize() {
		return m, nil
	}
	s.setPageSize(size)
	m.status = fmt.Sprintf("%d rows per page", s.pageSize())
	m.prefs = m.prefs.WithPageSize(string(s.resource()), s.pageSize())
	return m, savePrefsCmd(m.prefsPath, m.prefs)
}

func (m Model) current() screen {
	return m.screens[m.active]
}

func (m Model) loadClientScreens() {
	for _, s := range m.screens {
		s.load(m.store)
	}
}

func (m Model) drainFetches() []tea.Cmd {
	var cmds []tea.Cmd
	for _, s := range m.screens {
		cmds = append(cmds, s.takeFetches(m.ctx)...)
	}
	return cmds
}

func (m Model) close() {
	for _, s := range m.screens {
		s.close()
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func savePrefsCmd(path string, p prefs.Prefs) tea.Cmd {
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}
