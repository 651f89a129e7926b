package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the model reacts to.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Activity   key.Binding
	NextScreen key.Binding
	PrevScreen key.Binding

	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	NextPage   key.Binding
	PrevPage   key.Binding
	GrowPage   key.Binding
	ShrinkPage key.Binding
	Sort       key.Binding

	Search  key.Binding
	Clear   key.Binding
	Confirm key.Binding
	Status  key.Binding
	Reset   key.Binding
	Refresh key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "e"), key.WithHelp("e", "quit")),
		Help:       key.NewBinding(key.WithKeys("?", "h"), key.WithHelp("?", "help")),
		CycleTheme: key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
		Activity:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "activity log")),
		NextScreen: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next screen")),
		PrevScreen: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous screen")),

		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Top:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first row")),
		Bottom: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last row")),

		NextPage:   key.NewBinding(key.WithKeys("n", "right", "pgdown"), key.WithHelp("n/→", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("p", "left", "pgup"), key.WithHelp("p/←", "previous page")),
		GrowPage:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "larger pages")),
		ShrinkPage: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller pages")),
		Sort: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "sort by column"),
		),

		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "keep search")),
		Status:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset table")),
		Refresh: key.NewBinding(key.WithKeys("R", "ctrl+r"), key.WithHelp("R", "refresh")),
	}
}

// ShortHelp feeds the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextScreen, k.NextPage, k.Sort, k.Search, k.Status, k.Help, k.Quit}
}

// FullHelp feeds the help overlay, one group per section.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextScreen, k.PrevScreen, k.Up, k.Down, k.Top, k.Bottom},
		{k.NextPage, k.PrevPage, k.GrowPage, k.ShrinkPage, k.Sort},
		{k.Search, k.Clear, k.Confirm, k.Status, k.Reset, k.Refresh},
		{k.Activity, k.CycleTheme, k.Help, k.Quit},
	}
}
