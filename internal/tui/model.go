package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/soundseeker/seekerctl/internal/dashboard"
	"github.com/soundseeker/seekerctl/internal/types"
)

type UIState int

const (
	DashboardState UIState = iota
	InputState             // Add-playlist prompt
)

// Controller receives operator intents. *dashboard.Session implements it.
type Controller interface {
	Start()
	Pause()
	Stop()
	AddPlaylist(url string)
	RemovePlaylist(url string)
	RefreshPlaylists()
}

// Options configure the dashboard model.
type Options struct {
	ServerURL      string
	Theme          int
	ClipboardPaste bool
}

// Messages forwarded from the session hubs
type (
	viewMsg       struct{ view dashboard.View }
	logsMsg       struct{ entries []types.LogEntry }
	playlistsMsg  struct{ state dashboard.PlaylistState }
	libraryMsg    struct{ state dashboard.LibraryState }
	connectionMsg struct{ state dashboard.ConnectionState }
	clipboardMsg  struct{ text string }
)

type RootModel struct {
	ctrl   Controller
	opts   Options
	styles Styles

	width  int
	height int
	state  UIState

	view       dashboard.View
	logs       []types.LogEntry
	playlists  dashboard.PlaylistState
	library    dashboard.LibraryState
	connection dashboard.ConnectionState

	progress progress.Model
	input    textinput.Model
	logView  viewport.Model
	cursor   int // Selected playlist

	updates chan tea.Msg
	done    chan struct{}
	unsubs  []func()
}

func newModel(ctrl Controller, opts Options) RootModel {
	input := textinput.New()
	input.Placeholder = "https://open.spotify.com/playlist/..."
	input.Width = InputWidth
	input.Prompt = "> "

	styles := NewStyles(PaletteFor(opts.Theme))

	return RootModel{
		ctrl:     ctrl,
		opts:     opts,
		styles:   styles,
		state:    DashboardState,
		view:     dashboard.DeriveView(types.DownloadStatus{}),
		progress: progress.New(progress.WithGradient(string(styles.Palette.Primary), string(styles.Palette.Secondary))),
		input:    input,
		logView:  viewport.New(0, 0),
		updates:  make(chan tea.Msg, UpdateChannelBuffer),
		done:     make(chan struct{}),
	}
}

// New builds the dashboard over a session and subscribes to its hubs.
// Subscribe before the session runs so no initial update is missed.
func New(s *dashboard.Session, opts Options) RootModel {
	m := newModel(s, opts)
	m.unsubs = []func(){
		s.Status.Subscribe(func(v dashboard.View) { m.forward(viewMsg{v}) }),
		s.Log.Subscribe(func(e []types.LogEntry) { m.forward(logsMsg{e}) }),
		s.Playlists.Subscribe(func(st dashboard.PlaylistState) { m.forward(playlistsMsg{st}) }),
		s.Library.Subscribe(func(st dashboard.LibraryState) { m.forward(libraryMsg{st}) }),
		s.SubscribeConnection(func(c dashboard.ConnectionState) { m.forward(connectionMsg{c}) }),
	}
	return m
}

// forward runs on the session actor. It blocks until the program takes the
// message so no status update is lost, unless the model was closed.
func (m RootModel) forward(msg tea.Msg) {
	select {
	case m.updates <- msg:
	case <-m.done:
	}
}

// Close detaches the model from the session.
func (m RootModel) Close() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

func (m RootModel) Init() tea.Cmd {
	return listenForActivity(m.updates)
}

func listenForActivity(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}
