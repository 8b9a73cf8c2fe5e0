package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/soundseeker/seekerctl/internal/utils"
)

// readClipboard fetches the clipboard off the UI goroutine.
func readClipboard() tea.Msg {
	text, err := clipboard.ReadAll()
	if err != nil {
		utils.Debug("Clipboard unavailable: %v", err)
		return clipboardMsg{}
	}
	return clipboardMsg{text: strings.TrimSpace(text)}
}

// Update handles messages and updates the model
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case viewMsg:
		m.view = msg.view
		cmds = append(cmds, m.progress.SetPercent(m.view.ProgressPercent/100))
		cmds = append(cmds, listenForActivity(m.updates))

	case logsMsg:
		m.logs = msg.entries
		m.refreshLogView()
		cmds = append(cmds, listenForActivity(m.updates))

	case playlistsMsg:
		m.playlists = msg.state
		if m.cursor >= len(m.playlists.Entries) {
			m.cursor = max(len(m.playlists.Entries)-1, 0)
		}
		cmds = append(cmds, listenForActivity(m.updates))

	case libraryMsg:
		m.library = msg.state
		cmds = append(cmds, listenForActivity(m.updates))

	case connectionMsg:
		m.connection = msg.state
		cmds = append(cmds, listenForActivity(m.updates))

	case clipboardMsg:
		if m.state == InputState && m.input.Value() == "" && strings.HasPrefix(msg.text, "http") {
			m.input.SetValue(msg.text)
			m.input.CursorEnd()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case DashboardState:
			return m.updateDashboard(msg)
		case InputState:
			return m.updateInput(msg)
		}

	case progress.FrameMsg:
		newModel, cmd := m.progress.Update(msg)
		if p, ok := newModel.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd
	}

	// Cursor blink and other input internals
	if m.state == InputState {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m RootModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	// Control keys follow the enablement flags; the dispatcher itself never checks them.
	case "s":
		if m.view.StartEnabled {
			m.ctrl.Start()
		}
	case "p":
		if m.view.PauseEnabled {
			m.ctrl.Pause()
		}
	case "x":
		if m.view.StopEnabled {
			m.ctrl.Stop()
		}

	case "a":
		m.state = InputState
		m.input.SetValue("")
		m.input.Focus()
		if m.opts.ClipboardPaste {
			return m, tea.Batch(textinput.Blink, readClipboard)
		}
		return m, textinput.Blink

	case "d", "delete":
		if entries := m.playlists.Entries; m.cursor < len(entries) {
			m.ctrl.RemovePlaylist(entries[m.cursor].URL)
		}
	case "r":
		m.ctrl.RefreshPlaylists()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.playlists.Entries)-1 {
			m.cursor++
		}

	default:
		// pgup/pgdown and friends scroll the log
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m RootModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = DashboardState
		m.input.Blur()
		return m, nil
	case "enter":
		// Blank input is ignored by the registry without a request
		m.ctrl.AddPlaylist(m.input.Value())
		m.state = DashboardState
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *RootModel) resize() {
	leftWidth := int(float64(m.width) * ListWidthRatio)
	m.progress.Width = max(leftWidth-ProgressBarInset*2, 10)

	logHeight := m.height - HeaderHeight - StatusHeight - 2
	if logHeight < MinLogHeight {
		logHeight = MinLogHeight
	}
	m.logView.Width = max(leftWidth-4, 10)
	m.logView.Height = logHeight
	m.refreshLogView()
}

// refreshLogView re-renders the log and keeps it pinned to the bottom.
func (m *RootModel) refreshLogView() {
	lines := make([]string, len(m.logs))
	for i, e := range m.logs {
		lines[i] = m.styles.LogLine(e)
	}
	m.logView.SetContent(strings.Join(lines, "\n"))
	m.logView.GotoBottom()
}
