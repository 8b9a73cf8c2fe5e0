package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/soundseeker/seekerctl/internal/dashboard"
)

func (m RootModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.state == InputState {
		content := lipgloss.JoinVertical(lipgloss.Left,
			"",
			m.input.View(),
			"",
			m.styles.Subtle.Render("[Enter] Add  [Esc] Cancel"),
		)
		box := renderBox("Add Playlist", lipgloss.NewStyle().Padding(0, 2).Render(content),
			InputWidth+10, 7, m.styles.Palette.Secondary, m.styles.Palette.Primary)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	availableWidth := m.width - 2
	leftWidth := int(float64(availableWidth) * ListWidthRatio)
	rightWidth := availableWidth - leftWidth

	header := m.renderHeader(availableWidth)

	bodyHeight := m.height - HeaderHeight - 1
	logHeight := max(bodyHeight-StatusHeight, MinLogHeight)

	left := lipgloss.JoinVertical(lipgloss.Left,
		renderBox("Status", m.renderStatus(), leftWidth, StatusHeight, m.styles.Palette.Border, m.styles.Palette.Primary),
		renderBox("Log", m.logView.View(), leftWidth, logHeight, m.styles.Palette.Border, m.styles.Palette.Primary),
	)

	playlistHeight := max(bodyHeight*2/3, 6)
	recentHeight := max(bodyHeight-playlistHeight, 4)
	right := lipgloss.JoinVertical(lipgloss.Left,
		renderBox("Playlists", m.renderPlaylists(rightWidth-4), rightWidth, playlistHeight, m.styles.Palette.Secondary, m.styles.Palette.Primary),
		renderBox("Recent Downloads", m.renderRecent(), rightWidth, recentHeight, m.styles.Palette.Border, m.styles.Palette.Primary),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.renderHelp(),
	)
}

func (m RootModel) renderHeader(width int) string {
	conn := m.styles.Offline.Render("● offline")
	if m.connection.Connected {
		conn = m.styles.Online.Render("● " + m.connection.Transport)
	}
	songs := m.styles.Subtle.Render(fmt.Sprintf("%d songs downloaded", m.library.DownloadedSongs))

	left := m.styles.Title.Render("seekerctl") + m.styles.Subtle.Render(m.opts.ServerURL)
	right := songs + "  " + conn

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return lipgloss.NewStyle().Height(HeaderHeight).PaddingTop(1).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (m RootModel) renderStatus() string {
	v := m.view

	var headline string
	switch v.Headline {
	case dashboard.HeadlinePaused:
		headline = m.styles.Paused.Render(v.Headline)
	case dashboard.HeadlineRunning:
		headline = m.styles.Headline.Render(v.Headline)
	default:
		headline = m.styles.Idle.Render(v.Headline)
	}

	lines := []string{headline, ""}
	if v.Status.Running {
		lines = append(lines,
			m.progress.View(),
			m.styles.Subtle.Render(fmt.Sprintf("Progress: %d/%d", v.Status.ProcessedTracks, v.Status.TotalTracks)),
			m.styles.Item.Render(v.TrackLabel),
		)
		if v.MethodLabel != "" {
			lines = append(lines, m.styles.Subtle.Render(v.MethodLabel))
		}
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (m RootModel) renderPlaylists(width int) string {
	switch m.playlists.Phase {
	case dashboard.PlaylistsLoading:
		return m.styles.Subtle.Render(" Loading playlists...")
	case dashboard.PlaylistsEmpty:
		return m.styles.Subtle.Render(" No playlists available")
	case dashboard.PlaylistsFailed:
		return m.styles.Error.Render(" Error loading playlists")
	}

	var b strings.Builder
	for i, p := range m.playlists.Entries {
		style := m.styles.Item
		marker := "  "
		if i == m.cursor {
			style = m.styles.Selected
			marker = "> "
		}
		b.WriteString(style.Render(marker + truncateString(p.Title(), width-2)))
		b.WriteString("\n")

		details := strings.TrimSpace(strings.Join([]string{p.OwnerLabel(), p.TracksLabel()}, "  "))
		if details != "" {
			b.WriteString(m.styles.Subtle.Render("    " + details))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m RootModel) renderRecent() string {
	if len(m.library.RecentTracks) == 0 {
		return m.styles.Subtle.Render(" No recent downloads")
	}
	var lines []string
	for _, t := range m.library.RecentTracks {
		lines = append(lines, " "+m.styles.Item.Render(t.Name)+" "+m.styles.Subtle.Render(string(t.Artists)))
	}
	return strings.Join(lines, "\n")
}

func (m RootModel) renderHelp() string {
	key := func(k, label string, enabled bool) string {
		if enabled {
			return m.styles.KeyEnabled.Render("["+k+"]") + " " + label
		}
		return m.styles.KeyDisabled.Render("[" + k + "] " + label)
	}
	return " " + strings.Join([]string{
		key("s", "Start", m.view.StartEnabled),
		key("p", "Pause", m.view.PauseEnabled),
		key("x", "Stop", m.view.StopEnabled),
		key("a", "Add", true),
		key("d", "Remove", len(m.playlists.Entries) > 0),
		key("r", "Reload", true),
		key("q", "Quit", true),
	}, "  ")
}

func truncateString(s string, i int) string {
	runes := []rune(s)
	if i > 3 && len(runes) > i {
		return string(runes[:i-3]) + "..."
	}
	return s
}

// renderBox draws a rounded box with the title set into the top border:
//
//	╭─ TITLE ────────╮
func renderBox(title, content string, width, height int, border, titleColor lipgloss.Color) string {
	innerWidth := max(width-2, 1)
	borderStyle := lipgloss.NewStyle().Foreground(border)

	titleText := fmt.Sprintf(" %s ", title)
	rest := max(innerWidth-lipgloss.Width(titleText)-1, 0)
	top := borderStyle.Render("╭─") +
		lipgloss.NewStyle().Foreground(titleColor).Bold(true).Render(titleText) +
		borderStyle.Render(strings.Repeat("─", rest)+"╮")
	bottom := borderStyle.Render("╰" + strings.Repeat("─", innerWidth) + "╯")

	contentLines := strings.Split(content, "\n")
	rows := make([]string, 0, height)
	for i := 0; i < height-2; i++ {
		line := ""
		if i < len(contentLines) {
			line = contentLines[i]
		}
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		} else if w > innerWidth {
			line = lipgloss.NewStyle().MaxWidth(innerWidth).Render(line)
		}
		rows = append(rows, borderStyle.Render("│")+line+borderStyle.Render("│"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, strings.Join(rows, "\n"), bottom)
}
