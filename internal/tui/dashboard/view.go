package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/spymux/spymux/internal/scrollback"
	"github.com/spymux/spymux/internal/styled"
	"github.com/spymux/spymux/internal/tmux"
	"github.com/spymux/spymux/internal/tui/layout"
)

const (
	emptyTitle   = "tmux panes"
	emptyMessage = "No tmux panes detected"
	loadingText  = "Capturing panes…"
)

// View implements tea.Model
func (m Model) View() string {
	if m.quitting || m.width <= 0 || m.height <= 0 {
		return ""
	}

	area := m.gridArea()
	var grid string
	if m.state.Len() == 0 {
		grid = m.renderEmpty(area)
	} else {
		grid = m.renderGrid()
	}
	return lipgloss.JoinVertical(lipgloss.Left, grid, m.renderFooter())
}

// renderGrid draws every pane into its region. Regions sharing a top edge
// form a band; bands are stacked top to bottom.
func (m Model) renderGrid() string {
	ps := m.state.Panes()
	regions := m.state.Regions()
	if len(regions) != len(ps) {
		return ""
	}
	selected := m.state.SelectedIndex()

	var bands []string
	var row []string
	top := regions[0].Y
	for i, r := range regions {
		if r.Y != top {
			bands = append(bands, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
			top = r.Y
		}
		row = append(row, m.renderPane(i, ps[i], r, i == selected))
	}
	bands = append(bands, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	return lipgloss.JoinVertical(lipgloss.Left, bands...)
}

func (m Model) paneTitle(i int, p tmux.Pane) string {
	title := p.Descriptor()
	if i < 9 {
		title = fmt.Sprintf("%d %s", i+1, title)
	}
	if m.tier >= layout.TierWide && p.Command != "" {
		title += " " + p.Command
	}
	return title
}

func (m Model) renderPane(i int, p tmux.Pane, r layout.Rect, selected bool) string {
	innerW, innerH := r.Inner()
	doc := scrollback.ClipToTail(p.Content, innerH, innerW, m.cfg.ColorOutput)
	// Trailing blank screen rows are not content; the clipped text is drawn
	// from the top of the box.
	doc.Lines = doc.Lines[:scrollback.RenderableLines(doc)]
	rows := scrollback.Wrap(doc, innerW)
	if len(rows) > innerH {
		rows = rows[:innerH]
	}

	profile := m.contentProfile()
	body := make([]string, 0, innerH)
	for _, row := range rows {
		body = append(body, styled.RenderLine(row, profile))
	}
	return m.renderBox(r, m.paneTitle(i, p), body, selected)
}

func (m Model) renderEmpty(area layout.Rect) string {
	msg := emptyMessage
	if m.lastRefresh.IsZero() && m.refreshErr == nil {
		msg = loadingText
	}
	innerW, innerH := area.Inner()

	body := make([]string, innerH)
	if innerH > 0 {
		text := m.styles.Empty.Render(layout.Truncate(msg, innerW))
		body[innerH/2] = lipgloss.PlaceHorizontal(innerW, lipgloss.Center, text)
	}
	return m.renderBox(area, emptyTitle, body, false)
}

// renderBox frames body in a w×h border with title set into the top edge.
// Body rows are clipped and padded to the inner width; missing rows are blank.
func (m Model) renderBox(r layout.Rect, title string, body []string, selected bool) string {
	if r.Width < 2 || r.Height < 2 {
		blank := strings.Repeat(" ", max(r.Width, 0))
		lines := make([]string, max(r.Height, 0))
		for i := range lines {
			lines[i] = blank
		}
		return strings.Join(lines, "\n")
	}

	border := lipgloss.NormalBorder()
	borderStyle, titleStyle := m.styles.Border, m.styles.Title
	if selected {
		border = lipgloss.ThickBorder()
		borderStyle, titleStyle = m.styles.SelectedBorder, m.styles.SelectedTitle
	}

	innerW, innerH := r.Inner()
	var b strings.Builder

	title = layout.Truncate(title, innerW)
	b.WriteString(borderStyle.Render(border.TopLeft))
	b.WriteString(titleStyle.Render(title))
	b.WriteString(borderStyle.Render(strings.Repeat(border.Top, innerW-styled.StringWidth(title)) + border.TopRight))

	left := borderStyle.Render(border.Left)
	right := borderStyle.Render(border.Right)
	for i := 0; i < innerH; i++ {
		var line string
		if i < len(body) {
			line = fitLine(body[i], innerW)
		} else {
			line = strings.Repeat(" ", innerW)
		}
		b.WriteString("\n")
		b.WriteString(left)
		b.WriteString(line)
		b.WriteString(right)
	}

	b.WriteString("\n")
	b.WriteString(borderStyle.Render(border.BottomLeft + strings.Repeat(border.Bottom, innerW) + border.BottomRight))
	return b.String()
}

// fitLine clips or pads an ANSI-styled line to exactly width columns.
func fitLine(s string, width int) string {
	s = truncate.String(s, uint(width))
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

func (m Model) statusText() string {
	n := m.state.Len()
	parts := []string{fmt.Sprintf("%d panes", n)}
	if n == 1 {
		parts[0] = "1 pane"
	}
	if len(m.state.Excluded()) > 0 {
		parts = append(parts, fmt.Sprintf("%d hidden", len(m.state.Excluded())))
	}
	if p, ok := m.state.Selected(); ok && m.tier >= layout.TierSplit {
		parts = append(parts, p.Descriptor())
		if m.tier >= layout.TierWide {
			if p.Command != "" {
				parts = append(parts, p.Command)
			}
			if p.Path != "" {
				parts = append(parts, p.Path)
			}
		}
	}
	if m.cfg.Tmux.Remote != "" {
		parts = append(parts, "ssh "+m.cfg.Tmux.Remote)
	}
	return " " + strings.Join(parts, " · ")
}

func (m Model) renderFooter() string {
	width := max(m.width, 0)
	status := layout.Truncate(m.statusText(), width)
	line := m.styles.Status.Render(status)
	if m.refreshErr != nil {
		if room := width - styled.StringWidth(status) - 2; room > 0 {
			msg := layout.Truncate("refresh failed: "+firstLine(m.refreshErr.Error()), room)
			line += "  " + m.styles.Error.Render(msg)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, m.help.View(dashKeys))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
