package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ragdesk/internal/domain"
)

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("RAG Desk") + "  " + m.renderModel()

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.panel(m.focus == focusFiles).Width(filesWidth).Render(m.renderFiles()),
		panelStyle.Width(filesWidth).Render(m.renderEmbedding()),
	)
	right := m.panel(m.focus == focusChat).Render(m.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	input := queryBoxStyle.Render(m.input.View())
	if m.focus == focusUpload {
		input = queryBoxStyle.Render(m.upload.View())
	}
	return strings.Join([]string{header, body, m.renderToasts(), input, m.renderStatus()}, "\n")
}

func (m Model) panel(focused bool) lipgloss.Style {
	if focused {
		return focusedStyle
	}
	return panelStyle
}

func (m Model) renderModel() string {
	if !m.deps.Chat.RequiresModel() {
		return ""
	}
	models := m.deps.Models
	switch {
	case models.Loading():
		return dimStyle.Render("model: loading...")
	case len(models.Models()) == 0:
		return errorStyle.Render("model: none available")
	}
	return "model: " + highlightStyle.Render(models.Selected()) + dimStyle.Render(" (ctrl+n to switch)")
}

func (m Model) renderFiles() string {
	files := m.deps.Files.Files()
	sel := m.deps.Files.Selection()
	var b strings.Builder
	fmt.Fprintf(&b, "Knowledge base (%d)\n", len(files))
	if len(files) == 0 {
		b.WriteString(dimStyle.Render("No files uploaded."))
	}
	for i, f := range files {
		box := "[ ]"
		if sel.Included(f.Name) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, f.Name)
		if i == m.cursor && m.focus != focusChat {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		if i < len(files)-1 {
			b.WriteString("\n")
		}
	}
	if m.pendingDelete != "" {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Delete %s? (y/n)", m.pendingDelete)))
	}
	if n := len(sel.ActiveFilters()); n > 0 {
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("searching %d selected file(s)", n)))
	}
	return b.String()
}

func (m Model) renderEmbedding() string {
	emb := m.deps.Embedding
	var b strings.Builder
	switch {
	case emb.Running():
		b.WriteString("Embedding: " + m.spinner.View() + " running")
	case emb.LastError() != nil:
		b.WriteString("Embedding: " + errorStyle.Render("failed"))
	case emb.RunID() != "":
		b.WriteString("Embedding: " + successStyle.Render("done"))
	default:
		b.WriteString("Embedding: idle " + dimStyle.Render("(e to start)"))
	}
	logs := emb.Logs()
	if len(logs) > maxLogLines {
		logs = logs[len(logs)-maxLogLines:]
	}
	for _, l := range logs {
		b.WriteString("\n" + dimStyle.Render(truncate(l, filesWidth-2)))
	}

	if m.deps.Inspector == nil {
		return b.String()
	}
	b.WriteString("\n")
	switch {
	case m.collectionErr != nil:
		b.WriteString(errorStyle.Render("vector store unreachable"))
	case m.collection == nil:
		b.WriteString(dimStyle.Render("vector store: checking..."))
	case !m.collection.Exists:
		b.WriteString(dimStyle.Render(m.missing))
	default:
		c := m.collection
		fmt.Fprintf(&b, "%s: %s\n%d points, %d indexed", c.Name, c.Status, c.PointsCount, c.IndexedCount)
	}
	b.WriteString("\n" + dimStyle.Render(m.deps.Inspector.DashboardURL()))
	return b.String()
}

func (m Model) renderChat(msgs []domain.Message) string {
	if len(msgs) == 0 {
		return dimStyle.Render("Ask a question about your documents.")
	}
	width := max(20, m.viewport.Width)
	wrap := lipgloss.NewStyle().Width(width)
	var blocks []string
	query := ""
	for _, msg := range msgs {
		if msg.Role == domain.RoleUser {
			query = msg.Content
			blocks = append(blocks, wrap.Render(userStyle.Render("You: ")+msg.Content))
			continue
		}
		lines := []string{wrap.Render(assistantStyle.Render("Assistant: ") + msg.Content)}
		for i, src := range msg.Sources {
			lines = append(lines, sourceStyle.Render(fmt.Sprintf("Source %d: %s (Score: %.2f)", i+1, src.Source(), src.Score)))
			if ex := m.renderExcerpt(src.Content, query); ex != "" {
				lines = append(lines, wrap.Render(ex))
			}
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderExcerpt(content, query string) string {
	if m.deps.Excerpter == nil {
		return content
	}
	ex := m.deps.Excerpter.Excerpt(content, query)
	best := ex.Best
	if ex.Matched {
		best = highlightStyle.Render(best)
	}
	var parts []string
	for _, p := range []string{ex.Before, best, ex.After} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderToasts() string {
	lines := make([]string, maxToasts)
	offset := maxToasts - len(m.toasts)
	for i, t := range m.toasts {
		var line string
		switch t.n.Level {
		case domain.LevelSuccess:
			line = successStyle.Render("✓ " + t.n.Message)
		case domain.LevelError:
			line = errorStyle.Render("✗ " + t.n.Message)
		default:
			line = infoStyle.Render("• " + t.n.Message)
		}
		lines[offset+i] = line
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	status := "Idle"
	if m.busy() {
		status = m.spinner.View() + " Thinking..."
	}
	var help string
	switch m.focus {
	case focusFiles:
		help = "space toggle • d delete • r reload • u upload • e embed • i inspect • tab chat • ctrl+c quit"
	case focusUpload:
		help = "enter upload • esc cancel"
	default:
		help = "enter send • pgup/pgdown scroll • tab files • ctrl+c quit"
	}
	return status + "  " + helpStyle.Render(help)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
