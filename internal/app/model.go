// Package app is the bubbletea front end of the capture session: a
// half-block drawing box, the reference glyph beside it and a status line.
package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/glyphs/internal/capture"
	"github.com/jwulff/glyphs/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// Screen offsets of the first preview cell: header, status bar and divider
// take three lines, the box border one more line and one column.
const (
	canvasTop  = 4
	canvasLeft = 1
)

// Session is what the model drives. *capture.Session satisfies it.
type Session interface {
	capture.Handler
	Snapshot() capture.Snapshot
	Categories() []string
}

// Model is the root bubbletea model for the capture TUI.
type Model struct {
	session Session
	preview *Preview

	// UI state
	width   int
	height  int
	drawing bool

	// Errors
	errorMessage   string
	errorTransient bool

	// Status
	statusText string
	drift      []capture.Drift
	closeErr   error
}

// New creates a Model driving session and rendering preview. preview must
// be the surface the session was opened with.
func New(session Session, preview *Preview) Model {
	return Model{
		session:    session,
		preview:    preview,
		statusText: "Draw the glyph shown on the right",
		drift:      session.Snapshot().Drift,
	}
}

// Init sets the terminal title.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("glyphs")
}

// CloseErr reports the error from closing the session on quit, if any.
func (m Model) CloseErr() error { return m.closeErr }

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

func clearStatusCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil

	case ClearStatusMsg:
		m.statusText = ""
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		m.closeErr = m.session.OnClose()
		return m, tea.Quit

	case KeySave, KeySaveUpper:
		before := m.session.Snapshot()
		if err := m.session.OnSave(); err != nil {
			return m.showError(err)
		}
		m.statusText = fmt.Sprintf("Saved %s/%s", before.Category, capture.ArtifactName(before.NextIndex))
		return m.afterSelect(clearStatusCmd())

	case KeyClear, KeyClearUpper:
		if err := m.session.OnClear(); err != nil {
			return m.showError(err)
		}
		m.statusText = "Cleared"
		return m.afterSelect(clearStatusCmd())
	}

	return m, nil
}

// afterSelect reports a category that could not be selected once a save or
// clear has moved on, and clears a stale missing-reference error otherwise.
func (m Model) afterSelect(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.session.Snapshot().Category == "" {
		m.errorMessage = "no reference image for the next category"
		m.errorTransient = false
		return m, cmd
	}
	if !m.errorTransient {
		m.errorMessage = ""
	}
	return m, cmd
}

func (m Model) showError(err error) (tea.Model, tea.Cmd) {
	m.errorMessage = err.Error()
	// A file already at the next index blocks every save of the category
	// until someone moves it.
	if errors.Is(err, fs.ErrExist) {
		m.errorMessage += " (move the stray file or fix the ledger)"
		m.errorTransient = false
		return m, nil
	}
	if errors.Is(err, capture.ErrMissingAsset) {
		m.errorTransient = false
		return m, nil
	}
	m.errorTransient = true
	return m, clearTransientErrorCmd()
}

// handleMouse turns left-button drags inside the preview into strokes.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.drawing = true
	case tea.MouseActionMotion:
		if !m.drawing && msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
	case tea.MouseActionRelease:
		m.drawing = false
		return m, nil
	default:
		return m, nil
	}

	col, row := msg.X-canvasLeft, msg.Y-canvasTop
	if col < 0 || col >= PreviewCols || row < 0 || row >= PreviewRows {
		return m, nil
	}
	x, y := m.preview.ToCanvas(col, row)
	m.session.OnDrag(x, y)
	return m, nil
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderMainContent())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if len(m.drift) > 0 {
		sections = append(sections, m.renderDriftBar())
	}
	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("GLYPHS")

	snap := m.session.Snapshot()
	if snap.Category == "" {
		return title + ui.DimStyle.Render("  no category")
	}
	next := fmt.Sprintf("  %s/%s", snap.Category, capture.ArtifactName(snap.NextIndex))
	return title + "  " + ui.CategoryStyle(snap.Category).Render(strings.ToUpper(snap.Category)) +
		ui.DimStyle.Render(next)
}

func (m Model) renderStatusBar() string {
	snap := m.session.Snapshot()

	var parts []string
	for _, c := range m.session.Categories() {
		parts = append(parts, ui.CategoryStyle(c).Render(c)+ui.StatusStyle.Render(fmt.Sprintf(" %d", snap.Counts[c])))
	}
	parts = append(parts, ui.StatusStyle.Render(fmt.Sprintf("total %d", snap.Total)))

	line := strings.Join(parts, "  ")
	if m.statusText != "" {
		line += "  " + ui.SavedStyle.Render(m.statusText)
	}
	return truncateToWidth(line, m.width)
}

func (m Model) renderMainContent() string {
	drawing := ui.CanvasBoxStyle.Render(ui.InkStyle.Render(strings.Join(m.preview.Lines(), "\n")))

	title := ui.PanelTitleStyle.Render("Reference")
	if c := m.preview.Category(); c != "" {
		title = ui.CategoryStyle(c).Render(strings.ToUpper(c))
	}
	reference := ui.ReferenceBoxStyle.Render(strings.Join(m.preview.ReferenceLines(), "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, drawing, " ",
		lipgloss.JoinVertical(lipgloss.Left, reference, " "+title))
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderDriftBar() string {
	var parts []string
	for _, d := range m.drift {
		parts = append(parts, fmt.Sprintf("%s ledger %d, on disk %d", d.Category, d.Ledger, d.OnDisk))
	}
	line := ui.WarningStyle.Render("Ledger mismatch: ") + ui.WarningTextStyle.Render(strings.Join(parts, "; "))
	return truncateToWidth(line, m.width)
}

func (m Model) renderFooter() string {
	parts := []string{
		ui.FooterKeyStyle.Render("drag") + ui.FooterDescStyle.Render(" Draw"),
		ui.FooterKeyStyle.Render("s") + ui.FooterDescStyle.Render(" Save"),
		ui.FooterKeyStyle.Render("c") + ui.FooterDescStyle.Render(" Clear"),
		ui.FooterKeyStyle.Render("q") + ui.FooterDescStyle.Render(" Quit"),
	}
	return strings.Join(parts, "  ")
}

// Helpers

func truncateToWidth(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	// Styled text cannot be cut by runes; fall back to the plain form.
	runes := []rune(stripANSI(s))
	if len(runes) > width-1 && width > 0 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func stripANSI(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
