package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	webview "github.com/wippyai/webview"
	"github.com/wippyai/webview/config"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const maxLogLines = 200

type pageMsg struct {
	page *webview.Page
	err  error
}

type stateMsg webview.PageState

type titleMsg string

type fullscreenMsg bool

type messageMsg string

type imeMsg webview.Rect

type frameMsg struct {
	width  uint32
	height uint32
}

type engineExitedMsg struct{}

// tuiObserver forwards page events into the program. Frame events are
// throttled; the total is kept in an atomic counter.
type tuiObserver struct {
	program *tea.Program
	limiter *rate.Limiter
	frames  atomic.Uint64
}

func (o *tuiObserver) send(msg tea.Msg) {
	if o.program != nil {
		o.program.Send(msg)
	}
}

func (o *tuiObserver) OnStateChange(state webview.PageState) {
	o.send(stateMsg(state))
}

func (o *tuiObserver) OnIMERect(rect webview.Rect) {
	o.send(imeMsg(rect))
}

func (o *tuiObserver) OnFrame(_ []byte, width, height uint32) {
	o.frames.Add(1)
	if o.limiter.Allow() {
		o.send(frameMsg{width: width, height: height})
	}
}

func (o *tuiObserver) OnTitleChange(title string) {
	o.send(titleMsg(title))
}

func (o *tuiObserver) OnFullscreenChange(fullscreen bool) {
	o.send(fullscreenMsg(fullscreen))
}

func (o *tuiObserver) OnMessage(message string) {
	o.send(messageMsg(message))
}

type interactiveModel struct {
	err        error
	eng        *webview.Engine
	page       *webview.Page
	obs        *tuiObserver
	cfg        *config.Config
	input      textinput.Model
	log        []string
	state      string
	title      string
	fullscreen bool
	devtools   bool
	frameSize  string
	ime        string
	height     int
}

func newInteractiveModel(eng *webview.Engine, cfg *config.Config, obs *tuiObserver, width, height int) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "message to page"
	ti.Prompt = "send: "
	ti.Width = max(20, width-10)
	ti.Focus()

	return &interactiveModel{
		eng:    eng,
		cfg:    cfg,
		obs:    obs,
		input:  ti,
		state:  "creating",
		height: height,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.createPage)
}

func (m *interactiveModel) createPage() tea.Msg {
	page, err := m.eng.CreatePage(m.cfg.Page.URL, m.cfg.Page.Options(), m.obs)
	return pageMsg{page: page, err: err}
}

func (m *interactiveModel) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// Pages are closed by the engine after the program stops. Closing
			// here would wait on callbacks blocked in Send.
			return m, tea.Quit

		case "ctrl+t":
			if m.page != nil {
				m.devtools = !m.devtools
				if err := m.page.SetDevToolsOpen(m.devtools); err != nil {
					m.appendLog(errorStyle.Render(err.Error()))
				}
			}
			return m, nil

		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.page == nil {
				return m, nil
			}
			if err := m.page.SendMessage(text); err != nil {
				m.appendLog(errorStyle.Render(err.Error()))
			} else {
				m.appendLog("> " + text)
			}
			m.input.Reset()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.input.Width = max(20, msg.Width-10)
		m.height = msg.Height

	case pageMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = "failed"
			return m, nil
		}
		m.page = msg.page

	case stateMsg:
		m.state = webview.PageState(msg).String()

	case titleMsg:
		m.title = string(msg)

	case fullscreenMsg:
		m.fullscreen = bool(msg)

	case imeMsg:
		r := webview.Rect(msg)
		m.ime = fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)

	case frameMsg:
		m.frameSize = fmt.Sprintf("%dx%d", msg.width, msg.height)

	case messageMsg:
		m.appendLog(messageStyle.Render("< " + string(msg)))

	case engineExitedMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return labelStyle.Render(fmt.Sprintf("%-11s", label)) + valueStyle.Render(value) + "\n"
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Webview"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("esc quit"))
		return b.String()
	}

	b.WriteString(m.field("url", m.cfg.Page.URL))
	if m.page != nil {
		b.WriteString(m.field("page", m.page.ID()))
	}
	b.WriteString(m.field("state", m.state))
	b.WriteString(m.field("title", m.title))
	b.WriteString(m.field("fullscreen", fmt.Sprint(m.fullscreen)))
	b.WriteString(m.field("devtools", fmt.Sprint(m.devtools)))
	b.WriteString(m.field("frames", fmt.Sprintf("%d %s", m.obs.frames.Load(), m.frameSize)))
	b.WriteString(m.field("ime", m.ime))
	b.WriteString("\n")

	// Header and footer take roughly 14 rows.
	rows := max(3, m.height-14)
	start := max(0, len(m.log)-rows)
	for _, line := range m.log[start:] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter send • ctrl+t devtools • esc quit"))
	return b.String()
}

func runInteractive(eng *webview.Engine, cfg *config.Config) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("interactive mode requires a terminal")
	}
	width, height, err := term.GetSize(fd)
	if err != nil {
		width, height = 80, 24
	}

	obs := &tuiObserver{limiter: rate.NewLimiter(rate.Limit(cfg.UI.RefreshHz), 1)}
	p := tea.NewProgram(newInteractiveModel(eng, cfg, obs, width, height), tea.WithAltScreen())
	obs.program = p

	go func() {
		<-eng.Done()
		p.Send(engineExitedMsg{})
	}()

	_, err = p.Run()
	return err
}
