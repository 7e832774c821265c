// Package tui is the interactive chaos-map explorer. It runs a
// rendering session full screen, draws the current frame as truecolor
// half-block cells, and lets a cursor probe single pixels while frames
// accumulate. Zooming pins the cursor onto the mapping stack and
// restarts the session in the narrowed view.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/san-kum/chaoscope/internal/colormap"
	"github.com/san-kum/chaoscope/internal/config"
	"github.com/san-kum/chaoscope/internal/diverge"
	"github.com/san-kum/chaoscope/internal/dynamo"
	"github.com/san-kum/chaoscope/internal/export"
	"github.com/san-kum/chaoscope/internal/mapping"
	"github.com/san-kum/chaoscope/internal/render"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// Each pin narrows the visible span to a quarter of its parent.
const zoomFactor = 0.25

type state int

const (
	stateMap state = iota
	stateHelp
)

// advancedMsg reports a finished Session.Advance.
type advancedMsg struct{ err error }

// savedMsg reports a finished png write.
type savedMsg struct {
	path string
	err  error
}

type model struct {
	state state

	sys       dynamo.System
	newInteg  func() dynamo.Integrator
	stack     *mapping.Stack
	dcfg      diverge.Config
	cadence   int
	period    float64
	sysName   string
	integName string

	res  int
	sess *render.Session

	view    diverge.View
	palette int
	mode    colormap.Mode
	lo, hi  float64

	// Caches of session state. The session is off limits while an
	// advance is in flight, so the view only ever reads these.
	frame  *render.FieldSet
	frames int
	cursor int
	px, py int
	probe  render.Probe
	hist   []float64

	width, height int
	auto          bool
	advancing     bool
	status        string
}

func newModel(cfg *config.Config) (model, error) {
	reg := config.NewRegistry()
	sys, err := reg.System(cfg.System)
	if err != nil {
		return model{}, err
	}
	newInteg, err := reg.IntegratorFactory(cfg.Integrator)
	if err != nil {
		return model{}, err
	}
	stack, err := cfg.Stack()
	if err != nil {
		return model{}, err
	}
	view, err := diverge.ParseView(cfg.View)
	if err != nil {
		return model{}, err
	}
	mode, err := colormap.ParseMode(cfg.ValueMode)
	if err != nil {
		return model{}, err
	}

	m := model{
		sys:       sys,
		newInteg:  newInteg,
		stack:     stack,
		dcfg:      cfg.DivergeConfig(),
		cadence:   cfg.ChunksBetweenSamples,
		period:    cfg.Period,
		sysName:   cfg.System,
		integName: cfg.Integrator,
		res:       cfg.Resolution,
		view:      view,
		mode:      mode,
	}
	for i, p := range colormap.Palettes {
		if p.Name == cfg.Palette {
			m.palette = i
		}
	}
	m.px, m.py = m.res/2, m.res/2
	if err := m.rebuild(); err != nil {
		return model{}, err
	}
	m.advancing = true
	return m, nil
}

func (m *model) rebuild() error {
	sess, err := render.NewSession(m.sys, m.newInteg, m.dcfg, m.stack, m.res,
		render.SessionOptions{ChunksBetweenSamples: m.cadence})
	if err != nil {
		return err
	}
	m.sess = sess
	m.refresh()
	return nil
}

// refresh re-reads every cache from the session. Never call it while
// an advance is in flight.
func (m *model) refresh() {
	m.frames = m.sess.Frames()
	m.cursor = m.sess.Cursor()
	m.frame = m.sess.Current()
	m.restyle()
	m.probe = m.sess.Probe(m.px, m.py, m.view)
	m.refreshHist()
}

// restyle rescales the shader to the cached frame. Safe anytime.
func (m *model) restyle() {
	m.lo, m.hi = colormap.AutoRange(m.frame.Field(m.view))
}

func (m *model) refreshHist() {
	m.hist = m.hist[:0]
	for i := 0; i < m.frames; i++ {
		m.hist = append(m.hist, float64(m.sess.Frame(i).Field(m.view).Value(m.px, m.py, 0)))
	}
}

func (m model) shader() colormap.Shader {
	return colormap.Shader{
		Palette: colormap.Palettes[m.palette],
		Mode:    m.mode,
		Period:  m.period,
		Lo:      m.lo,
		Hi:      m.hi,
	}
}

func (m model) advance() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return advancedMsg{err: sess.Advance(context.Background())}
	}
}

func (m model) save() tea.Cmd {
	field := m.frame.Field(m.view)
	shader := m.shader()
	path := fmt.Sprintf("chaoscope_%s_f%03d.png", m.view, m.cursor)
	return func() tea.Msg {
		return savedMsg{path: path, err: export.WritePNG(path, field, shader)}
	}
}

func (m model) Init() tea.Cmd {
	return m.advance()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case advancedMsg:
		m.advancing = false
		if msg.err != nil {
			m.status = msg.err.Error()
			m.auto = false
			return m, nil
		}
		m.refresh()
		if m.auto {
			m.advancing = true
			return m, m.advance()
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = "saved " + msg.path
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == stateHelp {
		m.state = stateMap
		return m, nil
	}
	return m.mapKey(msg)
}

func (m model) mapKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.state = stateHelp
	case "up", "k":
		m.moveCursor(0, 1)
	case "down", "j":
		m.moveCursor(0, -1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case " ":
		if !m.advancing {
			m.status = ""
			m.advancing = true
			return m, m.advance()
		}
	case "a":
		m.auto = !m.auto
		if m.auto && !m.advancing {
			m.status = ""
			m.advancing = true
			return m, m.advance()
		}
	case "[":
		if !m.advancing {
			m.sess.Seek(m.cursor - 1)
			m.refresh()
		}
	case "]":
		if !m.advancing {
			m.sess.Seek(m.cursor + 1)
			m.refresh()
		}
	case "v":
		m.cycleView(1)
	case "V":
		m.cycleView(-1)
	case "c":
		m.palette = (m.palette + 1) % len(colormap.Palettes)
	case "m":
		switch m.mode {
		case colormap.ModeLinear:
			m.mode = colormap.ModeLog
		case colormap.ModeLog:
			m.mode = colormap.ModePeriodic
		default:
			m.mode = colormap.ModeLinear
		}
	case "p":
		return m.zoomIn()
	case "backspace":
		return m.zoomOut()
	case "r":
		return m.rerender()
	case "s":
		if !m.advancing {
			return m, m.save()
		}
	}
	return m, nil
}

func (m *model) moveCursor(dx, dy int) {
	m.px = clamp(m.px+dx, 0, m.res-1)
	m.py = clamp(m.py+dy, 0, m.res-1)
	if !m.advancing {
		m.probe = m.sess.Probe(m.px, m.py, m.view)
		m.refreshHist()
	}
}

func (m *model) cycleView(d int) {
	n := len(diverge.Views())
	m.view = diverge.View((int(m.view) + n + d) % n)
	m.restyle()
	if !m.advancing {
		m.probe = m.sess.Probe(m.px, m.py, m.view)
		m.refreshHist()
	}
}

func (m model) zoomIn() (tea.Model, tea.Cmd) {
	if m.advancing {
		return m, nil
	}
	top := m.stack.Top()
	u, v := mapping.PixelCenter(m.px, m.py, m.res)
	next := mapping.Layer{
		XDim:  top.XDim,
		YDim:  top.YDim,
		X:     narrowed(top.X),
		Y:     narrowed(top.Y),
		Delta: true,
	}
	if err := m.stack.Pin(u, v, next); err != nil {
		m.status = err.Error()
		return m, nil
	}
	return m.rerender()
}

func (m model) zoomOut() (tea.Model, tea.Cmd) {
	if m.advancing {
		return m, nil
	}
	if m.stack.Len() <= 2 {
		m.status = "already at the base view"
		return m, nil
	}
	if err := m.stack.Remove(m.stack.Len() - 1); err != nil {
		m.status = err.Error()
		return m, nil
	}
	return m.rerender()
}

func (m model) rerender() (tea.Model, tea.Cmd) {
	if m.advancing {
		return m, nil
	}
	if err := m.rebuild(); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = ""
	m.advancing = true
	return m, m.advance()
}

// narrowed centers a zoomed span of r on the pinned point. The sign of
// the span survives, so flipped axes stay flipped.
func narrowed(r mapping.Range) mapping.Range {
	half := (r.Max - r.Min) * zoomFactor / 2
	return mapping.Range{Min: -half, Max: half}
}

// depth counts the pins above the base point.
func (m model) depth() int {
	n := 0
	for _, it := range m.stack.Items() {
		if it.Kind == mapping.PointItem {
			n++
		}
	}
	return n - 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run starts the explorer on cfg and blocks until it exits. The logger
// is only used before bubbletea takes over the terminal.
func Run(cfg *config.Config, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("explorer starting",
		zap.String("system", cfg.System),
		zap.Int("resolution", cfg.Resolution),
		zap.String("view", cfg.View))

	m, err := newModel(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
