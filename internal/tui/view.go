package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/chaoscope/internal/colormap"
	"github.com/san-kum/chaoscope/internal/diverge"
	"github.com/san-kum/chaoscope/internal/dynamo"
	"github.com/san-kum/chaoscope/internal/mapping"
)

func (m model) View() string {
	switch m.state {
	case stateHelp:
		return m.viewHelp()
	}
	return m.viewMap()
}

func (m model) viewMap() string {
	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("paused")
	switch {
	case m.advancing:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("advancing")
	case m.auto:
		statusText = green.Render("auto")
	}

	shader := m.shader()
	b.WriteString(fmt.Sprintf("\n  %s %s  %s  %s\n",
		statusIcon,
		cyan.Render(m.sysName+"/"+m.integName),
		white.Render(m.view.String()),
		statusText))

	top := m.stack.Top()
	b.WriteString("  " + dim.Render(fmt.Sprintf("%s [%.4g, %.4g]  %s [%.4g, %.4g]  zoom %d  %s/%s",
		top.XDim, top.X.Min, top.X.Max,
		top.YDim, top.Y.Min, top.Y.Max,
		m.depth(), shader.Palette.Name, m.mode)) + "\n\n")

	for _, row := range m.canvas(shader) {
		b.WriteString(row + "\n")
	}

	u, v := mapping.PixelCenter(m.px, m.py, m.res)
	x0, _ := m.stack.At(u, v).Realize(m.sys)
	dims := m.sys.StateDims()

	b.WriteString(fmt.Sprintf("\n  %s (%d, %d)  %s\n",
		cyan.Render("▸"), m.px, m.py,
		dim.Render(fmt.Sprintf("u=%.4f v=%.4f", u, v))))
	b.WriteString("    " + dim.Render("start ") + stateLine(dims, x0) + "\n")
	b.WriteString("    " + dim.Render("now   ") + stateLine(dims, m.probe.State) + "\n")

	validity := green.Render("valid")
	if !m.probe.Valid {
		validity = magenta.Render("invalid")
	}
	b.WriteString(fmt.Sprintf("    %s%s  %s  %s\n",
		dim.Render("value "),
		magenta.Render(fmt.Sprintf("%.4g", m.probe.Record[0])),
		dim.Render(fmt.Sprintf("chunks %d  t=%.2fs", m.probe.Chunks, m.probe.Time)),
		validity))

	if len(m.hist) > 1 {
		b.WriteString(fmt.Sprintf("    %s  %s\n", dim.Render("hist"), cyan.Render(sparkline(m.hist, 32))))
	}

	barWidth := 36
	filled := 0
	if m.frames > 1 {
		filled = m.cursor * barWidth / (m.frames - 1)
	}
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("\n  %s %s\n", bar, dim.Render(fmt.Sprintf("frame %d/%d", m.cursor, m.frames-1))))

	if m.status != "" {
		b.WriteString("  " + yellow.Render(m.status) + "\n")
	}
	b.WriteString("\n" + dim.Render("  hjkl move  space step  a auto  [ ] scrub  v view  c palette  m mode  p zoom  bksp out  s png  ? help  q quit") + "\n")

	return b.String()
}

// canvas renders the cached frame as half-block rows, two field rows
// per terminal row, nearest-neighbor sampled to the available size.
// Field row 0 is the bottom of the picture.
func (m model) canvas(shader colormap.Shader) []string {
	n := m.width - 4
	if v := 2 * (m.height - 13); v < n {
		n = v
	}
	if n > 2*m.res {
		n = 2 * m.res
	}
	if n < 8 {
		n = 8
	}
	n -= n % 2

	field := m.frame.Field(m.view)
	// Validity lives in channel 3 of every divergence view but not in
	// the raw position texture, so it is read from one fixed view.
	flags := m.frame.Field(diverge.ViewInstant)
	curCol := m.px * n / m.res
	curRow := (n - 1 - m.py*n/m.res) / 2

	rows := make([]string, n/2)
	for row := range rows {
		var line strings.Builder
		line.WriteString("  ")
		for col := 0; col < n; col++ {
			pxT, pyT := samplePixel(col, 2*row, n, m.res)
			pxB, pyB := samplePixel(col, 2*row+1, n, m.res)
			st := lipgloss.NewStyle().
				Foreground(cellColor(field, flags, pxT, pyT, shader)).
				Background(cellColor(field, flags, pxB, pyB, shader))
			if col == curCol && row == curRow {
				st = st.Reverse(true)
			}
			line.WriteString(st.Render("▀"))
		}
		rows[row] = line.String()
	}
	return rows
}

// samplePixel maps a display cell to a field pixel. Display row 0 is
// the top of the screen, so the vertical axis flips.
func samplePixel(col, dispRow, n, res int) (px, py int) {
	return col * res / n, (n - 1 - dispRow) * res / n
}

func cellColor(f, flags *diverge.Field, px, py int, shader colormap.Shader) lipgloss.Color {
	if flags.Value(px, py, 3) == 0 {
		return lipgloss.Color("235")
	}
	c := shader.Shade(float64(f.Value(px, py, 0)))
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func stateLine(dims []dynamo.Dimension, x dynamo.State) string {
	var b strings.Builder
	for i, d := range dims {
		if i >= len(x) || i >= 4 {
			break
		}
		b.WriteString(dim.Render(d.String()+"=") + white.Render(fmt.Sprintf("%.3f", x[i])) + " ")
	}
	return b.String()
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func (m model) viewHelp() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("         " + cyan.Render("c h a o s c o p e") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n\n")

	for _, row := range [][2]string{
		{"hjkl / arrows", "move the probe cursor"},
		{"space", "advance one frame"},
		{"a", "toggle continuous advance"},
		{"[ ]", "scrub frame history"},
		{"v / V", "cycle view modes"},
		{"c", "cycle palettes"},
		{"m", "cycle value scaling"},
		{"p", "zoom into the cursor"},
		{"backspace", "zoom back out"},
		{"r", "re-render from scratch"},
		{"s", "save the visible frame as png"},
		{"q", "quit"},
	} {
		b.WriteString("      " + white.Render(fmt.Sprintf("%-15s", row[0])) + dim.Render(row[1]) + "\n")
	}

	b.WriteString("\n" + dim.Render("      any key returns") + "\n")
	return b.String()
}
