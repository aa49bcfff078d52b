package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const maxBarWidth = 60

type progressMsg struct {
	downloaded int64
	total      int64
}

type progressDoneMsg struct{}

// ProgressModel is a Bubble Tea model showing download progress.
type ProgressModel struct {
	title      string
	bar        progress.Model
	downloaded int64
	total      int64
	done       bool
}

// NewProgressModel creates a progress model headed by title.
func NewProgressModel(title string) ProgressModel {
	return ProgressModel{
		title: title,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
		),
	}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.downloaded = msg.downloaded
		m.total = msg.total
		return m, nil

	case progressDoneMsg:
		m.done = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.Percent()))
	b.WriteString("\n")
	if m.total > 0 {
		b.WriteString(infoStyle.Render(fmt.Sprintf("%s / %s", formatBytes(m.downloaded), formatBytes(m.total))))
	} else {
		b.WriteString(infoStyle.Render(formatBytes(m.downloaded)))
	}
	b.WriteString("\n")
	return b.String()
}

// Percent returns the completed fraction, 0 when the size is unknown.
func (m ProgressModel) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(float64(m.downloaded)/float64(m.total), 1)
}

// Done reports whether the display was finished.
func (m ProgressModel) Done() bool {
	return m.done
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// ProgressDisplay runs a ProgressModel in its own program. The program is
// started by the first Update.
type ProgressDisplay struct {
	out   io.Writer
	title string

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
	stopped bool
}

// NewProgressDisplay creates a display rendering to w.
func NewProgressDisplay(w io.Writer, title string) *ProgressDisplay {
	return &ProgressDisplay{out: w, title: title}
}

// Update reports download progress. It matches upgrade.ProgressHook.
func (d *ProgressDisplay) Update(downloaded, total int64) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.program == nil {
		d.start()
	}
	program := d.program
	d.mu.Unlock()

	program.Send(progressMsg{downloaded: downloaded, total: total})
}

func (d *ProgressDisplay) start() {
	d.program = tea.NewProgram(
		NewProgressModel(d.title),
		tea.WithOutput(d.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	d.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		_, _ = p.Run()
		close(done)
	}(d.program, d.done)
}

// Stop finishes the display and waits for the program to exit. It is safe
// to call more than once, and before any Update.
func (d *ProgressDisplay) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	program, done := d.program, d.done
	d.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(progressDoneMsg{})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		program.Kill()
		<-done
	}
}
