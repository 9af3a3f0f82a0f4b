package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type frameMsg string

type inputDoneMsg struct{ err error }

// previewModel shows the latest rendered frame with a status line.
type previewModel struct {
	title    string
	frame    string
	frames   int
	done     bool
	err      error
	onResize func(cols int)
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if m.onResize != nil {
			m.onResize(max(msg.Width-FrameBoxStyle.GetHorizontalFrameSize(), 1))
		}
	case frameMsg:
		m.frame = string(msg)
		m.frames++
	case inputDoneMsg:
		m.done = true
		m.err = msg.err
	}
	return m, nil
}

func (m previewModel) View() string {
	var sb strings.Builder
	sb.WriteString(Title(m.title))
	sb.WriteByte('\n')

	frame := m.frame
	switch {
	case frame == "" && m.frames > 0:
		frame = Muted("display cleared")
	case frame == "":
		frame = Muted("waiting for input")
	}
	sb.WriteString(FrameBoxStyle.Render(frame))
	sb.WriteByte('\n')

	status := fmt.Sprintf("%d frames", m.frames)
	switch {
	case m.err != nil:
		status += " · " + Error(m.err.Error())
	case m.done:
		status += " · input closed"
	}
	sb.WriteString(StatusStyle.Render(status + " · q to quit"))
	return sb.String()
}

// Preview runs a full-screen view of frames rendered by a terminal sink.
type Preview struct {
	program *tea.Program
}

// NewPreview creates a preview. Keys are read from the controlling terminal
// so that stdin stays free for commands. onResize is called with the number of
// columns available to the frame whenever the terminal is resized.
func NewPreview(title string, onResize func(cols int)) *Preview {
	model := previewModel{title: title, onResize: onResize}
	return &Preview{program: tea.NewProgram(model, tea.WithAltScreen(), tea.WithInputTTY())}
}

// Show replaces the displayed frame. It may be called from any goroutine.
func (p *Preview) Show(frame string) {
	p.program.Send(frameMsg(frame))
}

// InputDone marks the command stream as finished.
func (p *Preview) InputDone(err error) {
	p.program.Send(inputDoneMsg{err: err})
}

// Run blocks until the user quits or Quit is called.
func (p *Preview) Run() error {
	_, err := p.program.Run()
	return err
}

// Quit stops a running preview.
func (p *Preview) Quit() {
	p.program.Quit()
}
