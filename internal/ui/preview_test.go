package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestPreviewModelFrames(t *testing.T) {
	var m tea.Model = previewModel{title: "test"}

	if !strings.Contains(m.View(), "waiting for input") {
		t.Errorf("View() before any frame = %q, want placeholder", m.View())
	}

	m, _ = m.Update(frameMsg("AB"))
	m, _ = m.Update(frameMsg("CD"))

	pm := m.(previewModel)
	if pm.frames != 2 {
		t.Errorf("frames = %d, want 2", pm.frames)
	}
	if pm.frame != "CD" {
		t.Errorf("frame = %q, want %q", pm.frame, "CD")
	}
	if !strings.Contains(m.View(), "2 frames") {
		t.Errorf("View() = %q, want frame count", m.View())
	}
}

func TestPreviewModelResize(t *testing.T) {
	var got int
	var m tea.Model = previewModel{onResize: func(cols int) { got = cols }}

	m.Update(tea.WindowSizeMsg{Width: 82, Height: 24})

	if want := 82 - FrameBoxStyle.GetHorizontalFrameSize(); got != want {
		t.Errorf("onResize(%d), want %d", got, want)
	}
}

func TestPreviewModelInputDone(t *testing.T) {
	var m tea.Model = previewModel{}

	m, _ = m.Update(inputDoneMsg{})
	if !strings.Contains(m.View(), "input closed") {
		t.Errorf("View() = %q, want input closed", m.View())
	}

	m, _ = m.Update(inputDoneMsg{err: errors.New("broken pipe")})
	if !strings.Contains(m.View(), "broken pipe") {
		t.Errorf("View() = %q, want error", m.View())
	}
}

func TestPreviewModelQuit(t *testing.T) {
	keys := []string{"q", "esc", "ctrl+c"}
	msgs := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	}
	for i, msg := range msgs {
		_, cmd := previewModel{}.Update(msg)
		if cmd == nil {
			t.Errorf("Update(%s) returned no command, want quit", keys[i])
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("Update(%s) command did not quit", keys[i])
		}
	}
}
