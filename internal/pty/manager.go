// Package pty runs a status producer inside a pseudo-terminal so that
// programs which only line-buffer on a tty flush every status line.
package pty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
)

// Columns is the width reported to the producer. It is wide enough that
// programs sizing their output to the terminal keep whole protocol lines.
const Columns = 1024

// stopTimeout is how long Stop waits after an interrupt before killing.
const stopTimeout = 2 * time.Second

var ErrNotStarted = errors.New("producer not started")

// Manager manages a PTY and the producer process running in it
type Manager struct {
	command    string
	args       []string
	workingDir string
	log        *slog.Logger

	mu   sync.Mutex
	ptmx *os.File
	cmd  *exec.Cmd
	done chan struct{}
	err  error

	outputMu     sync.RWMutex
	outputBuffer *RingBuffer
}

// RingBuffer is a simple ring buffer for storing recent output
type RingBuffer struct {
	data  []byte
	size  int
	write int
}

// NewRingBuffer creates a new ring buffer with the given size
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		data: make([]byte, size),
		size: size,
	}
}

// Write writes data to the ring buffer
func (rb *RingBuffer) Write(p []byte) {
	for _, b := range p {
		rb.data[rb.write] = b
		rb.write = (rb.write + 1) % rb.size
	}
}

// String returns the buffer contents as a string
func (rb *RingBuffer) String() string {
	result := make([]byte, rb.size)
	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(rb.write+i)%rb.size]
	}
	start := 0
	for start < len(result) && result[start] == 0 {
		start++
	}
	return string(result[start:])
}

// NewManager creates a new producer manager
func NewManager(command string, args []string, workingDir string, logger *slog.Logger) (*Manager, error) {
	if command == "" {
		return nil, fmt.Errorf("command is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Manager{
		command:      command,
		args:         args,
		workingDir:   workingDir,
		log:          logger,
		outputBuffer: NewRingBuffer(4096), // Keep last 4KB of output
	}, nil
}

// Start starts the producer in a PTY and returns its output. The reader
// reports io.EOF once the producer has exited and its output is drained.
func (m *Manager) Start(ctx context.Context) (io.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd != nil {
		return nil, fmt.Errorf("producer already started")
	}

	cmd := exec.CommandContext(ctx, m.command, m.args...)
	if m.workingDir != "" {
		cmd.Dir = m.workingDir
	}
	cmd.Env = append(os.Environ(), "TERM=dumb")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: 1, Cols: Columns})
	if err != nil {
		return nil, fmt.Errorf("failed to start PTY: %w", err)
	}

	m.ptmx = ptmx
	m.cmd = cmd
	m.done = make(chan struct{})

	m.log.Info("producer started", "command", m.command, "pid", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		m.mu.Lock()
		m.err = err
		m.mu.Unlock()
		if err != nil {
			m.log.Warn("producer exited", "error", err, "output", m.GetRecentOutput())
		} else {
			m.log.Info("producer exited")
		}
		close(m.done)
	}()

	return &outputReader{src: ptmx, recent: m}, nil
}

// Wait blocks until the producer exits and returns its exit error.
func (m *Manager) Wait() error {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return ErrNotStarted
	}
	<-done
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Stop interrupts the producer, kills it if it does not exit in time, and
// closes the PTY.
func (m *Manager) Stop() {
	m.mu.Lock()
	cmd, done := m.cmd, m.done
	m.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(stopTimeout):
			cmd.Process.Kill()
			<-done
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ptmx != nil {
		m.ptmx.Close()
		m.ptmx = nil
	}
}

// GetRecentOutput returns the tail of the producer's output
func (m *Manager) GetRecentOutput() string {
	m.outputMu.RLock()
	defer m.outputMu.RUnlock()
	return m.outputBuffer.String()
}

func (m *Manager) record(p []byte) {
	m.outputMu.Lock()
	m.outputBuffer.Write(p)
	m.outputMu.Unlock()
}

// Resize resizes the PTY window
func (m *Manager) Resize(rows, cols uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx == nil {
		return ErrNotStarted
	}

	return pty.Setsize(m.ptmx, &pty.Winsize{
		Rows: rows,
		Cols: cols,
	})
}

// IsRunning returns whether the producer process is running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}
