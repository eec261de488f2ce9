package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ProgramPoster runs posted functions on the Bubble Tea update loop, which
// makes the program the response context of the thumbnail downloader.
type ProgramPoster struct {
	mu      sync.RWMutex
	program *tea.Program
}

// Attach binds the poster to a program. Posts before Attach are dropped.
func (p *ProgramPoster) Attach(program *tea.Program) {
	p.mu.Lock()
	p.program = program
	p.mu.Unlock()
}

// Post hands fn to the update loop. It blocks until the loop accepts the
// message and returns immediately once the program has exited.
func (p *ProgramPoster) Post(fn func()) {
	p.mu.RLock()
	program := p.program
	p.mu.RUnlock()

	if program == nil {
		return
	}
	program.Send(postedMsg{fn: fn})
}
