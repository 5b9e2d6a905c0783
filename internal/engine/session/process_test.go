package session_test

import (
	"io"
	"sync"
	"sync/atomic"

	"go.trai.ch/nixster/internal/core/domain"
)

// fakeProcess is a terminal program driven by the test. Output written to the
// process is read by the bridge; input written by the bridge is recorded.
type fakeProcess struct {
	outR *io.PipeReader
	outW *io.PipeWriter

	mu      sync.Mutex
	input   []byte
	written chan struct{}
	sizes   []domain.TerminalSize

	foreground atomic.Bool
	killOnce   sync.Once
	killed     chan struct{}
	kills      atomic.Int32
	closed     atomic.Bool
}

func newFakeProcess() *fakeProcess {
	r, w := io.Pipe()
	p := &fakeProcess{
		outR:    r,
		outW:    w,
		written: make(chan struct{}, 64),
		killed:  make(chan struct{}),
	}
	p.foreground.Store(true)
	return p
}

// emit makes the program print s. It blocks until the bridge reads it.
func (p *fakeProcess) emit(s string) {
	_, _ = p.outW.Write([]byte(s))
}

// exit ends the program as if it terminated by itself.
func (p *fakeProcess) exit() {
	p.killOnce.Do(func() {
		close(p.killed)
		_ = p.outW.Close()
	})
}

func (p *fakeProcess) received() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.input)
}

func (p *fakeProcess) Read(b []byte) (int, error) { return p.outR.Read(b) }

func (p *fakeProcess) Write(b []byte) (int, error) {
	p.mu.Lock()
	p.input = append(p.input, b...)
	p.mu.Unlock()
	p.written <- struct{}{}
	return len(b), nil
}

func (p *fakeProcess) Close() error {
	p.closed.Store(true)
	return p.outR.Close()
}

func (p *fakeProcess) Pid() int { return 4242 }

func (p *fakeProcess) Resize(size domain.TerminalSize) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sizes = append(p.sizes, size)
	return nil
}

func (p *fakeProcess) IsForeground() bool { return p.foreground.Load() }

func (p *fakeProcess) Kill() error {
	p.kills.Add(1)
	p.exit()
	return nil
}

func (p *fakeProcess) Wait() error {
	<-p.killed
	return nil
}
