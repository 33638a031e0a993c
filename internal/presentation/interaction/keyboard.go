package interaction

import (
	"io"
	"os"
	"sync"
	"time"
)

// closeWait bounds how long Close waits for a pending terminal read.
const closeWait = 250 * time.Millisecond

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	in       io.Reader
	fd       int
	rawMode  bool
	oldState any
	input    chan KeyEvent
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyEnter
	KeyCtrlC
	KeyUp
	KeyDown
)

// IsQuit reports whether the event should end the dashboard.
func (e KeyEvent) IsQuit() bool {
	switch e.Type {
	case KeyEscape, KeyCtrlC:
		return true
	case KeyChar:
		return e.Key == 'q' || e.Key == 'Q'
	}
	return false
}

// NewKeyboardReader puts stdin in raw mode and starts reading from it.
func NewKeyboardReader() (*KeyboardReader, error) {
	kr := newReader(os.Stdin)
	kr.fd = int(os.Stdin.Fd())

	if err := kr.enableRawMode(); err != nil {
		return nil, err
	}
	kr.rawMode = true

	go kr.readInput()
	return kr, nil
}

// NewReader reads key events from r without touching terminal modes.
func NewReader(r io.Reader) *KeyboardReader {
	kr := newReader(r)
	go kr.readInput()
	return kr
}

func newReader(r io.Reader) *KeyboardReader {
	return &KeyboardReader{
		in:    r,
		input: make(chan KeyEvent, 10),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// readInput reads keyboard input in a goroutine
func (kr *KeyboardReader) readInput() {
	defer close(kr.done)
	buf := make([]byte, 3)

	for {
		select {
		case <-kr.stop:
			return
		default:
		}

		n, err := kr.in.Read(buf)
		if err == io.EOF {
			// A raw terminal read that timed out looks like EOF.
			if kr.rawMode {
				continue
			}
			return
		}
		if err != nil || n == 0 {
			continue
		}

		event := kr.parseInput(buf[:n])
		if event == nil {
			continue
		}
		select {
		case kr.input <- *event:
		case <-kr.stop:
			return
		}
	}
}

// parseInput parses raw keyboard input
func (kr *KeyboardReader) parseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	switch buf[0] {
	case 3:
		return &KeyEvent{Key: 3, Type: KeyCtrlC}
	case '\r', '\n':
		return &KeyEvent{Key: '\n', Type: KeyEnter}
	case 27:
		if len(buf) == 1 {
			return &KeyEvent{Key: 27, Type: KeyEscape}
		}
		if len(buf) >= 3 && buf[1] == '[' {
			switch buf[2] {
			case 'A':
				return &KeyEvent{Type: KeyUp}
			case 'B':
				return &KeyEvent{Type: KeyDown}
			}
		}
		return nil
	}

	return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the keyboard reader and restores terminal
func (kr *KeyboardReader) Close() error {
	var err error
	kr.once.Do(func() {
		close(kr.stop)
		if kr.rawMode {
			// The terminal must not go back to line mode while a read is
			// still pending, or that read would consume the next line.
			select {
			case <-kr.done:
			case <-time.After(closeWait):
			}
			err = kr.disableRawMode()
		}
	})
	return err
}
