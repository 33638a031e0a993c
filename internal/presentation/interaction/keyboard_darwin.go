//go:build darwin

package interaction

import (
	"golang.org/x/sys/unix"
)

// enableRawMode sets the terminal to raw mode on Darwin/macOS
func (kr *KeyboardReader) enableRawMode() error {
	oldState, err := unix.IoctlGetTermios(kr.fd, unix.TIOCGETA)
	if err != nil {
		return err
	}
	kr.oldState = oldState

	newState := *oldState
	newState.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN
	// Keep ISIG enabled to allow Ctrl+C handling
	newState.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	newState.Cflag |= unix.CS8
	// Reads time out after 100ms so the reader can notice Close.
	newState.Cc[unix.VMIN] = 0
	newState.Cc[unix.VTIME] = 1

	return unix.IoctlSetTermios(kr.fd, unix.TIOCSETA, &newState)
}

// disableRawMode restores the terminal to normal mode on Darwin/macOS
func (kr *KeyboardReader) disableRawMode() error {
	oldState, ok := kr.oldState.(*unix.Termios)
	if !ok || oldState == nil {
		return nil
	}
	return unix.IoctlSetTermios(kr.fd, unix.TIOCSETA, oldState)
}
