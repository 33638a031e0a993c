//go:build !linux && !darwin

package interaction

import (
	"golang.org/x/term"
)

func (kr *KeyboardReader) enableRawMode() error {
	oldState, err := term.MakeRaw(kr.fd)
	if err != nil {
		return err
	}
	kr.oldState = oldState
	return nil
}

func (kr *KeyboardReader) disableRawMode() error {
	oldState, ok := kr.oldState.(*term.State)
	if !ok || oldState == nil {
		return nil
	}
	return term.Restore(kr.fd, oldState)
}
