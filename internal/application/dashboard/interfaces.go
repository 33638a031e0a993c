package dashboard

import (
	"context"

	"github.com/penwyp/go-automission-monitor/internal/presentation/display"
	"github.com/penwyp/go-automission-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
)

// DisplayController handles terminal display operations
type DisplayController interface {
	// EnterAlternateScreen switches to alternate terminal screen
	EnterAlternateScreen()
	// ExitAlternateScreen returns to normal terminal screen
	ExitAlternateScreen()
	// Render draws one frame
	Render(v view.View, opts display.RenderOptions)
}

// InputHandler processes keyboard and other input events
type InputHandler interface {
	// Events returns a channel of keyboard events
	Events() <-chan interaction.KeyEvent
	// Close cleans up input handler resources
	Close() error
}

// PasswordPrompter collects one login attempt
type PasswordPrompter interface {
	Password(ctx context.Context, l *view.Login) (string, error)
}
