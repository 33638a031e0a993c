package dashboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/penwyp/go-automission-monitor/internal/core/auth"
	"github.com/penwyp/go-automission-monitor/internal/core/state"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/presentation/display"
	"github.com/penwyp/go-automission-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-automission-monitor/internal/presentation/layout"
	"github.com/penwyp/go-automission-monitor/internal/presentation/prompt"
	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Deps are the collaborators the orchestrator drives. Unset terminal
// collaborators default to the real terminal.
type Deps struct {
	Source   source.Source
	Checker  auth.CredentialChecker
	Notifier state.Notifier

	Display  DisplayController
	Prompter PasswordPrompter
	Keyboard func() (InputHandler, error)
	Size     func() (width, height int)
}

// Orchestrator coordinates login, the live feed and the terminal display
type Orchestrator struct {
	config *Config

	gate         *state.Gate
	stateManager *StateManager
	subscriber   *Subscriber

	display     DisplayController
	prompter    PasswordPrompter
	newKeyboard func() (InputHandler, error)
	size        func() (int, int)
}

type keyAction int

const (
	actionNone keyAction = iota
	actionQuit
	actionLock
)

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(config *Config, deps Deps) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Source == nil {
		return nil, errors.New("no record source")
	}
	if deps.Checker == nil {
		deps.Checker = auth.NewStaticChecker(auth.DefaultSecret)
	}
	if deps.Notifier == nil {
		deps.Notifier = prompt.NewTerminalNotifier(os.Stderr)
	}
	if deps.Display == nil {
		deps.Display = display.NewTerminalDisplay(os.Stdout)
	}
	if deps.Prompter == nil {
		deps.Prompter = prompt.New(os.Stdin, os.Stdout)
	}
	if deps.Keyboard == nil {
		deps.Keyboard = func() (InputHandler, error) {
			return interaction.NewKeyboardReader()
		}
	}
	if deps.Size == nil {
		deps.Size = func() (int, int) {
			s := layout.TerminalSizer()
			return s.Width(), s.Height()
		}
	}

	stateManager := NewStateManager()
	stateManager.UpdateInteractionState(func(s *InteractionState) {
		s.LayoutStyle = config.LayoutStyle
	})

	return &Orchestrator{
		config:       config,
		gate:         state.NewGate(deps.Checker, deps.Notifier),
		stateManager: stateManager,
		subscriber:   NewSubscriber(deps.Source, config, stateManager.Dispatch),
		display:      deps.Display,
		prompter:     deps.Prompter,
		newKeyboard:  deps.Keyboard,
		size:         deps.Size,
	}, nil
}

// StateManager exposes the shared state, mainly for tests.
func (o *Orchestrator) StateManager() *StateManager {
	return o.stateManager
}

// Run alternates between the login prompt and the live dashboard until the
// operator quits, aborts the prompt or ctx ends.
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting Automission Monitor...")
	defer o.Close()

	if err := util.InitializeTimeProvider(o.config.Timezone); err != nil {
		return fmt.Errorf("failed to initialize timezone: %w", err)
	}

	for {
		if err := o.login(ctx); err != nil {
			if errors.Is(err, prompt.ErrAborted) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("login failed: %w", err)
		}

		locked, err := o.runDashboard(ctx)
		if err != nil || !locked {
			return err
		}
	}
}

// login prompts until the gate accepts a password.
func (o *Orchestrator) login(ctx context.Context) error {
	for {
		s := o.stateManager.Snapshot()
		if s.Authenticated {
			return nil
		}
		v := view.Build(s, util.GetTimeProvider().Now())
		password, err := o.prompter.Password(ctx, v.Login)
		if err != nil {
			return err
		}
		o.stateManager.Submit(o.gate, password)
	}
}

// runDashboard shows the live feed. It reports true when the operator locked
// the session and should be asked to log in again.
func (o *Orchestrator) runDashboard(ctx context.Context) (bool, error) {
	keyboard, err := o.newKeyboard()
	if err != nil {
		return false, fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	defer keyboard.Close()

	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()

	o.subscriber.Sync(o.stateManager.Snapshot().Authenticated)
	o.updateDisplay()

	uiTicker := time.NewTicker(o.config.UIRefreshInterval)
	defer uiTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down Automission Monitor...")
			return false, nil

		case <-uiTicker.C:
			// Relative times age even without new data.
			o.updateDisplay()

		case <-o.stateManager.Changed():
			o.updateDisplay()

		case keyEvent := <-keyboard.Events():
			switch o.handleKeyboard(keyEvent) {
			case actionQuit:
				return false, nil
			case actionLock:
				o.lock()
				return true, nil
			}
			o.updateDisplay()
		}
	}
}

// lock revokes the session and stops the feed.
func (o *Orchestrator) lock() {
	s := o.stateManager.Dispatch(state.Revoked{})
	o.subscriber.Sync(s.Authenticated)
	util.LogInfo("Session locked")
}

// updateDisplay updates the terminal display
func (o *Orchestrator) updateDisplay() {
	s := o.stateManager.Snapshot()
	interactionState := o.stateManager.GetInteractionState()
	width, height := o.size()

	v := view.Build(s, util.GetTimeProvider().Now(), view.WithLimit(o.config.Query.Limit))
	o.display.Render(v, display.RenderOptions{
		LayoutStyle: interactionState.LayoutStyle,
		ShowHelp:    interactionState.ShowHelp,
		Width:       width,
		Height:      height,
	})
}

// handleKeyboard handles keyboard events
func (o *Orchestrator) handleKeyboard(event interaction.KeyEvent) keyAction {
	switch event.Type {
	case interaction.KeyCtrlC:
		return actionQuit

	case interaction.KeyEscape:
		// If help is shown, close it; otherwise quit
		if o.stateManager.GetInteractionState().ShowHelp {
			o.stateManager.UpdateInteractionState(func(s *InteractionState) {
				s.ShowHelp = false
			})
			return actionNone
		}
		return actionQuit

	case interaction.KeyChar:
		switch event.Key {
		case 'q', 'Q':
			return actionQuit
		case 'l', 'L':
			return actionLock
		case 'h', 'H':
			o.stateManager.UpdateInteractionState(func(s *InteractionState) {
				s.ShowHelp = !s.ShowHelp
			})
		case 't', 'T':
			o.stateManager.UpdateInteractionState(func(s *InteractionState) {
				s.LayoutStyle = layout.NextStyle(s.LayoutStyle)
			})
		}
	}
	return actionNone
}

// Close cleans up all resources
func (o *Orchestrator) Close() error {
	o.subscriber.Close()
	return nil
}
