package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider is a global time utility that handles timezone-aware time operations
type TimeProvider struct {
	location *time.Location
	now      func() time.Time
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// InitializeTimeProvider initializes the global time provider with the specified timezone
func InitializeTimeProvider(timezone string) error {
	mu.Lock()
	defer mu.Unlock()

	provider := &TimeProvider{}
	if err := provider.SetTimezone(timezone); err != nil {
		return err
	}

	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global time provider instance.
// If not initialized, it defaults to Local timezone.
func GetTimeProvider() *TimeProvider {
	mu.Lock()
	provider := globalTimeProvider
	mu.Unlock()

	if provider == nil {
		_ = InitializeTimeProvider("Local")
		mu.Lock()
		provider = globalTimeProvider
		mu.Unlock()
	}
	return provider
}

// SetTimezone updates the timezone for the time provider
func (tp *TimeProvider) SetTimezone(timezone string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	loc := time.Local
	if timezone != "" && timezone != "Local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Europe/Paris, Africa/Casablanca", timezone, err)
		}
		loc = l
	}
	tp.location = loc
	return nil
}

// SetClock overrides the wall clock; nil restores time.Now.
func (tp *TimeProvider) SetClock(now func() time.Time) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.now = now
}

// Now returns the current time in the configured timezone
func (tp *TimeProvider) Now() time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()

	now := time.Now
	if tp.now != nil {
		now = tp.now
	}
	return now().In(tp.location)
}

// In converts a time to the configured timezone
func (tp *TimeProvider) In(t time.Time) time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location)
}

// Format formats a time according to the layout in the configured timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location).Format(layout)
}

// FormatOptional formats t, or returns fallback when t is nil.
func (tp *TimeProvider) FormatOptional(t *time.Time, layout, fallback string) string {
	if t == nil {
		return fallback
	}
	return tp.Format(*t, layout)
}

// FormatNow formats the current time according to the layout
func (tp *TimeProvider) FormatNow(layout string) string {
	return tp.Format(tp.Now(), layout)
}
