package util

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "local timezone", timezone: "Local"},
		{name: "UTC timezone", timezone: "UTC"},
		{name: "valid timezone Europe/Paris", timezone: "Europe/Paris"},
		{name: "empty timezone defaults to Local", timezone: ""},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeTimeProvider(tt.timezone)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid timezone")
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, GetTimeProvider())
		})
	}
}

func TestGetTimeProvider_DefaultsToLocal(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	provider := GetTimeProvider()
	require.NotNil(t, provider)
	assert.Same(t, provider, GetTimeProvider())
}

func TestTimeProvider_SetClock(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("UTC"))

	fixed := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	provider.SetClock(func() time.Time { return fixed })
	assert.True(t, fixed.Equal(provider.Now()))
	assert.Equal(t, "09:30", provider.FormatNow("15:04"))

	provider.SetClock(nil)
	assert.WithinDuration(t, time.Now(), provider.Now(), time.Second)
}

func TestTimeProvider_FormatOptional(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("Asia/Shanghai"))

	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-01 20:00", provider.FormatOptional(&ts, "2006-01-02 15:04", "-"))
	assert.Equal(t, "-", provider.FormatOptional(nil, "2006-01-02 15:04", "-"))
}

func TestTimeProvider_Concurrency(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("UTC"))

	var wg sync.WaitGroup
	timezones := []string{"UTC", "Asia/Shanghai", "America/New_York", "Europe/London"}
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = provider.Now()
			_ = provider.Format(time.Now(), time.RFC3339)
		}()
		go func(idx int) {
			defer wg.Done()
			assert.NoError(t, provider.SetTimezone(timezones[idx%len(timezones)]))
		}(i)
	}
	wg.Wait()
}
