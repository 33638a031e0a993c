package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
)

func batch(prefix string, n int) []model.ApplicationRecord {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]model.ApplicationRecord, n)
	for i := range out {
		ts := base.Add(-time.Duration(i) * time.Second)
		out[i] = model.ApplicationRecord{ID: fmt.Sprintf("%s%d", prefix, i), Status: model.StatusApplied, Timestamp: &ts}
	}
	return out
}

func next(t *testing.T, s *source.Stream) source.Update {
	t.Helper()
	select {
	case u, ok := <-s.Updates():
		require.True(t, ok, "stream closed")
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return source.Update{}
	}
}

func TestSubscribeInitialSnapshot(t *testing.T) {
	src := New(batch("a", 3)...)
	stream, err := src.Subscribe(context.Background(), source.DefaultQuery())
	require.NoError(t, err)
	defer stream.Unsubscribe()

	u := next(t, stream)
	require.NoError(t, u.Err)
	assert.Equal(t, batch("a", 3), u.Snapshot.Records)
}

func TestSubscribeEmpty(t *testing.T) {
	src := New()
	stream, err := src.Subscribe(context.Background(), source.DefaultQuery())
	require.NoError(t, err)
	defer stream.Unsubscribe()

	assert.Empty(t, next(t, stream).Snapshot.Records)
}

func TestReplaceLatestWins(t *testing.T) {
	src := New()
	stream, err := src.Subscribe(context.Background(), source.DefaultQuery())
	require.NoError(t, err)
	defer stream.Unsubscribe()
	next(t, stream)

	src.Replace(batch("a", 5))
	src.Replace(batch("b", 6))

	assert.Eventually(t, func() bool {
		select {
		case u := <-stream.Updates():
			return len(u.Snapshot.Records) == 6 && u.Snapshot.Records[0].ID == "b0"
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscribeRespectsLimit(t *testing.T) {
	src := New(batch("a", 150)...)
	stream, err := src.Subscribe(context.Background(), source.DefaultQuery())
	require.NoError(t, err)
	defer stream.Unsubscribe()

	records := next(t, stream).Snapshot.Records
	require.Len(t, records, 100)
	assert.Equal(t, "a0", records[0].ID)
	assert.Equal(t, "a99", records[99].ID)
}

func TestPutUpserts(t *testing.T) {
	src := New(batch("a", 2)...)
	stream, err := src.Subscribe(context.Background(), source.DefaultQuery())
	require.NoError(t, err)
	defer stream.Unsubscribe()
	next(t, stream)

	changed := batch("a", 1)[0]
	changed.Status = "Failed - Exception"
	src.Put(changed)

	u := next(t, stream)
	require.Len(t, u.Snapshot.Records, 2)
	assert.Equal(t, "Failed - Exception", u.Snapshot.Records[0].Status)
}

func TestFailEndsStream(t *testing.T) {
	src := New()
	stream, err := src.Subscribe(context.Background(), source.DefaultQuery())
	require.NoError(t, err)
	next(t, stream)

	src.Fail(errors.New("permission denied"))
	u := next(t, stream)
	assert.EqualError(t, u.Err, "permission denied")
	<-stream.Done()
	assert.Equal(t, 0, src.Subscribers())
}

func TestUnsubscribeRemovesSubscriber(t *testing.T) {
	src := New()
	stream, err := src.Subscribe(context.Background(), source.DefaultQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, src.Subscribers())

	stream.Unsubscribe()
	assert.Equal(t, 0, src.Subscribers())
}

func TestSubscribeAfterClose(t *testing.T) {
	src := New()
	require.NoError(t, src.Close())
	_, err := src.Subscribe(context.Background(), source.DefaultQuery())
	assert.ErrorIs(t, err, source.ErrClosed)
}

func TestSubscribeRejectsBadQuery(t *testing.T) {
	_, err := New().Subscribe(context.Background(), source.Query{})
	assert.Error(t, err)
}
