package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/weather"
)

type stubSettings struct {
	s   lawn.Settings
	err error
}

func (s stubSettings) Settings(context.Context) (lawn.Settings, error) {
	return s.s, s.err
}

type recordingRefresher struct {
	mu   sync.Mutex
	locs []weather.Location
	err  error
}

func (r *recordingRefresher) Refresh(_ context.Context, loc weather.Location) (weather.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locs = append(r.locs, loc)
	return weather.Snapshot{}, r.err
}

func (r *recordingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locs)
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()

	ref := &recordingRefresher{}
	s := New(stubSettings{s: lawn.Settings{ZipCode: "k1a 0b1", CountryCode: "CA"}}, ref, time.Hour, zap.NewNop())
	assert.True(t, s.RunOnce(ctx))
	require.Len(t, ref.locs, 1)
	assert.Equal(t, "CA:k1a 0b1", ref.locs[0].Key())

	ref = &recordingRefresher{}
	s = New(stubSettings{}, ref, time.Hour, nil)
	assert.False(t, s.RunOnce(ctx), "no zip code")
	assert.Zero(t, ref.count())

	s = New(stubSettings{err: errors.New("db down")}, ref, time.Hour, nil)
	assert.False(t, s.RunOnce(ctx))
	assert.Zero(t, ref.count())

	ref = &recordingRefresher{err: weather.ErrRateLimited}
	s = New(stubSettings{s: lawn.Settings{ZipCode: "10001"}}, ref, time.Hour, nil)
	assert.False(t, s.RunOnce(ctx))
	assert.Equal(t, 1, ref.count())
}

func TestStartRunsImmediately(t *testing.T) {
	ref := &recordingRefresher{}
	s := New(stubSettings{s: lawn.Settings{ZipCode: "10001"}}, ref, time.Hour, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return ref.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestNew_DefaultInterval(t *testing.T) {
	s := New(stubSettings{}, &recordingRefresher{}, 0, nil)
	assert.Equal(t, defaultInterval, s.interval)
}
