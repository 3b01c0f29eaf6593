package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRand(t *testing.T, v float64) {
	t.Helper()
	orig := randFloat
	randFloat = func() float64 { return v }
	t.Cleanup(func() { randFloat = orig })
}

func TestComputeBackoffDelay_Ranges(t *testing.T) {
	for i := 0; i < 200; i++ {
		d := ComputeBackoffDelay(1, 300*time.Millisecond, 4*time.Second)
		assert.GreaterOrEqual(t, d, 300*time.Millisecond)
		assert.Less(t, d, 390*time.Millisecond)

		d = ComputeBackoffDelay(5, 300*time.Millisecond, 4*time.Second)
		assert.GreaterOrEqual(t, d, 4*time.Second)
		assert.Less(t, d, 5200*time.Millisecond)
	}
}

func TestComputeBackoffDelay_Deterministic(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		rand    float64
		want    time.Duration
	}{
		{"first attempt no jitter", 1, 0, 300 * time.Millisecond},
		{"second attempt doubles", 2, 0, 600 * time.Millisecond},
		{"third attempt", 3, 0, 1200 * time.Millisecond},
		{"capped", 6, 0, 4 * time.Second},
		{"zero attempt treated as first", 0, 0, 300 * time.Millisecond},
		{"negative attempt treated as first", -3, 0, 300 * time.Millisecond},
		{"half jitter floored", 1, 0.5, 345 * time.Millisecond},
		{"jitter on capped delay", 10, 0.5, 4600 * time.Millisecond},
		{"huge attempt stays capped", 5000, 0, 4 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withRand(t, tt.rand)
			got := ComputeBackoffDelay(tt.attempt, DefaultBaseDelay, DefaultMaxDelay)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeBackoffDelay_FloorsToMillisecond(t *testing.T) {
	withRand(t, 0.999)
	got := ComputeBackoffDelay(1, 10*time.Millisecond, time.Second)
	// 10 + 0.999*0.3*10 = 12.997 -> 12
	assert.Equal(t, 12*time.Millisecond, got)
}

func TestSleep_Zero(t *testing.T) {
	done := make(chan struct{})
	go func() {
		Sleep(0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Sleep(0) did not return")
	}
}

func TestSleep_Waits(t *testing.T) {
	start := time.Now()
	Sleep(20 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SleepContext(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepContext_Elapses(t *testing.T) {
	require.NoError(t, SleepContext(context.Background(), time.Millisecond))
}
