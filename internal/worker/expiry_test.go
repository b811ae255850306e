package worker

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLedgerService struct {
	mu      sync.Mutex
	batches []int
	calls   int
}

// ExpireDue returns the queued batch sizes one by one, then zero.
func (s *stubLedgerService) ExpireDue(_ context.Context, _ int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.batches) == 0 {
		return 0, nil
	}
	expired := s.batches[0]
	s.batches = s.batches[1:]
	return expired, nil
}

func (s *stubLedgerService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSweepDrainsBacklog(t *testing.T) {
	// Two full batches and a partial one: the sweep keeps going until a
	// batch comes back short.
	svs := &stubLedgerService{batches: []int{5, 5, 2}}
	p := New(svs, silentLogger()).SetBatchLimit(5)

	err := p.sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, svs.callCount())
}

func TestSweepStopsOnShortBatch(t *testing.T) {
	svs := &stubLedgerService{batches: []int{2}}
	p := New(svs, silentLogger()).SetBatchLimit(5)

	err := p.sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, svs.callCount())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	svs := &stubLedgerService{}
	p := New(svs, silentLogger()).SetInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop after cancel")
	}
	assert.Positive(t, svs.callCount())
}
