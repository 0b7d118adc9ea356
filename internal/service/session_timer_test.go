package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// manualScheduler dispara los callbacks a mano para tests deterministas.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	interval  time.Duration
	fn        func()
	cancelled bool
}

func (m *manualScheduler) Every(interval time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	timer := &manualTimer{interval: interval, fn: fn}
	m.timers = append(m.timers, timer)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		timer.cancelled = true
	}
}

// Fire ejecuta n ticks del timer activo mas reciente.
func (m *manualScheduler) Fire(n int) {
	for i := 0; i < n; i++ {
		m.mu.Lock()
		var active *manualTimer
		for j := len(m.timers) - 1; j >= 0; j-- {
			if !m.timers[j].cancelled {
				active = m.timers[j]
				break
			}
		}
		m.mu.Unlock()
		if active == nil {
			return
		}
		active.fn()
	}
}

func (m *manualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, timer := range m.timers {
		if !timer.cancelled {
			count++
		}
	}
	return count
}

func (m *manualScheduler) Timer(i int) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timers[i]
}

func (m *manualScheduler) Armed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func TestRealScheduler_FiresUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	fired := make(chan struct{}, 16)
	cancel := NewRealScheduler().Every(5*time.Millisecond, func() {
		calls.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer never fired")
	}
	cancel()
	cancel()

	// tras cancelar puede quedar a lo sumo un callback en vuelo
	time.Sleep(20 * time.Millisecond)
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("timer kept firing after cancel: %d -> %d", after, calls.Load())
	}
}
