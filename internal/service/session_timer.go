package service

import (
	"sync"
	"time"
)

// Cancel detiene un timer. Es idempotente.
type Cancel func()

// Scheduler ejecuta fn cada interval hasta que se cancele el handle devuelto.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Cancel
}

type realScheduler struct{}

// NewRealScheduler devuelve un Scheduler respaldado por time.Ticker.
func NewRealScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) Every(interval time.Duration, fn func()) Cancel {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// un cancel concurrente gana sobre un tick pendiente
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
