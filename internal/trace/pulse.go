package trace

import (
	"strconv"
	"sync"
	"time"
)

// Pulse emits a pulse event every interval until stop is called. A trace
// whose pulses keep coming with no span ends between them shows where a run
// is stuck. stop may be called more than once.
func Pulse(t Tracer, every time.Duration) (stop func()) {
	if !Enabled(t) || every <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Go(func() {
		tick := time.NewTicker(every)
		defer tick.Stop()
		for n := 1; ; n++ {
			select {
			case <-done:
				return
			case now := <-tick.C:
				t.Emit(&Event{
					Time:      now,
					Kind:      KindPulse,
					Scope:     ScopeRun,
					Goroutine: goroutineID(),
					Name:      "pulse",
					Detail:    "#" + strconv.Itoa(n),
				})
			}
		}
	})
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
