package storagepath

import (
	"sync"
	"time"
)

// pollMode is chosen once, when the callback is registered.
type pollMode int

const (
	pollNever pollMode = iota
	pollOnce
	pollPeriodic
)

func (m pollMode) String() string {
	switch m {
	case pollOnce:
		return "once"
	case pollPeriodic:
		return "periodic"
	default:
		return "never"
	}
}

func modeForInterval(seconds int64) pollMode {
	switch {
	case seconds == 0:
		return pollOnce
	case seconds > 0:
		return pollPeriodic
	default:
		return pollNever
	}
}

// poller runs fn on a dedicated goroutine, either once or on a ticker that
// fires immediately and then every interval. It never runs fn concurrently
// with itself.
type poller struct {
	mode     pollMode
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func startPoller(mode pollMode, interval time.Duration, fn func()) *poller {
	p := &poller{
		mode:     mode,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	switch mode {
	case pollOnce:
		go func() {
			defer close(p.done)
			fn()
		}()
	case pollPeriodic:
		go p.loop(fn)
	default:
		close(p.done)
	}
	return p
}

func (p *poller) loop(fn func()) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		default:
		}
		fn()
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}
	}
}

// shutdown stops future runs and blocks until an in-flight run returns.
func (p *poller) shutdown() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}
