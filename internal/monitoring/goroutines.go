package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultCheckInterval  = 30 * time.Second
	defaultAlertThreshold = 1000
	defaultAlertCooldown  = 5 * time.Minute
)

// GoroutineMonitor periodically samples the goroutine count and a set of
// named gauges, such as the number of live matches, and warns when the
// goroutine count passes a threshold
type GoroutineMonitor struct {
	mu             sync.RWMutex
	logger         zerolog.Logger
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration
	stopChan       chan struct{}
	stopOnce       sync.Once
	gauges         map[string]func() int
	componentCount map[string]int
	numGoroutine   func() int
	now            func() time.Time
}

// NewGoroutineMonitor creates a monitor; zero interval or threshold use
// the defaults
func NewGoroutineMonitor(logger zerolog.Logger, interval time.Duration, threshold int) *GoroutineMonitor {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	if threshold <= 0 {
		threshold = defaultAlertThreshold
	}
	baseline := runtime.NumGoroutine()
	return &GoroutineMonitor{
		logger:         logger.With().Str("component", "GoroutineMonitor").Logger(),
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		checkInterval:  interval,
		alertThreshold: threshold,
		alertCooldown:  defaultAlertCooldown,
		stopChan:       make(chan struct{}),
		gauges:         make(map[string]func() int),
		componentCount: make(map[string]int),
		numGoroutine:   runtime.NumGoroutine,
		now:            time.Now,
	}
}

// Track registers a gauge sampled on every check
func (gm *GoroutineMonitor) Track(name string, gauge func() int) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.gauges[name] = gauge
}

// Start begins monitoring in the background
func (gm *GoroutineMonitor) Start() {
	go gm.monitor()
	gm.logger.Info().
		Int("baseline", gm.baseline).
		Dur("interval", gm.checkInterval).
		Msg("Started goroutine monitoring")
}

// Stop stops the monitor. It is safe to call more than once.
func (gm *GoroutineMonitor) Stop() {
	gm.stopOnce.Do(func() { close(gm.stopChan) })
}

func (gm *GoroutineMonitor) monitor() {
	defer func() {
		if r := recover(); r != nil {
			gm.logger.Error().
				Interface("panic", r).
				Msg("Goroutine monitor panicked - restarting")
			time.Sleep(5 * time.Second)
			go gm.monitor()
		}
	}()

	ticker := time.NewTicker(gm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.check()
		case <-gm.stopChan:
			return
		}
	}
}

// check samples goroutines and gauges and reports whether an alert fired
func (gm *GoroutineMonitor) check() bool {
	current := gm.numGoroutine()

	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}
	for name, gauge := range gm.gauges {
		gm.componentCount[name] = gauge()
	}

	growth := current - gm.baseline
	growthRate := 0.0
	if gm.baseline > 0 {
		growthRate = float64(growth) / float64(gm.baseline) * 100
	}

	now := gm.now()
	shouldAlert := current > gm.alertThreshold && now.Sub(gm.lastAlert) > gm.alertCooldown
	if shouldAlert {
		gm.lastAlert = now
	}
	peak := gm.peak
	counts := copyMap(gm.componentCount)
	gm.mu.Unlock()

	event := gm.logger.Debug().
		Int("current", current).
		Int("baseline", gm.baseline).
		Int("peak", peak).
		Float64("growth_rate", growthRate)
	for name, n := range counts {
		event = event.Int(name, n)
	}
	event.Msg("Goroutine metrics")

	if shouldAlert {
		gm.logger.Warn().
			Int("current", current).
			Int("threshold", gm.alertThreshold).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
	return shouldAlert
}

// GetMetrics returns the latest sample
func (gm *GoroutineMonitor) GetMetrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	return GoroutineMetrics{
		Current:         gm.current,
		Baseline:        gm.baseline,
		Peak:            gm.peak,
		Growth:          gm.current - gm.baseline,
		ComponentCounts: copyMap(gm.componentCount),
	}
}

// GoroutineMetrics contains goroutine statistics
type GoroutineMetrics struct {
	Current         int            `json:"current"`
	Baseline        int            `json:"baseline"`
	Peak            int            `json:"peak"`
	Growth          int            `json:"growth"`
	ComponentCounts map[string]int `json:"component_counts"`
}

func copyMap(m map[string]int) map[string]int {
	result := make(map[string]int, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
