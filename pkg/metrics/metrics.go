// Package metrics is a small in-process collector for request counters,
// operation latencies and payload sizes, exposed on the /metrics route.
package metrics

import (
	"sync"
	"time"
)

// keep only the most recent observations per series
const maxObservations = 100

type Collector struct {
	mu        sync.RWMutex
	counters  map[string]map[string]int64
	latencies map[string][]time.Duration
	sizes     map[string][]float64
}

func NewCollector() *Collector {
	return &Collector{
		counters:  make(map[string]map[string]int64),
		latencies: make(map[string][]time.Duration),
		sizes:     make(map[string][]float64),
	}
}

func (c *Collector) IncrementCounter(name string, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	labelKey := "default"
	for k, v := range labels {
		labelKey = k + ":" + v
		break
	}

	if _, ok := c.counters[name]; !ok {
		c.counters[name] = make(map[string]int64)
	}
	c.counters[name][labelKey]++
}

func (c *Collector) ObserveLatency(name string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latencies[name] = append(c.latencies[name], d)
	if len(c.latencies[name]) > maxObservations {
		c.latencies[name] = c.latencies[name][len(c.latencies[name])-maxObservations:]
	}
}

func (c *Collector) ObserveSize(name string, size float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sizes[name] = append(c.sizes[name], size)
	if len(c.sizes[name]) > maxObservations {
		c.sizes[name] = c.sizes[name][len(c.sizes[name])-maxObservations:]
	}
}

func (c *Collector) GetCounters() map[string]map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]int64, len(c.counters))
	for name, labels := range c.counters {
		out[name] = make(map[string]int64, len(labels))
		for label, v := range labels {
			out[name][label] = v
		}
	}
	return out
}

func (c *Collector) GetLatencies() map[string]map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]float64)
	for name, durations := range c.latencies {
		if len(durations) == 0 {
			continue
		}
		var sum time.Duration
		for _, d := range durations {
			sum += d
		}
		out[name] = map[string]float64{
			"avg_ms": float64(sum) / float64(len(durations)) / float64(time.Millisecond),
		}
	}
	return out
}

func (c *Collector) GetSizes() map[string]map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]float64)
	for name, observations := range c.sizes {
		if len(observations) == 0 {
			continue
		}
		var sum, max float64
		for _, v := range observations {
			sum += v
			if v > max {
				max = v
			}
		}
		out[name] = map[string]float64{
			"avg_bytes": sum / float64(len(observations)),
			"max_bytes": max,
		}
	}
	return out
}
