package resilience

import "time"

// Policy tunes retries and the circuit breaker for one class of upstream.
// Zero or out-of-range fields are floored to safe values by normalize.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffGrowth  float64

	BreakerEnabled    bool
	BreakerMinSamples uint32
	BreakerTripRatio  float64
	BreakerCooldown   time.Duration
	BreakerProbeCalls uint32
}

// ClassifierPolicy guards classification service calls. Each call burns
// seconds of model latency and counts against a request quota, so attempts
// are few, backoff is generous, and the breaker cools down long enough for
// a quota window to recover before probing again.
func ClassifierPolicy() Policy {
	return Policy{
		MaxAttempts:    2,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffGrowth:  2.0,

		BreakerEnabled:    true,
		BreakerMinSamples: 5,
		BreakerTripRatio:  0.6,
		BreakerCooldown:   45 * time.Second,
		BreakerProbeCalls: 1,
	}
}

// PublishPolicy guards sheet-queued publishes to the import queue. A publish
// is cheap and local, so it retries harder on short windows and the breaker
// reopens quickly once the broker is reachable again.
func PublishPolicy() Policy {
	return Policy{
		MaxAttempts:    4,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     400 * time.Millisecond,
		BackoffGrowth:  2.0,

		BreakerEnabled:    true,
		BreakerMinSamples: 10,
		BreakerTripRatio:  0.5,
		BreakerCooldown:   10 * time.Second,
		BreakerProbeCalls: 2,
	}
}

func (p Policy) normalize() Policy {
	out := p
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 1
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = 50 * time.Millisecond
	}
	if out.MaxBackoff < out.InitialBackoff {
		out.MaxBackoff = out.InitialBackoff
	}
	if out.BackoffGrowth < 1.0 {
		out.BackoffGrowth = 2.0
	}
	if out.BreakerMinSamples == 0 {
		out.BreakerMinSamples = 5
	}
	if out.BreakerTripRatio <= 0 || out.BreakerTripRatio > 1 {
		out.BreakerTripRatio = 0.5
	}
	if out.BreakerCooldown <= 0 {
		out.BreakerCooldown = 15 * time.Second
	}
	if out.BreakerProbeCalls == 0 {
		out.BreakerProbeCalls = 1
	}
	return out
}
