package logging

import (
	"math"
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

// Float64 builds a float field. JSON has no infinities or NaN, so those are
// rendered as strings.
func Float64(key string, value float64) Field {
	switch {
	case math.IsInf(value, 1):
		return Field{Key: key, Value: "+Inf"}
	case math.IsInf(value, -1):
		return Field{Key: key, Value: "-Inf"}
	case math.IsNaN(value):
		return Field{Key: key, Value: "NaN"}
	}
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Simulation field helpers

func Component(name string) Field {
	return String("component", name)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Seed(seed uint64) Field {
	return Uint64("seed", seed)
}

func Tick(n int) Field {
	return Int("tick", n)
}

func HostID(id int) Field {
	return Int("host_id", id)
}

func State(s string) Field {
	return String("state", s)
}

func Ratio(r float64) Field {
	return Float64("resistant_susceptible_ratio", r)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
