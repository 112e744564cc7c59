// Package score provides the metadata bonuses layered on top of the
// match bands, and the declarative tiebreak chains that order equal
// scores. Everything here is pure arithmetic over candidate metadata;
// callers inject the clock.
package score

import (
	"math"
	"time"
)

// Frequency bonus shape: floor(log10(count+1) * frequencyScale),
// clamped. Ten uses are worth one scale step, a hundred two, so heavy
// use saturates instead of dominating the match bands.
const (
	frequencyScale = 10
	// MaxFrequency is the ceiling of the frequency bonus.
	MaxFrequency = 20
)

// Frequency converts a usage counter into a bounded bonus. Zero or
// negative counts earn nothing.
func Frequency(count int) int {
	if count <= 0 {
		return 0
	}
	b := int(math.Floor(math.Log10(float64(count)+1) * frequencyScale))
	if b > MaxFrequency {
		return MaxFrequency
	}
	return b
}

// Decay is a time-based bonus: the full Max inside the first day, then
// a linear slide to zero at TTL. Future timestamps clamp to the full
// bonus, absent (zero) timestamps earn nothing.
type Decay struct {
	Max int
	TTL time.Duration
}

// Default decay shapes. Usage recency rewards items picked in the last
// week; file freshness rewards files edited in the last month. Callers
// may re-cap FileFreshness at the call site (symbol search does).
var (
	UsageRecency  = Decay{Max: 50, TTL: 7 * 24 * time.Hour}
	FileFreshness = Decay{Max: 30, TTL: 30 * 24 * time.Hour}
)

const fullBonusWindow = 24 * time.Hour

// Bonus returns the decayed bonus for ts as seen from now.
func (d Decay) Bonus(ts, now time.Time) int {
	if d.Max <= 0 || ts.IsZero() {
		return 0
	}
	age := now.Sub(ts)
	if age < 0 {
		// Clock skew: treat timestamps from the future as brand new.
		age = 0
	}
	if d.TTL <= fullBonusWindow {
		if age < d.TTL {
			return d.Max
		}
		return 0
	}
	if age <= fullBonusWindow {
		return d.Max
	}
	if age >= d.TTL {
		return 0
	}
	remaining := d.TTL - age
	span := d.TTL - fullBonusWindow
	return int(int64(d.Max) * int64(remaining) / int64(span))
}
