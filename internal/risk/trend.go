package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

// Deltas versus the previous entry worth mentioning.
const (
	trendTempDelta = 0.3 // °F
	trendHRDelta   = 5   // bpm
)

// Looser deltas versus the personal baseline.
const (
	baselineTempDelta = 1.0 // °F
	baselineHRDelta   = 10  // bpm
)

// AnalyzeTrend compares the current vitals against the most recent persisted
// entry and the personal baseline. The caller must pass history that excludes
// the in-progress check-in; it is appended only after scoring completes.
func AnalyzeTrend(temp, hr float64, p *profile.Profile) string {
	if len(p.HistoricalData) == 0 {
		return "No previous data for comparison. This is your first check-in!"
	}

	last := p.HistoricalData[0]
	var b strings.Builder

	// Recovery entries store no vitals; a zero reading is nothing to diff.
	if last.Temperature > 0 {
		tempDiff := temp - last.Temperature
		if math.Abs(tempDiff) > trendTempDelta {
			b.WriteString(fmt.Sprintf("Temperature %s by %.1f°F from last check-in. ", direction(tempDiff), math.Abs(tempDiff)))
		}
	}

	if last.HeartRate > 0 {
		hrDiff := hr - last.HeartRate
		if math.Abs(hrDiff) > trendHRDelta {
			b.WriteString(fmt.Sprintf("Heart rate %s by %.0f bpm from last check-in. ", direction(hrDiff), math.Abs(hrDiff)))
		}
	}

	if p.Baseline != nil {
		if d := temp - p.Baseline.Temperature; d > baselineTempDelta {
			b.WriteString(fmt.Sprintf("Temperature is %.1f°F above your personal baseline. ", d))
		}
		if d := hr - p.Baseline.HeartRate; d > baselineHRDelta {
			b.WriteString(fmt.Sprintf("Heart rate is %.0f bpm above your personal baseline. ", d))
		}
	}

	if b.Len() == 0 {
		return "Vitals are within normal range compared to recent history."
	}
	return strings.TrimSpace(b.String())
}

func direction(delta float64) string {
	if delta > 0 {
		return "increased"
	}
	return "decreased"
}
