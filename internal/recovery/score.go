package recovery

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

const scoreWindow = 7

// DashboardScore computes the weekly 0-100 recovery score over the last 7
// entries: base 50, sleep duration, vitals stability, symptom-trend direction
// and meal-logging consistency.
func DashboardScore(p *profile.Profile) int {
	if p.RecoveryMode == nil || !p.RecoveryMode.IsEnabled || len(p.HistoricalData) == 0 {
		return 0
	}

	recent := p.RecentEntries(scoreWindow)
	score := 50

	var sleepSum float64
	for _, e := range recent {
		sleepSum += e.RestHours
	}
	avgSleep := sleepSum / float64(len(recent))
	switch {
	case avgSleep >= 7:
		score += 20
	case avgSleep >= 5:
		score += 10
	default:
		score -= 10
	}

	// Stability needs at least two real readings; recovery check-ins store
	// no vitals and must not earn the bonus by default.
	var temps, hrs []float64
	for _, e := range recent {
		if e.Temperature == 0 || e.HeartRate == 0 {
			continue
		}
		temps = append(temps, e.Temperature)
		hrs = append(hrs, e.HeartRate)
	}
	if len(temps) >= 2 && stddev(temps) < 0.5 && stddev(hrs) < 10 {
		score += 15
	}

	switch symptomTrend(recent) {
	case "improving":
		score += 15
	case "worsening":
		score -= 20
	}

	logged := 0
	for _, e := range recent {
		if e.MealLogged {
			logged++
		}
	}
	if float64(logged)/float64(len(recent)) > 0.7 {
		score += 10
	}

	return clamp(score, 0, 100)
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

// symptomTrend compares mean symptom-text length of the most recent 3 entries
// against the prior 3 as a crude severity proxy.
func symptomTrend(entries []profile.Entry) string {
	if len(entries) < 3 {
		return "stable"
	}

	recentAvg := avgSymptomLength(entries[:3])
	older := entries[3:]
	if len(older) > 3 {
		older = older[:3]
	}
	if len(older) == 0 {
		return "stable"
	}
	olderAvg := avgSymptomLength(older)

	if recentAvg < olderAvg*0.8 {
		return "improving"
	}
	if recentAvg > olderAvg*1.2 {
		return "worsening"
	}
	return "stable"
}

func avgSymptomLength(entries []profile.Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += float64(len(e.Symptoms))
	}
	return sum / float64(len(entries))
}

// GenerateInsights runs the independent dashboard rules: poor-sleep streak,
// possible reinfection and meal-logging gaps. No rule suppresses another.
func GenerateInsights(p *profile.Profile, now time.Time) []Insight {
	var insights []Insight
	if p.RecoveryMode == nil || !p.RecoveryMode.IsEnabled {
		return insights
	}

	recent := p.RecentEntries(scoreWindow)

	poorSleepDays := 0
	for _, e := range recent {
		if e.RestHours > 0 && e.RestHours < 5 {
			poorSleepDays++
		}
	}
	if poorSleepDays >= 3 {
		insights = append(insights, Insight{
			Type:           "sleep",
			Message:        fmt.Sprintf("You've slept <5 hours for %d days. Sleep disruption can delay recovery. Would you like circadian rhythm tips or quiet breathing exercises?", poorSleepDays),
			Severity:       SeverityWarning,
			ActionRequired: true,
			Timestamp:      now,
		})
	}

	baselineHR := 100.0
	if p.RecoveryMode.RecoveryBaseline != nil {
		baselineHR = p.RecoveryMode.RecoveryBaseline.HeartRate
	}
	concerning := 0
	for _, e := range recent {
		symptoms := strings.ToLower(e.Symptoms)
		if strings.Contains(symptoms, "chills") || e.HeartRate > baselineHR+20 || strings.Contains(symptoms, "pain") {
			concerning++
		}
	}
	if concerning >= 2 {
		insights = append(insights, Insight{
			Type:           "reinfection",
			Message:        "These signs may indicate a possible reinfection. It's best to consult your provider within 24 hours.",
			Severity:       SeverityUrgent,
			ActionRequired: true,
			Timestamp:      now,
		})
	}

	unlogged := 0
	for _, e := range recent {
		if !e.MealLogged {
			unlogged++
		}
	}
	if unlogged >= 5 {
		insights = append(insights, Insight{
			Type:      "behavior",
			Message:   "Noticed you haven't logged meals this week — eating well supports tissue healing. Need some high-protein snack ideas?",
			Severity:  SeverityInfo,
			Timestamp: now,
		})
	}

	return insights
}

// ProgressMessage renders the week-of-recovery narrative for the dashboard.
func ProgressMessage(week int, symptomsProgression string, hydrationAndNutrition, medicationCompliance bool) string {
	msg := fmt.Sprintf("You're in Week %d of a typical 6-week sepsis recovery window. ", week)

	switch {
	case symptomsProgression == "Improving" && hydrationAndNutrition && medicationCompliance:
		msg += "Based on your improving symptoms and good adherence to care routines, your recovery appears to be progressing well. Keep it up!"
	case symptomsProgression == "Same" && hydrationAndNutrition:
		msg += "Your symptoms appear stable, which is typical during recovery. Maintaining good hydration and nutrition is helping support your healing process."
	case symptomsProgression == "Worse" || !medicationCompliance:
		msg += "Some symptoms seem to be persisting or medication adherence may need attention. That's not unusual, but it may be worth checking in with your provider to make sure everything's on track."
	default:
		msg += "Recovery can have ups and downs. Focus on rest, hydration, and following your care plan as your body continues to heal."
	}

	return msg
}
