package recovery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

func stableEntry(daysAgo int, restHours float64, mealLogged bool) profile.Entry {
	return profile.Entry{
		ID:          fmt.Sprintf("s%d", daysAgo),
		ProfileID:   "p1",
		Timestamp:   testNow.AddDate(0, 0, -daysAgo),
		Temperature: 98.6,
		HeartRate:   72,
		RestHours:   restHours,
		MealLogged:  mealLogged,
		RiskLevel:   "Low",
	}
}

func TestDashboardScoreDisabled(t *testing.T) {
	p := &profile.Profile{ID: "p1"}
	assert.Equal(t, 0, DashboardScore(p))

	p = recoveryProfile()
	assert.Equal(t, 0, DashboardScore(p)) // no history yet
}

func TestDashboardScoreStableWeek(t *testing.T) {
	p := recoveryProfile()
	for i := 0; i < 7; i++ {
		p.HistoricalData = append(p.HistoricalData, stableEntry(i+1, 8, true))
	}

	// 50 base + 20 sleep + 15 stability + 0 trend (stable) + 10 meals = 95
	assert.Equal(t, 95, DashboardScore(p))
}

func TestDashboardScorePoorSleep(t *testing.T) {
	p := recoveryProfile()
	for i := 0; i < 7; i++ {
		p.HistoricalData = append(p.HistoricalData, stableEntry(i+1, 4, false))
	}

	// 50 - 10 sleep + 15 stability = 55
	assert.Equal(t, 55, DashboardScore(p))
}

func TestDashboardScoreNeedsVitalsForStability(t *testing.T) {
	p := recoveryProfile()
	for i := 0; i < 7; i++ {
		e := stableEntry(i+1, 8, true)
		e.Temperature = 0
		e.HeartRate = 0
		p.HistoricalData = append(p.HistoricalData, e)
	}

	// 50 base + 20 sleep + 10 meals; no stability bonus without readings.
	assert.Equal(t, 80, DashboardScore(p))
}

func TestDashboardScoreSymptomTrend(t *testing.T) {
	p := recoveryProfile()
	texts := []string{"", "", "", "fatigue and chills all day", "fatigue and chills all day", "fatigue and chills all day"}
	for i, txt := range texts {
		e := stableEntry(i+1, 8, true)
		e.Symptoms = txt
		p.HistoricalData = append(p.HistoricalData, e)
	}

	// Improving trend: 50 + 20 + 15 + 15 + 10 = 100 (clamped)
	assert.Equal(t, 100, DashboardScore(p))
}

func TestGenerateInsightsPoorSleepStreak(t *testing.T) {
	p := recoveryProfile()
	for i := 0; i < 4; i++ {
		p.HistoricalData = append(p.HistoricalData, stableEntry(i+1, 4, true))
	}

	insights := GenerateInsights(p, testNow)
	require.NotEmpty(t, insights)
	assert.Equal(t, "sleep", insights[0].Type)
	assert.Contains(t, insights[0].Message, "4 days")
	assert.Equal(t, SeverityWarning, insights[0].Severity)
}

func TestGenerateInsightsReinfection(t *testing.T) {
	p := recoveryProfile()
	p.RecoveryMode.RecoveryBaseline = &profile.BaselineVitals{Temperature: 98.6, HeartRate: 70}

	chills := stableEntry(1, 8, true)
	chills.Symptoms = "chills tonight"
	spiked := stableEntry(2, 8, true)
	spiked.HeartRate = 95 // baseline 70 + 20 exceeded
	p.HistoricalData = []profile.Entry{chills, spiked}

	insights := GenerateInsights(p, testNow)
	require.NotEmpty(t, insights)
	found := false
	for _, insight := range insights {
		if insight.Type == "reinfection" {
			found = true
			assert.Equal(t, SeverityUrgent, insight.Severity)
		}
	}
	assert.True(t, found)
}

func TestGenerateInsightsMealGap(t *testing.T) {
	p := recoveryProfile()
	for i := 0; i < 6; i++ {
		p.HistoricalData = append(p.HistoricalData, stableEntry(i+1, 8, false))
	}

	insights := GenerateInsights(p, testNow)
	require.NotEmpty(t, insights)
	found := false
	for _, insight := range insights {
		if insight.Type == "behavior" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateInsightsIndependentRules(t *testing.T) {
	p := recoveryProfile()
	p.RecoveryMode.RecoveryBaseline = &profile.BaselineVitals{HeartRate: 70}
	for i := 0; i < 7; i++ {
		e := stableEntry(i+1, 4, false)
		e.Symptoms = "wound pain"
		p.HistoricalData = append(p.HistoricalData, e)
	}

	insights := GenerateInsights(p, testNow)
	assert.Len(t, insights, 3) // sleep, reinfection and behavior all fire
}

func TestProgressMessage(t *testing.T) {
	msg := ProgressMessage(2, "Improving", true, true)
	assert.Contains(t, msg, "Week 2")
	assert.Contains(t, msg, "progressing well")

	msg = ProgressMessage(3, "Worse", true, true)
	assert.Contains(t, msg, "checking in with your provider")

	msg = ProgressMessage(1, "Same", true, true)
	assert.Contains(t, msg, "stable")
}
