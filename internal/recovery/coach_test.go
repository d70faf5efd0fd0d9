package recovery

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

var testNow = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func recoveryProfile() *profile.Profile {
	start := testNow.AddDate(0, 0, -10)
	return &profile.Profile{
		ID:   "p1",
		Name: "Alex",
		RecoveryMode: &profile.RecoveryMode{
			IsEnabled:    true,
			StartDate:    &start,
			CoachEnabled: true,
			CoachData:    &profile.RecoveryCoachData{},
		},
	}
}

func recoveryEntry(daysAgo int, feeling string, symptoms []string, medTaken bool) profile.Entry {
	taken := medTaken
	ts := testNow.AddDate(0, 0, -daysAgo)
	return profile.Entry{
		ID:                   fmt.Sprintf("e%d", daysAgo),
		ProfileID:            "p1",
		Timestamp:            ts,
		Temperature:          98.6,
		HeartRate:            72,
		OverallFeeling:       feeling,
		RecoverySymptoms:     symptoms,
		MedicationCompliance: &taken,
		RiskLevel:            "Low",
	}
}

func TestWeeklyMilestones(t *testing.T) {
	week1 := WeeklyMilestones(1)
	assert.Contains(t, week1, "Complete prescribed medications daily")
	assert.Contains(t, week1, "Monitor wound healing")

	week2 := WeeklyMilestones(2)
	assert.Contains(t, week2, "Light walking (5-10 minutes)")

	week9 := WeeklyMilestones(9)
	assert.Contains(t, week9, "Maintain healthy routines")
}

func TestCalculateRecoveryWeek(t *testing.T) {
	assert.Equal(t, 1, CalculateRecoveryWeek(0))
	assert.Equal(t, 1, CalculateRecoveryWeek(3))
	assert.Equal(t, 1, CalculateRecoveryWeek(7))
	assert.Equal(t, 2, CalculateRecoveryWeek(8))
	assert.Equal(t, 3, CalculateRecoveryWeek(15))
}

func TestInitializeCoach(t *testing.T) {
	p := recoveryProfile()
	p.RecoveryMode.CoachData = nil
	p.CurrentMedications = "amoxicillin, ibuprofen"

	InitializeCoach(p, testNow)
	require.NotNil(t, p.RecoveryMode.CoachData)
	assert.Equal(t, 1, p.RecoveryMode.RecoveryWeek)
	assert.Equal(t, []string{"amoxicillin", "ibuprofen"}, p.RecoveryMode.CoachData.MedicationReminders.Medications)
	require.Len(t, p.RecoveryMode.CoachData.WeeklyMilestones, 1)
	assert.Equal(t, 1, p.RecoveryMode.CoachData.WeeklyMilestones[0].Week)
}

func TestProcessCheckInRedFlags(t *testing.T) {
	p := recoveryProfile()
	result := ProcessCheckIn(p, CheckInData{
		OverallFeeling:       FeelingOkay,
		RecoverySymptoms:     []string{"persistent fever", "fatigue"},
		MedicationCompliance: true,
		HydrationCompliance:  true,
		NutritionCompliance:  true,
		RestHours:            8,
		MoodRating:           6,
	}, testNow)

	require.NotEmpty(t, result.RedFlags)
	require.NotEmpty(t, result.Insights)
	assert.Equal(t, "reinfection", result.Insights[0].Type)
	assert.Equal(t, SeverityUrgent, result.Insights[0].Severity)
	assert.NotEmpty(t, p.RecoveryMode.CoachData.RedFlagAlerts)
}

func TestProcessCheckInFeelingSickIsRedFlag(t *testing.T) {
	result := ProcessCheckIn(recoveryProfile(), CheckInData{
		OverallFeeling:       FeelingSick,
		MedicationCompliance: true,
		HydrationCompliance:  true,
		NutritionCompliance:  true,
		RestHours:            8,
		MoodRating:           5,
	}, testNow)
	assert.NotEmpty(t, result.RedFlags)
}

func TestProcessCheckInPerFactorInsights(t *testing.T) {
	result := ProcessCheckIn(recoveryProfile(), CheckInData{
		OverallFeeling:       FeelingOkay,
		MedicationCompliance: false,
		HydrationCompliance:  false,
		NutritionCompliance:  false,
		RestHours:            4,
		TookNaps:             false,
		MoodRating:           2,
	}, testNow)

	types := make(map[string]int)
	for _, insight := range result.Insights {
		types[insight.Type]++
	}
	assert.Equal(t, 1, types["medication"])
	assert.Equal(t, 1, types["hydration"])
	assert.Equal(t, 1, types["nutrition"])
	assert.Equal(t, 2, types["sleep"])
	assert.Equal(t, 1, types["mood"])
	assert.Empty(t, result.RedFlags)
}

func TestProcessCheckInTrendsCappedAtSeven(t *testing.T) {
	p := recoveryProfile()
	for i := 0; i < 10; i++ {
		ProcessCheckIn(p, CheckInData{
			OverallFeeling:       FeelingGreat,
			MedicationCompliance: true,
			HydrationCompliance:  true,
			NutritionCompliance:  true,
			RestHours:            8,
			MoodRating:           8,
		}, testNow)
	}
	trends := p.RecoveryMode.CoachData.ProgressTrends
	assert.Len(t, trends.Hydration, 7)
	assert.Len(t, trends.Mood, 7)
	assert.Len(t, trends.Rest, 7)
}

func TestCheckInScoreBounds(t *testing.T) {
	good := ProcessCheckIn(recoveryProfile(), CheckInData{
		OverallFeeling:       FeelingGreat,
		MedicationCompliance: true,
		HydrationCompliance:  true,
		NutritionCompliance:  true,
		RestHours:            8,
		MoodRating:           9,
	}, testNow)
	assert.Equal(t, 100, good.Score)

	bad := ProcessCheckIn(recoveryProfile(), CheckInData{
		OverallFeeling: FeelingSick,
		RestHours:      3,
		MoodRating:     1,
	}, testNow)
	assert.Equal(t, 30, bad.Score)
}

func TestCheckInScoreSymptomProgression(t *testing.T) {
	p := recoveryProfile()
	p.HistoricalData = []profile.Entry{
		recoveryEntry(1, FeelingOkay, []string{"fatigue", "nausea"}, true),
	}

	improving := ProcessCheckIn(p, CheckInData{
		OverallFeeling:       FeelingOkay,
		RecoverySymptoms:     []string{"fatigue"},
		MedicationCompliance: true,
		HydrationCompliance:  true,
		NutritionCompliance:  true,
		RestHours:            8,
		MoodRating:           6,
	}, testNow)
	assert.Equal(t, 100, improving.Score)

	worsening := ProcessCheckIn(p, CheckInData{
		OverallFeeling:       FeelingOkay,
		RecoverySymptoms:     []string{"fatigue", "nausea", "dizziness"},
		MedicationCompliance: true,
		HydrationCompliance:  true,
		NutritionCompliance:  true,
		RestHours:            8,
		MoodRating:           6,
	}, testNow)
	assert.Equal(t, 75, worsening.Score)
}

func TestShouldEscalateToProvider(t *testing.T) {
	p := recoveryProfile()
	assert.False(t, ShouldEscalateToProvider(p))

	p.HistoricalData = []profile.Entry{
		recoveryEntry(1, FeelingSick, nil, true),
		recoveryEntry(2, FeelingSick, nil, true),
		recoveryEntry(3, FeelingOkay, nil, true),
	}
	assert.True(t, ShouldEscalateToProvider(p))

	p.HistoricalData = []profile.Entry{
		recoveryEntry(1, FeelingOkay, nil, false),
		recoveryEntry(2, FeelingOkay, nil, false),
		recoveryEntry(3, FeelingOkay, nil, true),
	}
	assert.True(t, ShouldEscalateToProvider(p))

	p.HistoricalData = []profile.Entry{
		recoveryEntry(1, FeelingGreat, nil, true),
		recoveryEntry(2, FeelingOkay, nil, true),
	}
	assert.False(t, ShouldEscalateToProvider(p))
}

func TestAdjustCheckInFrequency(t *testing.T) {
	assert.Equal(t, "2-3x-week", AdjustCheckInFrequency(85))
	assert.Equal(t, "daily", AdjustCheckInFrequency(65))
	assert.Equal(t, "twice-daily", AdjustCheckInFrequency(40))
}

func TestEstablishBaseline(t *testing.T) {
	p := recoveryProfile()
	assert.Nil(t, EstablishBaseline(p))

	for i := 0; i < 6; i++ {
		e := recoveryEntry(i+1, FeelingOkay, nil, true)
		e.Temperature = 98.4
		e.HeartRate = 74
		p.HistoricalData = append(p.HistoricalData, e)
	}

	// A coaching check-in without vitals does not skew the average.
	noVitals := recoveryEntry(0, FeelingOkay, nil, true)
	noVitals.Temperature = 0
	noVitals.HeartRate = 0
	p.HistoricalData = append([]profile.Entry{noVitals}, p.HistoricalData...)

	baseline := EstablishBaseline(p)
	require.NotNil(t, baseline)
	assert.Equal(t, 98.4, baseline.Temperature)
	assert.Equal(t, 74.0, baseline.HeartRate)
}

func TestWeeklyProgressSummary(t *testing.T) {
	p := recoveryProfile()
	p.RecoveryMode.CoachData.ProgressTrends = profile.ProgressTrends{
		Hydration: []int{1, 1, 1, 1, 1, 0, 1},
		Nutrition: []int{1, 0, 0, 1, 0, 0, 0},
		Mood:      []int{8, 7, 8, 7, 9, 8, 7},
	}

	summary := WeeklyProgressSummary(p)
	require.Len(t, summary, 3)
	assert.Contains(t, summary[0], "excellent work")
	assert.Contains(t, summary[1], "could be improved")
	assert.Contains(t, summary[2], "consistently positive")
}
