package risk

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

var testNow = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func newProfile() *profile.Profile {
	return &profile.Profile{
		ID:   "p1",
		Name: "Alex",
		Age:  54,
	}
}

func entry(ts time.Time, temp, hr float64, symptoms string) profile.Entry {
	return profile.Entry{
		ID:          fmt.Sprintf("e-%d", ts.Unix()),
		ProfileID:   "p1",
		Timestamp:   ts,
		Temperature: temp,
		HeartRate:   hr,
		Symptoms:    symptoms,
		RiskLevel:   string(RiskLow),
	}
}

func normalInputs() Inputs {
	return Inputs{
		Temperature:   98.6,
		HeartRate:     72,
		ActivityLevel: ActivityResting,
	}
}

func TestParseVitals(t *testing.T) {
	in, err := ParseVitals(RawInputs{Temperature: "101.5", HeartRate: "110", SpO2: "95"})
	require.NoError(t, err)
	assert.Equal(t, 101.5, in.Temperature)
	assert.Equal(t, 110.0, in.HeartRate)
	require.NotNil(t, in.SpO2)
	assert.Equal(t, 95.0, *in.SpO2)
	assert.Nil(t, in.SystolicBP)
	assert.Equal(t, ActivityResting, in.ActivityLevel)

	_, err = ParseVitals(RawInputs{Temperature: "", HeartRate: "80"})
	assert.Error(t, err)

	_, err = ParseVitals(RawInputs{Temperature: "abc", HeartRate: "80"})
	assert.Error(t, err)

	_, err = ParseVitals(RawInputs{Temperature: "98.6", HeartRate: "80", SystolicBP: "low"})
	assert.Error(t, err)
}

func TestAnalyzeNormalVitalsIsLow(t *testing.T) {
	a := Analyze(normalInputs(), newProfile(), testNow)
	assert.Equal(t, RiskLow, a.Level)
	assert.Equal(t, AlertNone, a.AlertLevel)
	assert.Equal(t, 0, a.Score)
	assert.False(t, a.EmergencyBypassTriggered)
}

func TestMultipleLowVitalsForceHighUrgent(t *testing.T) {
	spO2 := 88.0
	in := Inputs{
		Temperature:   96.0,
		HeartRate:     72,
		ActivityLevel: ActivityResting,
		SpO2:          &spO2,
	}
	a := Analyze(in, newProfile(), testNow)
	assert.Equal(t, RiskHigh, a.Level)
	assert.Equal(t, AlertUrgent, a.AlertLevel)
	assert.Equal(t, ConfidenceHigh, a.Confidence)
	assert.Len(t, a.LowVitalFlags, 2)
	assert.NotEmpty(t, a.CriticalLowVitalAlert)
}

func TestSingleLowVitalEscalates(t *testing.T) {
	in := Inputs{
		Temperature:   97.0,
		HeartRate:     55,
		Symptoms:      "weak, dizzy",
		ActivityLevel: ActivityResting,
	}
	a := Analyze(in, newProfile(), testNow)
	assert.Len(t, a.LowVitalFlags, 1)
	assert.Equal(t, AlertUrgent, a.AlertLevel)
	assert.Equal(t, ConfidenceHigh, a.Confidence)
	assert.NotEqual(t, RiskLow, a.Level)
}

func TestHighScoreScenario(t *testing.T) {
	in := Inputs{
		Temperature:     101.5,
		HeartRate:       110,
		Symptoms:        "chills and confusion",
		SymptomDuration: DurationOver3Days,
		ActivityLevel:   ActivityResting,
	}
	a := Analyze(in, newProfile(), testNow)
	assert.GreaterOrEqual(t, a.Score, 6)
	assert.Equal(t, RiskHigh, a.Level)
	assert.Equal(t, AlertUrgent, a.AlertLevel)
	assert.NotEmpty(t, a.ProviderIntegrationSuggestion)
}

func levelRank(l RiskLevel) int {
	switch l {
	case RiskLow:
		return 0
	case RiskModerate:
		return 1
	default:
		return 2
	}
}

func TestScoreMonotonicity(t *testing.T) {
	base := Inputs{
		Temperature:   98.6,
		HeartRate:     80,
		ActivityLevel: ActivityResting,
	}
	p := newProfile()
	prev := Analyze(base, p, testNow)

	steps := []func(*Inputs){
		func(in *Inputs) { in.Temperature = 101.0 },
		func(in *Inputs) { in.HeartRate = 105 },
		func(in *Inputs) { in.Symptoms = "fatigue" },
		func(in *Inputs) { in.SymptomDuration = DurationOver3Days },
	}

	in := base
	for i, step := range steps {
		step(&in)
		next := Analyze(in, p, testNow)
		assert.GreaterOrEqual(t, next.Score, prev.Score, "step %d lowered the score", i)
		assert.GreaterOrEqual(t, levelRank(next.Level), levelRank(prev.Level), "step %d lowered the level", i)
		prev = next
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	in := Inputs{
		Temperature:     101.5,
		HeartRate:       110,
		Symptoms:        "chills, fatigue",
		SymptomDuration: DurationOneToFive,
		ActivityLevel:   ActivityResting,
	}
	p := newProfile()
	p.HistoricalData = []profile.Entry{
		entry(testNow.Add(-24*time.Hour), 99.5, 95, "fatigue"),
		entry(testNow.Add(-48*time.Hour), 98.8, 88, ""),
	}

	first := Analyze(in, p, testNow)
	second := Analyze(in, p, testNow)
	assert.Equal(t, first, second)
}

func TestEmergencyBypass(t *testing.T) {
	spO2 := 85.0
	in := Inputs{
		Temperature:   95.5,
		HeartRate:     72,
		Symptoms:      "confusion",
		ActivityLevel: ActivityResting,
		SpO2:          &spO2,
	}

	p := newProfile()
	p.EmergencySettings = profile.EmergencySettings{
		AutoAlertBypassEnabled:    true,
		ConsecutiveMissedCheckins: 3,
	}

	a := Analyze(in, p, testNow)
	assert.True(t, a.EmergencyBypassTriggered)
	assert.Equal(t, RiskHigh, a.Level)
	assert.Equal(t, AlertUrgent, a.AlertLevel)

	// Same vitals without the opt-in never trigger the bypass.
	p.EmergencySettings.AutoAlertBypassEnabled = false
	a = Analyze(in, p, testNow)
	assert.False(t, a.EmergencyBypassTriggered)
}

func TestTrendFirstCheckin(t *testing.T) {
	got := AnalyzeTrend(98.6, 72, newProfile())
	assert.Equal(t, "No previous data for comparison. This is your first check-in!", got)
}

func TestTrendAgainstBaseline(t *testing.T) {
	p := newProfile()
	p.Baseline = &profile.BaselineVitals{Temperature: 98.6, HeartRate: 70}
	p.HistoricalData = []profile.Entry{entry(testNow.Add(-24*time.Hour), 100.2, 84, "")}

	got := AnalyzeTrend(100.3, 86, p)
	assert.Contains(t, got, "1.7°F above your personal baseline")
	assert.Contains(t, got, "16 bpm above your personal baseline")
}

func TestTrendDirectionalDeltas(t *testing.T) {
	p := newProfile()
	p.HistoricalData = []profile.Entry{entry(testNow.Add(-24*time.Hour), 98.6, 70, "")}

	got := AnalyzeTrend(99.2, 78, p)
	assert.Contains(t, got, "Temperature increased by 0.6°F")
	assert.Contains(t, got, "Heart rate increased by 8 bpm")

	got = AnalyzeTrend(98.7, 72, p)
	assert.Equal(t, "Vitals are within normal range compared to recent history.", got)
}

func TestSymptomPersistence(t *testing.T) {
	p := newProfile()
	p.HistoricalData = []profile.Entry{
		entry(testNow.Add(-24*time.Hour), 99.0, 80, "fatigue and chills"),
		entry(testNow.Add(-48*time.Hour), 99.1, 82, "fatigue"),
		entry(testNow.Add(-72*time.Hour), 98.9, 78, "some fatigue today"),
		entry(testNow.Add(-96*time.Hour), 98.6, 72, ""),
	}

	in := Inputs{Temperature: 99.2, HeartRate: 84, Symptoms: "fatigue", ActivityLevel: ActivityResting}
	insights := AnalyzeConversationalMemory(p, in)
	require.NotEmpty(t, insights)
	assert.Contains(t, insights[0], "fatigue")
	assert.Contains(t, insights[0], "4 days in a row")
}

func TestMemoryCompoundTrend(t *testing.T) {
	p := newProfile()
	p.HistoricalData = []profile.Entry{
		entry(testNow.Add(-24*time.Hour), 99.4, 92, "tired"),
		entry(testNow.Add(-48*time.Hour), 99.0, 88, "tired"),
		entry(testNow.Add(-72*time.Hour), 98.6, 80, "tired"),
	}

	in := Inputs{Temperature: 99.3, HeartRate: 90, Symptoms: "tired", ActivityLevel: ActivityResting}
	insights := AnalyzeConversationalMemory(p, in)
	require.NotEmpty(t, insights)
	assert.Contains(t, insights[0], "trending upward")
}

func TestPersonalLanguageRecurrence(t *testing.T) {
	p := newProfile()
	p.PersonalPatterns.SymptomLanguage = []string{"feeling off today", "a bit off", "fine"}
	p.HistoricalData = []profile.Entry{
		entry(testNow.Add(-24*time.Hour), 98.6, 72, ""),
		entry(testNow.Add(-48*time.Hour), 98.6, 74, ""),
	}

	in := Inputs{
		Temperature:        98.8,
		HeartRate:          76,
		ActivityLevel:      ActivityResting,
		SubjectiveFeedback: "I feel off",
	}
	insights := AnalyzeConversationalMemory(p, in)
	require.NotEmpty(t, insights)
	assert.Contains(t, insights[len(insights)-1], "correlated with elevated risk")
}

func TestMissedCheckins(t *testing.T) {
	p := newProfile()
	assert.Empty(t, CheckMissedCheckins(p, testNow))

	last := testNow.Add(-30 * time.Hour)
	p.PersonalPatterns.LastCheckinTime = &last
	got := CheckMissedCheckins(p, testNow)
	assert.Contains(t, got, "haven't seen a check-in")

	// A concerning last entry upgrades the reminder to the urgent variant.
	p.HistoricalData = []profile.Entry{entry(last, 103.5, 125, "confusion")}
	got = CheckMissedCheckins(p, testNow)
	assert.Contains(t, got, "contact emergency services")
}

func TestExercisePatternFlagDoesNotScore(t *testing.T) {
	p := newProfile()
	p.HistoricalData = []profile.Entry{entry(testNow.Add(-2*time.Hour), 98.6, 70, "")}

	in := Inputs{Temperature: 98.6, HeartRate: 95, ActivityLevel: ActivityResting}
	a := Analyze(in, p, testNow)
	assert.Equal(t, 0, a.Score)
	require.NotEmpty(t, a.FlaggedRisks)
	assert.Contains(t, a.FlaggedRisks[0], "exercise pattern")
}

func TestSymptomClusterOrdering(t *testing.T) {
	patterns := AnalyzeSymptomClusters("chills, confusion, breathing trouble, fatigue", 101.2, 112, DurationOver3Days)
	require.Len(t, patterns, 4)
	assert.Contains(t, patterns[0], "Critical Pattern")
	assert.Contains(t, patterns[1], "High-Risk Pattern")
	assert.Contains(t, patterns[2], "Multi-symptom cluster")
	assert.Contains(t, patterns[3], "Persistent multi-symptom")
}

func TestAdaptiveThresholdSuggestion(t *testing.T) {
	p := newProfile()
	for i := 0; i < 4; i++ {
		e := entry(testNow.Add(-time.Duration(i+1)*24*time.Hour), 98.6, 108, "")
		e.SubjectiveFeedback = "I feel normal"
		p.HistoricalData = append(p.HistoricalData, e)
	}

	got := AdaptiveThresholdSuggestion(p, 106, 98.6, FeedbackNormal)
	assert.Contains(t, got, "update your alert threshold")

	assert.Empty(t, AdaptiveThresholdSuggestion(newProfile(), 106, 98.6, FeedbackNormal))
}

func TestNightModeMessage(t *testing.T) {
	assert.Empty(t, NightModeMessage(testNow))
	night := time.Date(2026, 1, 15, 23, 0, 0, 0, time.UTC)
	assert.NotEmpty(t, NightModeMessage(night))
	early := time.Date(2026, 1, 15, 5, 0, 0, 0, time.UTC)
	assert.NotEmpty(t, NightModeMessage(early))
}

func TestSubjectiveFeedbackAdjustsHRWeight(t *testing.T) {
	in := Inputs{Temperature: 98.6, HeartRate: 110, ActivityLevel: ActivityResting}
	p := newProfile()

	in.SubjectiveFeedback = FeedbackNormal
	normal := Analyze(in, p, testNow)
	assert.Equal(t, 1, normal.Score)

	in.SubjectiveFeedback = FeedbackVerySick
	sick := Analyze(in, p, testNow)
	assert.Equal(t, 3, sick.Score)
}
