package recovery

import (
	_ "embed"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

// RecoverySymptoms is the vocabulary offered on recovery check-in forms.
var RecoverySymptoms = []string{
	"wound pain",
	"swelling",
	"fever",
	"shortness of breath",
	"dizziness",
	"fatigue",
	"confusion",
	"nausea",
}

// RedFlagSymptoms signal a possible returning infection.
var RedFlagSymptoms = []string{
	"persistent fever",
	"new confusion",
	"worsening wound",
	"severe breathing difficulty",
	"chest pain",
}

//go:embed milestones.yaml
var milestonesYAML []byte

type milestoneTemplates struct {
	Base     []string         `yaml:"base"`
	Weeks    map[int][]string `yaml:"weeks"`
	Fallback []string         `yaml:"fallback"`
}

var milestones milestoneTemplates

func init() {
	if err := yaml.Unmarshal(milestonesYAML, &milestones); err != nil {
		panic("recovery: invalid milestones.yaml: " + err.Error())
	}
}

// WeeklyMilestones returns the goal list for a recovery week.
func WeeklyMilestones(week int) []string {
	goals := append([]string{}, milestones.Base...)
	extra, ok := milestones.Weeks[week]
	if !ok {
		extra = milestones.Fallback
	}
	return append(goals, extra...)
}

// CalculateRecoveryWeek converts days since discharge into a 1-based week.
func CalculateRecoveryWeek(daysSinceDischarge int) int {
	if daysSinceDischarge <= 0 {
		return 1
	}
	return (daysSinceDischarge + 6) / 7
}

// InitializeCoach seeds the coaching state on a profile with coachEnabled set.
func InitializeCoach(p *profile.Profile, now time.Time) {
	if p.RecoveryMode == nil || !p.RecoveryMode.CoachEnabled {
		return
	}

	meds := []string{}
	if p.CurrentMedications != "" {
		for _, m := range strings.Split(p.CurrentMedications, ",") {
			meds = append(meds, strings.TrimSpace(m))
		}
	}

	p.RecoveryMode.RecoveryWeek = 1
	p.RecoveryMode.CoachData = &profile.RecoveryCoachData{
		LastCheckIn: &now,
		WeeklyMilestones: []profile.WeeklyMilestone{
			{Week: 1, Goals: WeeklyMilestones(1)},
		},
		MedicationReminders: profile.MedicationReminders{
			Enabled:     false,
			Times:       []string{"09:00", "21:00"},
			Medications: meds,
		},
	}
}

// HasRedFlags reports whether any submitted symptom matches the red-flag list.
func HasRedFlags(symptoms []string) bool {
	for _, symptom := range symptoms {
		lower := strings.ToLower(symptom)
		for _, red := range RedFlagSymptoms {
			if strings.Contains(lower, red) {
				return true
			}
		}
	}
	return false
}

// ProcessCheckIn evaluates one recovery check-in: per-factor coaching
// insights, red-flag escalation and a 0-100 score. It mutates the profile's
// coaching trends but leaves history persistence to the caller.
func ProcessCheckIn(p *profile.Profile, data CheckInData, now time.Time) CheckInResult {
	var result CheckInResult

	redFlagged := HasRedFlags(data.RecoverySymptoms)
	if redFlagged || data.OverallFeeling == FeelingSick {
		result.RedFlags = append(result.RedFlags,
			"You've reported signs that may signal infection is returning. Please call your provider or seek urgent care now.")
		result.Insights = append(result.Insights, Insight{
			Type:           "reinfection",
			Message:        "Critical symptoms detected. Contact healthcare provider immediately.",
			Severity:       SeverityUrgent,
			ActionRequired: true,
			Timestamp:      now,
		})
	}

	if !data.MedicationCompliance {
		result.Insights = append(result.Insights, Insight{
			Type:           "medication",
			Message:        "Missed medications can slow recovery. Would you like help setting daily reminders?",
			Severity:       SeverityWarning,
			ActionRequired: true,
			Timestamp:      now,
		})
	}

	if !data.HydrationCompliance {
		result.Insights = append(result.Insights, Insight{
			Type:      "hydration",
			Message:   "Drink at least 8 oz of water every 2 hours today. Proper hydration supports healing.",
			Severity:  SeverityInfo,
			Timestamp: now,
		})
	}

	if !data.NutritionCompliance {
		result.Insights = append(result.Insights, Insight{
			Type:      "nutrition",
			Message:   "Try easy-to-digest foods like soup, rice, bananas, or toast to support recovery.",
			Severity:  SeverityInfo,
			Timestamp: now,
		})
	}

	if data.RestHours < 6 {
		result.Insights = append(result.Insights, Insight{
			Type:      "sleep",
			Message:   "Your body needs adequate rest to heal. Aim for 7-8 hours of sleep per night.",
			Severity:  SeverityWarning,
			Timestamp: now,
		})
	}
	if !data.TookNaps && data.RestHours < 7 {
		result.Insights = append(result.Insights, Insight{
			Type:      "sleep",
			Message:   "Short naps (20-30 min) can reduce fatigue and promote healing.",
			Severity:  SeverityInfo,
			Timestamp: now,
		})
	}

	if data.MoodRating <= 3 {
		result.Insights = append(result.Insights, Insight{
			Type:      "mood",
			Message:   "Try light journaling, music, or 10 minutes of deep breathing to boost your mood.",
			Severity:  SeverityInfo,
			Timestamp: now,
		})
	}

	if data.CognitiveIssues != nil && *data.CognitiveIssues {
		result.Insights = append(result.Insights, Insight{
			Type:           "cognitive",
			Message:        "Cognitive changes after sepsis are common but should be monitored. Consider discussing with your provider.",
			Severity:       SeverityWarning,
			ActionRequired: true,
			Timestamp:      now,
		})
	}

	result.Score = checkInScore(p, data)

	if p.RecoveryMode != nil && p.RecoveryMode.CoachData != nil {
		cd := p.RecoveryMode.CoachData
		cd.LastCheckIn = &now
		cd.ProgressTrends.Hydration = appendCapped(cd.ProgressTrends.Hydration, boolToInt(data.HydrationCompliance))
		cd.ProgressTrends.Nutrition = appendCapped(cd.ProgressTrends.Nutrition, boolToInt(data.NutritionCompliance))
		cd.ProgressTrends.Mood = appendCapped(cd.ProgressTrends.Mood, data.MoodRating)
		cd.ProgressTrends.Rest = appendCappedFloat(cd.ProgressTrends.Rest, data.RestHours)
		if len(result.RedFlags) > 0 {
			cd.RedFlagAlerts = append(cd.RedFlagAlerts, result.RedFlags...)
		}
	}

	return result
}

// checkInScore rates one check-in: base 50, symptom-progression direction
// versus the last recovery entry, compliance bonuses, rest and mood.
func checkInScore(p *profile.Profile, data CheckInData) int {
	score := 50

	if len(p.HistoricalData) > 0 {
		prev := len(p.HistoricalData[0].RecoverySymptoms)
		cur := len(data.RecoverySymptoms)
		if cur < prev {
			score += 25
		} else if cur > prev {
			score -= 20
		}
	}

	if data.HydrationCompliance {
		score += 10
	}
	if data.NutritionCompliance {
		score += 10
	}
	if data.MedicationCompliance {
		score += 15
	}

	if data.RestHours >= 7 {
		score += 10
	} else if data.RestHours < 5 {
		score -= 10
	}

	if data.MoodRating >= 7 {
		score += 10
	} else if data.MoodRating > 0 && data.MoodRating <= 3 {
		score -= 10
	}

	return clamp(score, 0, 100)
}

// RiskLevelForCheckIn maps the check-in back onto the acute risk-level scale
// used by history entries.
func RiskLevelForCheckIn(data CheckInData) string {
	switch {
	case HasRedFlags(data.RecoverySymptoms) || data.OverallFeeling == FeelingSick:
		return "High"
	case data.OverallFeeling == FeelingOff:
		return "Moderate"
	default:
		return "Low"
	}
}

// ShouldEscalateToProvider inspects the last 3 entries for persistent
// concerning symptoms, repeated missed medications or cognitive issues.
func ShouldEscalateToProvider(p *profile.Profile) bool {
	if p.RecoveryMode == nil || p.RecoveryMode.CoachData == nil {
		return false
	}

	recent := p.RecentEntries(3)
	persistent, missedMeds := 0, 0
	cognitive := false

	for _, entry := range recent {
		if entry.OverallFeeling == FeelingSick || HasRedFlags(entry.RecoverySymptoms) {
			persistent++
		}
		if entry.MedicationCompliance != nil && !*entry.MedicationCompliance {
			missedMeds++
		}
		if entry.CognitiveIssues != nil && *entry.CognitiveIssues {
			cognitive = true
		}
	}

	return persistent >= 2 || missedMeds >= 2 || cognitive
}

// AdjustCheckInFrequency relaxes the cadence as the score improves.
func AdjustCheckInFrequency(recoveryScore int) string {
	if recoveryScore >= 80 {
		return "2-3x-week"
	}
	if recoveryScore >= 60 {
		return "daily"
	}
	return "twice-daily"
}

// EstablishBaseline averages the last 10 entries with vitals readings into a
// recovery baseline once at least 5 exist.
func EstablishBaseline(p *profile.Profile) *profile.BaselineVitals {
	recent := p.RecentEntries(10)
	var tempSum, hrSum float64
	sampled := 0
	for _, e := range recent {
		if e.Temperature == 0 || e.HeartRate == 0 {
			continue
		}
		tempSum += e.Temperature
		hrSum += e.HeartRate
		sampled++
	}
	if sampled < 5 {
		return nil
	}
	n := float64(sampled)

	return &profile.BaselineVitals{
		Temperature:    math.Round(tempSum/n*10) / 10,
		HeartRate:      math.Round(hrSum / n),
		NormalSymptoms: "Mild fatigue, recovery-related discomfort",
	}
}

// WeeklyProgressSummary summarizes the coaching trend buffers.
func WeeklyProgressSummary(p *profile.Profile) []string {
	if p.RecoveryMode == nil || p.RecoveryMode.CoachData == nil {
		return nil
	}

	trends := p.RecoveryMode.CoachData.ProgressTrends
	var summary []string

	hydrationDays := countOnes(trends.Hydration)
	switch {
	case hydrationDays >= 5:
		summary = append(summary, "Hydration improved 5+ out of 7 days this week — excellent work!")
	case hydrationDays >= 3:
		summary = append(summary, "Hydration was good 3-4 days this week — let's aim for more consistent hydration.")
	default:
		summary = append(summary, "Hydration needs attention — try setting hourly water reminders.")
	}

	if countOnes(trends.Nutrition) >= 5 {
		summary = append(summary, "Nutrition goals met most days — great job fueling your recovery!")
	} else {
		summary = append(summary, "Nutrition could be improved — try meal prep or simple, nutritious snacks.")
	}

	if len(trends.Mood) > 0 {
		sum := 0
		for _, m := range trends.Mood {
			sum += m
		}
		avg := float64(sum) / float64(len(trends.Mood))
		switch {
		case avg >= 7:
			summary = append(summary, "Your mood has been consistently positive this week!")
		case avg >= 5:
			summary = append(summary, "Your mood has been stable — consider activities that bring you joy.")
		default:
			summary = append(summary, "Your mood has been low — this is normal during recovery, but consider talking to someone.")
		}
	}

	return summary
}

func appendCapped(values []int, v int) []int {
	values = append(values, v)
	if len(values) > 7 {
		values = values[len(values)-7:]
	}
	return values
}

func appendCappedFloat(values []float64, v float64) []float64 {
	values = append(values, v)
	if len(values) > 7 {
		values = values[len(values)-7:]
	}
	return values
}

func countOnes(values []int) int {
	n := 0
	for _, v := range values {
		if v == 1 {
			n++
		}
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
