package risk

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

const memoryWindow = 7

var memorySymptoms = []string{"fatigue", "chills", "confusion", "breathing", "wound", "dizziness"}

var hedgeWords = []string{"off", "weird", "not right", "strange", "different"}

// AnalyzeConversationalMemory scans the last 7 entries for symptom
// persistence, vital trend slopes and recurring personal language. Insights
// come back in that order; missed check-ins are a separate check.
func AnalyzeConversationalMemory(p *profile.Profile, in Inputs) []string {
	var insights []string
	recent := p.RecentEntries(memoryWindow)
	if len(recent) < 2 {
		return insights
	}

	insights = append(insights, persistentSymptomInsights(recent, strings.ToLower(in.Symptoms))...)

	if trend := memoryTrendInsight(recent, in.Temperature, in.HeartRate); trend != "" {
		insights = append(insights, trend)
	}

	if lang := personalLanguageInsight(p, in.SubjectiveFeedback); lang != "" {
		insights = append(insights, lang)
	}

	return insights
}

// persistentSymptomInsights reports each vocabulary symptom present today and
// in enough immediately preceding entries. The streak count includes today and
// stops at the first entry lacking the symptom.
func persistentSymptomInsights(entries []profile.Entry, currentSymptoms string) []string {
	var insights []string
	for _, symptom := range memorySymptoms {
		if !strings.Contains(currentSymptoms, symptom) {
			continue
		}
		count := 1
		for _, entry := range entries {
			if strings.Contains(strings.ToLower(entry.Symptoms), symptom) {
				count++
			} else {
				break
			}
		}
		if count >= 3 {
			days := count
			if days > memoryWindow {
				days = memoryWindow
			}
			insights = append(insights, fmt.Sprintf("You've reported %s for %d days in a row.", symptom, days))
		}
	}
	return insights
}

// memoryTrendInsight computes a first-vs-last slope across a 4-point window:
// the oldest of the last 3 entries up to the current reading.
func memoryTrendInsight(entries []profile.Entry, currentTemp, currentHR float64) string {
	if len(entries) < 3 {
		return ""
	}

	oldest := entries[2]
	if oldest.Temperature == 0 || oldest.HeartRate == 0 {
		// Recovery entry without vitals; no slope to compute.
		return ""
	}
	tempTrend := currentTemp - oldest.Temperature
	hrTrend := currentHR - oldest.HeartRate

	if tempTrend > 0.5 && hrTrend > 5 {
		return "Compared to your last check-ins, your symptoms are persisting and your heart rate is trending upward. This could indicate early deterioration."
	}
	if tempTrend > 1.0 {
		return "Your temperature has been gradually increasing over recent check-ins."
	}
	if hrTrend > 10 {
		return "Your heart rate has been trending higher over your last few entries."
	}
	return ""
}

func personalLanguageInsight(p *profile.Profile, feedback string) string {
	if len(p.PersonalPatterns.SymptomLanguage) == 0 || feedback == "" {
		return ""
	}

	lower := strings.ToLower(feedback)
	for _, word := range hedgeWords {
		if !strings.Contains(lower, word) {
			continue
		}
		pastUsage := 0
		for _, lang := range p.PersonalPatterns.SymptomLanguage {
			if strings.Contains(strings.ToLower(lang), word) {
				pastUsage++
			}
		}
		if pastUsage >= 2 {
			return fmt.Sprintf("You've mentioned \"feeling %s\" several times — in the past, this has correlated with elevated risk.", word)
		}
	}
	return ""
}

// CheckMissedCheckins returns a reminder when the profile has gone quiet. The
// urgent variant takes precedence over the gentle one when the last persisted
// entry already met the emergency-escalation rule.
func CheckMissedCheckins(p *profile.Profile, now time.Time) string {
	if p.PersonalPatterns.LastCheckinTime == nil {
		return ""
	}

	last := *p.PersonalPatterns.LastCheckinTime
	hoursSince := now.Sub(last).Hours()
	if hoursSince <= 24 {
		return ""
	}

	if len(p.HistoricalData) > 0 && IsEmergencyEscalation(p.HistoricalData[0]) {
		return "SepsiScan detected concerning vitals in your last log and hasn't received a new check-in. Please respond or contact emergency services if you need help."
	}

	if hoursSince < 48 {
		return fmt.Sprintf("Hi %s, I haven't seen a check-in since %s. Logging your health daily helps me protect you better.", p.Name, last.Format("1/2/2006"))
	}

	return ""
}

// IsEmergencyEscalation reports whether a persisted entry meets at least two
// of the emergency criteria.
func IsEmergencyEscalation(entry profile.Entry) bool {
	symptoms := strings.ToLower(entry.Symptoms)
	feedback := strings.ToLower(entry.SubjectiveFeedback)

	criteria := 0
	if entry.Temperature > 103 {
		criteria++
	}
	if entry.HeartRate > 120 {
		criteria++
	}
	if strings.Contains(symptoms, "confusion") || strings.Contains(symptoms, "breathing") {
		criteria++
	}
	if strings.Contains(feedback, "very sick") || strings.Contains(feedback, "terrible") {
		criteria++
	}
	return criteria >= 2
}

// DetectExercisePattern reports an HR spike over a symptom-free previous
// entry. The aggregator uses it to annotate, never to lower the score.
func DetectExercisePattern(currentHR float64, entries []profile.Entry) bool {
	if len(entries) == 0 {
		return false
	}
	last := entries[0]
	return last.HeartRate > 0 && currentHR-last.HeartRate > 20 && strings.TrimSpace(last.Symptoms) == ""
}

// TimeOfDayInsight notes when the current heart rate sits inside the
// profile's learned range for this time of day.
func TimeOfDayInsight(p *profile.Profile, now time.Time, currentHR float64) string {
	if p.PersonalPatterns.TimeOfDayPatterns == nil {
		return ""
	}

	timeOfDay := profile.TimeOfDay(now)
	pattern := p.PersonalPatterns.TimeOfDayPatterns[timeOfDay]
	if pattern == nil || pattern.Samples == 0 {
		return ""
	}

	if math.Abs(currentHR-pattern.AvgHeartRate) < 10 {
		return fmt.Sprintf("Your %s HR tends to be in this range — this entry is within your expected pattern.", timeOfDay)
	}
	return ""
}
