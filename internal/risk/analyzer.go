package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

// Default alert thresholds, overridable per profile via adaptive thresholds.
const (
	DefaultTempThreshold = 100.4 // °F
	DefaultHRThreshold   = 100   // bpm
)

var highRiskConditions = []string{"cancer", "diabetes", "surgery", "immunocompromised"}

var scoredSymptoms = []string{"confusion", "chills", "breathing", "wound", "fatigue"}

const reassurance = "Remember, this is an early warning tool, not a diagnosis. If you feel okay, keep monitoring and follow up as advised."

// Analyze is the composition root: it runs every analyzer, sums weighted risk
// contributions and maps the result to a classification, with low-vital
// findings overriding the additive score. The profile's history must exclude
// the in-progress check-in. Analyze is pure; now is the only clock input.
func Analyze(in Inputs, p *profile.Profile, now time.Time) *Assessment {
	riskScore := 0
	var flaggedRisks []string
	symptomsLower := strings.ToLower(in.Symptoms)
	hasSymptomText := strings.TrimSpace(in.Symptoms) != ""

	// Low vitals first; they can short-circuit the classification below.
	lowVitals := DetectLowVitals(in)
	escalation, escalationMsg := lowVitalEscalation(lowVitals.Count, hasSymptomText)
	riskScore += escalation
	flaggedRisks = append(flaggedRisks, lowVitals.Flags...)
	bypassTriggered := CheckEmergencyBypass(in, p, lowVitals.Count)

	// An HR spike over a symptom-free previous entry without declared exercise
	// gets an explanatory flag but no score change.
	likelyExercise := in.ActivityLevel != ActivityExercising && DetectExercisePattern(in.HeartRate, p.HistoricalData)
	if likelyExercise {
		flaggedRisks = append(flaggedRisks, "Heart rate spike resembles an exercise pattern (no symptoms in previous entry) - consider whether recent activity explains it")
	}

	tempThreshold := DefaultTempThreshold
	hrThreshold := float64(DefaultHRThreshold)
	if p.AdaptiveThresholds != nil {
		if p.AdaptiveThresholds.Temperature != nil {
			tempThreshold = *p.AdaptiveThresholds.Temperature
		}
		if p.AdaptiveThresholds.HeartRate != nil {
			hrThreshold = *p.AdaptiveThresholds.HeartRate
		}
	}

	if in.Temperature > tempThreshold {
		riskScore += 2
		flaggedRisks = append(flaggedRisks, fmt.Sprintf("Elevated temperature (%.1f°F) indicates potential infection", in.Temperature))
	}

	if in.HeartRate > hrThreshold && in.ActivityLevel == ActivityResting && !likelyExercise {
		hrRisk := 2
		switch in.SubjectiveFeedback {
		case FeedbackNormal:
			hrRisk = 1
		case FeedbackVerySick:
			hrRisk = 3
		}
		riskScore += hrRisk
		feeling := in.SubjectiveFeedback
		if feeling == "" {
			feeling = "not assessed"
		}
		flaggedRisks = append(flaggedRisks, fmt.Sprintf("Elevated resting heart rate (%.0f bpm) with subjective feeling: %s", in.HeartRate, feeling))
	}

	if hasHighRiskCondition(p.KnownConditions) {
		riskScore++
		flaggedRisks = append(flaggedRisks, fmt.Sprintf("Pre-existing conditions (%s) increase sepsis risk", strings.Join(p.KnownConditions, ", ")))
	}

	symptomCount := 0
	for _, s := range scoredSymptoms {
		if strings.Contains(symptomsLower, s) {
			symptomCount++
		}
	}
	if symptomCount > 0 {
		riskScore += symptomCount
		flaggedRisks = append(flaggedRisks, fmt.Sprintf("Sepsis-related symptoms detected: %s", in.Symptoms))
	}
	if strings.Contains(symptomsLower, "chills") && in.HeartRate > 100 && strings.Contains(symptomsLower, "wound") {
		riskScore += 2
		flaggedRisks = append(flaggedRisks, "Dangerous combination: chills + elevated heart rate + wound symptoms")
	}

	if in.SymptomDuration == DurationOver3Days {
		riskScore++
		flaggedRisks = append(flaggedRisks, "Persistent symptoms over 3 days increase concern")
	}

	patternAnalysis := AnalyzeSymptomClusters(in.Symptoms, in.Temperature, in.HeartRate, in.SymptomDuration)
	if containsPattern(patternAnalysis, "Critical Pattern") {
		riskScore += 3
	} else if containsPattern(patternAnalysis, "High-Risk Pattern") {
		riskScore += 2
	}

	level, confidence, alertLevel, recommendation := classify(riskScore, lowVitals.Count, bypassTriggered)

	assessment := &Assessment{
		Level:          level,
		Confidence:     confidence,
		Score:          riskScore,
		FlaggedRisks:   flaggedRisks,
		Recommendation: recommendation,
		Reassurance:    reassurance,
		AlertLevel:     alertLevel,

		PatternAnalysis:      patternAnalysis,
		TrendAnalysis:        AnalyzeTrend(in.Temperature, in.HeartRate, p),
		ConversationalMemory: AnalyzeConversationalMemory(p, in),
		MissedCheckinMessage: CheckMissedCheckins(p, now),

		AdaptiveThresholdSuggestion:   AdaptiveThresholdSuggestion(p, in.HeartRate, in.Temperature, in.SubjectiveFeedback),
		InfectionTimelineEstimate:     EstimateInfectionTimeline(p, in.Symptoms, in.SymptomDuration),
		NightModeMessage:              NightModeMessage(now),
		ProviderIntegrationSuggestion: ProviderIntegrationSuggestion(level, alertLevel),

		LowVitalFlags:            lowVitals.Flags,
		CriticalLowVitalAlert:    escalationMsg,
		EmergencyBypassTriggered: bypassTriggered,
	}

	if insight := TimeOfDayInsight(p, now, in.HeartRate); insight != "" {
		assessment.PersonalizedInsights = append(assessment.PersonalizedInsights, insight)
	}

	return assessment
}

// classify maps the additive score to a level, with low-vital findings
// short-circuiting it. First match wins, top down.
func classify(riskScore, lowVitalCount int, bypassTriggered bool) (RiskLevel, Confidence, AlertLevel, string) {
	switch {
	case lowVitalCount >= 2 || bypassTriggered:
		rec := "Multiple vital signs are critically low. Call 911 or go to the emergency room now."
		if bypassTriggered {
			rec = "Critically low vitals with no response to recent check-ins. Your emergency contacts are being notified - call 911 now."
		}
		return RiskHigh, ConfidenceHigh, AlertUrgent, rec
	case lowVitalCount == 1:
		level := RiskModerate
		if riskScore >= 4 {
			level = RiskHigh
		}
		return level, ConfidenceHigh, AlertUrgent, "Contact your provider immediately or seek urgent care."
	case riskScore >= 6:
		return RiskHigh, ConfidenceHigh, AlertUrgent, "Seek urgent care immediately"
	case riskScore >= 4:
		return RiskModerate, ConfidenceHigh, AlertMonitor, "Call your healthcare provider today"
	case riskScore >= 2:
		return RiskModerate, ConfidenceMedium, AlertMonitor, "Monitor closely - recheck in 4-6 hours"
	default:
		return RiskLow, ConfidenceMedium, AlertNone, "Continue monitoring - recheck in 12 hours"
	}
}

func hasHighRiskCondition(conditions []string) bool {
	for _, condition := range conditions {
		lower := strings.ToLower(condition)
		for _, risk := range highRiskConditions {
			if strings.Contains(lower, risk) {
				return true
			}
		}
	}
	return false
}

func containsPattern(patterns []string, marker string) bool {
	for _, p := range patterns {
		if strings.Contains(p, marker) {
			return true
		}
	}
	return false
}
