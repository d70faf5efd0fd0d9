package risk

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

var timelineSymptoms = []string{"fever", "chills", "confusion", "breathing", "wound", "fatigue", "dizziness"}

// AdaptiveThresholdSuggestion offers to raise the personal alert threshold
// when recent entries repeatedly pair elevated vitals with a "feels normal"
// self-report.
func AdaptiveThresholdSuggestion(p *profile.Profile, currentHR, currentTemp float64, feedback string) string {
	if len(p.HistoricalData) < 3 {
		return ""
	}

	recent := p.RecentEntries(5)
	feelsFine := func(e profile.Entry) bool {
		f := strings.ToLower(e.SubjectiveFeedback)
		return strings.Contains(f, "normal") || strings.Contains(f, "fine")
	}

	elevatedHR, elevatedTemp := 0, 0
	hrSum := 0.0
	for _, e := range recent {
		hrSum += e.HeartRate
		if e.HeartRate > 100 && feelsFine(e) {
			elevatedHR++
		}
		if e.Temperature > 100.4 && feelsFine(e) {
			elevatedTemp++
		}
	}

	currentFeelsNormal := strings.Contains(strings.ToLower(feedback), "normal")

	if elevatedHR >= 3 && currentHR > 100 && currentFeelsNormal {
		avg := math.Round(hrSum / float64(len(recent)))
		return fmt.Sprintf("We've noticed your heart rate tends to be higher than average (%.0f bpm average). Would you like to update your alert threshold to better reflect your baseline?", avg)
	}

	if elevatedTemp >= 3 && currentTemp > 100.4 && currentFeelsNormal {
		return "Your temperature readings have been consistently elevated but you feel normal. Consider updating your personal baseline temperature threshold."
	}

	return ""
}

// EstimateInfectionTimeline maps the symptom-duration bucket onto a rough
// onset estimate when multiple concerning symptoms are present.
func EstimateInfectionTimeline(p *profile.Profile, symptoms, symptomDuration string) string {
	lower := strings.ToLower(symptoms)
	if lower == "" || lower == "none" {
		return ""
	}

	count := 0
	for _, s := range timelineSymptoms {
		if strings.Contains(lower, s) {
			count++
		}
	}
	if count < 2 {
		return ""
	}

	hasProgression := false
	for _, e := range p.RecentEntries(3) {
		if strings.TrimSpace(e.Symptoms) != "" {
			hasProgression = true
			break
		}
	}

	switch {
	case hasProgression && symptomDuration == DurationOver3Days:
		return "Your current symptoms may suggest a developing infection. Based on your entries, this could be 48+ hours into onset. We recommend early intervention — contact your provider."
	case hasProgression && symptomDuration == DurationOneToFive:
		return "Your symptom pattern suggests a possible infection 24–48 hours into onset. Early intervention is most effective now."
	case symptomDuration == DurationUnder24h:
		return "Multiple symptoms appearing within 24 hours warrant close monitoring. Consider contacting your provider if symptoms worsen."
	}

	return ""
}

// NightModeMessage returns the late-night banner between 22:00 and 06:59.
func NightModeMessage(now time.Time) string {
	hour := now.Hour()
	if hour >= 22 || hour <= 6 {
		return "We've enabled Night Mode for easier viewing. It looks like you're checking in late — if you're unwell, don't wait. You can contact a provider or review urgent steps here."
	}
	return ""
}

// ProviderIntegrationSuggestion fires only on high-risk or urgent outcomes.
func ProviderIntegrationSuggestion(level RiskLevel, alertLevel AlertLevel) string {
	if level == RiskHigh || alertLevel == AlertUrgent {
		return "Would you like us to share this alert with your care provider or care team? This may qualify for Remote Patient Monitoring (RPM) services covered by insurance."
	}
	return ""
}
