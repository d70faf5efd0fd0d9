package risk

import (
	"fmt"
	"strings"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

// Fixed danger thresholds for low vitals. Not user-adjustable; "low" here is
// distinct from the elevated readings the additive score watches for.
const (
	LowTempThreshold     = 96.8 // °F
	LowHeartRateThreshold = 60  // bpm, only counted with qualifying symptoms
	LowSpO2Threshold     = 92   // %
	LowSystolicThreshold = 90   // mmHg
	LowRespRateThreshold = 12   // breaths/min
)

// DetectLowVitals flags every vital below its danger threshold. A low heart
// rate only counts when accompanying symptoms are present, so healthy
// low-resting-HR individuals are not flagged.
func DetectLowVitals(in Inputs) LowVitalResult {
	var res LowVitalResult
	symptoms := strings.ToLower(in.Symptoms)

	if in.Temperature < LowTempThreshold {
		res.Flags = append(res.Flags, fmt.Sprintf(
			"Dangerously low temperature (%.1f°F) - below 96.8°F indicates potential hypothermia or severe infection", in.Temperature))
		res.Count++
	}

	hasSymptoms := strings.Contains(symptoms, "fatigue") ||
		strings.Contains(symptoms, "confusion") ||
		strings.Contains(symptoms, "dizzy") ||
		strings.Contains(symptoms, "weak")

	if in.HeartRate < LowHeartRateThreshold && hasSymptoms {
		res.Flags = append(res.Flags, fmt.Sprintf(
			"Critically low heart rate (%.0f bpm) with symptoms - may indicate cardiac complications or severe sepsis", in.HeartRate))
		res.Count++
	}

	if in.SpO2 != nil && *in.SpO2 < LowSpO2Threshold {
		res.Flags = append(res.Flags, fmt.Sprintf(
			"Dangerously low oxygen saturation (%.0f%%) - indicates respiratory compromise", *in.SpO2))
		res.Count++
	}

	if in.SystolicBP != nil && *in.SystolicBP < LowSystolicThreshold {
		res.Flags = append(res.Flags, fmt.Sprintf(
			"Critically low blood pressure (%.0f mmHg) - indicates potential shock or severe hypotension", *in.SystolicBP))
		res.Count++
	}

	if in.RespiratoryRate != nil && *in.RespiratoryRate < LowRespRateThreshold {
		res.Flags = append(res.Flags, fmt.Sprintf(
			"Dangerously low respiratory rate (%.0f breaths/min) - indicates respiratory depression", *in.RespiratoryRate))
		res.Count++
	}

	res.IsCritical = res.Count >= 2
	return res
}

// CheckEmergencyBypass decides whether the unattended escalation path fires.
// It returns a boolean only; the alert dispatcher owns the side effect.
func CheckEmergencyBypass(in Inputs, p *profile.Profile, lowVitalCount int) bool {
	if !p.EmergencySettings.AutoAlertBypassEnabled {
		return false
	}

	symptoms := strings.ToLower(in.Symptoms)
	hasSeriousSymptoms := strings.Contains(symptoms, "confusion") ||
		strings.Contains(symptoms, "unresponsive") ||
		strings.Contains(symptoms, "dizzy")

	return lowVitalCount >= 2 && hasSeriousSymptoms && p.EmergencySettings.ConsecutiveMissedCheckins >= 2
}

// lowVitalEscalation converts a low-vital count into additive score points
// and the escalation message shown to the user.
func lowVitalEscalation(count int, hasSymptoms bool) (int, string) {
	if count == 0 {
		return 0, ""
	}

	increase := count * 2
	var msg string

	if count == 1 {
		msg = "Your vital signs appear lower than healthy ranges. Low values like this, especially when paired with symptoms, can indicate serious health deterioration such as late-stage sepsis, cardiac complications, or medication side effects. Based on this, I'm escalating your risk level. Please contact your provider immediately or seek urgent care."
		if hasSymptoms {
			increase++
		}
	} else {
		msg = "Multiple vital signs are critically low. This combination can indicate severe health deterioration, late-stage sepsis, shock, or life-threatening complications. IMMEDIATE medical attention is required. Please call 911 or go to the emergency room now."
		increase += 3
	}

	return increase, msg
}
