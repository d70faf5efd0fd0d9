package risk

import (
	"fmt"
	"strings"
)

var clusterSymptoms = []string{"fatigue", "chills", "confusion", "wound", "breathing", "nausea", "dizziness"}

// AnalyzeSymptomClusters matches the lowercased symptom text against known
// dangerous keyword combinations. All applicable patterns are returned in a
// fixed order: critical, high-risk, multi-symptom, persistence.
func AnalyzeSymptomClusters(symptoms string, temp, hr float64, symptomDuration string) []string {
	var patterns []string
	lower := strings.ToLower(symptoms)

	if temp > 100.4 && hr > 100 {
		if strings.Contains(lower, "chills") || strings.Contains(lower, "confusion") {
			patterns = append(patterns, "Critical Pattern: Fever + Elevated HR + Systemic symptoms (chills/confusion) suggests severe infection")
		}
		if strings.Contains(lower, "breathing") || strings.Contains(lower, "shortness") {
			patterns = append(patterns, "High-Risk Pattern: Fever + Tachycardia + Respiratory symptoms")
		}
	}

	count := 0
	for _, s := range clusterSymptoms {
		if strings.Contains(lower, s) {
			count++
		}
	}

	if count >= 3 {
		patterns = append(patterns, fmt.Sprintf("Multi-symptom cluster: %d concerning symptoms present", count))
	}

	if count >= 2 && symptomDuration == DurationOver3Days {
		patterns = append(patterns, "Persistent multi-symptom pattern over 3+ days")
	}

	return patterns
}
