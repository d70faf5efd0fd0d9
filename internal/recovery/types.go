package recovery

import "time"

// Overall-feeling answers accepted on recovery check-ins.
const (
	FeelingGreat = "Great"
	FeelingOkay  = "Okay"
	FeelingOff   = "Off"
	FeelingSick  = "Sick"
)

// Insight severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityUrgent  = "urgent"
)

// Insight is one severity-tagged coaching observation. Rules are independent;
// multiple insights can co-occur.
type Insight struct {
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	Severity       string    `json:"severity"`
	ActionRequired bool      `json:"action_required"`
	Timestamp      time.Time `json:"timestamp"`
}

// CheckInData is one recovery-mode check-in submission.
type CheckInData struct {
	OverallFeeling       string   `json:"overall_feeling"`
	RecoverySymptoms     []string `json:"recovery_symptoms"`
	MedicationCompliance bool     `json:"medication_compliance"`
	HydrationCompliance  bool     `json:"hydration_compliance"`
	NutritionCompliance  bool     `json:"nutrition_compliance"`
	RestHours            float64  `json:"rest_hours"`
	TookNaps             bool     `json:"took_naps"`
	MoodRating           int      `json:"mood_rating"`
	WoundChecked         *bool    `json:"wound_checked,omitempty"`
	CognitiveIssues      *bool    `json:"cognitive_issues,omitempty"`
}

// CheckInResult bundles everything a processed recovery check-in produces.
type CheckInResult struct {
	Insights []Insight `json:"insights"`
	RedFlags []string  `json:"red_flags,omitempty"`
	Score    int       `json:"score"`
}
