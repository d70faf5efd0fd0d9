package risk

// RiskLevel is the three-level classification produced by the aggregator.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Confidence tags how sure the engine is about its classification.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// AlertLevel is the coarse urgency tag attached to an assessment.
type AlertLevel string

const (
	AlertNone    AlertLevel = "None"
	AlertMonitor AlertLevel = "Monitor"
	AlertUrgent  AlertLevel = "Urgent"
)

// Symptom-duration buckets accepted on check-in forms.
const (
	DurationUnder24h  = "Less than 24 hours"
	DurationOneToFive = "1–3 days"
	DurationOver3Days = "More than 3 days"
)

// Activity levels accepted on check-in forms.
const (
	ActivityResting    = "Resting"
	ActivityExercising = "Exercising"
)

// Subjective-feedback phrases that adjust heart-rate scoring.
const (
	FeedbackNormal   = "I feel normal"
	FeedbackVerySick = "I feel very sick"
)

// RawInputs is the untyped form payload before validation.
type RawInputs struct {
	Temperature        string `json:"temperature"`
	HeartRate          string `json:"heart_rate"`
	Symptoms           string `json:"symptoms"`
	SymptomDuration    string `json:"symptom_duration"`
	ActivityLevel      string `json:"activity_level"`
	Medications        string `json:"medications,omitempty"`
	SubjectiveFeedback string `json:"subjective_feedback,omitempty"`
	SpO2               string `json:"spo2,omitempty"`
	SystolicBP         string `json:"systolic_bp,omitempty"`
	RespiratoryRate    string `json:"respiratory_rate,omitempty"`
}

// Inputs is a validated check-in. Temperature and heart rate are always
// present; the remaining vitals are optional.
type Inputs struct {
	Temperature        float64
	HeartRate          float64
	Symptoms           string
	SymptomDuration    string
	ActivityLevel      string
	Medications        string
	SubjectiveFeedback string
	SpO2               *float64
	SystolicBP         *float64
	RespiratoryRate    *float64
}

// LowVitalResult is the low-vital detector's output.
type LowVitalResult struct {
	Flags      []string `json:"flags,omitempty"`
	Count      int      `json:"count"`
	IsCritical bool     `json:"is_critical"`
}

// Assessment is the value object returned for every check-in. It is derived
// fresh each time and never merged with a previous assessment; only Level is
// captured into history.
type Assessment struct {
	Level          RiskLevel  `json:"level"`
	Confidence     Confidence `json:"confidence"`
	Score          int        `json:"score"`
	FlaggedRisks   []string   `json:"flagged_risks"`
	Recommendation string     `json:"recommendation"`
	Reassurance    string     `json:"reassurance"`
	AlertLevel     AlertLevel `json:"alert_level"`

	PatternAnalysis      []string `json:"pattern_analysis,omitempty"`
	TrendAnalysis        string   `json:"trend_analysis,omitempty"`
	ConversationalMemory []string `json:"conversational_memory,omitempty"`
	PersonalizedInsights []string `json:"personalized_insights,omitempty"`
	MissedCheckinMessage string   `json:"missed_checkin_message,omitempty"`

	AdaptiveThresholdSuggestion   string `json:"adaptive_threshold_suggestion,omitempty"`
	InfectionTimelineEstimate     string `json:"infection_timeline_estimate,omitempty"`
	NightModeMessage              string `json:"night_mode_message,omitempty"`
	ProviderIntegrationSuggestion string `json:"provider_integration_suggestion,omitempty"`

	LowVitalFlags            []string `json:"low_vital_flags,omitempty"`
	CriticalLowVitalAlert    string   `json:"critical_low_vital_alert,omitempty"`
	EmergencyBypassTriggered bool     `json:"emergency_bypass_triggered"`
}
