package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Lifecycle stages an AI system can be in.
const (
	LifecycleDesign      = "design"
	LifecycleDevelopment = "development"
	LifecycleTesting     = "testing"
	LifecycleProduction  = "production"
)

// Criticality levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

var validStages = map[string]bool{
	LifecycleDesign:      true,
	LifecycleDevelopment: true,
	LifecycleTesting:     true,
	LifecycleProduction:  true,
}

var validCriticalities = map[string]bool{
	RiskLow:    true,
	RiskMedium: true,
	RiskHigh:   true,
}

// QuestionnaireResponse is the immutable submission describing an
// organization's AI system. Created once, stored verbatim, never mutated.
type QuestionnaireResponse struct {
	// Organization metadata
	OrganizationType string   `json:"organization_type"`
	Industry         string   `json:"industry"`
	Regions          []string `json:"regions"`
	OrganizationSize string   `json:"organization_size"`

	// System characteristics
	MainPurpose string   `json:"main_purpose"`
	DataTypes   []string `json:"data_types"`
	Stage       string   `json:"stage"`
	Developer   string   `json:"developer"`
	Criticality string   `json:"criticality"`

	// Governance maturity
	Policies        string `json:"policies"`
	DesignatedTeam  string `json:"designated_team"`
	ApprovalProcess string `json:"approval_process"`
	RecordKeeping   string `json:"record_keeping"`

	// Risk and oversight
	AffectsRights      string `json:"affects_rights"`
	HumanOversight     string `json:"human_oversight"`
	Testing            string `json:"testing"`
	ComplaintMechanism string `json:"complaint_mechanism"`

	// Outcome preferences
	Goal       string   `json:"goal"`
	Preference string   `json:"preference"`
	Standards  []string `json:"standards"`
}

// Validate checks required fields and enum domains. A failure here is the
// only error a submitter ever sees synchronously.
func (q *QuestionnaireResponse) Validate() error {
	required := map[string]string{
		"organization_type":   q.OrganizationType,
		"industry":            q.Industry,
		"organization_size":   q.OrganizationSize,
		"main_purpose":        q.MainPurpose,
		"stage":               q.Stage,
		"developer":           q.Developer,
		"criticality":         q.Criticality,
		"policies":            q.Policies,
		"designated_team":     q.DesignatedTeam,
		"approval_process":    q.ApprovalProcess,
		"record_keeping":      q.RecordKeeping,
		"affects_rights":      q.AffectsRights,
		"human_oversight":     q.HumanOversight,
		"testing":             q.Testing,
		"complaint_mechanism": q.ComplaintMechanism,
		"goal":                q.Goal,
		"preference":          q.Preference,
	}

	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%w: missing required field %q", ErrInvalidQuestionnaire, field)
		}
	}

	if len(q.Regions) == 0 {
		return fmt.Errorf("%w: missing required field %q", ErrInvalidQuestionnaire, "regions")
	}
	if len(q.DataTypes) == 0 {
		return fmt.Errorf("%w: missing required field %q", ErrInvalidQuestionnaire, "data_types")
	}

	if !validStages[q.Stage] {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidQuestionnaire, q.Stage)
	}
	if !validCriticalities[q.Criticality] {
		return fmt.Errorf("%w: unknown criticality %q", ErrInvalidQuestionnaire, q.Criticality)
	}

	return nil
}

// SystemCharacteristics returns the minimized slice of the questionnaire fed
// to the EU and NIST requirement stages. Organization identity and governance
// answers are deliberately excluded.
func (q *QuestionnaireResponse) SystemCharacteristics() map[string]interface{} {
	return map[string]interface{}{
		"main_purpose": q.MainPurpose,
		"data_types":   q.DataTypes,
		"stage":        q.Stage,
		"developer":    q.Developer,
		"criticality":  q.Criticality,
		"regions":      q.Regions,
	}
}

// GovernanceState returns the current-state slice fed to the gap analysis
// stage. Must never include organization-identity fields.
func (q *QuestionnaireResponse) GovernanceState() map[string]interface{} {
	return map[string]interface{}{
		"policies":            q.Policies,
		"designated_team":     q.DesignatedTeam,
		"approval_process":    q.ApprovalProcess,
		"record_keeping":      q.RecordKeeping,
		"affects_rights":      q.AffectsRights,
		"human_oversight":     q.HumanOversight,
		"testing":             q.Testing,
		"complaint_mechanism": q.ComplaintMechanism,
	}
}

// Value implements driver.Valuer so the questionnaire is stored as JSONB.
func (q QuestionnaireResponse) Value() (driver.Value, error) {
	return json.Marshal(q)
}

// Scan implements sql.Scanner.
func (q *QuestionnaireResponse) Scan(value interface{}) error {
	return scanJSON(value, q)
}

func scanJSON(value interface{}, target interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
