package models

import (
	"time"

	"github.com/google/uuid"
)

type AssessmentStatus string

const (
	StatusPending    AssessmentStatus = "pending"
	StatusProcessing AssessmentStatus = "processing"
	StatusCompleted  AssessmentStatus = "completed"
	StatusFailed     AssessmentStatus = "failed"
)

// Assessment is the unit of work the pipeline drives. Status transitions are
// monotonic: pending → processing → completed | failed, never reopened.
type Assessment struct {
	ID               uuid.UUID             `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationName string                `gorm:"type:text;index" json:"organization_name"`
	Status           AssessmentStatus      `gorm:"not null;default:'pending';index" json:"status"`
	Questionnaire    QuestionnaireResponse `gorm:"type:jsonb;not null" json:"questionnaire_responses"`

	// Populated incrementally, one entry per successfully completed stage, so
	// a mid-pipeline failure leaves a diagnosable partial record.
	StageResults StageResults `gorm:"type:jsonb" json:"stage_results"`

	// Terminal fields, set only at completion or failure.
	ComplianceScore       *int                   `gorm:"type:integer" json:"compliance_score,omitempty"`
	ScoreBreakdown        *ScoreBreakdown        `gorm:"type:jsonb" json:"score_breakdown,omitempty"`
	CrossFrameworkMapping *CrossFrameworkMapping `gorm:"type:jsonb" json:"cross_framework_mapping,omitempty"`
	ErrorMessage          *string                `gorm:"type:text" json:"error_message,omitempty"`
	ProcessingTimeSeconds *int                   `gorm:"type:integer" json:"processing_time_seconds,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// ClassificationResult returns the EU classification stage output, if present.
func (a *Assessment) ClassificationResult() *ClassificationResult {
	return findStage(a.StageResults, StageEUClassification).classificationOrNil()
}

// EURequirementsResult returns the EU requirements stage output, if present.
func (a *Assessment) EURequirementsResult() *EURequirementsResult {
	return findStage(a.StageResults, StageEURequirements).euRequirementsOrNil()
}

// NISTRequirementsResult returns the NIST requirements stage output, if present.
func (a *Assessment) NISTRequirementsResult() *NISTRequirementsResult {
	return findStage(a.StageResults, StageNISTRequirements).nistRequirementsOrNil()
}

// GapAnalysisResult returns the gap analysis stage output, if present.
func (a *Assessment) GapAnalysisResult() *GapAnalysisResult {
	return findStage(a.StageResults, StageGapAnalysis).gapAnalysisOrNil()
}

func findStage(results StageResults, stage StageName) *StageResult {
	for i := range results {
		if results[i].Stage == stage {
			return &results[i]
		}
	}
	return nil
}

func (s *StageResult) classificationOrNil() *ClassificationResult {
	if s == nil {
		return nil
	}
	return s.Classification
}

func (s *StageResult) euRequirementsOrNil() *EURequirementsResult {
	if s == nil {
		return nil
	}
	return s.EURequirements
}

func (s *StageResult) nistRequirementsOrNil() *NISTRequirementsResult {
	if s == nil {
		return nil
	}
	return s.NISTRequirements
}

func (s *StageResult) gapAnalysisOrNil() *GapAnalysisResult {
	if s == nil {
		return nil
	}
	return s.GapAnalysis
}
