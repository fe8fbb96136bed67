package models

import "time"

type SubmitAssessmentRequest struct {
	OrganizationName       string                `json:"organization_name"`
	QuestionnaireResponses QuestionnaireResponse `json:"questionnaire_responses"`
}

type SubmitAssessmentResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
}

type AssessmentStatusResponse struct {
	ID                    string    `json:"id"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"created_at"`
	ProcessingTimeSeconds *int      `json:"processing_time_seconds,omitempty"`
	ErrorMessage          *string   `json:"error_message,omitempty"`
	ComplianceScore       *int      `json:"compliance_score,omitempty"`
}

// AssessmentSummary is one row in the assessment listing.
type AssessmentSummary struct {
	ID               string    `json:"id"`
	OrganizationName string    `json:"organization_name"`
	Status           string    `json:"status"`
	ComplianceScore  *int      `json:"compliance_score,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func SummaryOf(a *Assessment) AssessmentSummary {
	return AssessmentSummary{
		ID:               a.ID.String(),
		OrganizationName: a.OrganizationName,
		Status:           string(a.Status),
		ComplianceScore:  a.ComplianceScore,
		CreatedAt:        a.CreatedAt,
	}
}
