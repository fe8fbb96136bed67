package models

import (
	"errors"
	"testing"
)

func TestClassificationResultValidate(t *testing.T) {
	valid := ClassificationResult{
		EUClassification: ClassificationHighRisk,
		Rationale:        "Annex III medical context",
		Confidence:       0.9,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*ClassificationResult)
	}{
		{"unknown classification", func(r *ClassificationResult) { r.EUClassification = "SOMEWHAT_RISKY" }},
		{"empty rationale", func(r *ClassificationResult) { r.Rationale = "" }},
		{"confidence above one", func(r *ClassificationResult) { r.Confidence = 1.2 }},
		{"negative confidence", func(r *ClassificationResult) { r.Confidence = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); !errors.Is(err, ErrSchemaViolation) {
				t.Errorf("Validate() error = %v, want ErrSchemaViolation", err)
			}
		})
	}
}

func TestEURequirementsResultValidate(t *testing.T) {
	valid := EURequirementsResult{
		ApplicableArticles: []int{9},
		Requirements: []EURequirement{
			{Article: 9, Title: "Risk management system", AppliesTo: "provider", Mandatory: true},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	empty := EURequirementsResult{}
	if err := empty.Validate(); !errors.Is(err, ErrSchemaViolation) {
		t.Errorf("Validate() with no articles error = %v, want ErrSchemaViolation", err)
	}

	badAppliesTo := valid
	badAppliesTo.Requirements = []EURequirement{
		{Article: 9, Title: "Risk management system", AppliesTo: "everyone"},
	}
	if err := badAppliesTo.Validate(); !errors.Is(err, ErrSchemaViolation) {
		t.Errorf("Validate() with bad applies_to error = %v, want ErrSchemaViolation", err)
	}
}

func TestGapValidate(t *testing.T) {
	valid := Gap{
		RequirementID:    "GOVERN.1.3",
		Framework:        FrameworkNISTAIRMF,
		RequirementTitle: "Risk management processes",
		Status:           GapStatusPartial,
		Severity:         SeverityHigh,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Gap)
	}{
		{"empty requirement id", func(g *Gap) { g.RequirementID = "" }},
		{"unknown framework", func(g *Gap) { g.Framework = "ISO_42001" }},
		{"unknown status", func(g *Gap) { g.Status = "planned" }},
		{"unknown severity", func(g *Gap) { g.Severity = "blocker" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid
			tt.mutate(&g)
			if err := g.Validate(); !errors.Is(err, ErrSchemaViolation) {
				t.Errorf("Validate() error = %v, want ErrSchemaViolation", err)
			}
		})
	}
}

func TestAssessmentStageAccessors(t *testing.T) {
	assessment := Assessment{
		StageResults: StageResults{
			{
				Stage: StageEUClassification,
				Classification: &ClassificationResult{
					EUClassification: ClassificationLimitedRisk,
					Rationale:        "Chatbot transparency case",
					Confidence:       0.8,
				},
			},
		},
	}

	if got := assessment.ClassificationResult(); got == nil || got.EUClassification != ClassificationLimitedRisk {
		t.Errorf("ClassificationResult() = %+v, want limited risk result", got)
	}
	if got := assessment.EURequirementsResult(); got != nil {
		t.Errorf("EURequirementsResult() = %+v, want nil for absent stage", got)
	}
	if got := assessment.GapAnalysisResult(); got != nil {
		t.Errorf("GapAnalysisResult() = %+v, want nil for absent stage", got)
	}
}
