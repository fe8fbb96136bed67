package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type StageName string

const (
	StageEUClassification StageName = "eu_classification"
	StageEURequirements   StageName = "eu_requirements"
	StageNISTRequirements StageName = "nist_requirements"
	StageGapAnalysis      StageName = "gap_analysis"
)

// PipelineStages is the fixed execution order of the assessment pipeline.
var PipelineStages = []StageName{
	StageEUClassification,
	StageEURequirements,
	StageNISTRequirements,
	StageGapAnalysis,
}

// EU AI Act risk classifications.
const (
	ClassificationProhibited  = "PROHIBITED"
	ClassificationHighRisk    = "HIGH_RISK"
	ClassificationLimitedRisk = "LIMITED_RISK"
	ClassificationMinimalRisk = "MINIMAL_RISK"
)

var validClassifications = map[string]bool{
	ClassificationProhibited:  true,
	ClassificationHighRisk:    true,
	ClassificationLimitedRisk: true,
	ClassificationMinimalRisk: true,
}

// NIST AI RMF functions.
const (
	FunctionGovern  = "GOVERN"
	FunctionMap     = "MAP"
	FunctionMeasure = "MEASURE"
	FunctionManage  = "MANAGE"
)

var validFunctions = map[string]bool{
	FunctionGovern:  true,
	FunctionMap:     true,
	FunctionMeasure: true,
	FunctionManage:  true,
}

// ClassificationResult is the output of the EU classification stage.
type ClassificationResult struct {
	EUClassification   string   `json:"eu_classification"`
	Rationale          string   `json:"rationale"`
	AnnexIIICategories []string `json:"annex_iii_categories,omitempty"`
	Confidence         float64  `json:"confidence"`
	Ambiguities        []string `json:"ambiguities,omitempty"`
}

func (r *ClassificationResult) Validate() error {
	if !validClassifications[r.EUClassification] {
		return fmt.Errorf("%w: unknown classification %q", ErrSchemaViolation, r.EUClassification)
	}
	if r.Rationale == "" {
		return fmt.Errorf("%w: empty rationale", ErrSchemaViolation)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrSchemaViolation, r.Confidence)
	}
	return nil
}

// EURequirement is one obligation surfaced from the EU AI Act.
type EURequirement struct {
	Article     int    `json:"article"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AppliesTo   string `json:"applies_to"`
	Mandatory   bool   `json:"mandatory"`
}

// EURequirementsResult is the output of the EU requirements stage.
type EURequirementsResult struct {
	ApplicableArticles []int           `json:"applicable_articles"`
	Requirements       []EURequirement `json:"requirements"`
}

func (r *EURequirementsResult) Validate() error {
	if len(r.ApplicableArticles) == 0 {
		return fmt.Errorf("%w: no applicable articles", ErrSchemaViolation)
	}
	for _, req := range r.Requirements {
		if req.Article <= 0 {
			return fmt.Errorf("%w: requirement with invalid article %d", ErrSchemaViolation, req.Article)
		}
		if req.Title == "" {
			return fmt.Errorf("%w: requirement for article %d has no title", ErrSchemaViolation, req.Article)
		}
		switch req.AppliesTo {
		case "provider", "deployer", "both":
		default:
			return fmt.Errorf("%w: requirement for article %d has invalid applies_to %q",
				ErrSchemaViolation, req.Article, req.AppliesTo)
		}
	}
	return nil
}

// NISTSubcategoryDetail describes one applicable NIST AI RMF subcategory.
type NISTSubcategoryDetail struct {
	ID          string `json:"id"`
	Function    string `json:"function"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
	Rationale   string `json:"rationale"`
}

// NISTRequirementsResult is the output of the NIST requirements stage.
type NISTRequirementsResult struct {
	ApplicableSubcategories []string                `json:"applicable_subcategories"`
	PriorityFunctions       []string                `json:"priority_functions"`
	SubcategoryDetails      []NISTSubcategoryDetail `json:"subcategory_details"`
}

func (r *NISTRequirementsResult) Validate() error {
	if len(r.ApplicableSubcategories) == 0 {
		return fmt.Errorf("%w: no applicable subcategories", ErrSchemaViolation)
	}
	for _, fn := range r.PriorityFunctions {
		if !validFunctions[fn] {
			return fmt.Errorf("%w: unknown priority function %q", ErrSchemaViolation, fn)
		}
	}
	for _, detail := range r.SubcategoryDetails {
		if detail.ID == "" {
			return fmt.Errorf("%w: subcategory detail with empty id", ErrSchemaViolation)
		}
		if detail.Rationale == "" {
			return fmt.Errorf("%w: subcategory %s has no rationale", ErrSchemaViolation, detail.ID)
		}
	}
	return nil
}

// Source frameworks a gap can originate from.
const (
	FrameworkEUAIAct   = "EU_AI_ACT"
	FrameworkNISTAIRMF = "NIST_AI_RMF"
)

// Gap statuses and severities.
const (
	GapStatusImplemented = "implemented"
	GapStatusPartial     = "partial"
	GapStatusMissing     = "missing"

	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

var validGapStatuses = map[string]bool{
	GapStatusImplemented: true,
	GapStatusPartial:     true,
	GapStatusMissing:     true,
}

var validSeverities = map[string]bool{
	SeverityCritical: true,
	SeverityHigh:     true,
	SeverityMedium:   true,
	SeverityLow:      true,
}

// Recommendation is the actionable bundle attached to a gap.
type Recommendation struct {
	ImplementationSteps []string `json:"implementation_steps"`
	Examples            []string `json:"examples"`
	EffortEstimate      string   `json:"effort_estimate"`
	ResourcesNeeded     []string `json:"resources_needed"`
	CommonMistakes      []string `json:"common_mistakes,omitempty"`
}

// Gap is a single compliance shortfall identified against one requirement.
type Gap struct {
	RequirementID    string         `json:"requirement_id"`
	Framework        string         `json:"framework"`
	RequirementTitle string         `json:"requirement_title"`
	Status           string         `json:"status"`
	Severity         string         `json:"severity"`
	CurrentState     string         `json:"current_state"`
	Recommendations  Recommendation `json:"recommendations"`
}

func (g *Gap) Validate() error {
	if g.RequirementID == "" {
		return fmt.Errorf("%w: gap with empty requirement_id", ErrSchemaViolation)
	}
	if g.Framework != FrameworkEUAIAct && g.Framework != FrameworkNISTAIRMF {
		return fmt.Errorf("%w: gap %s has unknown framework %q", ErrSchemaViolation, g.RequirementID, g.Framework)
	}
	if !validGapStatuses[g.Status] {
		return fmt.Errorf("%w: gap %s has unknown status %q", ErrSchemaViolation, g.RequirementID, g.Status)
	}
	if !validSeverities[g.Severity] {
		return fmt.Errorf("%w: gap %s has unknown severity %q", ErrSchemaViolation, g.RequirementID, g.Severity)
	}
	return nil
}

// GapAnalysisResult is the output of the gap analysis stage. Scoring is not
// part of this structure; the score is derived deterministically afterwards.
type GapAnalysisResult struct {
	Gaps []Gap `json:"gaps"`
}

func (r *GapAnalysisResult) Validate() error {
	for i := range r.Gaps {
		if err := r.Gaps[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// StageResult is one tagged entry in an assessment's ordered stage output
// list. Exactly one variant pointer is set, matching Stage.
type StageResult struct {
	Stage            StageName               `json:"stage"`
	Classification   *ClassificationResult   `json:"classification,omitempty"`
	EURequirements   *EURequirementsResult   `json:"eu_requirements,omitempty"`
	NISTRequirements *NISTRequirementsResult `json:"nist_requirements,omitempty"`
	GapAnalysis      *GapAnalysisResult      `json:"gap_analysis,omitempty"`
}

// StageResults is the append-only list persisted with the assessment.
type StageResults []StageResult

func (s StageResults) Value() (driver.Value, error) {
	if s == nil {
		s = StageResults{}
	}
	return json.Marshal(s)
}

func (s *StageResults) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// ScoreBreakdown tallies non-implemented gaps by severity plus the count of
// gaps already implemented. The five counts sum to the total gap count.
type ScoreBreakdown struct {
	CriticalGaps int `json:"critical_gaps"`
	HighGaps     int `json:"high_gaps"`
	MediumGaps   int `json:"medium_gaps"`
	LowGaps      int `json:"low_gaps"`
	Implemented  int `json:"implemented"`
}

func (b ScoreBreakdown) Value() (driver.Value, error) {
	return json.Marshal(b)
}

func (b *ScoreBreakdown) Scan(value interface{}) error {
	return scanJSON(value, b)
}

// CrossFrameworkMapping holds the bidirectional article↔subcategory
// associations restricted to this assessment's surfaced entries.
type CrossFrameworkMapping struct {
	EUToNIST map[string][]string `json:"eu_to_nist"`
	NISTToEU map[string][]string `json:"nist_to_eu"`
}

func (m CrossFrameworkMapping) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *CrossFrameworkMapping) Scan(value interface{}) error {
	return scanJSON(value, m)
}
