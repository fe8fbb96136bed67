package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"complyforge/internal/corpus"
	"complyforge/internal/models"
	"complyforge/internal/repositories"
)

// memoryRepo is an in-memory AssessmentRepository for pipeline tests.
type memoryRepo struct {
	mu          sync.Mutex
	assessments map[uuid.UUID]*models.Assessment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{assessments: make(map[uuid.UUID]*models.Assessment)}
}

func (r *memoryRepo) Create(assessment *models.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assessments[assessment.ID] = assessment
	return nil
}

func (r *memoryRepo) FindByID(id uuid.UUID) (*models.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.assessments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *assessment
	return &copied, nil
}

func (r *memoryRepo) Claim(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.assessments[id]
	if !ok || assessment.Status != models.StatusPending {
		return false, nil
	}
	assessment.Status = models.StatusProcessing
	return true, nil
}

func (r *memoryRepo) AppendStageResult(id uuid.UUID, results models.StageResults) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.assessments[id]
	if !ok || assessment.Status != models.StatusProcessing {
		return models.ErrNotFound
	}
	assessment.StageResults = results
	return nil
}

func (r *memoryRepo) Complete(id uuid.UUID, outcome *repositories.CompletionData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.assessments[id]
	if !ok || assessment.Status != models.StatusProcessing {
		return models.ErrNotFound
	}
	assessment.Status = models.StatusCompleted
	assessment.ComplianceScore = &outcome.ComplianceScore
	assessment.ScoreBreakdown = &outcome.ScoreBreakdown
	assessment.CrossFrameworkMapping = &outcome.CrossFrameworkMapping
	assessment.ProcessingTimeSeconds = &outcome.ProcessingTimeSeconds
	return nil
}

func (r *memoryRepo) Fail(id uuid.UUID, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.assessments[id]
	if !ok || assessment.Status != models.StatusProcessing {
		return models.ErrNotFound
	}
	assessment.Status = models.StatusFailed
	assessment.ErrorMessage = &errorMsg
	return nil
}

func (r *memoryRepo) FindPending(limit int) ([]models.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []models.Assessment
	for _, assessment := range r.assessments {
		if assessment.Status == models.StatusPending && len(pending) < limit {
			pending = append(pending, *assessment)
		}
	}
	return pending, nil
}

func (r *memoryRepo) List(limit, offset int) ([]models.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Assessment
	for _, assessment := range r.assessments {
		all = append(all, *assessment)
	}
	return all, nil
}

// stageOracle serves canned per-stage responses, bypassing retry concerns.
type stageOracle struct {
	responses map[models.StageName]json.RawMessage
	errs      map[models.StageName]error
	invoked   []models.StageName
}

func (o *stageOracle) Invoke(ctx context.Context, req OracleRequest) (json.RawMessage, error) {
	o.invoked = append(o.invoked, req.Stage)
	if err, ok := o.errs[req.Stage]; ok {
		return nil, err
	}
	raw, ok := o.responses[req.Stage]
	if !ok {
		return nil, fmt.Errorf("no canned response for stage %s", req.Stage)
	}
	return raw, nil
}

func validQuestionnaire() models.QuestionnaireResponse {
	return models.QuestionnaireResponse{
		OrganizationType:   "private_company",
		Industry:           "healthcare",
		Regions:            []string{"eu"},
		OrganizationSize:   "medium",
		MainPurpose:        "Diagnostic triage support for radiology departments",
		DataTypes:          []string{"health_data", "personal_data"},
		Stage:              models.LifecycleProduction,
		Developer:          "in_house",
		Criticality:        models.RiskMedium,
		Policies:           "partial",
		DesignatedTeam:     "no",
		ApprovalProcess:    "informal",
		RecordKeeping:      "minimal",
		AffectsRights:      "yes",
		HumanOversight:     "review_all",
		Testing:            "pre_deployment",
		ComplaintMechanism: "no",
		Goal:               "certification_readiness",
		Preference:         "thorough",
		Standards:          []string{"iso_42001"},
	}
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func cannedResponses(t *testing.T) map[models.StageName]json.RawMessage {
	t.Helper()
	return map[models.StageName]json.RawMessage{
		models.StageEUClassification: mustJSON(t, models.ClassificationResult{
			EUClassification: models.ClassificationHighRisk,
			Rationale:        "Medical diagnostic support falls under Annex III",
			Confidence:       0.92,
		}),
		models.StageEURequirements: mustJSON(t, models.EURequirementsResult{
			ApplicableArticles: []int{9, 13},
			Requirements: []models.EURequirement{
				{Article: 9, Title: "Risk management system", Description: "Establish and maintain a risk management system", AppliesTo: "provider", Mandatory: true},
				{Article: 13, Title: "Transparency", Description: "Design for transparency towards deployers", AppliesTo: "provider", Mandatory: true},
			},
		}),
		models.StageNISTRequirements: mustJSON(t, models.NISTRequirementsResult{
			ApplicableSubcategories: []string{"GOVERN.1.3", "MEASURE.2.8"},
			PriorityFunctions:       []string{models.FunctionGovern, models.FunctionMeasure},
			SubcategoryDetails: []models.NISTSubcategoryDetail{
				{ID: "GOVERN.1.3", Function: models.FunctionGovern, Description: "Risk management processes", Rationale: "High-risk medical context"},
			},
		}),
		models.StageGapAnalysis: mustJSON(t, models.GapAnalysisResult{
			Gaps: []models.Gap{
				{
					RequirementID:    "Article_9",
					Framework:        models.FrameworkEUAIAct,
					RequirementTitle: "Risk management system",
					Status:           models.GapStatusMissing,
					Severity:         models.SeverityCritical,
					CurrentState:     "No formal risk management process exists",
					Recommendations: models.Recommendation{
						ImplementationSteps: []string{"Stand up a documented risk management process"},
						EffortEstimate:      "3-6 months",
					},
				},
				{
					RequirementID:    "GOVERN.1.3",
					Framework:        models.FrameworkNISTAIRMF,
					RequirementTitle: "Risk management processes",
					Status:           models.GapStatusPartial,
					Severity:         models.SeverityHigh,
					CurrentState:     "Ad-hoc reviews only",
					Recommendations: models.Recommendation{
						ImplementationSteps: []string{"Formalize periodic risk reviews"},
						EffortEstimate:      "1-2 months",
					},
				},
			},
		}),
	}
}

func newTestAssessor(t *testing.T, repo repositories.AssessmentRepository, oracle OracleClient) AssessorService {
	t.Helper()
	store, err := corpus.NewStore()
	if err != nil {
		t.Fatalf("corpus.NewStore() error = %v", err)
	}
	return NewAssessorService(repo, oracle, store, NewNoopRetrieval(), NewScoringEngine(DefaultWeights()))
}

func seedPending(t *testing.T, repo *memoryRepo) uuid.UUID {
	t.Helper()
	assessment := &models.Assessment{
		ID:            uuid.New(),
		Status:        models.StatusPending,
		Questionnaire: validQuestionnaire(),
	}
	if err := repo.Create(assessment); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return assessment.ID
}

func TestRunAssessmentCompletes(t *testing.T) {
	repo := newMemoryRepo()
	oracle := &stageOracle{responses: cannedResponses(t)}
	assessor := newTestAssessor(t, repo, oracle)
	id := seedPending(t, repo)

	if err := assessor.RunAssessment(context.Background(), id); err != nil {
		t.Fatalf("RunAssessment() error = %v", err)
	}

	assessment, err := repo.FindByID(id)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}

	if assessment.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", assessment.Status)
	}
	if len(assessment.StageResults) != 4 {
		t.Fatalf("stage results = %d, want 4", len(assessment.StageResults))
	}
	for i, stage := range models.PipelineStages {
		if assessment.StageResults[i].Stage != stage {
			t.Errorf("stage_results[%d] = %s, want %s", i, assessment.StageResults[i].Stage, stage)
		}
	}

	// One critical missing (-15) + one high partial (-8).
	if assessment.ComplianceScore == nil || *assessment.ComplianceScore != 77 {
		t.Errorf("compliance score = %v, want 77", assessment.ComplianceScore)
	}
	if assessment.ScoreBreakdown == nil || assessment.ScoreBreakdown.CriticalGaps != 1 || assessment.ScoreBreakdown.HighGaps != 1 {
		t.Errorf("score breakdown = %+v, want 1 critical and 1 high", assessment.ScoreBreakdown)
	}
	if assessment.CrossFrameworkMapping == nil {
		t.Fatal("cross-framework mapping not set")
	}
	if got := assessment.CrossFrameworkMapping.EUToNIST["Article_9"]; len(got) != 1 || got[0] != "GOVERN.1.3" {
		t.Errorf("EUToNIST[Article_9] = %v, want [GOVERN.1.3]", got)
	}
	if assessment.ProcessingTimeSeconds == nil {
		t.Error("processing time not set")
	}
}

func TestRunAssessmentStageFailureStopsPipeline(t *testing.T) {
	repo := newMemoryRepo()
	oracle := &stageOracle{
		responses: cannedResponses(t),
		errs: map[models.StageName]error{
			models.StageNISTRequirements: fmt.Errorf("oracle call for stage nist_requirements failed after 3 attempts: %w", models.ErrOracleUnavailable),
		},
	}
	assessor := newTestAssessor(t, repo, oracle)
	id := seedPending(t, repo)

	if err := assessor.RunAssessment(context.Background(), id); err == nil {
		t.Fatal("RunAssessment() error = nil, want stage failure")
	}

	assessment, _ := repo.FindByID(id)
	if assessment.Status != models.StatusFailed {
		t.Errorf("status = %s, want failed", assessment.Status)
	}

	// The two completed stages stay durably recorded.
	if len(assessment.StageResults) != 2 {
		t.Fatalf("stage results = %d, want 2", len(assessment.StageResults))
	}
	if assessment.StageResults[0].Stage != models.StageEUClassification ||
		assessment.StageResults[1].Stage != models.StageEURequirements {
		t.Errorf("stage results = %v, want classification then eu_requirements",
			[]models.StageName{assessment.StageResults[0].Stage, assessment.StageResults[1].Stage})
	}

	if assessment.ErrorMessage == nil || !strings.Contains(*assessment.ErrorMessage, "stage nist_requirements") {
		t.Errorf("error message = %v, want stage-tagged message", assessment.ErrorMessage)
	}

	// Stage 4 must never have been invoked.
	for _, stage := range oracle.invoked {
		if stage == models.StageGapAnalysis {
			t.Error("gap analysis stage was invoked after an earlier stage failed")
		}
	}
}

func TestRunAssessmentSkipsAlreadyClaimed(t *testing.T) {
	repo := newMemoryRepo()
	oracle := &stageOracle{responses: cannedResponses(t)}
	assessor := newTestAssessor(t, repo, oracle)
	id := seedPending(t, repo)

	// First claim wins.
	if claimed, _ := repo.Claim(id); !claimed {
		t.Fatal("setup claim failed")
	}

	if err := assessor.RunAssessment(context.Background(), id); err != nil {
		t.Fatalf("RunAssessment() error = %v, want nil skip", err)
	}
	if len(oracle.invoked) != 0 {
		t.Errorf("oracle invoked %v on an already-claimed assessment", oracle.invoked)
	}
}

func TestRunAssessmentRejectsInventedGapReferences(t *testing.T) {
	responses := cannedResponses(t)
	responses[models.StageGapAnalysis] = json.RawMessage(`{
		"gaps": [{
			"requirement_id": "Article_99",
			"framework": "EU_AI_ACT",
			"requirement_title": "Invented requirement",
			"status": "missing",
			"severity": "low",
			"current_state": "n/a",
			"recommendations": {"implementation_steps": [], "examples": [], "effort_estimate": "", "resources_needed": []}
		}]
	}`)

	repo := newMemoryRepo()
	oracle := &stageOracle{responses: responses}
	assessor := newTestAssessor(t, repo, oracle)
	id := seedPending(t, repo)

	if err := assessor.RunAssessment(context.Background(), id); err == nil {
		t.Fatal("RunAssessment() error = nil, want schema violation for invented requirement id")
	}

	assessment, _ := repo.FindByID(id)
	if assessment.Status != models.StatusFailed {
		t.Errorf("status = %s, want failed", assessment.Status)
	}
	if assessment.ErrorMessage == nil || !strings.Contains(*assessment.ErrorMessage, "Article_99") {
		t.Errorf("error message = %v, want mention of the invented requirement id", assessment.ErrorMessage)
	}
	if len(assessment.StageResults) != 3 {
		t.Errorf("stage results = %d, want 3 (gap analysis output rejected)", len(assessment.StageResults))
	}
}

func TestRunAssessmentMalformedStageOutput(t *testing.T) {
	responses := cannedResponses(t)
	responses[models.StageEUClassification] = json.RawMessage(`{"eu_classification": "SOMEWHAT_RISKY", "rationale": "x", "confidence": 0.5}`)

	repo := newMemoryRepo()
	oracle := &stageOracle{responses: responses}
	assessor := newTestAssessor(t, repo, oracle)
	id := seedPending(t, repo)

	if err := assessor.RunAssessment(context.Background(), id); err == nil {
		t.Fatal("RunAssessment() error = nil, want validation failure")
	}

	assessment, _ := repo.FindByID(id)
	if assessment.Status != models.StatusFailed {
		t.Errorf("status = %s, want failed", assessment.Status)
	}
	if len(assessment.StageResults) != 0 {
		t.Errorf("stage results = %d, want 0", len(assessment.StageResults))
	}
	if assessment.ErrorMessage == nil || !strings.Contains(*assessment.ErrorMessage, "stage eu_classification") {
		t.Errorf("error message = %v, want stage-tagged message", assessment.ErrorMessage)
	}
}

func TestHighRiskClassificationWidensNISTSelection(t *testing.T) {
	// The questionnaire says medium criticality, but the stage-1 HIGH_RISK
	// classification must force the full framework into the stage-3 prompt.
	repo := newMemoryRepo()

	var nistPrompt string
	oracle := &promptCapturingOracle{
		inner: &stageOracle{responses: cannedResponses(t)},
		onInvoke: func(req OracleRequest) {
			if req.Stage == models.StageNISTRequirements {
				nistPrompt = req.Prompt
			}
		},
	}
	assessor := newTestAssessor(t, repo, oracle)
	id := seedPending(t, repo)

	if err := assessor.RunAssessment(context.Background(), id); err != nil {
		t.Fatalf("RunAssessment() error = %v", err)
	}

	store, err := corpus.NewStore()
	if err != nil {
		t.Fatalf("corpus.NewStore() error = %v", err)
	}
	mapChunk, _ := store.NISTFunction(models.FunctionMap)
	if !strings.Contains(nistPrompt, mapChunk.Text) {
		t.Error("stage-3 prompt for a HIGH_RISK system is missing the MAP corpus")
	}
}

type promptCapturingOracle struct {
	inner    OracleClient
	onInvoke func(OracleRequest)
}

func (o *promptCapturingOracle) Invoke(ctx context.Context, req OracleRequest) (json.RawMessage, error) {
	o.onInvoke(req)
	return o.inner.Invoke(ctx, req)
}
