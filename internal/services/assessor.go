package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"complyforge/internal/corpus"
	"complyforge/internal/models"
	"complyforge/internal/repositories"
)

// Stage-specific generation budgets. Stages whose output feeds downstream
// logic run at temperature 0 so the classification label and requirement ids
// are stable across retries; the terminal narrative stage may vary.
const (
	classificationMaxTokens   = 2000
	euRequirementsMaxTokens   = 4000
	nistRequirementsMaxTokens = 6000
	gapAnalysisMaxTokens      = 16000

	deterministicTemperature = 0.0
	gapAnalysisTemperature   = 0.5

	retrievalLimit = 3
)

// AssessorService drives one claimed assessment through the four-stage
// pipeline to a terminal state.
type AssessorService interface {
	RunAssessment(ctx context.Context, id uuid.UUID) error
}

type assessorService struct {
	repo      repositories.AssessmentRepository
	oracle    OracleClient
	store     *corpus.Store
	filter    *corpus.Filter
	retrieval RetrievalService
	prompts   *PromptBuilder
	scoring   *ScoringEngine
	now       func() time.Time
}

func NewAssessorService(
	repo repositories.AssessmentRepository,
	oracle OracleClient,
	store *corpus.Store,
	retrieval RetrievalService,
	scoring *ScoringEngine,
) AssessorService {
	return &assessorService{
		repo:      repo,
		oracle:    oracle,
		store:     store,
		filter:    corpus.NewFilter(store),
		retrieval: retrieval,
		prompts:   NewPromptBuilder(),
		scoring:   scoring,
		now:       time.Now,
	}
}

// RunAssessment implements AssessorService. The claim is the concurrency
// gate: only the worker that wins the pending→processing transition executes
// the stages, strictly in order, appending each stage output before the next
// stage begins.
func (a *assessorService) RunAssessment(ctx context.Context, id uuid.UUID) error {
	claimed, err := a.repo.Claim(id)
	if err != nil {
		return fmt.Errorf("failed to claim assessment: %w", err)
	}
	if !claimed {
		log.Printf("⏭️  Assessment %s already claimed, skipping\n", id)
		return nil
	}

	start := a.now()
	log.Printf("🔄 Starting assessment %s\n", id)

	assessment, err := a.repo.FindByID(id)
	if err != nil {
		a.repo.Fail(id, fmt.Sprintf("failed to load assessment: %v", err))
		return fmt.Errorf("failed to load assessment: %w", err)
	}

	questionnaire := &assessment.Questionnaire
	results := assessment.StageResults

	// Stage 1: EU AI Act classification.
	log.Printf("🤖 [%s] Stage 1/4: EU classification\n", id)
	classification, err := a.runClassification(ctx, questionnaire)
	if err != nil {
		return a.failStage(id, models.StageEUClassification, err)
	}
	results = append(results, models.StageResult{
		Stage:          models.StageEUClassification,
		Classification: classification,
	})
	if err := a.repo.AppendStageResult(id, results); err != nil {
		return a.failStage(id, models.StageEUClassification, err)
	}

	// High-risk systems always get the full NIST framework, whether risk
	// comes from the questionnaire or from the stage-1 classification.
	riskLevel := questionnaire.Criticality
	if classification.EUClassification == models.ClassificationHighRisk {
		riskLevel = models.RiskHigh
	}

	// Stage 2: EU AI Act requirements.
	log.Printf("🤖 [%s] Stage 2/4: EU requirements\n", id)
	euRequirements, err := a.runEURequirements(ctx, questionnaire, classification)
	if err != nil {
		return a.failStage(id, models.StageEURequirements, err)
	}
	results = append(results, models.StageResult{
		Stage:          models.StageEURequirements,
		EURequirements: euRequirements,
	})
	if err := a.repo.AppendStageResult(id, results); err != nil {
		return a.failStage(id, models.StageEURequirements, err)
	}

	// Stage 3: NIST AI RMF requirements over the pre-filtered corpus.
	log.Printf("🤖 [%s] Stage 3/4: NIST requirements\n", id)
	nistRequirements, err := a.runNISTRequirements(ctx, questionnaire, classification, riskLevel)
	if err != nil {
		return a.failStage(id, models.StageNISTRequirements, err)
	}
	results = append(results, models.StageResult{
		Stage:            models.StageNISTRequirements,
		NISTRequirements: nistRequirements,
	})
	if err := a.repo.AppendStageResult(id, results); err != nil {
		return a.failStage(id, models.StageNISTRequirements, err)
	}

	// Stage 4: gap analysis against the surfaced requirements.
	log.Printf("🤖 [%s] Stage 4/4: gap analysis\n", id)
	gapAnalysis, err := a.runGapAnalysis(ctx, questionnaire, euRequirements, nistRequirements)
	if err != nil {
		return a.failStage(id, models.StageGapAnalysis, err)
	}
	results = append(results, models.StageResult{
		Stage:       models.StageGapAnalysis,
		GapAnalysis: gapAnalysis,
	})
	if err := a.repo.AppendStageResult(id, results); err != nil {
		return a.failStage(id, models.StageGapAnalysis, err)
	}

	// Post-processing: pure, non-failing given valid stage outputs.
	score, breakdown := a.scoring.Score(gapAnalysis.Gaps)
	mapping := BuildCrossMapping(euRequirements.ApplicableArticles, nistRequirements.ApplicableSubcategories)

	elapsed := int(a.now().Sub(start).Seconds())
	outcome := &repositories.CompletionData{
		ComplianceScore:       score,
		ScoreBreakdown:        breakdown,
		CrossFrameworkMapping: mapping,
		ProcessingTimeSeconds: elapsed,
	}
	if err := a.repo.Complete(id, outcome); err != nil {
		return fmt.Errorf("failed to save assessment outcome: %w", err)
	}

	log.Printf("✅ Assessment %s completed in %ds (score %d)\n", id, elapsed, score)
	return nil
}

func (a *assessorService) failStage(id uuid.UUID, stage models.StageName, err error) error {
	msg := fmt.Sprintf("stage %s: %v", stage, err)
	if failErr := a.repo.Fail(id, msg); failErr != nil {
		log.Printf("❌ Failed to record failure for %s: %v\n", id, failErr)
	}
	log.Printf("❌ Assessment %s failed: %s\n", id, msg)
	return fmt.Errorf("assessment %s failed at stage %s: %w", id, stage, err)
}

func (a *assessorService) runClassification(ctx context.Context, questionnaire *models.QuestionnaireResponse) (*models.ClassificationResult, error) {
	supplemental := a.retrieveOrEmpty(ctx, questionnaire.MainPurpose, []string{"eu_classification"})
	prompt := a.prompts.BuildClassificationPrompt(questionnaire, a.store.EUClassification().Text, supplemental)

	raw, err := a.oracle.Invoke(ctx, OracleRequest{
		Stage:           models.StageEUClassification,
		Prompt:          prompt,
		Schema:          classificationSchema(),
		MaxOutputTokens: classificationMaxTokens,
		Temperature:     deterministicTemperature,
	})
	if err != nil {
		return nil, err
	}

	var result models.ClassificationResult
	if err := decodeStageResult(raw, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *assessorService) runEURequirements(
	ctx context.Context,
	questionnaire *models.QuestionnaireResponse,
	classification *models.ClassificationResult,
) (*models.EURequirementsResult, error) {
	supplemental := a.retrieveOrEmpty(ctx, questionnaire.MainPurpose, []string{"eu_requirements"})
	prompt := a.prompts.BuildEURequirementsPrompt(
		questionnaire.SystemCharacteristics(),
		classification,
		a.store.EURequirements().Text,
		supplemental,
	)

	raw, err := a.oracle.Invoke(ctx, OracleRequest{
		Stage:           models.StageEURequirements,
		Prompt:          prompt,
		Schema:          euRequirementsSchema(),
		MaxOutputTokens: euRequirementsMaxTokens,
		Temperature:     deterministicTemperature,
	})
	if err != nil {
		return nil, err
	}

	var result models.EURequirementsResult
	if err := decodeStageResult(raw, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *assessorService) runNISTRequirements(
	ctx context.Context,
	questionnaire *models.QuestionnaireResponse,
	classification *models.ClassificationResult,
	riskLevel string,
) (*models.NISTRequirementsResult, error) {
	sections := make([]string, 0, 4)
	for _, fn := range a.filter.NISTFunctions(questionnaire.Stage, riskLevel) {
		sections = append(sections, "nist_"+strings.ToLower(fn))
	}

	supplemental := a.retrieveOrEmpty(ctx, questionnaire.MainPurpose, sections)
	prompt := a.prompts.BuildNISTRequirementsPrompt(
		questionnaire.SystemCharacteristics(),
		classification,
		questionnaire.Stage,
		riskLevel,
		a.filter.NISTText(questionnaire.Stage, riskLevel),
		supplemental,
	)

	raw, err := a.oracle.Invoke(ctx, OracleRequest{
		Stage:           models.StageNISTRequirements,
		Prompt:          prompt,
		Schema:          nistRequirementsSchema(),
		MaxOutputTokens: nistRequirementsMaxTokens,
		Temperature:     deterministicTemperature,
	})
	if err != nil {
		return nil, err
	}

	var result models.NISTRequirementsResult
	if err := decodeStageResult(raw, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *assessorService) runGapAnalysis(
	ctx context.Context,
	questionnaire *models.QuestionnaireResponse,
	euRequirements *models.EURequirementsResult,
	nistRequirements *models.NISTRequirementsResult,
) (*models.GapAnalysisResult, error) {
	prompt := a.prompts.BuildGapAnalysisPrompt(
		questionnaire.GovernanceState(),
		euRequirements,
		nistRequirements,
	)

	raw, err := a.oracle.Invoke(ctx, OracleRequest{
		Stage:           models.StageGapAnalysis,
		Prompt:          prompt,
		Schema:          gapAnalysisSchema(),
		MaxOutputTokens: gapAnalysisMaxTokens,
		Temperature:     gapAnalysisTemperature,
	})
	if err != nil {
		return nil, err
	}

	var result models.GapAnalysisResult
	if err := decodeStageResult(raw, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}

	if err := validateGapReferences(result.Gaps, euRequirements, nistRequirements); err != nil {
		return nil, err
	}

	return &result, nil
}

// validateGapReferences enforces that every gap points at a requirement the
// requirement stages actually surfaced for this assessment. An invented
// requirement id means the stage broke its contract.
func validateGapReferences(
	gaps []models.Gap,
	euRequirements *models.EURequirementsResult,
	nistRequirements *models.NISTRequirementsResult,
) error {
	surfaced := make(map[string]bool)
	for _, article := range euRequirements.ApplicableArticles {
		surfaced[ArticleKey(article)] = true
	}
	for _, req := range euRequirements.Requirements {
		surfaced[ArticleKey(req.Article)] = true
	}
	for _, subcat := range nistRequirements.ApplicableSubcategories {
		surfaced[subcat] = true
	}
	for _, detail := range nistRequirements.SubcategoryDetails {
		surfaced[detail.ID] = true
	}

	for _, gap := range gaps {
		if !surfaced[gap.RequirementID] {
			return fmt.Errorf("%w: gap references requirement %q not surfaced by this assessment",
				models.ErrSchemaViolation, gap.RequirementID)
		}
	}
	return nil
}

func (a *assessorService) retrieveOrEmpty(ctx context.Context, query string, sections []string) string {
	text, err := a.retrieval.RetrieveContext(ctx, query, sections, retrievalLimit)
	if err != nil {
		log.Printf("⚠️  Supplemental retrieval failed: %v\n", err)
		return ""
	}
	return text
}

func decodeStageResult(raw json.RawMessage, target interface{}) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", models.ErrSchemaViolation, err)
	}
	return nil
}
