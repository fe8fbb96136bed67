package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"complyforge/internal/models"
)

type AssessmentRepository interface {
	Create(assessment *models.Assessment) error
	FindByID(id uuid.UUID) (*models.Assessment, error)

	// Claim atomically moves a pending assessment to processing. Returns
	// false when the record is not pending anymore, which means another
	// worker owns it.
	Claim(id uuid.UUID) (bool, error)

	// AppendStageResult durably appends one stage output. Called by the
	// single worker that owns the record, immediately after the stage
	// succeeds and before the next stage begins.
	AppendStageResult(id uuid.UUID, results models.StageResults) error

	Complete(id uuid.UUID, outcome *CompletionData) error
	Fail(id uuid.UUID, errorMsg string) error

	FindPending(limit int) ([]models.Assessment, error)
	List(limit, offset int) ([]models.Assessment, error)
}

// CompletionData carries the terminal fields written in a single update when
// an assessment completes.
type CompletionData struct {
	ComplianceScore       int
	ScoreBreakdown        models.ScoreBreakdown
	CrossFrameworkMapping models.CrossFrameworkMapping
	ProcessingTimeSeconds int
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(assessment *models.Assessment) error {
	if err := r.db.Create(assessment).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

func (r *assessmentRepository) FindByID(id uuid.UUID) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.Where("id = ?", id).First(&assessment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find assessment: %w", err)
	}
	return &assessment, nil
}

func (r *assessmentRepository) Claim(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.Assessment{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim assessment: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *assessmentRepository) AppendStageResult(id uuid.UUID, results models.StageResults) error {
	result := r.db.Model(&models.Assessment{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"stage_results": results,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to append stage result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *assessmentRepository) Complete(id uuid.UUID, outcome *CompletionData) error {
	result := r.db.Model(&models.Assessment{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"status":                  models.StatusCompleted,
			"compliance_score":        outcome.ComplianceScore,
			"score_breakdown":         outcome.ScoreBreakdown,
			"cross_framework_mapping": outcome.CrossFrameworkMapping,
			"processing_time_seconds": outcome.ProcessingTimeSeconds,
			"updated_at":              time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to complete assessment: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *assessmentRepository) Fail(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Assessment{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark assessment failed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *assessmentRepository) FindPending(limit int) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := r.db.
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&assessments).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending assessments: %w", err)
	}

	return assessments, nil
}

func (r *assessmentRepository) List(limit, offset int) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&assessments).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	return assessments, nil
}
