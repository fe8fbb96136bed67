package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"complyforge/internal/models"
)

func gap(status, severity string) models.Gap {
	return models.Gap{
		RequirementID:    "Article_9",
		Framework:        models.FrameworkEUAIAct,
		RequirementTitle: "Risk management system",
		Status:           status,
		Severity:         severity,
	}
}

func TestScoreNoGaps(t *testing.T) {
	engine := NewScoringEngine(DefaultWeights())

	score, breakdown := engine.Score(nil)
	if score != 100 {
		t.Errorf("Score() = %d, want 100", score)
	}
	if diff := cmp.Diff(models.ScoreBreakdown{}, breakdown); diff != "" {
		t.Errorf("breakdown mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreDeductsPerSeverity(t *testing.T) {
	engine := NewScoringEngine(DefaultWeights())

	gaps := []models.Gap{
		gap(models.GapStatusMissing, models.SeverityCritical), // -15
		gap(models.GapStatusPartial, models.SeverityHigh),     // -8
		gap(models.GapStatusMissing, models.SeverityHigh),     // -8
		gap(models.GapStatusPartial, models.SeverityMedium),   // -4
		gap(models.GapStatusMissing, models.SeverityLow),      // -1
		gap(models.GapStatusImplemented, models.SeverityCritical),
	}

	score, breakdown := engine.Score(gaps)
	if score != 64 {
		t.Errorf("Score() = %d, want 64", score)
	}

	want := models.ScoreBreakdown{
		CriticalGaps: 1,
		HighGaps:     2,
		MediumGaps:   1,
		LowGaps:      1,
		Implemented:  1,
	}
	if diff := cmp.Diff(want, breakdown); diff != "" {
		t.Errorf("breakdown mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreImplementedGapsDoNotDeduct(t *testing.T) {
	engine := NewScoringEngine(DefaultWeights())

	gaps := []models.Gap{
		gap(models.GapStatusImplemented, models.SeverityCritical),
		gap(models.GapStatusImplemented, models.SeverityHigh),
		gap(models.GapStatusImplemented, models.SeverityLow),
	}

	score, breakdown := engine.Score(gaps)
	if score != 100 {
		t.Errorf("Score() = %d, want 100", score)
	}
	if breakdown.Implemented != 3 {
		t.Errorf("breakdown.Implemented = %d, want 3", breakdown.Implemented)
	}
}

func TestScoreFloorsAtZero(t *testing.T) {
	engine := NewScoringEngine(DefaultWeights())

	var gaps []models.Gap
	for i := 0; i < 8; i++ { // 8 * 15 = 120 > 100
		gaps = append(gaps, gap(models.GapStatusMissing, models.SeverityCritical))
	}

	score, breakdown := engine.Score(gaps)
	if score != 0 {
		t.Errorf("Score() = %d, want 0", score)
	}
	if breakdown.CriticalGaps != 8 {
		t.Errorf("breakdown.CriticalGaps = %d, want 8", breakdown.CriticalGaps)
	}
}

func TestScoreBreakdownSumsToGapCount(t *testing.T) {
	engine := NewScoringEngine(DefaultWeights())

	gaps := []models.Gap{
		gap(models.GapStatusMissing, models.SeverityCritical),
		gap(models.GapStatusPartial, models.SeverityMedium),
		gap(models.GapStatusImplemented, models.SeverityHigh),
		gap(models.GapStatusMissing, models.SeverityLow),
		gap(models.GapStatusPartial, models.SeverityLow),
	}

	_, breakdown := engine.Score(gaps)
	sum := breakdown.CriticalGaps + breakdown.HighGaps + breakdown.MediumGaps +
		breakdown.LowGaps + breakdown.Implemented
	if sum != len(gaps) {
		t.Errorf("breakdown counts sum to %d, want %d", sum, len(gaps))
	}
}

func TestScoreDeterministic(t *testing.T) {
	engine := NewScoringEngine(DefaultWeights())

	gaps := []models.Gap{
		gap(models.GapStatusMissing, models.SeverityCritical),
		gap(models.GapStatusPartial, models.SeverityHigh),
	}

	firstScore, firstBreakdown := engine.Score(gaps)
	for i := 0; i < 10; i++ {
		score, breakdown := engine.Score(gaps)
		if score != firstScore {
			t.Fatalf("run %d: Score() = %d, want %d", i, score, firstScore)
		}
		if diff := cmp.Diff(firstBreakdown, breakdown); diff != "" {
			t.Fatalf("run %d breakdown diverged (-first +got):\n%s", i, diff)
		}
	}
}
