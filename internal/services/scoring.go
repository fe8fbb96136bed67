package services

import (
	"complyforge/internal/config"
	"complyforge/internal/models"
)

// ScoringEngine turns a gap list into a 0-100 compliance score and a
// severity breakdown. Pure and deterministic: rerunning on the same gap list
// always yields the same result.
type ScoringEngine struct {
	weights config.ScoringConfig
}

func NewScoringEngine(weights config.ScoringConfig) *ScoringEngine {
	return &ScoringEngine{weights: weights}
}

// DefaultWeights returns the standard per-severity deductions.
func DefaultWeights() config.ScoringConfig {
	return config.ScoringConfig{
		CriticalWeight: 15,
		HighWeight:     8,
		MediumWeight:   4,
		LowWeight:      1,
	}
}

// Score starts from 100, deducts the severity weight of every gap that is
// not already implemented, and floors at 0. The breakdown tallies
// non-implemented gaps by severity plus a count of implemented ones, so its
// five counts always sum to len(gaps).
func (s *ScoringEngine) Score(gaps []models.Gap) (int, models.ScoreBreakdown) {
	var breakdown models.ScoreBreakdown
	deduction := 0

	for _, gap := range gaps {
		if gap.Status == models.GapStatusImplemented {
			breakdown.Implemented++
			continue
		}

		switch gap.Severity {
		case models.SeverityCritical:
			breakdown.CriticalGaps++
			deduction += s.weights.CriticalWeight
		case models.SeverityHigh:
			breakdown.HighGaps++
			deduction += s.weights.HighWeight
		case models.SeverityMedium:
			breakdown.MediumGaps++
			deduction += s.weights.MediumWeight
		case models.SeverityLow:
			breakdown.LowGaps++
			deduction += s.weights.LowWeight
		}
	}

	score := 100 - deduction
	if score < 0 {
		score = 0
	}

	return score, breakdown
}
