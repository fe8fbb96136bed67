package services

import (
	"fmt"
	"strings"

	"complyforge/internal/models"
)

// ReportService renders a completed assessment into a markdown compliance
// report. Export only: it consumes the terminal record and never touches the
// pipeline.
type ReportService interface {
	RenderMarkdown(assessment *models.Assessment) (string, error)
}

type reportService struct{}

func NewReportService() ReportService {
	return &reportService{}
}

// RenderMarkdown implements ReportService.
func (r *reportService) RenderMarkdown(assessment *models.Assessment) (string, error) {
	if assessment.Status != models.StatusCompleted {
		return "", models.ErrNotReady
	}

	classification := assessment.ClassificationResult()
	euRequirements := assessment.EURequirementsResult()
	nistRequirements := assessment.NISTRequirementsResult()
	gapAnalysis := assessment.GapAnalysisResult()
	if classification == nil || euRequirements == nil || nistRequirements == nil || gapAnalysis == nil {
		return "", fmt.Errorf("completed assessment %s is missing stage results", assessment.ID)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# AI Compliance Assessment Report\n\n")
	fmt.Fprintf(&b, "**Organization:** %s\n", assessment.OrganizationName)
	fmt.Fprintf(&b, "**Generated:** %s\n", assessment.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	if assessment.ProcessingTimeSeconds != nil {
		fmt.Fprintf(&b, "**Processing Time:** %d seconds\n", *assessment.ProcessingTimeSeconds)
	}
	b.WriteString("\n---\n\n## Executive Summary\n\n")

	fmt.Fprintf(&b, "### EU AI Act Classification\n**Risk Level:** %s\n\n", classification.EUClassification)
	fmt.Fprintf(&b, "**Confidence:** %.1f%%\n\n", classification.Confidence*100)
	fmt.Fprintf(&b, "**Rationale:** %s\n\n", classification.Rationale)

	if assessment.ComplianceScore != nil {
		fmt.Fprintf(&b, "### Compliance Score\n**Overall Score:** %d/100\n\n", *assessment.ComplianceScore)
	}
	if breakdown := assessment.ScoreBreakdown; breakdown != nil {
		b.WriteString("**Gap Breakdown:**\n")
		fmt.Fprintf(&b, "- Critical Gaps: %d\n", breakdown.CriticalGaps)
		fmt.Fprintf(&b, "- High Gaps: %d\n", breakdown.HighGaps)
		fmt.Fprintf(&b, "- Medium Gaps: %d\n", breakdown.MediumGaps)
		fmt.Fprintf(&b, "- Low Gaps: %d\n", breakdown.LowGaps)
		fmt.Fprintf(&b, "- Implemented: %d\n", breakdown.Implemented)
	}

	b.WriteString("\n---\n\n## EU AI Act Analysis\n\n### Applicable Articles\n")
	articles := make([]string, 0, len(euRequirements.ApplicableArticles))
	for _, article := range euRequirements.ApplicableArticles {
		articles = append(articles, fmt.Sprintf("Article %d", article))
	}
	b.WriteString(strings.Join(articles, ", "))
	b.WriteString("\n\n### Requirements\n")

	for _, req := range euRequirements.Requirements {
		mandatory := "No"
		if req.Mandatory {
			mandatory = "Yes"
		}
		fmt.Fprintf(&b, "\n**Article %d: %s**\n- %s\n- Applies to: %s\n- Mandatory: %s\n",
			req.Article, req.Title, req.Description, req.AppliesTo, mandatory)
	}

	b.WriteString("\n---\n\n## NIST AI RMF Analysis\n\n### Priority Functions\n")
	b.WriteString(strings.Join(nistRequirements.PriorityFunctions, ", "))
	fmt.Fprintf(&b, "\n\n### Applicable Subcategories (%d)\n%s\n",
		len(nistRequirements.ApplicableSubcategories),
		strings.Join(nistRequirements.ApplicableSubcategories, ", "))

	b.WriteString("\n---\n\n## Compliance Gaps and Recommendations\n")

	for _, gap := range gapAnalysis.Gaps {
		fmt.Fprintf(&b, "\n### %s (%s)\n\n", gap.RequirementTitle, gap.Framework)
		fmt.Fprintf(&b, "**Status:** %s | **Severity:** %s\n\n",
			strings.ToUpper(gap.Status), strings.ToUpper(gap.Severity))
		fmt.Fprintf(&b, "**Current State:** %s\n\n", gap.CurrentState)

		b.WriteString("**Implementation Steps:**\n")
		for i, step := range gap.Recommendations.ImplementationSteps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}

		if len(gap.Recommendations.Examples) > 0 {
			b.WriteString("\n**Examples:**\n")
			for _, example := range gap.Recommendations.Examples {
				fmt.Fprintf(&b, "- %s\n", example)
			}
		}

		fmt.Fprintf(&b, "\n**Effort Estimate:** %s\n", gap.Recommendations.EffortEstimate)

		if len(gap.Recommendations.ResourcesNeeded) > 0 {
			b.WriteString("\n**Resources Needed:**\n")
			for _, resource := range gap.Recommendations.ResourcesNeeded {
				fmt.Fprintf(&b, "- %s\n", resource)
			}
		}

		if len(gap.Recommendations.CommonMistakes) > 0 {
			b.WriteString("\n**Common Mistakes to Avoid:**\n")
			for _, mistake := range gap.Recommendations.CommonMistakes {
				fmt.Fprintf(&b, "- %s\n", mistake)
			}
		}

		b.WriteString("\n---\n")
	}

	if mapping := assessment.CrossFrameworkMapping; mapping != nil && len(mapping.EUToNIST) > 0 {
		b.WriteString("\n## Cross-Framework Mapping\n\n| EU Article | Related NIST Subcategories |\n|---|---|\n")
		for _, article := range euRequirements.ApplicableArticles {
			key := ArticleKey(article)
			if related, ok := mapping.EUToNIST[key]; ok {
				fmt.Fprintf(&b, "| %s | %s |\n", key, strings.Join(related, ", "))
			}
		}
	}

	return b.String(), nil
}
