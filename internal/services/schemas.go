package services

import (
	"google.golang.org/genai"

	"complyforge/internal/models"
)

// Expected output schemas for the four pipeline stages. These are the
// schema-type contracts: the oracle is asked for JSON constrained to them,
// and decoded results are validated again before acceptance.

func classificationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"eu_classification": {
				Type: genai.TypeString,
				Enum: []string{
					models.ClassificationProhibited,
					models.ClassificationHighRisk,
					models.ClassificationLimitedRisk,
					models.ClassificationMinimalRisk,
				},
				Description: "The EU AI Act risk classification",
			},
			"rationale": {
				Type:        genai.TypeString,
				Description: "Detailed explanation of the classification",
			},
			"annex_iii_categories": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Matched Annex III categories if high-risk",
			},
			"confidence": {
				Type:        genai.TypeNumber,
				Description: "Confidence score between 0 and 1",
			},
			"ambiguities": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Unclear areas or ambiguities",
			},
		},
		Required: []string{"eu_classification", "rationale", "confidence"},
	}
}

func euRequirementsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"applicable_articles": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeInteger},
				Description: "Applicable article numbers",
			},
			"requirements": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"article":     {Type: genai.TypeInteger},
						"title":       {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
						"applies_to": {
							Type: genai.TypeString,
							Enum: []string{"provider", "deployer", "both"},
						},
						"mandatory": {Type: genai.TypeBoolean},
					},
					Required: []string{"article", "title", "description", "applies_to", "mandatory"},
				},
			},
		},
		Required: []string{"applicable_articles", "requirements"},
	}
}

func nistRequirementsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"applicable_subcategories": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Applicable subcategory IDs, e.g. GOVERN.1.1",
			},
			"priority_functions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeString,
					Enum: []string{
						models.FunctionGovern,
						models.FunctionMap,
						models.FunctionMeasure,
						models.FunctionManage,
					},
				},
				Description: "Priority functions for this system",
			},
			"subcategory_details": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":          {Type: genai.TypeString},
						"function":    {Type: genai.TypeString},
						"category":    {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
						"rationale":   {Type: genai.TypeString},
					},
					Required: []string{"id", "function", "description", "rationale"},
				},
			},
		},
		Required: []string{"applicable_subcategories", "priority_functions", "subcategory_details"},
	}
}

func gapAnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"gaps": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"requirement_id": {Type: genai.TypeString},
						"framework": {
							Type: genai.TypeString,
							Enum: []string{models.FrameworkEUAIAct, models.FrameworkNISTAIRMF},
						},
						"requirement_title": {Type: genai.TypeString},
						"status": {
							Type: genai.TypeString,
							Enum: []string{
								models.GapStatusMissing,
								models.GapStatusPartial,
								models.GapStatusImplemented,
							},
						},
						"severity": {
							Type: genai.TypeString,
							Enum: []string{
								models.SeverityCritical,
								models.SeverityHigh,
								models.SeverityMedium,
								models.SeverityLow,
							},
						},
						"current_state": {Type: genai.TypeString},
						"recommendations": {
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"implementation_steps": {
									Type:  genai.TypeArray,
									Items: &genai.Schema{Type: genai.TypeString},
								},
								"examples": {
									Type:  genai.TypeArray,
									Items: &genai.Schema{Type: genai.TypeString},
								},
								"effort_estimate": {Type: genai.TypeString},
								"resources_needed": {
									Type:  genai.TypeArray,
									Items: &genai.Schema{Type: genai.TypeString},
								},
								"common_mistakes": {
									Type:  genai.TypeArray,
									Items: &genai.Schema{Type: genai.TypeString},
								},
							},
							Required: []string{"implementation_steps", "examples", "effort_estimate", "resources_needed"},
						},
					},
					Required: []string{
						"requirement_id", "framework", "requirement_title",
						"status", "severity", "current_state", "recommendations",
					},
				},
			},
		},
		Required: []string{"gaps"},
	}
}
