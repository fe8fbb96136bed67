package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"complyforge/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildClassificationPrompt creates the prompt for the EU classification
// stage. This stage receives the full questionnaire.
func (pb *PromptBuilder) BuildClassificationPrompt(questionnaire *models.QuestionnaireResponse, classificationCorpus, supplementalContext string) string {
	return fmt.Sprintf(`You are an expert in EU AI Act compliance. Classify this AI system.

<EU_AI_ACT_CLASSIFICATION_RULES>
%s
</EU_AI_ACT_CLASSIFICATION_RULES>
%s
<QUESTIONNAIRE_RESPONSES>
%s
</QUESTIONNAIRE_RESPONSES>

Instructions:
1. Check if the system matches prohibited practices (Article 5)
2. Check if it is high-risk (Article 6 + Annex III)
3. Check if it requires transparency (Article 50)
4. Otherwise classify as minimal risk

Provide the classification with clear reasoning. Be specific about which Annex III categories apply if high-risk.`,
		classificationCorpus, supplementalBlock(supplementalContext), marshalIndent(questionnaire))
}

// BuildEURequirementsPrompt creates the prompt for the EU requirements
// stage. Only system characteristics are included.
func (pb *PromptBuilder) BuildEURequirementsPrompt(
	systemCharacteristics map[string]interface{},
	classification *models.ClassificationResult,
	requirementsCorpus, supplementalContext string,
) string {
	return fmt.Sprintf(`You are an expert in EU AI Act compliance. Identify applicable requirements.

<EU_AI_ACT_REQUIREMENTS>
%s
</EU_AI_ACT_REQUIREMENTS>
%s
<SYSTEM_CLASSIFICATION>
Classification: %s
Rationale: %s
Annex III Categories: %s
</SYSTEM_CLASSIFICATION>

<SYSTEM_CHARACTERISTICS>
%s
</SYSTEM_CHARACTERISTICS>

Instructions:
Based on the classification, identify:
1. All applicable articles
2. Specific requirements from each article
3. Whether obligations apply to provider, deployer, or both

Be comprehensive and precise. Only include articles that actually apply based on the classification.`,
		requirementsCorpus,
		supplementalBlock(supplementalContext),
		classification.EUClassification,
		classification.Rationale,
		strings.Join(classification.AnnexIIICategories, ", "),
		marshalIndent(systemCharacteristics))
}

// BuildNISTRequirementsPrompt creates the prompt for the NIST requirements
// stage, over the pre-filtered NIST corpus subset.
func (pb *PromptBuilder) BuildNISTRequirementsPrompt(
	systemCharacteristics map[string]interface{},
	classification *models.ClassificationResult,
	stage, criticality, nistCorpus, supplementalContext string,
) string {
	return fmt.Sprintf(`You are an expert in the NIST AI Risk Management Framework. Identify applicable requirements.

<NIST_AI_RMF>
%s
</NIST_AI_RMF>
%s
<CONTEXT>
EU AI Act Classification: %s
System Stage: %s
Risk Level: %s
</CONTEXT>

<SYSTEM_CHARACTERISTICS>
%s
</SYSTEM_CHARACTERISTICS>

Instructions:
Identify:
1. All applicable NIST subcategories (format: GOVERN.1.1, MAP.3.5, etc.)
2. Priority functions (GOVERN, MAP, MEASURE, MANAGE)
3. Specific requirements for each subcategory

Note: GOVERN always applies to all AI systems. MAP, MEASURE, MANAGE are context-dependent.`,
		nistCorpus,
		supplementalBlock(supplementalContext),
		classification.EUClassification,
		stage,
		criticality,
		marshalIndent(systemCharacteristics))
}

// BuildGapAnalysisPrompt creates the prompt for the gap analysis stage. It
// receives only governance-maturity answers plus the accumulated outputs of
// the requirement stages, never organization-identity fields.
func (pb *PromptBuilder) BuildGapAnalysisPrompt(
	governanceState map[string]interface{},
	euRequirements *models.EURequirementsResult,
	nistRequirements *models.NISTRequirementsResult,
) string {
	return fmt.Sprintf(`You are an expert compliance auditor. Analyze gaps between current state and requirements.

<APPLICABLE_EU_REQUIREMENTS>
%s
</APPLICABLE_EU_REQUIREMENTS>

<APPLICABLE_NIST_REQUIREMENTS>
%s
</APPLICABLE_NIST_REQUIREMENTS>

<CURRENT_STATE_GOVERNANCE>
%s
</CURRENT_STATE_GOVERNANCE>

Instructions:
For each requirement from EU and NIST:
1. Determine status: missing, partial, or implemented
2. Assign severity: critical, high, medium, low
3. Describe the current state briefly
4. Provide implementation recommendations:
   - Concrete steps (3-5 actionable items)
   - Real-world examples from similar organizations
   - Estimated effort (time and resources)
   - Resources needed (roles, tools)
   - Common mistakes to avoid

Use requirement ids of the form "Article_9" for EU requirements and the subcategory id (e.g. "GOVERN.1.1") for NIST requirements. Only reference requirements listed above; do not invent new ones.

Be comprehensive in recommendations - this is the most valuable output for users.`,
		marshalIndent(euRequirements),
		marshalIndent(nistRequirements),
		marshalIndent(governanceState))
}

func supplementalBlock(context string) string {
	if context == "" {
		return "\n"
	}
	return fmt.Sprintf("\n<SUPPLEMENTAL_CONTEXT>\n%s\n</SUPPLEMENTAL_CONTEXT>\n\n", context)
}

func marshalIndent(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}

// FormatRetrievedContext renders similarity-search hits into a prompt block.
func FormatRetrievedContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
