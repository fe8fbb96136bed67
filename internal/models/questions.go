package models

// QuestionOption is one selectable answer for a select-type question.
type QuestionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question describes one questionnaire field for the form UI.
type Question struct {
	Key      string           `json:"key"`
	Label    string           `json:"label"`
	Type     string           `json:"type"`
	Section  string           `json:"section"`
	Options  []QuestionOption `json:"options,omitempty"`
	Required bool             `json:"required"`
}

// Questions returns the questionnaire definition served to the form wizard.
func Questions() []Question {
	return []Question{
		{
			Key: "organization_type", Label: "What type of organization are you?",
			Type: "select", Section: "Organization", Required: true,
			Options: []QuestionOption{
				{Value: "startup", Label: "Startup"},
				{Value: "sme", Label: "Small / medium enterprise"},
				{Value: "enterprise", Label: "Enterprise"},
				{Value: "public_sector", Label: "Public sector"},
				{Value: "nonprofit", Label: "Nonprofit"},
			},
		},
		{
			Key: "industry", Label: "What is your primary industry?",
			Type: "select", Section: "Organization", Required: true,
			Options: []QuestionOption{
				{Value: "healthcare", Label: "Healthcare"},
				{Value: "finance", Label: "Finance & Banking"},
				{Value: "retail", Label: "Retail & E-commerce"},
				{Value: "education", Label: "Education"},
				{Value: "government", Label: "Government & Public Sector"},
				{Value: "technology", Label: "Technology"},
				{Value: "other", Label: "Other"},
			},
		},
		{
			Key: "regions", Label: "In which regions does your system operate?",
			Type: "multiselect", Section: "Organization", Required: true,
			Options: []QuestionOption{
				{Value: "EU", Label: "European Union"},
				{Value: "US", Label: "United States"},
				{Value: "UK", Label: "United Kingdom"},
				{Value: "APAC", Label: "Asia Pacific"},
				{Value: "other", Label: "Other"},
			},
		},
		{
			Key: "organization_size", Label: "How large is your organization?",
			Type: "select", Section: "Organization", Required: true,
			Options: []QuestionOption{
				{Value: "1-50", Label: "1-50 employees"},
				{Value: "50-200", Label: "50-200 employees"},
				{Value: "200-1000", Label: "200-1000 employees"},
				{Value: "1000+", Label: "1000+ employees"},
			},
		},
		{
			Key: "main_purpose", Label: "What is the main purpose of your AI system?",
			Type: "text", Section: "System", Required: true,
		},
		{
			Key: "data_types", Label: "What kinds of data does the system process?",
			Type: "multiselect", Section: "System", Required: true,
			Options: []QuestionOption{
				{Value: "personal", Label: "Personal data"},
				{Value: "medical", Label: "Medical / health data"},
				{Value: "financial", Label: "Financial data"},
				{Value: "biometric", Label: "Biometric data"},
				{Value: "public", Label: "Public / non-personal data"},
			},
		},
		{
			Key: "stage", Label: "What lifecycle stage is the system in?",
			Type: "select", Section: "System", Required: true,
			Options: []QuestionOption{
				{Value: LifecycleDesign, Label: "Design"},
				{Value: LifecycleDevelopment, Label: "Development"},
				{Value: LifecycleTesting, Label: "Testing"},
				{Value: LifecycleProduction, Label: "Production"},
			},
		},
		{
			Key: "developer", Label: "Who develops the system?",
			Type: "select", Section: "System", Required: true,
			Options: []QuestionOption{
				{Value: "in-house", Label: "In-house"},
				{Value: "vendor", Label: "Third-party vendor"},
				{Value: "hybrid", Label: "Hybrid"},
			},
		},
		{
			Key: "criticality", Label: "How critical are the system's decisions?",
			Type: "select", Section: "System", Required: true,
			Options: []QuestionOption{
				{Value: RiskLow, Label: "Low"},
				{Value: RiskMedium, Label: "Medium"},
				{Value: RiskHigh, Label: "High"},
			},
		},
		{
			Key: "policies", Label: "What AI policies do you have in place?",
			Type: "text", Section: "Governance", Required: true,
		},
		{
			Key: "designated_team", Label: "Is there a team responsible for AI governance?",
			Type: "text", Section: "Governance", Required: true,
		},
		{
			Key: "approval_process", Label: "How are AI systems approved before use?",
			Type: "text", Section: "Governance", Required: true,
		},
		{
			Key: "record_keeping", Label: "How do you keep records of AI system behavior?",
			Type: "text", Section: "Governance", Required: true,
		},
		{
			Key: "affects_rights", Label: "Can the system affect individual rights or access to services?",
			Type: "text", Section: "Risk & Oversight", Required: true,
		},
		{
			Key: "human_oversight", Label: "What human oversight is in place?",
			Type: "select", Section: "Risk & Oversight", Required: true,
			Options: []QuestionOption{
				{Value: "human-in-the-loop", Label: "Human-in-the-loop"},
				{Value: "human-on-the-loop", Label: "Human-on-the-loop"},
				{Value: "none", Label: "No human oversight"},
			},
		},
		{
			Key: "testing", Label: "How is the system tested for accuracy and robustness?",
			Type: "text", Section: "Risk & Oversight", Required: true,
		},
		{
			Key: "complaint_mechanism", Label: "Can affected people contest or complain about outcomes?",
			Type: "text", Section: "Risk & Oversight", Required: true,
		},
		{
			Key: "goal", Label: "What is your primary goal for this assessment?",
			Type: "select", Section: "Preferences", Required: true,
			Options: []QuestionOption{
				{Value: "compliance_readiness", Label: "Compliance readiness"},
				{Value: "gap_analysis", Label: "Gap analysis"},
				{Value: "certification_prep", Label: "Certification preparation"},
			},
		},
		{
			Key: "preference", Label: "How detailed should the recommendations be?",
			Type: "select", Section: "Preferences", Required: true,
			Options: []QuestionOption{
				{Value: "summary", Label: "High-level summary"},
				{Value: "detailed", Label: "Detailed framework"},
			},
		},
		{
			Key: "standards", Label: "Which standards are you targeting?",
			Type: "multiselect", Section: "Preferences", Required: false,
			Options: []QuestionOption{
				{Value: "EU AI Act", Label: "EU AI Act"},
				{Value: "NIST AI RMF", Label: "NIST AI RMF"},
			},
		},
	}
}
