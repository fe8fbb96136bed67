package corpus

import (
	"strings"

	"complyforge/internal/models"
)

// StageFunctions is the lookup table selecting which NIST functions are
// relevant per lifecycle stage. The values are a policy choice, kept as data
// rather than branching logic so they can be tuned without touching the
// filter.
var StageFunctions = map[string][]string{
	models.LifecycleDesign:      {models.FunctionGovern, models.FunctionMap, models.FunctionMeasure},
	models.LifecycleDevelopment: {models.FunctionGovern, models.FunctionMap, models.FunctionMeasure},
	models.LifecycleTesting:     {models.FunctionGovern, models.FunctionMeasure, models.FunctionManage},
	models.LifecycleProduction:  {models.FunctionGovern, models.FunctionMeasure, models.FunctionManage},
}

var allFunctions = []string{
	models.FunctionGovern,
	models.FunctionMap,
	models.FunctionMeasure,
	models.FunctionManage,
}

// Filter selects the minimal relevant subset of the reference corpora for a
// pipeline stage. Pure and deterministic: the same (stage, risk level) input
// always yields the same chunk set.
type Filter struct {
	store *Store
}

func NewFilter(store *Store) *Filter {
	return &Filter{store: store}
}

// NISTFunctions returns the NIST function names selected for the given
// lifecycle stage and risk level, in canonical GOVERN/MAP/MEASURE/MANAGE
// order. High-risk systems always get the full framework regardless of
// stage.
func (f *Filter) NISTFunctions(stage, riskLevel string) []string {
	if riskLevel == models.RiskHigh {
		return append([]string(nil), allFunctions...)
	}

	selected, ok := StageFunctions[stage]
	if !ok {
		// Unknown stage falls back to the full framework rather than
		// silently dropping material.
		return append([]string(nil), allFunctions...)
	}

	ordered := make([]string, 0, len(selected))
	for _, fn := range allFunctions {
		for _, s := range selected {
			if s == fn {
				ordered = append(ordered, fn)
				break
			}
		}
	}
	return ordered
}

// SelectNIST returns the corpus chunks for the NIST requirements stage.
func (f *Filter) SelectNIST(stage, riskLevel string) []Chunk {
	fns := f.NISTFunctions(stage, riskLevel)

	chunks := make([]Chunk, 0, len(fns))
	for _, fn := range fns {
		if chunk, ok := f.store.NISTFunction(fn); ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// NISTText joins the selected NIST chunks into prompt-ready text.
func (f *Filter) NISTText(stage, riskLevel string) string {
	chunks := f.SelectNIST(stage, riskLevel)

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Text)
	}
	return strings.Join(parts, "\n\n")
}
