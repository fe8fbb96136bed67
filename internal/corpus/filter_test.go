package corpus

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"complyforge/internal/models"
)

func mustStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestNISTFunctionsByStage(t *testing.T) {
	filter := NewFilter(mustStore(t))

	tests := []struct {
		name      string
		stage     string
		riskLevel string
		want      []string
	}{
		{
			name:      "design stage",
			stage:     models.LifecycleDesign,
			riskLevel: models.RiskLow,
			want:      []string{"GOVERN", "MAP", "MEASURE"},
		},
		{
			name:      "development stage",
			stage:     models.LifecycleDevelopment,
			riskLevel: models.RiskMedium,
			want:      []string{"GOVERN", "MAP", "MEASURE"},
		},
		{
			name:      "testing stage",
			stage:     models.LifecycleTesting,
			riskLevel: models.RiskLow,
			want:      []string{"GOVERN", "MEASURE", "MANAGE"},
		},
		{
			name:      "production stage",
			stage:     models.LifecycleProduction,
			riskLevel: models.RiskMedium,
			want:      []string{"GOVERN", "MEASURE", "MANAGE"},
		},
		{
			name:      "high risk overrides stage selection",
			stage:     models.LifecycleDesign,
			riskLevel: models.RiskHigh,
			want:      []string{"GOVERN", "MAP", "MEASURE", "MANAGE"},
		},
		{
			name:      "unknown stage falls back to full framework",
			stage:     "retired",
			riskLevel: models.RiskLow,
			want:      []string{"GOVERN", "MAP", "MEASURE", "MANAGE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.NISTFunctions(tt.stage, tt.riskLevel)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NISTFunctions(%q, %q) mismatch (-want +got):\n%s", tt.stage, tt.riskLevel, diff)
			}
		})
	}
}

func TestNISTFunctionsDeterministic(t *testing.T) {
	filter := NewFilter(mustStore(t))

	first := filter.NISTFunctions(models.LifecycleProduction, models.RiskMedium)
	for i := 0; i < 10; i++ {
		got := filter.NISTFunctions(models.LifecycleProduction, models.RiskMedium)
		if diff := cmp.Diff(first, got); diff != "" {
			t.Fatalf("run %d diverged (-first +got):\n%s", i, diff)
		}
	}
}

func TestSelectNISTReturnsMatchingChunks(t *testing.T) {
	filter := NewFilter(mustStore(t))

	chunks := filter.SelectNIST(models.LifecycleTesting, models.RiskLow)
	if len(chunks) != 3 {
		t.Fatalf("SelectNIST() returned %d chunks, want 3", len(chunks))
	}

	wantIDs := []string{"nist_govern", "nist_measure", "nist_manage"}
	for i, chunk := range chunks {
		if chunk.ID != wantIDs[i] {
			t.Errorf("chunk[%d].ID = %q, want %q", i, chunk.ID, wantIDs[i])
		}
		if chunk.Text == "" {
			t.Errorf("chunk[%d] has empty text", i)
		}
	}
}

func TestNISTTextJoinsSelectedChunks(t *testing.T) {
	store := mustStore(t)
	filter := NewFilter(store)

	text := filter.NISTText(models.LifecycleDesign, models.RiskLow)
	govern, _ := store.NISTFunction(models.FunctionGovern)
	if !strings.Contains(text, govern.Text) {
		t.Error("NISTText() is missing the GOVERN corpus")
	}

	manage, _ := store.NISTFunction(models.FunctionManage)
	if strings.Contains(text, manage.Text) {
		t.Error("NISTText() for design stage should not include the MANAGE corpus")
	}
}

func TestStoreAllChunks(t *testing.T) {
	store := mustStore(t)

	chunks := store.AllChunks()
	if len(chunks) != 6 {
		t.Fatalf("AllChunks() returned %d chunks, want 6", len(chunks))
	}

	seen := make(map[string]bool)
	for _, chunk := range chunks {
		if chunk.Text == "" {
			t.Errorf("chunk %s has empty text", chunk.ID)
		}
		seen[chunk.ID] = true
	}

	for _, id := range []string{"eu_classification", "eu_requirements", "nist_govern", "nist_map", "nist_measure", "nist_manage"} {
		if !seen[id] {
			t.Errorf("AllChunks() is missing chunk %s", id)
		}
	}
}
