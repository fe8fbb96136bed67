// Package corpus holds the fixed reference text for both regulatory
// frameworks and the deterministic pre-filter that bounds how much of it is
// fed to each pipeline stage.
package corpus

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed docs
var docFS embed.FS

// Chunk is one tagged piece of framework reference text.
type Chunk struct {
	// ID tags the chunk by framework section, e.g. "eu_classification" or
	// "nist_govern".
	ID   string
	Text string
}

// Store holds the loaded framework corpora keyed by section tag.
type Store struct {
	euClassification string
	euRequirements   string
	nistFunctions    map[string]string
}

// NewStore loads the embedded framework documents. The corpora are fixed
// reference data; a missing document is a packaging error, not a runtime
// condition.
func NewStore() (*Store, error) {
	euClassification, err := readDoc("eu-ai-act/classification.txt")
	if err != nil {
		return nil, err
	}

	euRequirements, err := readDoc("eu-ai-act/requirements.txt")
	if err != nil {
		return nil, err
	}

	nistFunctions := make(map[string]string, 4)
	for _, fn := range []string{"govern", "map", "measure", "manage"} {
		text, err := readDoc("nist-ai-rmf/" + fn + ".txt")
		if err != nil {
			return nil, err
		}
		nistFunctions[strings.ToUpper(fn)] = text
	}

	return &Store{
		euClassification: euClassification,
		euRequirements:   euRequirements,
		nistFunctions:    nistFunctions,
	}, nil
}

func readDoc(relPath string) (string, error) {
	data, err := docFS.ReadFile("docs/" + relPath)
	if err != nil {
		return "", fmt.Errorf("failed to load framework document %s: %w", relPath, err)
	}
	return string(data), nil
}

// EUClassification returns the full EU AI Act classification corpus. The EU
// framework text is short and exhaustive, so it is never filtered.
func (s *Store) EUClassification() Chunk {
	return Chunk{ID: "eu_classification", Text: s.euClassification}
}

// EURequirements returns the full EU AI Act requirements corpus.
func (s *Store) EURequirements() Chunk {
	return Chunk{ID: "eu_requirements", Text: s.euRequirements}
}

// NISTFunction returns the corpus chunk for one NIST function (GOVERN, MAP,
// MEASURE or MANAGE).
func (s *Store) NISTFunction(fn string) (Chunk, bool) {
	text, ok := s.nistFunctions[fn]
	if !ok {
		return Chunk{}, false
	}
	return Chunk{ID: "nist_" + strings.ToLower(fn), Text: text}, true
}

// AllChunks returns every chunk in the store in a stable order, used by the
// corpus ingestion tool.
func (s *Store) AllChunks() []Chunk {
	chunks := []Chunk{s.EUClassification(), s.EURequirements()}

	fns := make([]string, 0, len(s.nistFunctions))
	for fn := range s.nistFunctions {
		fns = append(fns, fn)
	}
	sort.Strings(fns)

	for _, fn := range fns {
		chunk, _ := s.NISTFunction(fn)
		chunks = append(chunks, chunk)
	}
	return chunks
}
