package services

import (
	"context"
	"log"
)

// RetrievalService fetches supplemental grounding chunks for a stage prompt.
// Failures are tolerated by callers: the deterministic corpus filter is the
// correctness path, retrieval only enriches it.
type RetrievalService interface {
	RetrieveContext(ctx context.Context, query string, sections []string, limit int) (string, error)
}

type retrievalService struct {
	embedder Embedder
	qdrant   QdrantService
}

func NewRetrievalService(embedder Embedder, qdrant QdrantService) RetrievalService {
	return &retrievalService{
		embedder: embedder,
		qdrant:   qdrant,
	}
}

// RetrieveContext implements RetrievalService.
func (r *retrievalService) RetrieveContext(ctx context.Context, query string, sections []string, limit int) (string, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return "", err
	}

	var allResults []SearchResult
	for _, section := range sections {
		results, err := r.qdrant.SearchSimilar(ctx, embedding, section, limit)
		if err != nil {
			log.Printf("⚠️  Failed to search section %s: %v\n", section, err)
			continue
		}
		allResults = append(allResults, results...)
	}

	return FormatRetrievedContext(allResults), nil
}

// noopRetrieval is used when qdrant is disabled.
type noopRetrieval struct{}

func NewNoopRetrieval() RetrievalService {
	return noopRetrieval{}
}

func (noopRetrieval) RetrieveContext(context.Context, string, []string, int) (string, error) {
	return "", nil
}
