package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"complyforge/internal/config"
	"complyforge/internal/corpus"
	"complyforge/internal/services"
)

// Indexes the embedded framework corpus into Qdrant so the pipeline can pull
// supplemental grounding context. Optionally ingests extra PDF guidance
// documents passed as command-line arguments, tagged with the "supplemental"
// section.
func main() {
	log.Println("🚀 Starting corpus ingestion...")

	cfg := config.Load()

	geminiClient, err := services.NewGeminiClient(
		cfg.Oracle.APIKey,
		cfg.Oracle.Model,
		cfg.Oracle.EmbedModel,
		cfg.Oracle.RequestTimeout,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	store, err := corpus.NewStore()
	if err != nil {
		log.Fatalf("❌ Failed to load framework corpus: %v", err)
	}

	chunker := services.NewTextChunker()
	ctx := context.Background()

	successCount := 0
	failCount := 0

	for _, section := range store.AllChunks() {
		log.Printf("\n📄 Processing section: %s (%d characters)", section.ID, len(section.Text))

		// Replace the section wholesale so re-runs do not accumulate stale
		// chunks.
		if err := qdrantService.DeleteSection(ctx, section.ID); err != nil {
			log.Printf("   ⚠️  Failed to clear section: %v", err)
		}

		chunks := chunker.ChunkText(section.Text, 1000, 200)
		log.Printf("   ✂️  Created %d chunks", len(chunks))

		if ingestChunks(ctx, geminiClient, qdrantService, section.ID, chunks) {
			successCount++
		} else {
			failCount++
		}
	}

	// Extra guidance PDFs, e.g. harmonised standards or official Q&A
	// documents.
	pdfParser := services.NewPDFParserService()
	for _, path := range os.Args[1:] {
		log.Printf("\n📄 Processing supplemental PDF: %s", path)

		text, err := pdfParser.ExtractText(path)
		if err != nil {
			log.Printf("   ❌ Failed to extract text: %v", err)
			failCount++
			continue
		}

		chunks := chunker.ChunkText(text, 1000, 200)
		log.Printf("   ✂️  Created %d chunks", len(chunks))

		if ingestChunks(ctx, geminiClient, qdrantService, "supplemental", chunks) {
			successCount++
		} else {
			failCount++
		}
	}

	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary:")
	log.Printf("   ✅ Successful: %d sections", successCount)
	log.Printf("   ❌ Failed: %d sections", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some sections failed to ingest. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ Corpus ingested successfully!")
}

func ingestChunks(
	ctx context.Context,
	embedder services.Embedder,
	qdrantService services.QdrantService,
	section string,
	chunks []string,
) bool {
	stored := 0

	for i, chunk := range chunks {
		embedding, err := embedder.Embed(ctx, chunk)
		if err != nil {
			log.Printf("   ❌ Failed to generate embedding for chunk %d: %v", i+1, err)
			continue
		}

		chunkID := fmt.Sprintf("%s_chunk_%d", section, i)
		if err := qdrantService.UpsertChunk(ctx, chunkID, section, chunk, embedding); err != nil {
			log.Printf("   ❌ Failed to store chunk %d: %v", i+1, err)
			continue
		}
		stored++

		if (i+1)%5 == 0 || i == len(chunks)-1 {
			log.Printf("   📊 Progress: %d/%d chunks stored", i+1, len(chunks))
		}
	}

	return stored == len(chunks)
}
