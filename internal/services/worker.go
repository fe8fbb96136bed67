package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"complyforge/internal/repositories"
)

// Worker runs assessments to completion. Each assessment executes on a
// single worker goroutine; concurrency exists only across independent
// assessments, with the repository's atomic claim as the sole coordination
// point.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(assessmentID uuid.UUID)
}

type worker struct {
	repo         repositories.AssessmentRepository
	assessor     AssessorService
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
}

func NewWorker(
	repo repositories.AssessmentRepository,
	assessor AssessorService,
	concurrency int,
	pollInterval time.Duration,
) Worker {
	return &worker{
		repo:         repo,
		assessor:     assessor,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting %d assessment workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	// The poller picks up pending assessments that were submitted before a
	// restart or whose enqueue was lost.
	w.wg.Add(1)
	go w.pollPending(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// EnqueueJob implements Worker. Never blocks the caller: when the queue is
// full the assessment stays pending and the poller picks it up.
func (w *worker) EnqueueJob(assessmentID uuid.UUID) {
	select {
	case w.jobQueue <- assessmentID:
		log.Printf("📥 Assessment %s enqueued\n", assessmentID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue assessment %s\n", assessmentID)
	default:
		log.Printf("⚠️  Job queue full, assessment %s left for the poller\n", assessmentID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case assessmentID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing assessment %s\n", workerID, assessmentID)
			if err := w.assessor.RunAssessment(ctx, assessmentID); err != nil {
				log.Printf("❌ Worker #%d: assessment %s: %v\n", workerID, assessmentID, err)
			}
		}
	}
}

func (w *worker) pollPending(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pending, err := w.repo.FindPending(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending assessments: %v\n", err)
				continue
			}

			for _, assessment := range pending {
				w.EnqueueJob(assessment.ID)
			}
		}
	}
}
