package services

import (
	"context"
	"log"
	"sync"
	"time"

	"misswong/essay-grader/internal/models"
	"misswong/essay-grader/internal/repositories"
)

// BatchRunner processes the session's pending items strictly one at a
// time, in submission order. Sequential processing keeps per-item status
// deterministic and stays inside the grading API's rate limits.
type BatchRunner interface {
	Start(ctx context.Context)
	Stop()
	Enqueue() bool
	Running() bool
	RunBatch(ctx context.Context)
}

type batchRunner struct {
	session      *BatchSession
	grader       EssayGrader
	settingsRepo repositories.SettingsRepository
	historyRepo  repositories.HistoryRepository
	defaultLevel string
	defaultModel string

	runSignal chan struct{}
	stopChan  chan struct{}
	wg        sync.WaitGroup

	mu      sync.Mutex
	running bool
}

func NewBatchRunner(
	session *BatchSession,
	grader EssayGrader,
	settingsRepo repositories.SettingsRepository,
	historyRepo repositories.HistoryRepository,
	defaultLevel string,
	defaultModel string,
) BatchRunner {
	return &batchRunner{
		session:      session,
		grader:       grader,
		settingsRepo: settingsRepo,
		historyRepo:  historyRepo,
		defaultLevel: defaultLevel,
		defaultModel: defaultModel,
		runSignal:    make(chan struct{}, 1),
		stopChan:     make(chan struct{}),
	}
}

// Start implements BatchRunner.
func (r *batchRunner) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.loop(ctx)
	log.Println("✅ Batch runner started")
}

// Stop implements BatchRunner.
func (r *batchRunner) Stop() {
	log.Println("🛑 Stopping batch runner...")
	close(r.stopChan)
	r.wg.Wait()
	log.Println("✅ Batch runner stopped")
}

// Enqueue implements BatchRunner. It requests one batch run; a run that
// is already queued or in flight absorbs the request.
func (r *batchRunner) Enqueue() bool {
	select {
	case <-r.stopChan:
		log.Println("⚠️  Batch runner stopped, cannot enqueue")
		return false
	default:
	}

	select {
	case r.runSignal <- struct{}{}:
		return true
	default:
		// A signal is already pending; the coming run will pick the items up.
		return true
	}
}

// Running implements BatchRunner.
func (r *batchRunner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *batchRunner) loop(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		case <-r.runSignal:
			r.setRunning(true)
			r.RunBatch(ctx)
			r.setRunning(false)
		}
	}
}

func (r *batchRunner) setRunning(v bool) {
	r.mu.Lock()
	r.running = v
	r.mu.Unlock()
}

// RunBatch implements BatchRunner. Each item reaches a terminal status
// (done or error) before the next item begins; one item's failure never
// aborts its siblings. Cancellation is honoured between items only:
// already-written history entries are kept and unstarted items stay as
// they were.
func (r *batchRunner) RunBatch(ctx context.Context) {
	opts := AnalyzeOptions{
		APIKey: r.settingsRepo.Get(models.SettingAPIKey, ""),
		Level:  models.NormalizeLevel(r.settingsRepo.Get(models.SettingLevel, r.defaultLevel)),
		Model:  r.settingsRepo.Get(models.SettingModel, r.defaultModel),
	}

	pending := r.session.Pending()
	if len(pending) == 0 {
		return
	}
	log.Printf("🔄 Starting batch analysis of %d essays", len(pending))

	for _, id := range pending {
		select {
		case <-ctx.Done():
			log.Println("⚠️  Batch analysis cancelled")
			return
		case <-r.stopChan:
			log.Println("⚠️  Batch analysis stopped")
			return
		default:
		}

		// The item may have been removed while waiting its turn.
		if !r.session.MarkAnalyzing(id) {
			continue
		}
		item, ok := r.session.Get(id)
		if !ok {
			continue
		}

		result, err := r.grader.AnalyzeEssay(ctx, item, opts)
		if err != nil {
			log.Printf("❌ Failed to analyze essay %s: %v", id, err)
			r.session.MarkError(id, err.Error())
			continue
		}

		r.session.MarkDone(id, result)

		entry := models.NewHistoryEntry(result, opts.Level, time.Now().Format("2006-01-02"))
		if err := r.historyRepo.Create(entry); err != nil {
			log.Printf("⚠️  Failed to save history entry for essay %s: %v", id, err)
		}

		log.Printf("✅ Essay %s analyzed (score %d)", id, result.Score)
	}

	log.Println("✅ Batch analysis completed")
}
