package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"talenthub/matching-engine/internal/models"
	"talenthub/matching-engine/internal/repositories"
)

// PreferenceTuner folds recent feedback into per-user advisory weight
// adjustments in the background. Adjustments keep every weight non-negative
// and the sum at 1.0; users who never gave feedback are left untouched.
type PreferenceTuner interface {
	Start(ctx context.Context)
	Stop()
	EnqueueUser(userID uuid.UUID)
}

type preferenceTuner struct {
	feedbackRepo   repositories.FeedbackRepository
	prefRepo       repositories.PreferenceRepository
	feedbackSvc    FeedbackService
	userQueue      chan uuid.UUID
	concurrency    int
	pollInterval   time.Duration
	feedbackWindow time.Duration
	wg             sync.WaitGroup
	stopChan       chan struct{}
}

func NewPreferenceTuner(
	feedbackRepo repositories.FeedbackRepository,
	prefRepo repositories.PreferenceRepository,
	feedbackSvc FeedbackService,
	concurrency int,
	pollInterval time.Duration,
	feedbackWindow time.Duration,
) PreferenceTuner {
	return &preferenceTuner{
		feedbackRepo:   feedbackRepo,
		prefRepo:       prefRepo,
		feedbackSvc:    feedbackSvc,
		userQueue:      make(chan uuid.UUID, 100),
		concurrency:    concurrency,
		pollInterval:   pollInterval,
		feedbackWindow: feedbackWindow,
		stopChan:       make(chan struct{}),
	}
}

// Start implements PreferenceTuner.
func (t *preferenceTuner) Start(ctx context.Context) {
	log.Printf("🚀 Starting preference tuner with %d workers\n", t.concurrency)

	for i := 0; i < t.concurrency; i++ {
		t.wg.Add(1)
		go t.processUsers(ctx, i+1)
	}

	t.wg.Add(1)
	go t.pollFeedback(ctx)

	log.Println("✅ Preference tuner started successfully")
}

// Stop implements PreferenceTuner.
func (t *preferenceTuner) Stop() {
	log.Println("🛑 Stopping preference tuner...")
	close(t.stopChan)
	t.wg.Wait()
	log.Println("✅ Preference tuner stopped")
}

// EnqueueUser implements PreferenceTuner.
func (t *preferenceTuner) EnqueueUser(userID uuid.UUID) {
	select {
	case t.userQueue <- userID:
	case <-t.stopChan:
		log.Printf("⚠️  Tuner stopped, cannot enqueue user %s\n", userID)
	}
}

func (t *preferenceTuner) processUsers(ctx context.Context, workerID int) {
	defer t.wg.Done()

	for {
		select {
		case <-t.stopChan:
			log.Printf("👷 Tuner worker #%d stopped\n", workerID)
			return
		case userID := <-t.userQueue:
			if err := t.tuneUser(ctx, userID); err != nil {
				log.Printf("❌ Tuner worker #%d failed for user %s: %v\n", workerID, userID, err)
			}
		}
	}
}

func (t *preferenceTuner) pollFeedback(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopChan:
			log.Println("🔄 Feedback poller stopped")
			return
		case <-ticker.C:
			userIDs, err := t.feedbackRepo.ListUsersSince(time.Now().Add(-t.feedbackWindow))
			if err != nil {
				log.Printf("⚠️  Failed to list users with recent feedback: %v\n", err)
				continue
			}
			for _, userID := range userIDs {
				t.EnqueueUser(userID)
			}
		}
	}
}

func (t *preferenceTuner) tuneUser(ctx context.Context, userID uuid.UUID) error {
	since := time.Now().Add(-t.feedbackWindow)
	records, err := t.feedbackRepo.ListByFilter(models.FeedbackFilter{
		UserID: userID.String(),
		From:   &since,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	prefs, err := t.prefRepo.FindByUserID(userID)
	if err != nil {
		if !errors.Is(err, models.ErrPreferencesNotFound) {
			return err
		}
		prefs = &models.RecommendationPreferences{
			ID:     uuid.New(),
			UserID: userID,
		}
	}

	current := models.DefaultWeights().Merge(prefs.WeightOverrides)
	adjusted := t.feedbackSvc.SuggestAdjustment(current, records)

	prefs.WeightOverrides = models.FloatMap(adjusted)
	if err := t.prefRepo.Upsert(prefs); err != nil {
		return err
	}

	log.Printf("🔧 Adjusted recommendation weights for user %s from %d feedback records\n", userID, len(records))
	return nil
}
