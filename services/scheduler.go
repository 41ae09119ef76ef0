// services/scheduler.go
package services

import (
	"log"
	"time"

	"studysync-engine/models"

	"github.com/go-co-op/gocron/v2"
)

// StartRolloverScheduler flips elapsed challenges to completed once a
// minute, mirroring how the engine treats completion as "deadline
// passed". Runs against every user that has a challenges blob.
func (s *ChallengeService) StartRolloverScheduler(store *GormStore) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var userIDs []string
			err := store.DB.Model(&models.StoreEntry{}).
				Where("key = ?", models.KeyChallenges).
				Distinct("user_id").
				Pluck("user_id", &userIDs).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, userID := range userIDs {
				if err := s.RolloverUser(userID); err != nil {
					log.Printf("[Scheduler] Failed challenge rollover for %s: %v", userID, err)
				}
			}
		}),
	)
}
