package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aulavivo/lms-api/model"
)

// ReconcileProgress recomputes every enrollment's progress percentage.
// Completions keep percentages current in the hot path; this job repairs
// drift from lessons added or deleted since the last completion.
func (m *CronManager) ReconcileProgress() {
	jobName := "reconcile_progress"

	updated, err := m.enrollments.ReconcileAllProgress()
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to reconcile progress: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Reconciled progress, %d enrollments updated", updated))
}

// RefreshRatingCache recomputes and re-caches the rating summary of every
// published course so summary reads stay warm between invalidations
func (m *CronManager) RefreshRatingCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "refresh_rating_cache"

	var courseIDs []uint
	err := m.db.Model(&model.Course{}).
		Where("estado = ?", model.EstadoPublicado).
		Pluck("id", &courseIDs).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to list published courses: %w", err))
		return
	}

	refreshed := 0
	for _, id := range courseIDs {
		if err := m.feedback.RefreshSummary(ctx, id); err != nil {
			log.Printf("[CRON] Failed to refresh rating summary for course %d: %v", id, err)
			continue
		}
		refreshed++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Refreshed %d of %d rating summaries", refreshed, len(courseIDs)))
}
