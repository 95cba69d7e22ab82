package cron

import (
	"log"
	"time"

	"github.com/aulavivo/lms-api/model"
	"github.com/aulavivo/lms-api/services"
	"github.com/aulavivo/lms-api/utils/cache"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron        *cron.Cron
	db          *gorm.DB
	enrollments *services.EnrollmentService
	feedback    *services.FeedbackService
}

// NewCronManager creates a new cron manager. redisCache may be nil; the
// rating refresh job then skips its cache writes.
func NewCronManager(db *gorm.DB, redisCache *cache.RedisCache) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:        c,
		db:          db,
		enrollments: services.NewEnrollmentService(db),
		feedback:    services.NewFeedbackService(db, redisCache),
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// 1. Daily at 3 AM: reconcile enrollment progress percentages
	_, err := m.cron.AddFunc("0 0 3 * * *", func() {
		m.logJobStart("reconcile_progress")
		m.ReconcileProgress()
	})
	if err != nil {
		return err
	}

	// 2. Every hour: refresh cached rating summaries
	_, err = m.cron.AddFunc("0 0 * * * *", func() {
		m.logJobStart("refresh_rating_cache")
		m.RefreshRatingCache()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	cronLog := model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: time.Now(),
	}
	m.db.Create(&cronLog)
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(jobName string, message string) {
	log.Printf("[CRON] Completed job: %s - %s", jobName, message)

	m.finishJob(jobName, map[string]interface{}{
		"status":       "completed",
		"completed_at": time.Now(),
		"message":      message,
	})
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(jobName string, err error) {
	log.Printf("[CRON] Error in job: %s - %v", jobName, err)

	m.finishJob(jobName, map[string]interface{}{
		"status":       "failed",
		"completed_at": time.Now(),
		"error_msg":    err.Error(),
	})
}

// finishJob closes the most recent running log row for jobName and records
// the run duration
func (m *CronManager) finishJob(jobName string, updates map[string]interface{}) {
	var running model.CronJobLog
	err := m.db.Where("job_name = ? AND status = ?", jobName, "running").
		Order("started_at DESC").
		First(&running).Error
	if err != nil {
		return
	}

	updates["duration"] = int(time.Since(running.StartedAt).Milliseconds())
	m.db.Model(&running).Updates(updates)
}
