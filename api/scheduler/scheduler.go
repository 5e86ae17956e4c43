package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/campusconnect/campus-events-api/databases"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// reconcileWindow bounds how far back the attendance reconciler looks
// for check-ins whose rsvp write may have been lost.
const reconcileWindow = 48 * time.Hour

// Scheduler handles periodic background jobs for attendance bookkeeping
type Scheduler struct {
	cron       *cron.Cron
	CDB        databases.CheckInDatabase
	RDB        databases.RSVPDatabase
	EDB        databases.EventDatabase
	LockDB     databases.SchedulerLockDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	cDB databases.CheckInDatabase,
	rDB databases.RSVPDatabase,
	eDB databases.EventDatabase,
	lockDB databases.SchedulerLockDatabase,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		CDB:        cDB,
		RDB:        rDB,
		EDB:        eDB,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// A check-in and its rsvp update are separate writes, so a crash
	// between them can leave an attendee checked in but not marked
	// attended. Sweep the gap every 15 minutes.
	_, err := s.cron.AddFunc("*/15 * * * *", s.reconcileAttendance)
	if err != nil {
		zap.S().Errorw("failed to register attendance reconcile job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Attendance scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Attendance scheduler stopped")
}

// reconcileAttendance re-runs the rsvp sync for recent check-ins so
// every checked-in attendee ends up with an attended rsvp
func (s *Scheduler) reconcileAttendance() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Try to acquire distributed lock (10 minute TTL)
	acquired, err := s.LockDB.TryAcquireLock(ctx, "attendance_reconcile_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for attendance reconcile job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Attendance reconcile job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "attendance_reconcile_job", s.instanceID)

	zap.S().Infow("Running attendance reconcile job", "instance", s.instanceID)

	since := primitive.NewDateTimeFromTime(time.Now().Add(-reconcileWindow))
	checkIns, err := s.CDB.Find(ctx, bson.M{"checkIn.checkInTime": bson.M{"$gte": since}})
	if err != nil {
		zap.S().Errorw("failed to find recent check-ins", "error", err)
		return
	}

	var synced, failed int
	for _, ci := range checkIns {
		rsvp, err := s.RDB.FindOne(ctx, bson.M{
			"rsvp.userId":  ci.Details.UserID,
			"rsvp.eventId": ci.Details.EventID,
		})
		if err == nil && rsvp.Details.Attended {
			continue
		}

		if _, err := databases.SyncRSVPOnCheckIn(ctx, s.RDB, s.EDB, ci.Details.UserID, ci.Details.EventID); err != nil {
			zap.S().Errorw("failed to reconcile rsvp for check-in",
				"userId", ci.Details.UserID,
				"eventId", ci.Details.EventID,
				"error", err)
			failed++
			continue
		}
		synced++
	}

	zap.S().Infow("Attendance reconcile job finished",
		"checkIns", len(checkIns),
		"synced", synced,
		"failed", failed)
}
