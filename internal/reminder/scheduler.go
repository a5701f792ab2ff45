package reminder

import (
	"context"
	"time"

	"classflow/internal/booking"
	"classflow/internal/logger"
	"classflow/internal/metrics"
)

// Scheduler maintains reminder tasks from booking lifecycle events. A
// confirmed seat (fresh or promoted from the waitlist) gets a reminder at
// class start minus the member's lead time; a cancellation retracts it.
// Joining a waitlist schedules nothing.
type Scheduler struct {
	repo        Repository
	defaultLead time.Duration
	now         func() time.Time
}

func NewScheduler(repo Repository, defaultLead time.Duration) *Scheduler {
	return &Scheduler{
		repo:        repo,
		defaultLead: defaultLead,
		now:         time.Now,
	}
}

// Publish implements booking.EventSink.
func (s *Scheduler) Publish(ctx context.Context, event booking.Event) {
	switch event.Type {
	case booking.EventBookingConfirmed, booking.EventWaitlistPromoted:
		s.schedule(ctx, event)
	case booking.EventBookingCancelled:
		s.cancel(ctx, event)
	}
}

func (s *Scheduler) schedule(ctx context.Context, event booking.Event) {
	lead, err := s.repo.MemberLead(ctx, event.MemberID)
	if err != nil || lead <= 0 {
		lead = s.defaultLead
	}

	fireAt := event.ClassStart.Add(-lead)
	if !fireAt.After(s.now()) {
		// Class starts within the lead window; there is no point firing a
		// reminder after the fact.
		return
	}

	if _, err := s.repo.Reschedule(ctx, event.MemberID, event.ClassID, fireAt); err != nil {
		logger.Error("failed to schedule reminder",
			"member_id", event.MemberID, "class_id", event.ClassID, "error", err)
		return
	}

	metrics.RecordReminder("scheduled")
	logger.Debug("reminder scheduled",
		"member_id", event.MemberID, "class_id", event.ClassID, "fire_at", fireAt)
}

func (s *Scheduler) cancel(ctx context.Context, event booking.Event) {
	if err := s.repo.CancelPending(ctx, event.MemberID, event.ClassID); err != nil {
		logger.Error("failed to cancel reminder",
			"member_id", event.MemberID, "class_id", event.ClassID, "error", err)
		return
	}

	metrics.RecordReminder("cancelled")
}

// WithClock fixes the scheduler's clock. Tests only.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	clone := *s
	clone.now = now
	return &clone
}

// Gateway delivers a reminder to a member.
type Gateway interface {
	SendClassReminder(ctx context.Context, email, name, classTitle string, start time.Time) error
}

// Worker polls for due tasks and hands them to the notification gateway.
// Tasks are marked fired before delivery is attempted; a reminder is
// best-effort and never retried.
type Worker struct {
	repo     Repository
	gateway  Gateway
	interval time.Duration
	batch    int
}

func NewWorker(repo Repository, gateway Gateway, interval time.Duration) *Worker {
	return &Worker{
		repo:     repo,
		gateway:  gateway,
		interval: interval,
		batch:    50,
	}
}

func (w *Worker) Start(ctx context.Context) {
	logger.Info("Reminder worker started", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			w.fireDue(ctx)
		}
	}
}

func (w *Worker) fireDue(ctx context.Context) {
	tasks, err := w.repo.DueTasks(ctx, time.Now(), w.batch)
	if err != nil {
		logger.Error("failed to fetch due reminders", "error", err)
		return
	}

	for _, task := range tasks {
		if err := w.repo.MarkFired(ctx, task.ID); err != nil {
			logger.Error("failed to mark reminder fired", "task_id", task.ID, "error", err)
			continue
		}

		metrics.RecordReminder("fired")
		if err := w.gateway.SendClassReminder(ctx, task.MemberEmail, task.MemberName, task.ClassTitle, task.ClassStart); err != nil {
			logger.Error("failed to deliver reminder",
				"task_id", task.ID, "member_id", task.MemberID, "error", err)
		}
	}
}
