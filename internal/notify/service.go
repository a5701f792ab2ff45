package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"classflow/internal/logger"
	"classflow/internal/metrics"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"

	maxTries = 3
)

// Message types mirrored in metrics labels.
const (
	TypeBookingConfirmed = "booking_confirmed"
	TypeWaitlistJoined   = "waitlist_joined"
	TypeBookingCancelled = "booking_cancelled"
	TypeWaitlistPromoted = "waitlist_promoted"
	TypeClassReminder    = "class_reminder"
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Service queues notifications in Redis and delivers them over SMTP from a
// background worker, so delivery never runs inside a booking transaction.
type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) Send(ctx context.Context, msgType, to, name, subject, body string) error {
	job := Job{
		Type:    msgType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue %s notification to %s: %v", msgType, to, err)
		metrics.RecordNotification(msgType, "queue_error")
		return err
	}

	metrics.RecordNotification(msgType, "queued")
	logger.Infof("Notification queued: %s to %s", msgType, to)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	metrics.NotificationQueueLength.Set(float64(s.QueueLength(ctx)))

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send %s notification to %s: %v", job.Type, job.To, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying notification to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Notification to %s failed after %d attempts", job.To, maxTries)
			metrics.RecordNotification(job.Type, "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordNotification(job.Type, "sent")
	logger.Infof("Notification sent: %s to %s", job.Type, job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

const timeFormat = "Mon, Jan 2 at 15:04"

func (s *Service) SendBookingConfirmation(ctx context.Context, email, name, classTitle string, start time.Time) error {
	subject := "Booking Confirmed - " + classTitle
	body := fmt.Sprintf(`Hi %s,

Your spot is confirmed!

Class: %s
Time: %s

See you in the studio!

- ClassFlow`, name, classTitle, start.Format(timeFormat))

	return s.Send(ctx, TypeBookingConfirmed, email, name, subject, body)
}

func (s *Service) SendWaitlistJoined(ctx context.Context, email, name, classTitle string, start time.Time, position int) error {
	subject := "You're on the Waitlist - " + classTitle
	body := fmt.Sprintf(`Hi %s,

The class is full, so we've added you to the waitlist.

Class: %s
Time: %s
Your position: %d

We'll let you know the moment a spot opens up.

- ClassFlow`, name, classTitle, start.Format(timeFormat), position)

	return s.Send(ctx, TypeWaitlistJoined, email, name, subject, body)
}

func (s *Service) SendBookingCancellation(ctx context.Context, email, name, classTitle string, start time.Time) error {
	subject := "Booking Cancelled - " + classTitle
	body := fmt.Sprintf(`Hi %s,

Your booking has been cancelled and the class credit returned to your plan.

Class: %s
Time: %s

- ClassFlow`, name, classTitle, start.Format(timeFormat))

	return s.Send(ctx, TypeBookingCancelled, email, name, subject, body)
}

func (s *Service) SendWaitlistPromotion(ctx context.Context, email, name, classTitle string, start time.Time) error {
	subject := "A Spot Opened Up - " + classTitle
	body := fmt.Sprintf(`Hi %s,

Good news: a spot opened up and your waitlist entry has been converted
into a confirmed booking.

Class: %s
Time: %s

See you in the studio!

- ClassFlow`, name, classTitle, start.Format(timeFormat))

	return s.Send(ctx, TypeWaitlistPromoted, email, name, subject, body)
}

func (s *Service) SendClassReminder(ctx context.Context, email, name, classTitle string, start time.Time) error {
	subject := "Starting Soon - " + classTitle
	body := fmt.Sprintf(`Hi %s,

Your class starts soon:

Class: %s
Time: %s

- ClassFlow`, name, classTitle, start.Format(timeFormat))

	return s.Send(ctx, TypeClassReminder, email, name, subject, body)
}
