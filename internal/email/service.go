package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/logger"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/metrics"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Service queues mail through redis and drains the queue in a worker loop.
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

func (s *Service) Send(ctx context.Context, emailType, to, name, subject, body string) error {
	job := EmailJob{
		To:      to,
		Name:    name,
		Type:    emailType,
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		return err
	}

	logger.Infof("Email queued: %s to %s", subject, to)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email worker stopped")
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
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Email to %s failed after %d attempts", job.To, maxTries)
			metrics.RecordEmail(job.Type, "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *Service) sendNow(job EmailJob) error {
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

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendBookingConfirmation(ctx context.Context, to, name, instructorName, lessonType string, startTime time.Time, roomURL string) error {
	subject := "Lesson Confirmed - " + lessonType + " lesson"
	classroomLine := ""
	if roomURL != "" {
		classroomLine = "\nJoin your classroom here: " + roomURL + "\n"
	}
	body := fmt.Sprintf(`Hi %s,

Your lesson is confirmed!

Instructor: %s
Lesson: %s
Time: %s
%s
Happy learning!

- Tutorly Team`, name, instructorName, lessonType, startTime.Format("Jan 2, 2006 at 3:04 PM"), classroomLine)

	return s.Send(ctx, "booking_confirmation", to, name, subject, body)
}

func (s *Service) SendBookingCancellation(ctx context.Context, to, name, lessonType string, startTime time.Time, refunded bool) error {
	subject := "Lesson Cancelled - " + lessonType + " lesson"
	refundLine := "Your refund has been initiated and should arrive within 5-7 business days."
	if !refunded {
		refundLine = "Our team is processing your refund and will contact you shortly."
	}
	body := fmt.Sprintf(`Hi %s,

Your lesson has been cancelled:

Lesson: %s
Time: %s

%s

- Tutorly Team`, name, lessonType, startTime.Format("Jan 2, 2006 at 3:04 PM"), refundLine)

	return s.Send(ctx, "booking_cancellation", to, name, subject, body)
}

func (s *Service) SendWithdrawalCompleted(ctx context.Context, to, name, amount string) error {
	subject := "Withdrawal Completed"
	body := fmt.Sprintf(`Hi %s,

Your withdrawal of %s has been paid out to your bank account.

- Tutorly Team`, name, amount)

	return s.Send(ctx, "withdrawal_completed", to, name, subject, body)
}

func (s *Service) SendWithdrawalFailed(ctx context.Context, to, name, amount, reason string) error {
	subject := "Withdrawal Failed"
	body := fmt.Sprintf(`Hi %s,

Your withdrawal of %s could not be processed:

%s

The funds remain in your wallet. Please check your payout details and try again.

- Tutorly Team`, name, amount, reason)

	return s.Send(ctx, "withdrawal_failed", to, name, subject, body)
}
