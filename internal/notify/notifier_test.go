package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/task"
)

// recordingMailer captures sent messages for assertions.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

// syncExecutor runs everything on the caller's goroutine so tests see
// delivery immediately.
func syncExecutor() *task.Executor {
	e := task.NewExecutor(0, 0)
	return e
}

func notifyConfig() *config.TestimonialsConfig {
	return &config.TestimonialsConfig{
		SendEmailNotifications: true,
		SendAdminNotifications: true,
		NotificationEmail:      "admin@example.com",
	}
}

func TestTestimonialSubmittedNotifiesAdmin(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer, syncExecutor(), notifyConfig())

	n.TestimonialSubmitted(&model.Testimonial{
		ID:         1,
		AuthorName: "Jane Doe",
		Rating:     5,
		Content:    "Excellent service all around",
	})

	sent := mailer.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "admin@example.com", sent[0].To)
	assert.Contains(t, sent[0].Body, "Jane Doe")
	assert.Contains(t, sent[0].Body, "Excellent service all around")
}

func TestAdminNotificationsDisabled(t *testing.T) {
	mailer := &recordingMailer{}
	cfg := notifyConfig()
	cfg.SendAdminNotifications = false
	n := NewNotifier(mailer, syncExecutor(), cfg)

	n.TestimonialSubmitted(&model.Testimonial{ID: 1, AuthorName: "Jane"})

	assert.Empty(t, mailer.all())
}

func TestApprovedNotifiesAuthor(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer, syncExecutor(), notifyConfig())

	n.TestimonialApproved(&model.Testimonial{
		ID:          2,
		AuthorName:  "Sam",
		AuthorEmail: "sam@example.com",
	})

	sent := mailer.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "sam@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, "approved")
}

func TestRejectedIncludesReason(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer, syncExecutor(), notifyConfig())

	n.TestimonialRejected(&model.Testimonial{
		ID:              3,
		AuthorName:      "Sam",
		AuthorEmail:     "sam@example.com",
		RejectionReason: "Contains promotional links",
	})

	sent := mailer.all()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "Contains promotional links")
}

func TestAnonymousAuthorNeverEmailed(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer, syncExecutor(), notifyConfig())

	n.TestimonialApproved(&model.Testimonial{
		ID:          4,
		IsAnonymous: true,
		AuthorEmail: "leaked@example.com",
	})

	assert.Empty(t, mailer.all())
}

func TestMissingAuthorEmailSkipped(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer, syncExecutor(), notifyConfig())

	n.TestimonialRejected(&model.Testimonial{ID: 5, AuthorName: "NoEmail"})

	assert.Empty(t, mailer.all())
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp unreachable")}
	n := NewNotifier(mailer, syncExecutor(), notifyConfig())

	// Must not panic or propagate
	n.TestimonialApproved(&model.Testimonial{
		ID:          6,
		AuthorEmail: "sam@example.com",
	})
}

func TestResponseAddedIncludesResponse(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer, syncExecutor(), notifyConfig())

	n.ResponseAdded(&model.Testimonial{
		ID:          7,
		AuthorEmail: "sam@example.com",
		Response:    "Thanks for the kind words!",
	})

	sent := mailer.all()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "Thanks for the kind words!")
}
