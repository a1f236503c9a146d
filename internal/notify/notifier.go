package notify

import (
	"fmt"

	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/task"
	"github.com/testimonialhq/testimonials-backend/pkg/logger"
)

// Notifier dispatches lifecycle emails. Every dispatch is best-effort:
// failures are logged and never reach the caller, and delivery runs on
// the task executor so the request path is never blocked.
type Notifier struct {
	mailer   Mailer
	executor *task.Executor
	cfg      *config.TestimonialsConfig
}

func NewNotifier(mailer Mailer, executor *task.Executor, cfg *config.TestimonialsConfig) *Notifier {
	return &Notifier{
		mailer:   mailer,
		executor: executor,
		cfg:      cfg,
	}
}

// TestimonialSubmitted alerts the configured admin address about a new
// submission awaiting moderation.
func (n *Notifier) TestimonialSubmitted(t *model.Testimonial) {
	if !n.cfg.SendAdminNotifications || n.cfg.NotificationEmail == "" {
		return
	}

	subject := "New testimonial awaiting review"
	body := fmt.Sprintf(
		"A new testimonial has been submitted.\n\n"+
			"Author: %s\n"+
			"Rating: %d\n\n"+
			"%s\n",
		t.DisplayName(), t.Rating, t.Content,
	)
	n.dispatch("testimonial_submitted", t.ID, n.cfg.NotificationEmail, subject, body)
}

// TestimonialApproved tells the author their testimonial is now public.
func (n *Notifier) TestimonialApproved(t *model.Testimonial) {
	if !n.authorReachable(t) {
		return
	}

	subject := "Your testimonial has been approved"
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Thank you for your feedback. Your testimonial has been approved and is now published.\n",
		t.DisplayName(),
	)
	n.dispatch("testimonial_approved", t.ID, t.AuthorEmail, subject, body)
}

// TestimonialRejected tells the author their testimonial was declined.
func (n *Notifier) TestimonialRejected(t *model.Testimonial) {
	if !n.authorReachable(t) {
		return
	}

	subject := "Your testimonial could not be published"
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Unfortunately your testimonial could not be published.\n",
		t.DisplayName(),
	)
	if t.RejectionReason != "" {
		body += fmt.Sprintf("\nReason: %s\n", t.RejectionReason)
	}
	n.dispatch("testimonial_rejected", t.ID, t.AuthorEmail, subject, body)
}

// ResponseAdded tells the author an official response was posted.
func (n *Notifier) ResponseAdded(t *model.Testimonial) {
	if !n.authorReachable(t) {
		return
	}

	subject := "A response was added to your testimonial"
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"A response has been added to your testimonial:\n\n%s\n",
		t.DisplayName(), t.Response,
	)
	n.dispatch("testimonial_responded", t.ID, t.AuthorEmail, subject, body)
}

// authorReachable reports whether author emails are enabled and the
// testimonial has a usable address. Anonymous testimonials have their
// email cleared on submission and never receive mail.
func (n *Notifier) authorReachable(t *model.Testimonial) bool {
	return n.cfg.SendEmailNotifications && !t.IsAnonymous && t.AuthorEmail != ""
}

func (n *Notifier) dispatch(event string, testimonialID uint, to, subject, body string) {
	n.executor.Execute("notify:"+event, func() {
		if err := n.mailer.Send(to, subject, body); err != nil {
			logger.Error("Notification delivery failed", err, map[string]interface{}{
				"event":          event,
				"testimonial_id": testimonialID,
			})
		}
	}, true)
}
