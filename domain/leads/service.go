package leads

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/getcalls/website/domain/email"
	"github.com/getcalls/website/domain/views"
	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/logger"
	"github.com/getcalls/website/pkg/metrics"
	"github.com/getcalls/website/pkg/toast"
	"github.com/getcalls/website/pkg/tracing"
)

// ContactModal is the dialog id of the contact form.
const ContactModal = "contact"

const (
	MsgSent         = "🎉 Request sent! We'll call you within 24 hours."
	MsgFailed       = "Something went wrong. Please try again."
	MsgUnconfigured = "Email isn't set up yet. Opening your mail app instead."

	sentTTL         = 4000 * time.Millisecond
	failedTTL       = 3500 * time.Millisecond
	unconfiguredTTL = 3500 * time.Millisecond
)

// Service validates, stores and delivers contact requests.
type Service struct {
	repo   *Repository
	sender email.Sender
	site   config.SiteConfig
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates a lead service. repo and sender may be nil: without a
// repository leads are not stored, without a sender they fall back to
// mailto.
func NewService(repo *Repository, sender email.Sender, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		sender: sender,
		site:   cfg.Site,
		log:    log.With(logger.Scope("leads.svc")),
		now:    time.Now,
	}
}

// Submit validates form and, when it is valid, stores and emails the lead.
// Only a validation failure is returned as an error; delivery failures are
// reported through the Result and a toast on the view.
func (s *Service) Submit(ctx context.Context, v *views.View, form Form) (*Result, error) {
	ctx, span := tracing.Start(ctx, "leads.submit", attribute.String("getcalls.view.id", v.ID))
	defer span.End()

	if errs := Validate(form); len(errs) > 0 {
		metrics.Leads.WithLabelValues("invalid").Inc()
		return nil, apperror.NewValidation(errs)
	}
	form = form.Normalize()

	now := s.now().UTC()
	lead := &Lead{
		ID:           uuid.NewString(),
		ViewID:       v.ID,
		Name:         form.Name,
		Phone:        form.Phone,
		Email:        form.Email,
		BusinessType: form.BusinessType,
		Message:      form.Message,
		Plan:         planFrom(v),
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.store(ctx, lead)

	if s.sender == nil {
		s.finish(ctx, lead, StatusUnconfigured, "", "")
		metrics.Leads.WithLabelValues(string(StatusUnconfigured)).Inc()
		return &Result{
			LeadID: lead.ID,
			Status: StatusUnconfigured,
			Mailto: s.MailtoURL(lead),
			Toast:  v.Toast(MsgUnconfigured, toast.KindInfo, unconfiguredTTL),
		}, nil
	}

	provider := s.sender.Name()
	_, err := s.sender.Send(ctx, email.Message{
		TemplateID: email.TemplateLeadNotification,
		To:         s.site.ContactEmail,
		ToName:     s.site.OwnerName,
		ReplyTo:    lead.Email,
		Params:     s.notificationParams(lead),
	})
	if err != nil {
		tracing.Fail(span, err)
		metrics.EmailsSent.WithLabelValues(provider, "error").Inc()
		metrics.Leads.WithLabelValues(string(StatusFailed)).Inc()
		s.log.Warn("lead email failed",
			slog.String("lead_id", lead.ID),
			slog.String("provider", provider),
			logger.Error(err))
		s.finish(ctx, lead, StatusFailed, provider, err.Error())
		return &Result{
			LeadID: lead.ID,
			Status: StatusFailed,
			Mailto: s.MailtoURL(lead),
			Toast:  v.Toast(MsgFailed, toast.KindError, failedTTL),
		}, nil
	}
	metrics.EmailsSent.WithLabelValues(provider, "ok").Inc()

	s.confirm(ctx, lead)
	s.finish(ctx, lead, StatusSent, provider, "")
	metrics.Leads.WithLabelValues(string(StatusSent)).Inc()

	v.Modal.Update(ContactModal, map[string]any{
		"submitted": true,
		"email":     lead.Email,
	})
	return &Result{
		LeadID: lead.ID,
		Status: StatusSent,
		Toast:  v.Toast(MsgSent, toast.KindSuccess, sentTTL),
	}, nil
}

// confirm sends the auto-reply to the submitter. Its outcome never changes
// the result of the submission.
func (s *Service) confirm(ctx context.Context, lead *Lead) {
	provider := s.sender.Name()
	_, err := s.sender.Send(ctx, email.Message{
		TemplateID: email.TemplateLeadConfirmation,
		To:         lead.Email,
		ToName:     lead.Name,
		Params: map[string]string{
			"to_email":  lead.Email,
			"user_name": lead.Name,
		},
	})
	if err != nil {
		metrics.EmailsSent.WithLabelValues(provider, "error").Inc()
		s.log.Debug("confirmation email failed", slog.String("lead_id", lead.ID), logger.Error(err))
		return
	}
	metrics.EmailsSent.WithLabelValues(provider, "ok").Inc()
}

func (s *Service) store(ctx context.Context, lead *Lead) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Insert(ctx, lead); err != nil {
		s.log.Warn("lead not stored", slog.String("lead_id", lead.ID), logger.Error(err))
	}
}

func (s *Service) finish(ctx context.Context, lead *Lead, status Status, provider, errMsg string) {
	lead.Status = status
	lead.Provider = provider
	lead.Error = errMsg
	if s.repo == nil {
		return
	}
	if err := s.repo.UpdateStatus(ctx, lead.ID, status, provider, errMsg); err != nil {
		s.log.Warn("lead status not stored", slog.String("lead_id", lead.ID), logger.Error(err))
	}
}

func (s *Service) notificationParams(lead *Lead) map[string]string {
	return map[string]string{
		"to_name":       s.site.OwnerName,
		"from_name":     lead.Name,
		"from_email":    lead.Email,
		"from_phone":    lead.Phone,
		"business_type": lead.BusinessType,
		"message":       lead.Message,
		"plan":          lead.Plan,
		"reply_to":      lead.Email,
		"user_name":     lead.Name,
	}
}

// MailtoURL builds a mailto: link to the site owner prefilled with the lead.
func (s *Service) MailtoURL(lead *Lead) string {
	subject := fmt.Sprintf("Website request from %s", lead.Name)

	var body strings.Builder
	fmt.Fprintf(&body, "Name: %s\n", lead.Name)
	fmt.Fprintf(&body, "Phone: %s\n", lead.Phone)
	fmt.Fprintf(&body, "Email: %s\n", lead.Email)
	fmt.Fprintf(&body, "Business: %s\n", lead.BusinessType)
	fmt.Fprintf(&body, "Plan: %s\n\n", lead.Plan)
	body.WriteString(lead.Message)

	return "mailto:" + s.site.ContactEmail +
		"?subject=" + mailtoEscape(subject) +
		"&body=" + mailtoEscape(body.String())
}

// mailtoEscape is query escaping with %20 for spaces; mail clients do not
// decode "+".
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// planFrom reads the plan label the contact dialog was opened with.
func planFrom(v *views.View) string {
	if !v.Modal.IsOpen(ContactModal) {
		return DefaultPlan
	}
	plan, _ := v.Modal.Payload()["plan"].(string)
	plan = strings.TrimSpace(plan)
	if plan == "" {
		return DefaultPlan
	}
	if r := []rune(plan); len(r) > MaxPlanLen {
		plan = strings.TrimSpace(string(r[:MaxPlanLen]))
	}
	return plan
}
