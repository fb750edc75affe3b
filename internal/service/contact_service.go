package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	mailer "portfolio-api/internal/mail"
	"portfolio-api/internal/model"
	"portfolio-api/pkg/apierror"
)

type MessageStore interface {
	Create(ctx context.Context, m model.Message) error
	List(ctx context.Context, kind model.MessageKind) ([]model.Message, error)
}

// ContactService persists contact-form and work-request submissions and
// notifies the site owner by email. The database write is authoritative;
// email delivery is best-effort and surfaced as a warning only.
type ContactService struct {
	store    MessageStore
	sender   mailer.Sender
	notifyTo string
}

func NewContactService(store MessageStore, sender mailer.Sender, notifyTo string) *ContactService {
	return &ContactService{store: store, sender: sender, notifyTo: notifyTo}
}

// SubmitContact stores the message and returns a non-empty warning when the
// notification email could not be sent.
func (s *ContactService) SubmitContact(ctx context.Context, req model.ContactRequest) (model.Message, string, error) {
	if err := validateEmail(req.Email); err != nil {
		return model.Message{}, "", err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Message) == "" {
		return model.Message{}, "", apierror.BadRequest("Name and message are required")
	}

	message := model.Message{
		ID:        uuid.NewString(),
		Kind:      model.MessageKindContact,
		Name:      strings.TrimSpace(req.Name),
		Email:     normalizeEmail(req.Email),
		Body:      strings.TrimSpace(req.Message),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, message); err != nil {
		return model.Message{}, "", err
	}

	warning := s.notify(ctx, "New contact message from "+message.Name, contactHTML(message))
	return message, warning, nil
}

func (s *ContactService) SubmitWorkRequest(ctx context.Context, req model.WorkRequestRequest) (model.Message, string, error) {
	if err := validateEmail(req.Email); err != nil {
		return model.Message{}, "", err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Details) == "" {
		return model.Message{}, "", apierror.BadRequest("Name and details are required")
	}

	message := model.Message{
		ID:        uuid.NewString(),
		Kind:      model.MessageKindWorkRequest,
		Name:      strings.TrimSpace(req.Name),
		Email:     normalizeEmail(req.Email),
		Company:   strings.TrimSpace(req.Company),
		Budget:    strings.TrimSpace(req.Budget),
		Body:      strings.TrimSpace(req.Details),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, message); err != nil {
		return model.Message{}, "", err
	}

	warning := s.notify(ctx, "New work request from "+message.Name, workRequestHTML(message))
	return message, warning, nil
}

func (s *ContactService) ListMessages(ctx context.Context, kind model.MessageKind) ([]model.Message, error) {
	return s.store.List(ctx, kind)
}

func (s *ContactService) notify(ctx context.Context, subject string, body string) string {
	if s.notifyTo == "" {
		return ""
	}
	if err := s.sender.Send(ctx, s.notifyTo, subject, body); err != nil {
		slog.Warn("notification email failed", "subject", subject, "error", err)
		return "notification email could not be delivered"
	}
	return ""
}

func contactHTML(m model.Message) string {
	return fmt.Sprintf(
		"<h2>Contact message</h2><p><b>From:</b> %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(m.Name), html.EscapeString(m.Email), html.EscapeString(m.Body))
}

func workRequestHTML(m model.Message) string {
	return fmt.Sprintf(
		"<h2>Work request</h2><p><b>From:</b> %s &lt;%s&gt;</p><p><b>Company:</b> %s</p><p><b>Budget:</b> %s</p><p>%s</p>",
		html.EscapeString(m.Name), html.EscapeString(m.Email),
		html.EscapeString(m.Company), html.EscapeString(m.Budget), html.EscapeString(m.Body))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	cleaned := strings.TrimSpace(email)
	if cleaned == "" {
		return apierror.BadRequest("Email is required")
	}
	if _, err := mail.ParseAddress(cleaned); err != nil {
		return apierror.BadRequest("Email is not valid")
	}
	return nil
}
