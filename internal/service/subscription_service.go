package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	mailer "portfolio-api/internal/mail"
	"portfolio-api/internal/model"
)

type SubscriberStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, s model.Subscriber) error
	DeleteByEmail(ctx context.Context, email string) error
	List(ctx context.Context) ([]model.Subscriber, error)
}

type SubscriptionService struct {
	store  SubscriberStore
	sender mailer.Sender
}

func NewSubscriptionService(store SubscriberStore, sender mailer.Sender) *SubscriptionService {
	return &SubscriptionService{store: store, sender: sender}
}

// Subscribe adds a case-normalized email to the mailing list and sends a
// best-effort welcome email. A non-empty warning reports delivery failure.
func (s *SubscriptionService) Subscribe(ctx context.Context, email string) (model.Subscriber, string, error) {
	if err := validateEmail(email); err != nil {
		return model.Subscriber{}, "", err
	}
	normalized := normalizeEmail(email)

	exists, err := s.store.ExistsByEmail(ctx, normalized)
	if err != nil {
		return model.Subscriber{}, "", err
	}
	if exists {
		return model.Subscriber{}, "", model.ErrAlreadySubscribed
	}

	subscriber := model.Subscriber{
		ID:        uuid.NewString(),
		Email:     normalized,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, subscriber); err != nil {
		return model.Subscriber{}, "", err
	}

	warning := ""
	if err := s.sender.Send(ctx, normalized, "Welcome to the mailing list",
		"<p>Thanks for subscribing. You will hear about new articles and projects here.</p>"); err != nil {
		slog.Warn("welcome email failed", "email", normalized, "error", err)
		warning = "welcome email could not be delivered"
	}

	return subscriber, warning, nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	return s.store.DeleteByEmail(ctx, normalizeEmail(email))
}

func (s *SubscriptionService) List(ctx context.Context) ([]model.Subscriber, error) {
	return s.store.List(ctx)
}
