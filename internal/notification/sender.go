package notification

import (
	"context"
	"errors"
	"fmt"

	"smarthome-be/internal/email"
	"smarthome-be/internal/logger"
	"smarthome-be/internal/order"

	"go.uber.org/zap"
)

// Sender mails the receipt to the customer and a copy to the shop.
type Sender struct {
	mailer     email.Mailer
	branding   Branding
	from       string
	adminEmail string
}

func NewSender(mailer email.Mailer, branding Branding, from, adminEmail string) *Sender {
	return &Sender{mailer: mailer, branding: branding, from: from, adminEmail: adminEmail}
}

func (s *Sender) SendReceipt(ctx context.Context, o *order.Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "notification"),
		zap.String("number", o.Number),
	)

	subject, html, err := RenderReceipt(o, s.branding)
	if err != nil {
		return err
	}

	var errs []error
	if o.Email != "" {
		if err := s.send(ctx, o.Email, subject, html); err != nil {
			errs = append(errs, fmt.Errorf("customer receipt: %w", err))
		}
	}
	if s.adminEmail != "" {
		if err := s.send(ctx, s.adminEmail, "[New order] "+subject, html); err != nil {
			errs = append(errs, fmt.Errorf("admin copy: %w", err))
		}
	}

	if len(errs) == 0 {
		log.Info("receipt sent", zap.Bool("customer", o.Email != ""), zap.Bool("admin", s.adminEmail != ""))
	}
	return errors.Join(errs...)
}

func (s *Sender) send(ctx context.Context, to, subject, html string) error {
	return s.mailer.Send(ctx, email.Message{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
}
