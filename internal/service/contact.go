package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

type ContactService struct {
	Gate     Authenticator
	Contacts ContactRepository
}

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

func (s *ContactService) Save(ctx context.Context, token string, in ContactInput) (*models.Contact, error) {
	rec, err := s.Gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return nil, err
	}

	c := &models.Contact{
		Name:    strings.TrimSpace(in.Name),
		Email:   normalizeEmail(in.Email),
		Message: strings.TrimSpace(in.Message),
		UserID:  rec.AccountID,
	}
	if c.Name == "" || c.Email == "" || c.Message == "" {
		return nil, invalid(MsgMissingContactField)
	}

	if err := s.Contacts.CreateContact(ctx, c); err != nil {
		return nil, internal(ctx, "contact", "contact_save", err)
	}
	logging.FromContext(ctx).With("svc", "contact").Info("contact_save", "status", "ok", "user_id", rec.AccountID)
	return c, nil
}

func (s *ContactService) Mine(ctx context.Context, token string) ([]models.Contact, error) {
	rec, err := s.Gate.RequireAuthenticated(ctx, token)
	if err != nil {
		return nil, err
	}

	contacts, err := s.Contacts.ListContactsByUser(ctx, rec.AccountID)
	if err != nil {
		return nil, internal(ctx, "contact", "contact_list", err)
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return contacts, nil
}
