package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

// GormStore persists sessions in the sessions table.
type GormStore struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, now: time.Now}
}

func (s *GormStore) Create(ctx context.Context, accountID uuid.UUID, name string, isAdmin bool) (*Record, error) {
	rec, err := newRecord(accountID, name, isAdmin, s.now().UTC())
	if err != nil {
		return nil, err
	}

	row := models.Session{
		TokenHash: hashToken(rec.Token),
		AccountID: rec.AccountID,
		Name:      rec.Name,
		IsAdmin:   rec.IsAdmin,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *GormStore) Get(ctx context.Context, token string) (*Record, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	var row models.Session
	err := s.DB.WithContext(ctx).Where("token_hash = ?", hashToken(token)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec := &Record{
		Token:     token,
		AccountID: row.AccountID,
		Name:      row.Name,
		IsAdmin:   row.IsAdmin,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}
	if rec.Expired(s.now()) {
		if err := s.Destroy(ctx, token); err != nil {
			logging.FromContext(ctx).With("svc", "session").Warn("session_expire_delete_failed", "error", err)
		}
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *GormStore) Destroy(ctx context.Context, token string) error {
	return s.DB.WithContext(ctx).
		Where("token_hash = ?", hashToken(token)).
		Delete(&models.Session{}).Error
}

// PurgeExpired deletes every expired row and reports how many went away.
func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("expires_at <= ?", s.now().UTC()).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// RunJanitor purges expired rows every interval until ctx is done.
func (s *GormStore) RunJanitor(ctx context.Context, interval time.Duration, l *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				l.Warn("session_purge_failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("session_purge", "deleted", n)
			}
		}
	}
}
