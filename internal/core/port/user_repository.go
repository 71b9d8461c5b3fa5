package port

import (
	"context"
	"time"

	"github.com/ostanin/backoffice-access/internal/core/domain"
)

// UserRepository handles identity rows. Credential storage belongs to the
// authentication service, not here.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user domain.User) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}
