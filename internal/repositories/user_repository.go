package repositories

import (
	"context"

	"chrona/internal/apperrors"
	"chrona/internal/models"
	"chrona/internal/store"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail and GetByExternalID return (nil, nil) when no user matches.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

type userRepository struct {
	db store.Store
}

func NewUserRepository(db store.Store) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	id, err := r.db.Create(ctx, store.CollectionUsers, UserToFields(user))
	if err != nil {
		return apperrors.Upstream(err, "create user")
	}
	user.ID = id
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.db.Get(ctx, store.CollectionUsers, id)
	if err != nil {
		return nil, storeErr(err, "user", id)
	}
	return UserFromDocument(*doc)
}

func (r *userRepository) findOne(ctx context.Context, field, value string) (*models.User, error) {
	docs, err := r.db.Query(ctx, store.From(store.CollectionUsers).
		Where(field, store.OpEqual, value).
		Limit(1))
	if err != nil {
		return nil, apperrors.Upstream(err, "query users by %s", field)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return UserFromDocument(docs[0])
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, fieldEmail, email)
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.findOne(ctx, fieldExternalIdentityID, externalID)
}
