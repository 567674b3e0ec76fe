package relational

import (
	"context"

	"github.com/dom/chat-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	row := &userRow{
		ID:           uuid.NewString(),
		FullName:     user.FullName,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Token:        user.Token,
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}

	user.ID = row.ID
	user.CreatedAt = row.CreatedAt
	user.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	userID, ok := normalizeID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return row.toDomain(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return row.toDomain(), nil
}

func (r *userRepository) UpdateToken(ctx context.Context, id string, token string) error {
	userID, ok := normalizeID(id)
	if !ok {
		return domain.ErrNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&userRow{}).
		Where("id = ?", userID).
		Update("token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListExcluding returns every user except id. A malformed id excludes nobody.
func (r *userRepository) ListExcluding(ctx context.Context, id string) ([]*domain.User, error) {
	query := r.db.WithContext(ctx).Order("created_at, id")
	if userID, ok := normalizeID(id); ok {
		query = query.Where("id <> ?", userID)
	}

	var rows []userRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toDomain())
	}
	return users, nil
}
