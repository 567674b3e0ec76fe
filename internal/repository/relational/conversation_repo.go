package relational

import (
	"context"
	"errors"

	"github.com/dom/chat-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *conversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	a, b, ok := normalizePair(conv.Members[0], conv.Members[1])
	if !ok {
		return domain.ErrInvalidID
	}

	row := &conversationRow{
		ID:      uuid.NewString(),
		MemberA: a,
		MemberB: b,
		PairKey: domain.PairKey(a, b),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}

	*conv = *row.toDomain()
	return nil
}

func (r *conversationRepository) FindByMembers(ctx context.Context, a, b string) (*domain.Conversation, error) {
	a, b, ok := normalizePair(a, b)
	if !ok {
		return nil, domain.ErrNotFound
	}

	row, err := firstByPair(r.db.WithContext(ctx), domain.PairKey(a, b))
	if err != nil {
		return nil, notFound(err)
	}
	return row.toDomain(), nil
}

// FindOrCreate runs lookup and insert in one transaction. On PostgreSQL a
// transaction-scoped advisory lock on the pair key serializes concurrent callers;
// SQLite has a single connection.
func (r *conversationRepository) FindOrCreate(ctx context.Context, a, b string) (*domain.Conversation, bool, error) {
	a, b, ok := normalizePair(a, b)
	if !ok {
		return nil, false, domain.ErrInvalidID
	}
	key := domain.PairKey(a, b)

	var (
		row     *conversationRow
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
				return err
			}
		}

		existing, err := firstByPair(tx, key)
		if err == nil {
			row = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		row = &conversationRow{
			ID:      uuid.NewString(),
			MemberA: a,
			MemberB: b,
			PairKey: key,
		}
		created = true
		return tx.Create(row).Error
	})
	if err != nil {
		return nil, false, err
	}

	return row.toDomain(), created, nil
}

func (r *conversationRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	id, ok := normalizeID(userID)
	if !ok {
		return []*domain.Conversation{}, nil
	}

	var rows []conversationRow
	err := r.db.WithContext(ctx).
		Where("member_a = ? OR member_b = ?", id, id).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	convs := make([]*domain.Conversation, 0, len(rows))
	for i := range rows {
		convs = append(convs, rows[i].toDomain())
	}
	return convs, nil
}

// firstByPair returns the earliest conversation for a pair key.
func firstByPair(db *gorm.DB, key string) (*conversationRow, error) {
	var row conversationRow
	err := db.Where("pair_key = ?", key).
		Order("created_at, id").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
