package intimate

import (
	"context"
	"errors"

	"socialnet/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the storage the manager needs.
type Repository interface {
	UserExists(ctx context.Context, id uint) (bool, error)
	// Insert stores rec unless a record with the same pair key exists.
	// It reports whether a row was written.
	Insert(ctx context.Context, rec *models.Intimate) (bool, error)
	FindDirected(ctx context.Context, sender, receiver uint) ([]models.Intimate, error)
	FindBetween(ctx context.Context, a, b uint) (*models.Intimate, error)
	Update(ctx context.Context, id uint, fields map[string]any) error

	PendingFor(ctx context.Context, receiver uint) ([]models.Intimate, error)
	PendingFrom(ctx context.Context, sender uint) ([]models.Intimate, error)
	Accepted(ctx context.Context, user uint) ([]models.Intimate, error)
	RejectedBy(ctx context.Context, receiver uint) ([]models.Intimate, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UserExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) Insert(ctx context.Context, rec *models.Intimate) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindDirected(ctx context.Context, sender, receiver uint) ([]models.Intimate, error) {
	var recs []models.Intimate
	// Two rows are enough to tell "unique" from "ambiguous".
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", sender, receiver).
		Order("id").
		Limit(2).
		Find(&recs).Error
	return recs, err
}

func (r *repository) FindBetween(ctx context.Context, a, b uint) (*models.Intimate, error) {
	var rec models.Intimate
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("id").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Intimate{ID: id}).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) PendingFor(ctx context.Context, receiver uint) ([]models.Intimate, error) {
	var recs []models.Intimate
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ? AND request = ? AND approval = ? AND reject = ?", receiver, true, false, false).
		Order("created_at, id").
		Find(&recs).Error
	return recs, err
}

func (r *repository) PendingFrom(ctx context.Context, sender uint) ([]models.Intimate, error) {
	var recs []models.Intimate
	err := r.db.WithContext(ctx).
		Preload("Receiver").
		Where("sender_id = ? AND request = ? AND approval = ?", sender, true, false).
		Order("created_at, id").
		Find(&recs).Error
	return recs, err
}

func (r *repository) Accepted(ctx context.Context, user uint) ([]models.Intimate, error) {
	var recs []models.Intimate
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("request = ? AND approval = ? AND (sender_id = ? OR receiver_id = ?)", true, true, user, user).
		Order("date, id").
		Find(&recs).Error
	return recs, err
}

func (r *repository) RejectedBy(ctx context.Context, receiver uint) ([]models.Intimate, error) {
	var recs []models.Intimate
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ? AND reject = ?", receiver, true).
		Order("updated_at, id").
		Find(&recs).Error
	return recs, err
}
