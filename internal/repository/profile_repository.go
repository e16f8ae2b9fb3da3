package repository

import (
	"context"

	"github.com/catireiro/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	FindByUID(ctx context.Context, userUID string) (*model.Profile, error)
	Upsert(ctx context.Context, profile *model.Profile) error
	SetDB(db *gorm.DB)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByUID(ctx context.Context, userUID string) (*model.Profile, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Profile
	if err := r.db.WithContext(ctx).First(&p, "user_uid = ?", userUID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "whatsapp", "city"}),
		}).
		Create(profile).Error
}

func (r *profileRepository) SetDB(db *gorm.DB) {
	r.db = db
}
