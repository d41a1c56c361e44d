package runs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partbridge/partbridge/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogRun saves one pipeline invocation to the audit trail.
func (r *Repository) LogRun(run *entities.ImportRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	return r.db.Create(run).Error
}

// GetRuns retrieves paginated runs, most recent first.
func (r *Repository) GetRuns(limit, offset int) ([]entities.ImportRun, int64, error) {
	var runs []entities.ImportRun
	var total int64

	if err := r.db.Model(&entities.ImportRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&runs).Error
	return runs, total, err
}

// DeleteOldRuns removes runs older than the given time. Returns the number
// of deleted rows.
func (r *Repository) DeleteOldRuns(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.ImportRun{})
	return result.RowsAffected, result.Error
}
