package inmem

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/edu-payroll-backend-go/internal/domain/payrule"
	"github.com/google/uuid"
)

type configRepository struct {
	db *DB
}

func NewPayRuleConfigRepository(db *DB) payrule.ConfigRepository {
	return &configRepository{db: db}
}

func (repo *configRepository) GetActive(ctx context.Context) (payrule.Config, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.config == nil {
		return payrule.Config{}, payrule.ErrPayRuleConfigNotFound
	}
	return repo.db.config.Clone(), nil
}

func (repo *configRepository) Upsert(ctx context.Context, cfg payrule.Config) (payrule.Config, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	now := repo.db.now().UTC()
	saved := cfg.Clone()
	if repo.db.config != nil {
		saved.ID = repo.db.config.ID
		saved.CreatedAt = repo.db.config.CreatedAt
	} else {
		saved.ID = uuid.NewString()
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now
	repo.db.config = &saved
	return saved.Clone(), nil
}

type classRangeRepository struct {
	db *DB
}

func NewClassRangeRepository(db *DB) payrule.ClassRangeRepository {
	return &classRangeRepository{db: db}
}

func (repo *classRangeRepository) Create(ctx context.Context, cr payrule.ClassRange) (payrule.ClassRange, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if cr.ID == "" {
		cr.ID = uuid.NewString()
	}
	now := repo.db.now().UTC()
	cr.CreatedAt, cr.UpdatedAt = now, now
	repo.db.classRanges[cr.ID] = cr
	return cr, nil
}

func (repo *classRangeRepository) GetByID(ctx context.Context, id string) (payrule.ClassRange, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cr, ok := repo.db.classRanges[id]
	if !ok || cr.IsDeleted {
		return payrule.ClassRange{}, payrule.ErrClassRangeNotFound
	}
	return cr, nil
}

func (repo *classRangeRepository) ListActive(ctx context.Context) ([]payrule.ClassRange, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var ranges []payrule.ClassRange
	for _, cr := range repo.db.classRanges {
		if !cr.IsDeleted {
			ranges = append(ranges, cr)
		}
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].FromClass != ranges[j].FromClass {
			return ranges[i].FromClass < ranges[j].FromClass
		}
		return ranges[i].ID < ranges[j].ID
	})
	return ranges, nil
}

func (repo *classRangeRepository) Update(ctx context.Context, cr payrule.ClassRange) (payrule.ClassRange, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	current, ok := repo.db.classRanges[cr.ID]
	if !ok || current.IsDeleted {
		return payrule.ClassRange{}, payrule.ErrClassRangeNotFound
	}
	current.FromClass, current.ToClass, current.Label = cr.FromClass, cr.ToClass, cr.Label
	current.UpdatedAt = repo.db.now().UTC()
	repo.db.classRanges[cr.ID] = current
	return current, nil
}

func (repo *classRangeRepository) SoftDelete(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	current, ok := repo.db.classRanges[id]
	if !ok || current.IsDeleted {
		return payrule.ErrClassRangeNotFound
	}
	now := repo.db.now().UTC()
	current.IsDeleted = true
	current.DeletedAt = &now
	repo.db.classRanges[id] = current
	return nil
}
