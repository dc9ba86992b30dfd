package repository

import (
	"context"

	"backend/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter scopes a request listing per the access policy. Name and
// Division are only consulted for the matching scope.
type RequestFilter struct {
	Scope    workflow.Scope
	Name     string
	Division string
	Status   string // optional overall_status filter
	Page     int
	Limit    int
}

// RequestRepository persists one request kind. All four kinds share the
// same store shape, so a single generic implementation serves them all.
type RequestRepository[T any] interface {
	Create(ctx context.Context, req *T) error
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	// FindByIDForUpdate loads the request under a row-level lock. Must be
	// called inside a transaction; the lock guards the stage transition
	// against concurrent decisions.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, f RequestFilter) ([]T, int64, error)
	Update(ctx context.Context, req *T) error
}

type requestRepository[T any] struct {
	db *gorm.DB
}

func NewRequestRepository[T any](db *gorm.DB) RequestRepository[T] {
	return &requestRepository[T]{db: db}
}

func (r *requestRepository[T]) Create(ctx context.Context, req *T) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var req T
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository[T]) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*T, error) {
	var req T
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository[T]) List(ctx context.Context, f RequestFilter) ([]T, int64, error) {
	var requests []T
	var total int64

	db := GetDB(ctx, r.db)

	scoped := func(q *gorm.DB) *gorm.DB {
		switch f.Scope {
		case workflow.ScopeOwn:
			q = q.Where("name = ?", f.Name)
		case workflow.ScopeDivision:
			q = q.Where("LOWER(TRIM(division)) = LOWER(TRIM(?))", f.Division)
		}
		if f.Status != "" {
			q = q.Where("overall_status = ?", f.Status)
		}
		return q
	}

	var m T
	if err := scoped(db.Model(&m)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	limit := f.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit

	if err := scoped(db).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository[T]) Update(ctx context.Context, req *T) error {
	return GetDB(ctx, r.db).Save(req).Error
}
