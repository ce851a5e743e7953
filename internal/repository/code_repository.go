package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCodeNotFound = errors.New("code not found")

type CodeListQuery struct {
	PageRequest
	State domain.CodeState
	Batch string
}

type CodeRepository interface {
	InsertIfAbsent(ctx context.Context, code, batch string) (bool, error)
	Get(ctx context.Context, code string) (*domain.Code, error)
	TryRedeem(ctx context.Context, code string) (domain.TryRedeemResult, error)
	CountTotal(ctx context.Context) (int64, error)
	CountRedeemed(ctx context.Context) (int64, error)
	ListByBatch(ctx context.Context, batch string) ([]domain.Code, error)
	ListAll(ctx context.Context) ([]domain.Code, error)
	ListPaged(ctx context.Context, query CodeListQuery) (PageResult[domain.Code], error)
	Ping(ctx context.Context) error
}

type GormCodeRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCodeRepository(db *gorm.DB) CodeRepository {
	return NewCodeRepositoryWithClock(db, time.Now)
}

func NewCodeRepositoryWithClock(db *gorm.DB, now func() time.Time) CodeRepository {
	if now == nil {
		now = time.Now
	}
	return &GormCodeRepository{db: db, now: now}
}

func (r *GormCodeRepository) InsertIfAbsent(ctx context.Context, value, batch string) (bool, error) {
	code := domain.Code{
		Value:     value,
		State:     domain.CodeStateUnredeemed,
		Batch:     batch,
		CreatedAt: r.now().UTC(),
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&code)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "code", "insert_if_absent", "error")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "code", "insert_if_absent", "exists")
		return false, nil
	}
	observability.RecordRepositoryOperation(ctx, "code", "insert_if_absent", "success")
	return true, nil
}

func (r *GormCodeRepository) Get(ctx context.Context, value string) (*domain.Code, error) {
	var c domain.Code
	err := r.db.WithContext(ctx).Where("code = ?", value).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "code", "get", "not_found")
			return nil, ErrCodeNotFound
		}
		observability.RecordRepositoryOperation(ctx, "code", "get", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "code", "get", "success")
	return &c, nil
}

// TryRedeem flips an unredeemed code to redeemed with one conditional UPDATE.
// The database serializes writers on the row, so among concurrent callers for
// the same code exactly one sees a row affected. A zero-row result is then
// classified by an existence probe; a redeemed code never changes back, so the
// probe cannot misreport a code that another caller just consumed.
func (r *GormCodeRepository) TryRedeem(ctx context.Context, value string) (domain.TryRedeemResult, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Code{}).
		Where("code = ? AND state = ?", value, domain.CodeStateUnredeemed).
		Updates(map[string]any{
			"state":       domain.CodeStateRedeemed,
			"redeemed_at": r.now().UTC(),
		})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "code", "try_redeem", "error")
		return domain.TryRedeemNotFound, res.Error
	}
	if res.RowsAffected > 0 {
		observability.RecordRepositoryOperation(ctx, "code", "try_redeem", "success")
		return domain.TryRedeemSuccess, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Code{}).Where("code = ?", value).Count(&count).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "code", "try_redeem", "error")
		return domain.TryRedeemNotFound, err
	}
	if count == 0 {
		observability.RecordRepositoryOperation(ctx, "code", "try_redeem", "not_found")
		return domain.TryRedeemNotFound, nil
	}
	observability.RecordRepositoryOperation(ctx, "code", "try_redeem", "already_redeemed")
	return domain.TryRedeemAlreadyRedeemed, nil
}

func (r *GormCodeRepository) CountTotal(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Code{}).Count(&n).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "code", "count_total", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "code", "count_total", "success")
	return n, nil
}

func (r *GormCodeRepository) CountRedeemed(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Code{}).
		Where("state = ?", domain.CodeStateRedeemed).
		Count(&n).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "code", "count_redeemed", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "code", "count_redeemed", "success")
	return n, nil
}

func (r *GormCodeRepository) ListByBatch(ctx context.Context, batch string) ([]domain.Code, error) {
	codes := make([]domain.Code, 0)
	err := r.db.WithContext(ctx).
		Where("batch = ?", batch).
		Order("created_at ASC").
		Order("code ASC").
		Find(&codes).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "code", "list_by_batch", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "code", "list_by_batch", "success")
	return codes, nil
}

func (r *GormCodeRepository) ListAll(ctx context.Context) ([]domain.Code, error) {
	codes := make([]domain.Code, 0)
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("code ASC").
		Find(&codes).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "code", "list_all", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "code", "list_all", "success")
	return codes, nil
}

func (r *GormCodeRepository) ListPaged(ctx context.Context, query CodeListQuery) (PageResult[domain.Code], error) {
	req := normalizePageRequest(query.PageRequest)
	result := PageResult[domain.Code]{
		Items:    []domain.Code{},
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	base := r.db.WithContext(ctx).Model(&domain.Code{})
	if query.State != "" {
		base = base.Where("state = ?", query.State)
	}
	if query.Batch != "" {
		base = base.Where("batch = ?", query.Batch)
	}

	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "code", "list_paged", "error")
		return PageResult[domain.Code]{}, err
	}
	offset := (req.Page - 1) * req.PageSize
	err := base.Session(&gorm.Session{}).
		Order("created_at ASC").
		Order("code ASC").
		Offset(offset).
		Limit(req.PageSize).
		Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "code", "list_paged", "error")
		return PageResult[domain.Code]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(ctx, "code", "list_paged", "success")
	return result, nil
}

func (r *GormCodeRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
