package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandeepkv93/one-time-unlock-service/internal/database"
	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/repository"

	"gorm.io/gorm"
)

var errStoreDown = errors.New("store down")

func newCodeRepoForServiceTest(t *testing.T) repository.CodeRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	return repository.NewCodeRepository(openServiceTestDB(t, dsn))
}

func newFileCodeRepoForServiceTest(t *testing.T) repository.CodeRepository {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "codes.db") + "?_busy_timeout=10000&_journal_mode=WAL"
	db := openServiceTestDB(t, dsn)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(8)
	return repository.NewCodeRepository(db)
}

func openServiceTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedCodes(t *testing.T, repo repository.CodeRepository, batch string, codes ...string) {
	t.Helper()
	for _, code := range codes {
		if _, err := repo.InsertIfAbsent(context.Background(), code, batch); err != nil {
			t.Fatalf("seed %s: %v", code, err)
		}
	}
}

// failingCodeRepository fails every call with errStoreDown.
type failingCodeRepository struct{}

func (failingCodeRepository) InsertIfAbsent(context.Context, string, string) (bool, error) {
	return false, errStoreDown
}
func (failingCodeRepository) Get(context.Context, string) (*domain.Code, error) {
	return nil, errStoreDown
}
func (failingCodeRepository) TryRedeem(context.Context, string) (domain.TryRedeemResult, error) {
	return domain.TryRedeemNotFound, errStoreDown
}
func (failingCodeRepository) CountTotal(context.Context) (int64, error)    { return 0, errStoreDown }
func (failingCodeRepository) CountRedeemed(context.Context) (int64, error) { return 0, errStoreDown }
func (failingCodeRepository) ListByBatch(context.Context, string) ([]domain.Code, error) {
	return nil, errStoreDown
}
func (failingCodeRepository) ListAll(context.Context) ([]domain.Code, error) {
	return nil, errStoreDown
}
func (failingCodeRepository) ListPaged(context.Context, repository.CodeListQuery) (repository.PageResult[domain.Code], error) {
	return repository.PageResult[domain.Code]{}, errStoreDown
}
func (failingCodeRepository) Ping(context.Context) error { return errStoreDown }

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
