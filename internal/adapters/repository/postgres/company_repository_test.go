package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/company-sites/internal/core/company"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var companyColumns = []string{"code", "site_id", "name", "description", "created_at", "updated_at"}

type stubCompanyRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubCompanyRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestScanCompany_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Now().UTC()
	updatedAt := createdAt.Add(time.Minute)

	row := stubCompanyRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 6 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "ACME"

		site := dest[1].(*sql.NullString)
		site.String = "Hotel"
		site.Valid = true

		*(dest[2].(*string)) = "Acme Corp."
		*(dest[4].(*time.Time)) = createdAt
		*(dest[5].(*time.Time)) = updatedAt
		return nil
	}}

	c, err := scanCompany(row)
	if err != nil {
		t.Fatalf("scanCompany returned error: %v", err)
	}

	if c.SiteID == nil || *c.SiteID != "Hotel" {
		t.Fatalf("expected site Hotel, got %v", c.SiteID)
	}

	if c.Description != nil {
		t.Fatalf("expected nil description, got %v", *c.Description)
	}
}

func TestScanCompany_NoRows(t *testing.T) {
	t.Parallel()

	row := stubCompanyRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	if _, err := scanCompany(row); !errors.Is(err, company.ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	if !isUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}) {
		t.Fatal("expected unique violation to be detected")
	}

	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("expected foreign key violation not to be treated as unique violation")
	}

	if isUniqueViolation(errors.New("random")) {
		t.Fatal("expected generic error not to be treated as unique violation")
	}
}

func TestCompanyRepository_GetAll(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyRepository(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(companyColumns).
		AddRow("ACME", "Bravo", "Acme", nil, now, now).
		AddRow("GLOBEX", "Lima", "Globex", "Gas", now, now)

	mock.ExpectQuery(regexp.QuoteMeta(selectCompanyColumns + `
         ORDER BY code`)).
		WillReturnRows(rows)

	companies, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}

	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(companies))
	}

	if companies[1].Description == nil || *companies[1].Description != "Gas" {
		t.Fatalf("expected description Gas, got %v", companies[1].Description)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompanyRepository_GetByCode_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(selectCompanyColumns)).
		WithArgs("UNKNOWN").
		WillReturnRows(pgxmock.NewRows(companyColumns))

	if _, err := repo.GetByCode(context.Background(), "UNKNOWN"); !errors.Is(err, company.ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompanyRepository_SaveCreate(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyRepository(mock)

	now := time.Now().UTC()
	site := "Bravo"
	c := &company.Company{Code: "ACME", SiteID: &site, Name: "Acme", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (code) DO NOTHING")).
		WithArgs("ACME", "Bravo", "Acme", nil, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ok, err := repo.Save(context.Background(), c, company.SaveModeCreate)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected save to succeed")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompanyRepository_SaveCreate_Conflict(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (code) DO NOTHING")).
		WithArgs("ACME", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	ok, err := repo.Save(context.Background(), &company.Company{Code: "ACME"}, company.SaveModeCreate)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if ok {
		t.Fatal("expected conflict to report false")
	}
}

func TestCompanyRepository_SaveCreate_UniqueViolation(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO companies")).
		WithArgs("ACME", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	ok, err := repo.Save(context.Background(), &company.Company{Code: "ACME"}, company.SaveModeCreate)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if ok {
		t.Fatal("expected unique violation to report false")
	}
}

func TestCompanyRepository_SaveReplace(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (code) DO UPDATE")).
		WithArgs("ACME", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ok, err := repo.Save(context.Background(), &company.Company{Code: "ACME"}, company.SaveModeReplace)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected replace to succeed")
	}
}

func TestCompanyRepository_Save_UnknownMode(t *testing.T) {
	t.Parallel()

	repo := NewCompanyRepository(newMockPool(t))

	if _, err := repo.Save(context.Background(), &company.Company{Code: "ACME"}, company.SaveMode(99)); !errors.Is(err, company.ErrUnknownSaveMode) {
		t.Fatalf("expected ErrUnknownSaveMode, got %v", err)
	}
}

func TestCompanyRepository_Delete(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewCompanyRepository(mock)

	query := regexp.QuoteMeta(`DELETE FROM companies WHERE code = $1`)
	mock.ExpectExec(query).WithArgs("ACME").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(query).WithArgs("ACME").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := repo.Delete(context.Background(), "ACME")
	if err != nil || !deleted {
		t.Fatalf("expected first delete to succeed, got %t, %v", deleted, err)
	}

	deleted, err = repo.Delete(context.Background(), "ACME")
	if err != nil || deleted {
		t.Fatalf("expected second delete to report false, got %t, %v", deleted, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
