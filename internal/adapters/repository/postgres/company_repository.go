package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/company-sites/internal/core/company"
	pgdb "github.com/ogurasousui/company-sites/internal/platform/db/postgres"
)

const uniqueViolationCode = "23505"

const selectCompanyColumns = `SELECT code, site_id, name, description, created_at, updated_at
          FROM companies`

// CompanyRepository は PostgreSQL を利用した会社永続化の実装です。
type CompanyRepository struct {
	pool pgdb.Queryer
}

var _ company.Repository = (*CompanyRepository)(nil)

// NewCompanyRepository は CompanyRepository を生成します。
func NewCompanyRepository(pool pgdb.Queryer) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// GetAll はすべての会社をコード順に取得します。
func (r *CompanyRepository) GetAll(ctx context.Context) ([]*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, selectCompanyColumns+`
         ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]*company.Company, 0)
	for rows.Next() {
		found, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, found)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list companies: %w", err)
	}

	return companies, nil
}

// GetByCode はコードで会社を取得します。
func (r *CompanyRepository) GetByCode(ctx context.Context, code string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, selectCompanyColumns+`
         WHERE code = $1
         LIMIT 1`, code)

	return scanCompany(row)
}

// Save は会社を保存します。SaveModeCreate でコードが重複した場合は false を返します。
func (r *CompanyRepository) Save(ctx context.Context, c *company.Company, mode company.SaveMode) (bool, error) {
	var query string
	switch mode {
	case company.SaveModeCreate:
		query = insertCompany + `
        ON CONFLICT (code) DO NOTHING`
	case company.SaveModeReplace:
		query = insertCompany + `
        ON CONFLICT (code) DO UPDATE
           SET site_id = EXCLUDED.site_id,
               name = EXCLUDED.name,
               description = EXCLUDED.description,
               updated_at = EXCLUDED.updated_at`
	default:
		return false, fmt.Errorf("postgres: save mode %d: %w", mode, company.ErrUnknownSaveMode)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, query,
		c.Code, nullableString(c.SiteID), c.Name, nullableString(c.Description), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("postgres: save company %s: %w", c.Code, err)
	}

	return tag.RowsAffected() > 0, nil
}

const insertCompany = `
        INSERT INTO companies (code, site_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

// Delete はコードで会社を削除し、削除した行があれば true を返します。
func (r *CompanyRepository) Delete(ctx context.Context, code string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM companies WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("postgres: delete company %s: %w", code, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		code, name           string
		siteID, description  sql.NullString
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&code, &siteID, &name, &description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("postgres: scan company: %w", err)
	}

	return &company.Company{
		Code:        code,
		SiteID:      stringPtr(siteID),
		Name:        name,
		Description: stringPtr(description),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
