// Package memory はプロセス内で完結する会社リポジトリです。ローカル実行とテストで利用します。
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ogurasousui/company-sites/internal/core/company"
)

// CompanyRepository はマップを利用した会社永続化の実装です。
type CompanyRepository struct {
	mu        sync.RWMutex
	companies map[string]*company.Company
}

var _ company.Repository = (*CompanyRepository)(nil)

// NewCompanyRepository は空の CompanyRepository を生成します。
func NewCompanyRepository() *CompanyRepository {
	return &CompanyRepository{companies: make(map[string]*company.Company)}
}

// GetAll はすべての会社をコード順に取得します。
func (r *CompanyRepository) GetAll(ctx context.Context) ([]*company.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.companies))
	for code := range r.companies {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	result := make([]*company.Company, 0, len(codes))
	for _, code := range codes {
		result = append(result, r.companies[code].Clone())
	}
	return result, nil
}

// GetByCode はコードで会社を取得します。
func (r *CompanyRepository) GetByCode(ctx context.Context, code string) (*company.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies[code]
	if !ok {
		return nil, company.ErrCompanyNotFound
	}
	return c.Clone(), nil
}

// Save は会社を保存します。SaveModeCreate でコードが重複した場合は false を返します。
func (r *CompanyRepository) Save(ctx context.Context, c *company.Company, mode company.SaveMode) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch mode {
	case company.SaveModeCreate:
		if _, exists := r.companies[c.Code]; exists {
			return false, nil
		}
	case company.SaveModeReplace:
	default:
		return false, fmt.Errorf("memory: save mode %d: %w", mode, company.ErrUnknownSaveMode)
	}

	r.companies[c.Code] = c.Clone()
	return true, nil
}

// Delete はコードで会社を削除し、削除できた場合は true を返します。
func (r *CompanyRepository) Delete(ctx context.Context, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.companies[code]; !ok {
		return false, nil
	}
	delete(r.companies, code)
	return true, nil
}
