package company

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// UseCase は会社ユースケースの公開インターフェースです。
type UseCase interface {
	ListCompanies(ctx context.Context) ([]*Company, error)
	GetCompany(ctx context.Context, code string) (*Company, error)
	SaveCompany(ctx context.Context, candidate, existing *Company) (SaveResult, error)
	DeleteCompany(ctx context.Context, code string) (bool, error)
}

// Service は会社に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
	sites *siteAssigner
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。clock と tx が nil の場合は既定の実装を使います。
func NewService(repo Repository, clock Clock, tx TransactionManager, sharding Sharding) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, sites: newSiteAssigner(sharding)}
}

// Sites は割り当て対象のサイト一覧を返します。
func (s *Service) Sites() []string {
	return append([]string(nil), s.sites.sites...)
}

// ListCompanies はすべての会社を取得します。
func (s *Service) ListCompanies(ctx context.Context) ([]*Company, error) {
	var companies []*Company
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.GetAll(txCtx)
		if err != nil {
			return err
		}
		companies = result
		return nil
	}); err != nil {
		return nil, err
	}
	return companies, nil
}

// GetCompany はコードで会社を取得します。存在しない場合は nil, nil を返します。
func (s *Service) GetCompany(ctx context.Context, code string) (*Company, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}

	var company *Company
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.GetByCode(txCtx, code)
		if err != nil {
			if errors.Is(err, ErrCompanyNotFound) {
				return nil
			}
			return err
		}
		company = result
		return nil
	}); err != nil {
		return nil, err
	}
	return company, nil
}

// SaveCompany は candidate を検証して保存します。existing が nil の場合は新規作成として扱います。
//
// 検証を通過すると candidate の SiteID とタイムスタンプが書き換えられます。
func (s *Service) SaveCompany(ctx context.Context, candidate, existing *Company) (SaveResult, error) {
	if candidate == nil || strings.TrimSpace(candidate.Code) == "" {
		return SaveResultMissingCode, nil
	}

	if existing != nil && candidate.Code != existing.Code {
		return SaveResultCannotChangeCode, nil
	}

	if existing == nil && candidate.SiteID != nil {
		return SaveResultInvalidValue, nil
	}

	// TODO: サイトの負荷を考慮した配置アルゴリズムに置き換える。
	s.sites.assign(candidate, existing)

	now := s.clock.Now()
	mode := SaveModeCreate
	candidate.CreatedAt = now
	if existing != nil {
		mode = SaveModeReplace
		candidate.CreatedAt = existing.CreatedAt
	}
	candidate.UpdatedAt = now

	var saved bool
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		ok, err := s.repo.Save(txCtx, candidate.Clone(), mode)
		if err != nil {
			return err
		}
		saved = ok
		return nil
	}); err != nil {
		return 0, err
	}

	if !saved {
		return SaveResultDuplicateKey, nil
	}
	return SaveResultSuccess, nil
}

// DeleteCompany はコードで会社を削除し、削除できたかどうかを返します。
func (s *Service) DeleteCompany(ctx context.Context, code string) (bool, error) {
	var deleted bool
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		ok, err := s.repo.Delete(txCtx, code)
		if err != nil {
			return err
		}
		deleted = ok
		return nil
	}); err != nil {
		return false, err
	}
	return deleted, nil
}
