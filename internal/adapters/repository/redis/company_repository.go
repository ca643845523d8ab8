// Package redis は Redis を利用した会社リポジトリです。
//
// 各会社は "<prefix>company:<code>" に JSON で保存され、コード一覧は "<prefix>companies" の集合で管理します。
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ogurasousui/company-sites/internal/core/company"
	goredis "github.com/redis/go-redis/v9"
)

// 索引への追加に失敗した場合は値を書き込まない。
var (
	// KEYS[1]=会社キー KEYS[2]=索引キー ARGV[1]=JSON ARGV[2]=コード
	createScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('SADD', KEYS[2], ARGV[2])
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)
	replaceScript = goredis.NewScript(`
redis.call('SADD', KEYS[2], ARGV[2])
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)
)

// CompanyRepository は Redis を利用した会社永続化の実装です。
type CompanyRepository struct {
	client goredis.UniversalClient
	prefix string
}

var _ company.Repository = (*CompanyRepository)(nil)

type companyRecord struct {
	Code        string    `json:"code"`
	SiteID      *string   `json:"site_id,omitempty"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCompanyRepository は CompanyRepository を生成します。
func NewCompanyRepository(client goredis.UniversalClient, prefix string) *CompanyRepository {
	return &CompanyRepository{client: client, prefix: prefix}
}

func (r *CompanyRepository) key(code string) string {
	return r.prefix + "company:" + code
}

func (r *CompanyRepository) indexKey() string {
	return r.prefix + "companies"
}

// GetAll はすべての会社をコード順に取得します。
func (r *CompanyRepository) GetAll(ctx context.Context) ([]*company.Company, error) {
	codes, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list company codes: %w", err)
	}
	if len(codes) == 0 {
		return []*company.Company{}, nil
	}
	sort.Strings(codes)

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = r.key(code)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load companies: %w", err)
	}

	companies := make([]*company.Company, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// 削除と一覧取得が競合した場合は値が nil になる
			continue
		}
		c, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("redis: decode company %s: %w", codes[i], err)
		}
		companies = append(companies, c)
	}

	return companies, nil
}

// GetByCode はコードで会社を取得します。
func (r *CompanyRepository) GetByCode(ctx context.Context, code string) (*company.Company, error) {
	raw, err := r.client.Get(ctx, r.key(code)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("redis: get company %s: %w", code, err)
	}

	c, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("redis: decode company %s: %w", code, err)
	}
	return c, nil
}

// Save は会社を保存します。SaveModeCreate では既存キーの有無で重複を検出し、値と索引をまとめて書き込みます。
func (r *CompanyRepository) Save(ctx context.Context, c *company.Company, mode company.SaveMode) (bool, error) {
	payload, err := json.Marshal(companyRecord{
		Code:        c.Code,
		SiteID:      c.SiteID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	})
	if err != nil {
		return false, fmt.Errorf("redis: encode company %s: %w", c.Code, err)
	}

	keys := []string{r.key(c.Code), r.indexKey()}

	switch mode {
	case company.SaveModeCreate:
		created, err := createScript.Run(ctx, r.client, keys, payload, c.Code).Int64()
		if err != nil {
			return false, fmt.Errorf("redis: create company %s: %w", c.Code, err)
		}
		return created == 1, nil
	case company.SaveModeReplace:
		if err := replaceScript.Run(ctx, r.client, keys, payload, c.Code).Err(); err != nil {
			return false, fmt.Errorf("redis: replace company %s: %w", c.Code, err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("redis: save mode %d: %w", mode, company.ErrUnknownSaveMode)
	}
}

// Delete はコードで会社を削除し、削除したキーがあれば true を返します。
func (r *CompanyRepository) Delete(ctx context.Context, code string) (bool, error) {
	var del *goredis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		del = pipe.Del(ctx, r.key(code))
		pipe.SRem(ctx, r.indexKey(), code)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis: delete company %s: %w", code, err)
	}
	return del.Val() > 0, nil
}

func decode(raw string) (*company.Company, error) {
	var rec companyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &company.Company{
		Code:        rec.Code,
		SiteID:      rec.SiteID,
		Name:        rec.Name,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}
