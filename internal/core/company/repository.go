package company

import "context"

// SaveMode は Repository.Save の書き込み方法を指定します。
type SaveMode int

const (
	// SaveModeCreate は新規登録です。コードが既に存在する場合は false を返します。
	SaveModeCreate SaveMode = iota + 1
	// SaveModeReplace はコードに対応するレコードを置き換えます。
	SaveModeReplace
)

// Repository は会社エンティティの永続化を行うインターフェースです。
type Repository interface {
	GetAll(ctx context.Context) ([]*Company, error)
	GetByCode(ctx context.Context, code string) (*Company, error)
	Save(ctx context.Context, company *Company, mode SaveMode) (bool, error)
	Delete(ctx context.Context, code string) (bool, error)
}
