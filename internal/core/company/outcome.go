package company

import "strconv"

// SaveResult は保存処理の結果を表す閉じた列挙です。
type SaveResult int

const (
	// SaveResultSuccess は永続化に成功したことを表します。
	SaveResultSuccess SaveResult = iota + 1
	// SaveResultDuplicateKey は同じ会社コードが既に存在することを表します。
	SaveResultDuplicateKey
	// SaveResultMissingCode は会社コードが空であることを表します。
	SaveResultMissingCode
	// SaveResultInvalidValue は新規作成時にサイト ID が指定されたことを表します。
	SaveResultInvalidValue
	// SaveResultCannotChangeCode は更新時に会社コードを変更しようとしたことを表します。
	SaveResultCannotChangeCode
)

func (r SaveResult) String() string {
	switch r {
	case SaveResultSuccess:
		return "Success"
	case SaveResultDuplicateKey:
		return "DuplicateKey"
	case SaveResultMissingCode:
		return "MissingCode"
	case SaveResultInvalidValue:
		return "InvalidValue"
	case SaveResultCannotChangeCode:
		return "CannotChangeCode"
	default:
		return "SaveResult(" + strconv.Itoa(int(r)) + ")"
	}
}
