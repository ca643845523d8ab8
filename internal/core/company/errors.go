package company

import "errors"

var (
	// ErrCompanyNotFound は会社が存在しない場合に返却されます。
	ErrCompanyNotFound = errors.New("company not found")
	// ErrUnknownSaveMode は未知の保存モードが指定された場合に返却されます。
	ErrUnknownSaveMode = errors.New("unknown save mode")
)
