package service

import "errors"

// service 層回傳的錯誤種類，呼叫端以 errors.Is 判斷
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("username already exists")
	ErrUnauthorized = errors.New("invalid username or password")
	ErrNotFound     = errors.New("message not found")
	ErrPersistence  = errors.New("persistence failed")
)

var kinds = []error{ErrValidation, ErrConflict, ErrUnauthorized, ErrNotFound, ErrPersistence}

// asPersistence 將未分類的錯誤（例如交易提交失敗）歸為 ErrPersistence
func asPersistence(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return err
		}
	}
	return errors.Join(ErrPersistence, err)
}
