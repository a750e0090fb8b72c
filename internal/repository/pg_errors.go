package repository

import (
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE
const (
	pgUniqueViolation      = "23505"
	pgInvalidRegex         = "2201B"
	pgInvalidTextRepr      = "22P02"
	pgInvalidDatetimeValue = "22007"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil {
		return pgErr.Code
	}
	return ""
}

// IsNotFound 记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation slug 等唯一约束冲突
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return pgErrorCode(err) == pgUniqueViolation
}

// IsInvalidQueryInput 搜索条件本身不被数据库接受（非法正则、非法取值）
func IsInvalidQueryInput(err error) bool {
	switch pgErrorCode(err) {
	case pgInvalidRegex, pgInvalidTextRepr, pgInvalidDatetimeValue:
		return true
	default:
		return false
	}
}
