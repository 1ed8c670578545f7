package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrDuplicateKey 唯一约束冲突
var ErrDuplicateKey = errors.New("duplicate key")

// mysqlDuplicateEntry MySQL唯一键冲突错误码
const mysqlDuplicateEntry = 1062

// translateError 将各驱动的唯一约束冲突统一为 ErrDuplicateKey
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if isDuplicateKey(err) {
		return ErrDuplicateKey
	}
	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return true
	}
	// SQLite 驱动未实现错误转换时的兜底
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsNotFound 是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
