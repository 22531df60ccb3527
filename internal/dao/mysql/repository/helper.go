// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
package repository

import (
	"errors"

	"vedzeb_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError 把存储层错误翻译成业务错误码，不向上泄露驱动错误码：
//   - ErrRecordNotFound     -> CodeNotFound
//   - ErrDuplicatedKey      -> CodeConflict（唯一索引冲突）
//   - ErrForeignKeyViolated -> CodeNotFound（引用的记录不存在）
//   - 其他                   -> CodeDBError
//
// 依赖 gorm.Config{TranslateError: true} 将 MySQL 1062/1452 翻译为上述哨兵错误
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errorx.Wrap(err, classify(err), msg)
}

// wrapDBErrorf 功能同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorx.Wrapf(err, classify(err), format, args...)
}

func classify(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, gorm.ErrForeignKeyViolated):
		return errorx.CodeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errorx.CodeConflict
	default:
		return errorx.CodeDBError
	}
}

// paginate 统一的 offset/limit 作用域
func paginate(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if offset > 0 {
			db = db.Offset(offset)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

// primaryPhotoOnly 预加载时只取主图
func primaryPhotoOnly(db *gorm.DB) *gorm.DB {
	return db.Where("is_primary = ?", true)
}
