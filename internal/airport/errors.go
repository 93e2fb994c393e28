package airport

import (
	"errors"
	"fmt"
)

// 错误分类：调用方以 errors.Is 判断，具体实现按 %w 包装上下文
var (
	// ErrInvalidInput：查询参数缺失、非数值或越界，在触达任何状态前拒绝
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound：无匹配记录
	ErrNotFound = errors.New("airport not found")
	// ErrDuplicateIdentifier：创建时标识或代码已被占用
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrInvalidRecord：主代码与次代码均为空
	ErrInvalidRecord = errors.New("either iata_code or icao is required")
	// ErrTransientIndex：空间/热度存储不可达或超时
	ErrTransientIndex = errors.New("transient index error")
)

// TransientError：把底层存储错误归类为 ErrTransientIndex，同时保留原始错误链
func TransientError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrTransientIndex, err)
}
