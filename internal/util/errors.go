package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUsernameRegistered = errors.New("该用户名已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCourseNotFound     = errors.New("course not found")
	ErrLevelNotFound      = errors.New("level not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrLevelLocked        = errors.New("level is locked")

	// ErrConflict 并发写入冲突，调用方可整体重试一次
	ErrConflict = errors.New("concurrent write conflict")
)

// ValidationError 题库数据完整性错误：题型与答案键结构不匹配。
// 加载/解码时报错，绝不允许带病进入判题流程。
type ValidationError struct {
	QuestionID uint
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %d: %s", e.QuestionID, e.Reason)
}

func NewValidationError(questionID uint, format string, args ...interface{}) *ValidationError {
	return &ValidationError{QuestionID: questionID, Reason: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
