package service

import (
	"errors"
	"fmt"

	"SportsCatalog/internal/repository"
)

var (
	// ErrReference 引用的父实体不存在，写入前返回
	ErrReference = errors.New("referenced entity does not exist")
	// ErrNotFound 目标实体不存在
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicateSlug slug 唯一约束冲突，由数据库报出
	ErrDuplicateSlug = errors.New("slug already exists")
	// ErrSearch 搜索条件无法编译或被数据库拒绝
	ErrSearch = errors.New("search failed")
)

// classifyWriteErr 将写入错误归类，未知错误原样返回
func classifyWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if repository.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateSlug, err)
	}
	return err
}

// notFoundOr 记录不存在时返回 sentinel，否则原样返回
func notFoundOr(err error, sentinel error, format string, args ...interface{}) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
	}
	return err
}
