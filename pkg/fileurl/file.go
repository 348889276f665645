// Package fileurl 提供路径相关的辅助函数
package fileurl

import (
	"os"
	"path/filepath"
)

// IsExist 检查路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil || os.IsExist(err)
}

// CreatePath 为目标文件创建父目录
func CreatePath(dst string, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, perm)
}

// GetExePath 获取可执行文件所在目录
func GetExePath() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
