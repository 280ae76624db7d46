// Package common holds small file and path utilities shared by the core
// configuration layer and the CLI.
package common

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

func ReadFile(filepath string) (string, error) {
	bytes, err := os.ReadFile(filepath)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func ReadSettingsFile(settingsPath string) (string, error) {
	contents, err := ReadFile(settingsPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read settings file/path:%s/reason:%s",
			settingsPath, err))
		if absolutePath, absErr := filepath.Abs(settingsPath); absErr == nil {
			zap.L().Debug(fmt.Sprintf("absolute path:%s", absolutePath))
		}
		return "", err
	}
	return contents, nil
}

func IsDirWritable(dirPath string) error {
	info, err := os.Stat(dirPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", dirPath)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return fmt.Errorf("%s is not a writable directory", dirPath)
	}
	return nil
}
