package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the name of the application used in paths.
	AppName = "boxkeep"
)

// GetCacheDir returns the platform-specific cache directory for the application.
// On Linux: ~/.cache/boxkeep/
// On macOS: ~/Library/Caches/boxkeep/
// On Windows: %LOCALAPPDATA%\boxkeep\
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// getAppDataDir returns the platform-specific base data directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func getAppDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			return "", errors.New("LOCALAPPDATA environment variable not set")
		}
		return localAppData, nil

	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil

	default: // Linux, BSD, etc.
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return xdgDataHome, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// GetDataDir returns the platform-specific data directory for the application.
func GetDataDir() (string, error) {
	baseDir, err := getAppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, AppName), nil
}

// GetBoxCacheDir returns the directory for storing downloaded box archives.
// Format: <cache_dir>/boxes/
func GetBoxCacheDir() (string, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "boxes"), nil
}

// GetBoxCollectionDir returns the directory the reference BoxCollection
// unpacks verified boxes into.
// Format: <data_dir>/boxes/
func GetBoxCollectionDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "boxes"), nil
}

// GetTmpDir returns the directory used for lock files and in-flight
// downloads, defaulting to the OS temp directory under the app namespace.
func GetTmpDir() (string, error) {
	return filepath.Join(os.TempDir(), AppName), nil
}

// GetDefaultConfigPath returns the default location of the box-add CLI's
// config file: <data_dir>/config.yaml.
func GetDefaultConfigPath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "config.yaml"), nil
}

// EnsureDirs creates all necessary directories if they don't exist.
func EnsureDirs() error {
	dirs := []func() (string, error){
		GetBoxCacheDir,
		GetBoxCollectionDir,
		GetTmpDir,
	}

	for _, dirFn := range dirs {
		dir, err := dirFn()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, DirModeDefault); err != nil {
			return err
		}
	}

	return nil
}
