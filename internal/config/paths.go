package config

import (
	"os"
	"path/filepath"
)

// DirName is the state root under the user's home directory.
const DirName = ".plusblocks"

// StatePaths is the persisted-state layout under the base directory.
type StatePaths struct {
	Base          string
	Config        string
	Cookies       string
	LegacyCatalog string
	Catalog       string
	CacheDir      string
	Browsers      string
	Database      string
}

// Paths returns the state layout rooted at baseDir.
func Paths(baseDir string) StatePaths {
	return StatePaths{
		Base:          baseDir,
		Config:        filepath.Join(baseDir, "config.json"),
		Cookies:       filepath.Join(baseDir, "cookies.json"),
		LegacyCatalog: filepath.Join(baseDir, "catalog.json"),
		Catalog:       filepath.Join(baseDir, "catalog-v3.json"),
		CacheDir:      filepath.Join(baseDir, "cache"),
		Browsers:      filepath.Join(baseDir, "browsers"),
		Database:      filepath.Join(baseDir, "state.db"),
	}
}

// DefaultBaseDir resolves the base directory: PLUSBLOCKS_HOME if set, else ~/.plusblocks.
func DefaultBaseDir() (string, error) {
	if v := os.Getenv("PLUSBLOCKS_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}
