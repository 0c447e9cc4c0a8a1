package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MaxBackups is the maximum number of backups kept per config file
	MaxBackups = 3

	// BackupSuffix is the file extension for backup files
	BackupSuffix = ".bak"
)

// BackupConfig creates a timestamped copy of the config file at configPath,
// used before `config init --force` overwrites it.
// If the file does not exist, returns empty string and nil error.
func BackupConfig(configPath string) (string, error) {
	if !fileExists(configPath) {
		return "", nil
	}

	timestamp := time.Now().Format("20060102-150405.000")
	backupPath := fmt.Sprintf("%s%s.%s", configPath, BackupSuffix, timestamp)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to read config for backup: %w", err)
	}

	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	// Best effort: the backup itself already succeeded.
	_ = cleanupOldBackups(configPath)

	return backupPath, nil
}

// ListBackups returns all backups of the config file at configPath,
// sorted by modification time (newest first).
func ListBackups(configPath string) ([]string, error) {
	configDir := filepath.Dir(configPath)
	configBase := filepath.Base(configPath)

	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list config directory: %w", err)
	}

	var backups []string
	prefix := configBase + BackupSuffix + "."
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(configDir, entry.Name()))
		}
	}

	sort.SliceStable(backups, func(i, j int) bool {
		infoI, _ := os.Stat(backups[i])
		infoJ, _ := os.Stat(backups[j])
		if infoI == nil || infoJ == nil {
			return false
		}
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return backups, nil
}

// cleanupOldBackups removes backups beyond MaxBackups, keeping the newest.
func cleanupOldBackups(configPath string) error {
	backups, err := ListBackups(configPath)
	if err != nil {
		return err
	}

	if len(backups) <= MaxBackups {
		return nil
	}

	for _, backup := range backups[MaxBackups:] {
		// Keep going: one stale backup must not block the rest.
		_ = os.Remove(backup)
	}

	return nil
}
