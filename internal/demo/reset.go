// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package demo maintains the public demo instance: periodic database
// resets and the sample content written after each reset.
package demo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// stampFile holds the unix time of the last reset.
	stampFile = ".last_reset"

	// ResetInterval is how long demo edits survive.
	ResetInterval = 24 * time.Hour
)

// ResetIfNeeded removes the database when the last reset is older than
// ResetInterval or was never recorded. It reports whether a reset
// happened, in which case the caller migrates and seeds again.
func ResetIfNeeded(dbPath, dataDir string, now time.Time) (bool, error) {
	last, ok, err := lastReset(dataDir)
	if err != nil {
		return false, err
	}
	if ok && now.Sub(last) < ResetInterval {
		slog.Info("demo reset not needed",
			"last_reset", last.UTC().Format(time.RFC3339),
			"next_reset", last.Add(ResetInterval).UTC().Format(time.RFC3339))
		return false, nil
	}
	if err := Reset(dbPath, dataDir, now); err != nil {
		return false, err
	}
	return true, nil
}

// Reset deletes the database with its WAL and shared-memory files and
// records now as the reset time.
func Reset(dbPath, dataDir string, now time.Time) error {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", dbPath+suffix, err)
		}
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	stamp := []byte(strconv.FormatInt(now.UTC().Unix(), 10))
	if err := os.WriteFile(filepath.Join(dataDir, stampFile), stamp, 0o644); err != nil {
		return fmt.Errorf("writing reset timestamp: %w", err)
	}
	slog.Info("demo database reset", "path", dbPath)
	return nil
}

func lastReset(dataDir string) (time.Time, bool, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, stampFile))
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading reset timestamp: %w", err)
	}
	sec, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		// A corrupt stamp counts as no stamp.
		return time.Time{}, false, nil
	}
	return time.Unix(sec, 0), true, nil
}
