// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsutil holds filesystem guards used when placing files next to
// recordings.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfineFileName joins dir and name and ensures the result stays a direct
// child of dir after symlink resolution. name must be a plain file name.
// The returned path is in dir's namespace, not the resolved one.
func ConfineFileName(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name: %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("file name contains a path separator: %q", name)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid directory: %w", err)
	}
	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return "", err
	}

	joined := filepath.Join(dir, name)
	full := filepath.Join(realDir, name)
	info, err := os.Lstat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return joined, nil
		}
		return "", err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return joined, nil
	}

	// An existing symlink must not point outside dir.
	target, err := filepath.EvalSymlinks(full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlink: %w", err)
	}
	rel, err := filepath.Rel(realDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes %s via symlink: %s", realDir, target)
	}
	return joined, nil
}

// IsRegularFile checks that path exists and is a regular file.
func IsRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}
