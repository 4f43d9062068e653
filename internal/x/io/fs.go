// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	FullPermAccess   = 0o755
	FullRWPermAccess = 0o644
)

var ErrDirNotEmpty = errors.New("the target directory is not empty")

func CheckDirIsEmpty(target string) error {
	entries, err := os.ReadDir(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("error while checking %s: %w", target, err)
	}

	if len(entries) > 0 {
		return fmt.Errorf("%w: %s", ErrDirNotEmpty, target)
	}

	return nil
}

// WriteFile writes data to target creating any missing parent directory.
func WriteFile(target string, data []byte) error {
	if err := EnsureDir(target); err != nil {
		return err
	}

	if err := os.WriteFile(target, data, FullRWPermAccess); err != nil {
		return fmt.Errorf("error while writing file %s: %w", target, err)
	}

	return nil
}

func EnsureDir(fileName string) error {
	dirName := filepath.Dir(fileName)

	if err := os.MkdirAll(dirName, FullPermAccess); err != nil {
		return fmt.Errorf("error while creating directory %s: %w", dirName, err)
	}

	return nil
}
