package fscopy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultDirMode is used for directories created during recursive copies.
const DefaultDirMode os.FileMode = 0o755

// FileCopyFunc replaces a single destination file with the contents of the
// source file. Callers may substitute their own implementation, e.g. to apply
// files through an atomic replacer or to inject failures in tests.
type FileCopyFunc func(src, dst string, mode os.FileMode) error

// CopyFile copies src to dst, truncating dst if it exists.
func CopyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return fmt.Errorf("copy %s: %w", dst, err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	return nil
}

// CopyTree recursively copies the contents of src into dst, creating
// directories on demand and overwriting existing files. A nil copier falls
// back to CopyFile. The first file failure aborts the walk.
func CopyTree(src, dst string, copier FileCopyFunc) error {
	if copier == nil {
		copier = CopyFile
	}

	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			if err = os.MkdirAll(target, DefaultDirMode); err != nil {
				return fmt.Errorf("mkdir %s: %w", target, err)
			}

			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		return copier(path, target, info.Mode().Perm())
	})
}

// RemoveTree deletes the tree at path, treating a missing path as success.
func RemoveTree(path string) error {
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	return nil
}
