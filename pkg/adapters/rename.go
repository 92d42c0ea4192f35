package adapters

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// Rename moves src to dst and returns dst. It refuses to replace anything
// already at dst. Moves across file systems fall back to copy and remove.
func Rename(src, dst string) (string, error) {
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%q: %w", src, ErrFileNotFound)
	}
	if _, err := os.Lstat(dst); err == nil {
		return "", fmt.Errorf("%q: %w", dst, ErrAlreadyExists)
	}

	err = os.Rename(src, dst)
	if errors.Is(err, syscall.EXDEV) {
		err = moveAcrossDevices(src, dst, info.Mode().Perm())
	}
	if err != nil {
		return "", fmt.Errorf("error renaming %s to %s: %w", src, dst, err)
	}

	return dst, nil
}

func moveAcrossDevices(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	in.Close()
	return os.Remove(src)
}
