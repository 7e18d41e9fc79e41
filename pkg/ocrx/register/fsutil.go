package register

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFile replaces path through a temporary file in the same directory.
func (s *Store) writeFile(path, content string) error {
	if err := writeAtomic(path, []byte(content), s.permFile); err != nil {
		return fmt.Errorf("register: write %s: %w", path, err)
	}
	return nil
}

func writeAtomic(dest string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = os.Chmod(tmpPath, perm)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
