package tools

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kira1928/javatools/pkg/config"
)

// Store is the version store: one subdirectory of Root per installed version.
// Everything else the tool keeps there is dot-prefixed and never listed.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) VersionDir(version string) string {
	return filepath.Join(s.root, version)
}

func (s *Store) BinDir(version string) string {
	return filepath.Join(s.root, version, "bin")
}

func (s *Store) tmpExtractDir(version string) string {
	return filepath.Join(s.root, ".tmp_"+version)
}

func (s *Store) downloadPath(version string) string {
	return filepath.Join(s.root, "."+version+".download")
}

// Ensure creates the root directory if needed and reports whether it did.
func (s *Store) Ensure() (created bool, err error) {
	info, err := os.Stat(s.root)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("version store %s is not a directory", s.root)
		}
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return false, fmt.Errorf("create version store: %w", err)
	}
	return true, nil
}

// Exists reports whether root/version exists, empty or not.
func (s *Store) Exists(version string) (bool, error) {
	_, err := os.Stat(s.VersionDir(version))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Installed lists the version directories, ordered by version.
func (s *Store) Installed() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		versions = append(versions, e.Name())
	}
	config.SortVersions(versions)
	return versions, nil
}

// remove moves the version folder to a trash folder and then deletes it, so
// the version disappears at once even if the recursive delete is slow or fails.
func (s *Store) remove(version string) error {
	dir := s.VersionDir(version)
	trash := filepath.Join(s.root, fmt.Sprintf(".trash-%s-%s", version, uuid.New().String()))
	if err := os.Rename(dir, trash); err != nil {
		// 移动失败时直接删除
		return os.RemoveAll(dir)
	}
	// 版本已不可见，删除失败的垃圾目录由 cleanTrash 处理
	_ = os.RemoveAll(trash)
	return nil
}

// cleanTrash removes trash folders left by earlier deletes.
func (s *Store) cleanTrash() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), ".trash-") {
			_ = os.RemoveAll(filepath.Join(s.root, e.Name()))
		}
	}
}

func isEmptyDir(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// validateVersion rejects tokens that would escape the store or collide with
// its internal files.
func validateVersion(version string) error {
	switch {
	case strings.TrimSpace(version) == "":
		return fmt.Errorf("%w: version must not be empty", ErrUsage)
	case strings.ContainsAny(version, `/\`) || version == "..":
		return fmt.Errorf("%w: version %q must not contain path separators", ErrUsage, version)
	case strings.HasPrefix(version, "."):
		return fmt.Errorf("%w: version %q must not start with '.'", ErrUsage, version)
	}
	return nil
}
