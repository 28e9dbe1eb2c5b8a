package tools

import (
	"errors"
	"fmt"
	"io"
)

// Delete asks for confirmation and removes root/version. It reports false
// without error when the user declines.
func (m *Manager) Delete(version string) (bool, error) {
	if err := validateVersion(version); err != nil {
		return false, err
	}
	// 先检查再加锁，避免为不存在的版本创建版本根目录
	if err := m.requireInstalled(version); err != nil {
		return false, err
	}
	unlock, err := m.store.Lock()
	if err != nil {
		return false, err
	}
	defer unlock()
	if err := m.requireInstalled(version); err != nil {
		return false, err
	}

	answer, err := m.prompter.Prompt(fmt.Sprintf("Are you sure you want to delete Java version %s? (yes/no): ", version))
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	if !isConfirmed(answer) {
		m.out.Plain("Deletion cancelled.")
		return false, nil
	}

	dir := m.store.VersionDir(version)
	if err := m.store.remove(version); err != nil {
		return false, fmt.Errorf("delete %s: %w", dir, err)
	}
	m.logger.Printf("[java@%s] removed %s", version, dir)
	m.out.Success("Deleted Java version %s from %s.", version, dir)
	return true, nil
}

func (m *Manager) requireInstalled(version string) error {
	exists, err := m.store.Exists(version)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotInstalled, version)
	}
	return nil
}
