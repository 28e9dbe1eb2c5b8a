package tools

import (
	"context"
	"fmt"
	"path/filepath"
)

// Switch points the environment variable at root/version/bin. The directory
// only has to exist; its contents are not checked. On failure the input
// Session is returned unchanged.
func (m *Manager) Switch(ctx context.Context, sess Session, version string) (Session, error) {
	if err := validateVersion(version); err != nil {
		return sess, err
	}
	exists, err := m.store.Exists(version)
	if err != nil {
		return sess, err
	}
	if !exists {
		return sess, fmt.Errorf("%w: %s", ErrNotInstalled, version)
	}

	binDir := m.store.BinDir(version)
	next := sess.With(m.envVar, binDir)
	m.out.Plain("%s set to: %s", m.envVar, binDir)

	persisted, err := m.persister.PersistEnv(ctx, m.envVar, binDir)
	switch {
	case err != nil:
		m.logger.Printf("[java@%s] persist %s failed: %v", version, m.envVar, err)
		m.out.Warn("Could not update %s permanently: %v", m.envVar, err)
	case !persisted:
		m.out.Plain("For Linux/macOS, manually update the shell configuration file:")
		m.out.Plain("  export %s=%q", m.envVar, binDir)
	}

	m.out.Success("Now using Java version %s.", version)
	m.out.Plain("Please restart the terminal to apply the changes.")
	return next, nil
}

// Current returns the installed version the environment variable points at.
func (m *Manager) Current(sess Session) (string, bool) {
	value, ok := sess.Get(m.envVar)
	if !ok || value == "" {
		return "", false
	}
	versions, err := m.store.Installed()
	if err != nil {
		return "", false
	}
	value = filepath.Clean(value)
	for _, v := range versions {
		if filepath.Clean(m.store.BinDir(v)) == value {
			return v, true
		}
	}
	return "", false
}
