package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Install downloads version from rawURL (or the url table, or the prompter)
// and unpacks it into the store. When it is the only installed version it is
// switched to, and the returned Session carries the new value.
func (m *Manager) Install(ctx context.Context, sess Session, version, rawURL string) (Session, error) {
	if err := validateVersion(version); err != nil {
		return sess, err
	}

	created, err := m.store.Ensure()
	if err != nil {
		return sess, err
	}
	if created {
		m.out.Plain("Created directory: %s", m.store.Root())
	}

	unlock, err := m.store.Lock()
	if err != nil {
		return sess, err
	}
	defer unlock()
	m.store.cleanTrash()

	target := m.store.VersionDir(version)
	if exists, err := m.store.Exists(version); err != nil {
		return sess, err
	} else if exists {
		empty, err := isEmptyDir(target)
		if err != nil {
			return sess, err
		}
		if !empty {
			return sess, fmt.Errorf("%w: %s", ErrAlreadyInstalled, target)
		}
		m.out.Plain("Version %s directory is empty. Removing and re-downloading...", version)
		if err := os.Remove(target); err != nil {
			return sess, fmt.Errorf("remove empty version folder: %w", err)
		}
	}

	rawURL, err = m.resolveURL(version, rawURL)
	if err != nil {
		return sess, err
	}

	if err := m.installFrom(ctx, version, rawURL); err != nil {
		m.emitProgress(DownloadProgress{Version: version, Status: "failed", URL: rawURL, Error: err})
		return sess, err
	}
	m.emitProgress(DownloadProgress{Version: version, Status: "completed", URL: rawURL})
	m.out.Success("Java version %s installed at %s", version, target)

	others, err := m.otherInstalled(version)
	if err != nil {
		return sess, err
	}
	if others == 0 {
		m.out.Plain("No other Java versions found. Setting %s as the default version.", version)
		return m.Switch(ctx, sess, version)
	}
	return sess, nil
}

func (m *Manager) resolveURL(version, rawURL string) (string, error) {
	if rawURL = strings.TrimSpace(rawURL); rawURL != "" {
		return rawURL, nil
	}
	if u, ok := m.urls.Lookup(version); ok {
		return u, nil
	}
	answer, err := m.prompter.Prompt(fmt.Sprintf("No default URL found for version %s. Please enter the download URL: ", version))
	if err != nil {
		return "", fmt.Errorf("%w: no download url for version %s: %v", ErrUsage, version, err)
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return "", fmt.Errorf("%w: no download url for version %s", ErrUsage, version)
	}
	return answer, nil
}

// installFrom runs download, extract, unwrap and move. The temporary archive
// and extraction folder are gone when it returns, whatever the outcome.
func (m *Manager) installFrom(ctx context.Context, version, rawURL string) error {
	archivePath := m.store.downloadPath(version)
	tmpExtractFolder := m.store.tmpExtractDir(version)
	defer func() {
		_ = os.Remove(archivePath)
		_ = os.RemoveAll(tmpExtractFolder)
	}()

	m.out.Info("Downloading Java version %s from %s...", version, rawURL)
	m.logger.Printf("[java@%s] start download: %s", version, rawURL)
	fileName, err := m.download(ctx, version, rawURL, archivePath)
	if err != nil {
		return err
	}
	m.out.Plain("Downloaded to: %s", archivePath)

	format := detectArchiveFormat(fileName)
	m.emitProgress(DownloadProgress{Version: version, Status: "extracting", URL: rawURL})
	if err := extractArchive(format, archivePath, tmpExtractFolder); err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	_ = os.Remove(archivePath)

	wrapper, err := findWrapperDir(tmpExtractFolder)
	if err != nil {
		return err
	}

	// 单一顶层目录直接重命名为目标目录，不会留下只搬了一半的版本目录
	if err := os.Rename(wrapper, m.store.VersionDir(version)); err != nil {
		return fmt.Errorf("failed to move extracted files to target folder: %w", err)
	}
	return nil
}

// otherInstalled counts non-empty version folders other than version.
func (m *Manager) otherInstalled(version string) (int, error) {
	versions, err := m.store.Installed()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range versions {
		if v == version {
			continue
		}
		empty, err := isEmptyDir(m.store.VersionDir(v))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, err
		}
		if err == nil && !empty {
			n++
		}
	}
	return n, nil
}
