package tools

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	xz "github.com/ulikunitz/xz"
)

type archiveFormat int

const (
	formatZip archiveFormat = iota
	formatTarGz
	formatTarXz
)

func (f archiveFormat) String() string {
	switch f {
	case formatTarGz:
		return "tar.gz"
	case formatTarXz:
		return "tar.xz"
	default:
		return "zip"
	}
}

// detectArchiveFormat guesses the format from the file name; anything not
// recognised is treated as zip.
func detectArchiveFormat(name string) archiveFormat {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return formatTarGz
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return formatTarXz
	default:
		return formatZip
	}
}

// extractArchive unpacks path into dest, replacing any earlier dest.
// On error dest is removed.
func extractArchive(format archiveFormat, path, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("failed to clean up temporary folder: %w", err)
		}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create temporary extraction folder: %w", err)
	}

	var err error
	switch format {
	case formatTarGz:
		err = extractTarGzFile(path, dest)
	case formatTarXz:
		err = extractTarXzFile(path, dest)
	default:
		err = extractZipFile(path, dest)
	}
	if err != nil {
		if rmErr := os.RemoveAll(dest); rmErr != nil {
			return fmt.Errorf("extract %s: %w; also failed to clean up temp folder: %v", format, err, rmErr)
		}
		return fmt.Errorf("extract %s: %w", format, err)
	}
	return nil
}

// findWrapperDir returns the single top-level directory of an extracted
// archive. Top-level files are ignored.
func findWrapperDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) != 1 {
		return "", fmt.Errorf("%w: found %d top-level directories, expected exactly 1", ErrUnexpectedArchiveLayout, len(dirs))
	}
	return filepath.Join(dir, dirs[0]), nil
}

// extractRoot confines every write of an extraction to dest. Checks look at
// the directories already on disk, so links created by earlier entries are
// followed the way the OS will follow them.
type extractRoot struct {
	dest string
	real string
}

func newExtractRoot(dest string) (*extractRoot, error) {
	resolved, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return nil, err
	}
	return &extractRoot{dest: filepath.Clean(dest), real: resolved}, nil
}

func isWithin(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// resolveExisting resolves the symlinks of the longest existing prefix of p.
// The missing rest cannot contain links. A dangling link on the way is an error.
func resolveExisting(p string) (string, error) {
	rest := ""
	for cur := p; ; {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if _, lerr := os.Lstat(cur); lerr == nil {
			return "", fmt.Errorf("dangling link in archive path: %s", cur)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p, nil
		}
		rest = filepath.Join(filepath.Base(cur), rest)
		cur = parent
	}
}

// join maps an archive entry name to a path under dest and makes sure its
// parent directory really lies inside dest.
func (r *extractRoot) join(name string) (string, error) {
	target := filepath.Join(r.dest, filepath.FromSlash(name))
	if !isWithin(r.dest, target) {
		return "", fmt.Errorf("illegal path in archive: %s", name)
	}
	if target == r.dest {
		return target, nil
	}
	parent, err := resolveExisting(filepath.Dir(target))
	if err != nil {
		return "", err
	}
	if !isWithin(r.real, parent) {
		return "", fmt.Errorf("illegal path in archive: %s resolves outside the destination", name)
	}
	return target, nil
}

func (r *extractRoot) mkdir(target string) error {
	resolved, err := resolveExisting(target)
	if err != nil {
		return err
	}
	if !isWithin(r.real, resolved) {
		return fmt.Errorf("illegal directory in archive: %s resolves outside the destination", target)
	}
	return os.MkdirAll(target, 0o755)
}

// writeFile replaces whatever is at target, so an earlier link of the same
// name is never written through.
func (r *extractRoot) writeFile(target string, rd io.Reader, mode os.FileMode) error {
	if err := r.mkdir(filepath.Dir(target)); err != nil {
		return err
	}
	if info, err := os.Lstat(target); err == nil && !info.IsDir() {
		if err := os.Remove(target); err != nil {
			return err
		}
	}
	if mode.Perm() == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rd); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// symlink creates target -> linkname. The link is resolved from the real
// parent directory and must stay inside dest.
func (r *extractRoot) symlink(target, linkname string) error {
	if filepath.IsAbs(linkname) || filepath.VolumeName(linkname) != "" {
		return fmt.Errorf("illegal absolute link in archive: %s -> %s", target, linkname)
	}
	if err := r.mkdir(filepath.Dir(target)); err != nil {
		return err
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(target))
	if err != nil {
		return err
	}
	resolved, err := resolveExisting(filepath.Join(parent, filepath.FromSlash(linkname)))
	if err != nil {
		return err
	}
	if !isWithin(r.real, resolved) {
		return fmt.Errorf("illegal link in archive: %s -> %s", target, linkname)
	}
	return os.Symlink(linkname, target)
}

// 解压 zip 文件
func extractZipFile(zipPath string, dest string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	root, err := newExtractRoot(dest)
	if err != nil {
		return err
	}
	for _, f := range r.File {
		if err := extractZipEntry(f, root); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(f *zip.File, root *extractRoot) error {
	target, err := root.join(f.Name)
	if err != nil {
		return err
	}
	if f.FileInfo().IsDir() {
		return root.mkdir(target)
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if f.Mode()&os.ModeSymlink != 0 {
		link, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		return root.symlink(target, string(link))
	}
	return root.writeFile(target, rc, f.Mode())
}

func extractTarGzFile(path string, dest string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer gzReader.Close()

	return extractTar(tar.NewReader(gzReader), dest)
}

func extractTarXzFile(path string, dest string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return err
	}
	return extractTar(tar.NewReader(xzr), dest)
}

func extractTar(tr *tar.Reader, dest string) error {
	root, err := newExtractRoot(dest)
	if err != nil {
		return err
	}
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := root.join(hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := root.mkdir(target); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := root.writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := root.symlink(target, hdr.Linkname); err != nil {
				return err
			}
		default:
			// 其余类型（硬链接、设备文件等）在 JDK 发行包中不会出现，直接跳过
		}
	}
}
