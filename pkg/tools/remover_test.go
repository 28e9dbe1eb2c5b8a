package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func installFake(t *testing.T, root, version string) {
	t.Helper()
	bin := filepath.Join(root, version, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bin, "java"), []byte(version), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteConfirmation(t *testing.T) {
	tests := []struct {
		answer  string
		deleted bool
	}{
		{"no", false},
		{"n", false},
		{"", false},
		{"yess", false},
		{"yes", true},
		{"y", true},
		{"YES", true},
		{" Y ", true},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			env := newTestEnv(t, nil)
			installFake(t, env.root, "17")
			env.answers = []string{tt.answer}

			deleted, err := env.manager.Delete("17")
			if err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if deleted != tt.deleted {
				t.Errorf("Delete(%q) = %v; expected %v", tt.answer, deleted, tt.deleted)
			}
			if len(env.prompts) != 1 || !strings.Contains(env.prompts[0], "delete Java version 17") {
				t.Errorf("prompts = %v", env.prompts)
			}
			if tt.deleted {
				if got := rootEntries(t, env.root); len(got) != 0 {
					t.Errorf("root should be empty after delete, got %v", got)
				}
				return
			}
			data, err := os.ReadFile(filepath.Join(env.root, "17", "bin", "java"))
			if err != nil || string(data) != "17" {
				t.Errorf("version changed after cancelled delete: %q, %v", data, err)
			}
			if !strings.Contains(env.out.String(), "Deletion cancelled.") {
				t.Errorf("missing cancel message:\n%s", env.out.String())
			}
		})
	}
}

func TestDeleteEOFCancels(t *testing.T) {
	env := newTestEnv(t, nil)
	installFake(t, env.root, "17")

	deleted, err := env.manager.Delete("17")
	if err != nil || deleted {
		t.Fatalf("Delete = (%v, %v); expected (false, nil)", deleted, err)
	}
	assertExists(t, filepath.Join(env.root, "17", "bin", "java"))
}

func TestDeleteNotInstalled(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.manager.Delete("17")
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("Delete error = %v; expected ErrNotInstalled", err)
	}
	if len(env.prompts) != 0 {
		t.Errorf("should not prompt for a missing version: %v", env.prompts)
	}
	// 版本根目录不应因删除操作而被创建
	assertNotExists(t, env.root)
}

func TestDeleteKeepsOtherVersions(t *testing.T) {
	env := newTestEnv(t, nil)
	installFake(t, env.root, "11")
	installFake(t, env.root, "17")
	env.answers = []string{"y"}

	if _, err := env.manager.Delete("11"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got := rootEntries(t, env.root); !reflect.DeepEqual(got, []string{"17"}) {
		t.Errorf("root entries = %v; expected [17]", got)
	}
}

func TestListEmpty(t *testing.T) {
	env := newTestEnv(t, nil)
	versions, err := env.manager.List(NewSession(nil))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(versions) != 0 {
		t.Errorf("List = %v; expected none", versions)
	}
	assertExists(t, env.root)
	if !strings.Contains(env.out.String(), "No Java versions installed.") {
		t.Errorf("unexpected output:\n%s", env.out.String())
	}
}

func TestListAfterInstalls(t *testing.T) {
	srv := newArchiveServer(t)
	url11 := srv.add("/11.zip", buildZip(t, jdkEntries("jdk-11")))
	url17 := srv.add("/17.zip", buildZip(t, jdkEntries("jdk-17")))
	env := newTestEnv(t, nil)

	sess, err := env.manager.Install(context.Background(), NewSession(nil), "17", url17)
	if err != nil {
		t.Fatalf("Install 17 failed: %v", err)
	}
	if sess, err = env.manager.Install(context.Background(), sess, "11", url11); err != nil {
		t.Fatalf("Install 11 failed: %v", err)
	}
	// 内部文件不应被列出
	if err := os.MkdirAll(filepath.Join(env.root, ".tmp_21"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(env.root, "urls.yaml"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	env.out.Reset()
	versions, err := env.manager.List(sess)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !reflect.DeepEqual(versions, []string{"11", "17"}) {
		t.Errorf("List = %v; expected [11 17]", versions)
	}
	out := env.out.String()
	if strings.Count(out, "- 11") != 1 {
		t.Errorf("11 should be listed once:\n%s", out)
	}
	if strings.Count(out, "* 17") != 1 {
		t.Errorf("17 should be listed once as active:\n%s", out)
	}
}

func TestStoreLockFile(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	unlock, err := store.Lock()
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	lockPath := filepath.Join(root, lockFileName)
	assertExists(t, lockPath)
	if _, err := store.Lock(); !errors.Is(err, ErrStoreBusy) {
		t.Errorf("second Lock error = %v; expected ErrStoreBusy", err)
	}
	unlock()
	assertNotExists(t, lockPath)
}

func TestStoreLockHeldByOtherProcess(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	lockPath := filepath.Join(root, lockFileName)
	if err := os.WriteFile(lockPath, []byte("other-token 1 2024-01-01T00:00:00Z\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Lock(); !errors.Is(err, ErrStoreBusy) {
		t.Fatalf("Lock error = %v; expected ErrStoreBusy", err)
	}

	// 过期的锁文件会被替换
	old := time.Now().Add(-2 * staleLockAge)
	if err := os.Chtimes(lockPath, old, old); err != nil {
		t.Fatal(err)
	}
	unlock, err := store.Lock()
	if err != nil {
		t.Fatalf("Lock over stale file failed: %v", err)
	}
	unlock()
	assertNotExists(t, lockPath)
}

func TestBreakStaleLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, lockFileName)
	stale := []byte("old-token 1 2024-01-01T00:00:00Z\n")
	fresh := []byte("new-token 2 2026-01-01T00:00:00Z\n")

	// 另一个进程已经用新锁替换了过期锁
	if err := os.WriteFile(path, fresh, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := breakStaleLock(path, stale); !errors.Is(err, ErrStoreBusy) {
		t.Fatalf("breakStaleLock error = %v; expected ErrStoreBusy", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != string(fresh) {
		t.Errorf("fresh lock not kept: (%q, %v)", data, err)
	}
	if got := rootEntries(t, dir); !reflect.DeepEqual(got, []string{lockFileName}) {
		t.Errorf("entries = %v; expected only the lock file", got)
	}

	if err := os.WriteFile(path, stale, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := breakStaleLock(path, stale); err != nil {
		t.Fatalf("breakStaleLock failed: %v", err)
	}
	if got := rootEntries(t, dir); len(got) != 0 {
		t.Errorf("entries = %v; expected none", got)
	}
}
