package tools

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	lockFileName = ".lock"
	// 超过该时长的锁文件视为上次进程崩溃后的残留
	staleLockAge = 24 * time.Hour
)

// tryLocker 是一个支持 TryLock/Unlock 的简化接口
type tryLocker interface {
	TryLock() bool
	Unlock()
}

// go1.18+ 的 sync.Mutex 原生支持 TryLock；封装以便将来替换实现
type tryMutex struct{ sync.Mutex }

func (m *tryMutex) TryLock() bool { return m.Mutex.TryLock() }

// 全局锁映射：按版本存储根目录划分，同一进程内的安装/删除互斥
var storeLocks sync.Map // map[string]*tryMutex

func getStoreMutex(root string) tryLocker {
	if m, ok := storeLocks.Load(root); ok {
		return m.(*tryMutex)
	}
	m := &tryMutex{}
	actual, _ := storeLocks.LoadOrStore(root, m)
	return actual.(*tryMutex)
}

// Lock takes the exclusive store lock: the in-process mutex plus a lock file
// in the root so that other processes see it too. The returned func releases
// both.
func (s *Store) Lock() (unlock func(), err error) {
	mu := getStoreMutex(s.root)
	if !mu.TryLock() {
		return nil, ErrStoreBusy
	}
	if _, err = s.Ensure(); err != nil {
		mu.Unlock()
		return nil, err
	}

	path := filepath.Join(s.root, lockFileName)
	token := uuid.New().String()
	if err = acquireLockFile(path, token); err != nil {
		mu.Unlock()
		return nil, err
	}
	return func() {
		releaseLockFile(path, token)
		mu.Unlock()
	}, nil
}

func acquireLockFile(path, token string) error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%s %d %s\n", token, os.Getpid(), time.Now().UTC().Format(time.RFC3339))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return fmt.Errorf("write lock file: %w", errors.Join(werr, cerr))
			}
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("create lock file: %w", err)
		}
		seen, readErr := os.ReadFile(path)
		info, statErr := os.Stat(path)
		if readErr != nil || statErr != nil || time.Since(info.ModTime()) < staleLockAge {
			return fmt.Errorf("%w (lock file %s)", ErrStoreBusy, path)
		}
		if err := breakStaleLock(path, seen); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w (lock file %s)", ErrStoreBusy, path)
}

// breakStaleLock moves the lock file aside and deletes it, but only if it is
// still the file whose content was seen. Another process may have replaced
// the stale lock in the meantime; its lock is put back.
func breakStaleLock(path string, seen []byte) error {
	moved := fmt.Sprintf("%s.stale-%s", path, uuid.New().String())
	if err := os.Rename(path, moved); err != nil {
		return fmt.Errorf("%w (lock file %s)", ErrStoreBusy, path)
	}
	data, err := os.ReadFile(moved)
	if err != nil || !bytes.Equal(data, seen) {
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			_ = os.Rename(moved, path)
		} else {
			_ = os.Remove(moved)
		}
		return fmt.Errorf("%w (lock file %s)", ErrStoreBusy, path)
	}
	_ = os.Remove(moved)
	return nil
}

// releaseLockFile 只删除自己持有的锁文件
func releaseLockFile(path, token string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	fields := strings.Fields(string(data))
	if len(fields) > 0 && fields[0] == token {
		_ = os.Remove(path)
	}
}
