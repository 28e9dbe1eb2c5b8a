package tools

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kira1928/javatools/pkg/config"
	xz "github.com/ulikunitz/xz"
)

type archiveEntry struct {
	name    string
	content string
}

// jdkEntries 模拟一个带自身命名外层目录的 JDK 压缩包
func jdkEntries(wrapper string) []archiveEntry {
	return []archiveEntry{
		{wrapper + "/bin/java", "#!/bin/sh\necho java\n"},
		{wrapper + "/lib/modules", "modules"},
		{wrapper + "/release", "JAVA_VERSION=\"17\"\n"},
	}
}

func buildZip(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.content)); err != nil {
			t.Fatalf("zip write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func writeTar(t *testing.T, w io.Writer, entries []archiveEntry) {
	t.Helper()
	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     0o755,
			Size:     int64(len(e.content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", e.name, err)
		}
		if _, err := tw.Write([]byte(e.content)); err != nil {
			t.Fatalf("tar write %s: %v", e.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
}

func buildTarGz(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	writeTar(t, gw, entries)
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func buildTarXz(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	writeTar(t, xw, entries)
	if err := xw.Close(); err != nil {
		t.Fatalf("xz close: %v", err)
	}
	return buf.Bytes()
}

// archiveServer serves fixed bodies by path and counts requests.
type archiveServer struct {
	*httptest.Server
	mu       sync.Mutex
	files    map[string][]byte
	headers  map[string]http.Header
	requests atomic.Int32
}

func newArchiveServer(t *testing.T) *archiveServer {
	t.Helper()
	s := &archiveServer{files: map[string][]byte{}, headers: map[string]http.Header{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.mu.Lock()
		body, ok := s.files[r.URL.Path]
		hdr := s.headers[r.URL.Path]
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		for k, v := range hdr {
			w.Header()[k] = v
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *archiveServer) add(path string, body []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = body
	return s.URL + path
}

func (s *archiveServer) addWithHeader(path string, body []byte, key, value string) string {
	u := s.add(path, body)
	s.mu.Lock()
	defer s.mu.Unlock()
	h := http.Header{}
	h.Set(key, value)
	s.headers[path] = h
	return u
}

type persistCall struct {
	name, value string
}

type recordingPersister struct {
	calls     []persistCall
	persisted bool
	err       error
}

func (p *recordingPersister) PersistEnv(_ context.Context, name, value string) (bool, error) {
	p.calls = append(p.calls, persistCall{name, value})
	return p.persisted, p.err
}

type testEnv struct {
	root      string
	manager   *Manager
	out       *bytes.Buffer
	persister *recordingPersister
	prompts   []string
	answers   []string
	progress  []DownloadProgress
}

func newTestEnv(t *testing.T, urls config.URLTable) *testEnv {
	t.Helper()
	env := &testEnv{
		root:      filepath.Join(t.TempDir(), ".java_versions"),
		out:       &bytes.Buffer{},
		persister: &recordingPersister{},
	}
	prompter := PromptFunc(func(q string) (string, error) {
		env.prompts = append(env.prompts, q)
		if len(env.answers) == 0 {
			return "", io.EOF
		}
		a := env.answers[0]
		env.answers = env.answers[1:]
		return a, nil
	})
	env.manager = NewManager(
		config.Config{Root: env.root, EnvVar: "JAVA_HOME", URLs: urls},
		WithPrompter(prompter),
		WithEnvPersister(env.persister),
		WithOutput(env.out),
		WithLogger(log.New(io.Discard, "", 0)),
		WithProgressCallback(func(p DownloadProgress) { env.progress = append(env.progress, p) }),
	)
	return env
}

func rootEntries(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("%s should exist: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%s should not exist (err=%v)", path, err)
	}
}
