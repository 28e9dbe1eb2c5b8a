package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/blang/semver/v4"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultEnvVar 是切换版本时写入的环境变量
	DefaultEnvVar = "JAVA_HOME"
	// RootEnvVar 可覆盖默认的版本存储根目录
	RootEnvVar = "JAVATOOLS_HOME"
	// DefaultRootName 是用户主目录下的版本存储目录名
	DefaultRootName = ".java_versions"
	// URLFileName 是存储根目录下用户自定义下载地址表的文件名
	URLFileName = "urls.yaml"
)

//go:embed default_urls.yaml
var defaultURLsYAML []byte

// 测试时可替换
var (
	goos   = runtime.GOOS
	goarch = runtime.GOARCH
)

type Config struct {
	Root    string
	EnvVar  string
	URLFile string
	URLs    URLTable
}

// OsArchSpecificString holds a value that is either a plain string or a map
// keyed by GOOS, optionally nested by GOARCH. Value is empty when the map has
// no entry for the running platform.
type OsArchSpecificString struct {
	Value string
}

func (p *OsArchSpecificString) UnmarshalYAML(node *yaml.Node) (err error) {
	/*
		"https://xxx"
	*/
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&p.Value)
	}

	var urlMap map[string]interface{}
	if err = node.Decode(&urlMap); err != nil {
		return fmt.Errorf("line %d: expected a string or a map: %w", node.Line, err)
	}

	value, ok := urlMap[goos]
	if !ok || value == nil {
		p.Value = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		/*
			windows: https://xxx
			linux: https://xxx
		*/
		p.Value = v
		return nil
	case map[string]interface{}:
		/*
			windows:
			  amd64: https://xxx
			  arm64: https://xxx
		*/
		archValue, ok := v[goarch]
		if !ok || archValue == nil {
			p.Value = ""
			return nil
		}
		url, ok := archValue.(string)
		if !ok {
			return fmt.Errorf("line %d: value for %s/%s is not a string: %v", node.Line, goos, goarch, archValue)
		}
		p.Value = url
		return nil
	default:
		return fmt.Errorf("line %d: value for %s is not a string or a map: %v", node.Line, goos, value)
	}
}

// URLTable maps a version label to its download URL for the running platform.
type URLTable map[string]OsArchSpecificString

func parseURLTable(data []byte) (URLTable, error) {
	table := URLTable{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	return table, nil
}

// DefaultURLTable returns the table shipped with the binary.
func DefaultURLTable() (URLTable, error) {
	table, err := parseURLTable(defaultURLsYAML)
	if err != nil {
		return nil, fmt.Errorf("parse embedded url table: %w", err)
	}
	return table, nil
}

// LoadURLTable reads a user url table. A missing file yields an empty table.
func LoadURLTable(path string) (URLTable, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return URLTable{}, nil
	}
	if err != nil {
		return nil, err
	}
	table, err := parseURLTable(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}

// Lookup returns the URL for version, if one is known on this platform.
func (t URLTable) Lookup(version string) (string, bool) {
	entry, ok := t[version]
	if !ok || strings.TrimSpace(entry.Value) == "" {
		return "", false
	}
	return strings.TrimSpace(entry.Value), true
}

// Merge returns a new table where entries of other override t.
func (t URLTable) Merge(other URLTable) URLTable {
	merged := make(URLTable, len(t)+len(other))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// DefaultRoot resolves the version store root: $JAVATOOLS_HOME, else ~/.java_versions.
func DefaultRoot() (string, error) {
	if root := strings.TrimSpace(os.Getenv(RootEnvVar)); root != "" {
		return filepath.Abs(root)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultRootName), nil
}

// Load builds a Config. Empty arguments fall back to the defaults; the user
// url table defaults to <root>/urls.yaml.
func Load(root, urlFile, envVar string) (conf Config, err error) {
	if root == "" {
		if root, err = DefaultRoot(); err != nil {
			return
		}
	} else if root, err = filepath.Abs(root); err != nil {
		return
	}
	if urlFile == "" {
		urlFile = filepath.Join(root, URLFileName)
	}
	if envVar == "" {
		envVar = DefaultEnvVar
	}

	defaults, err := DefaultURLTable()
	if err != nil {
		return
	}
	user, err := LoadURLTable(urlFile)
	if err != nil {
		return
	}

	conf = Config{
		Root:    root,
		EnvVar:  envVar,
		URLFile: urlFile,
		URLs:    defaults.Merge(user),
	}
	return
}

// SortVersions orders names by version: names semver can read (tolerantly,
// so "8" and "v1.2" work) come first in ascending order, the rest follow
// lexically.
func SortVersions(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		if c := CompareVersions(versions[i], versions[j]); c != 0 {
			return c < 0
		}
		return versions[i] < versions[j]
	})
}

// CompareVersions compares two version strings
// Returns: 1 if v1 > v2, -1 if v1 < v2, 0 if v1 == v2
func CompareVersions(v1, v2 string) int {
	sv1, err1 := semver.ParseTolerant(v1)
	sv2, err2 := semver.ParseTolerant(v2)
	switch {
	case err1 == nil && err2 == nil:
		return sv1.Compare(sv2)
	case err1 == nil:
		return -1
	case err2 == nil:
		return 1
	default:
		return strings.Compare(v1, v2)
	}
}
