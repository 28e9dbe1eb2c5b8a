package tools

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/kira1928/javatools/pkg/config"
	"github.com/kira1928/javatools/pkg/ui"
)

// Manager installs, switches and removes Java versions in a Store.
type Manager struct {
	store            *Store
	urls             config.URLTable
	envVar           string
	client           *http.Client
	prompter         Prompter
	persister        EnvPersister
	out              *ui.Printer
	logger           *log.Logger
	progressCallback ProgressCallback
}

type Option func(*Manager)

// WithHTTPClient sets the client used for downloads. The default client has
// no timeout; cancel through the context instead.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.client = c }
}

func WithPrompter(p Prompter) Option {
	return func(m *Manager) { m.prompter = p }
}

func WithEnvPersister(p EnvPersister) Option {
	return func(m *Manager) { m.persister = p }
}

// WithOutput sets where user-facing status lines go.
func WithOutput(w io.Writer) Option {
	return func(m *Manager) { m.out = ui.NewPrinter(w) }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithProgressCallback sets a callback function to receive progress updates
func WithProgressCallback(cb ProgressCallback) Option {
	return func(m *Manager) { m.progressCallback = cb }
}

func NewManager(conf config.Config, opts ...Option) *Manager {
	envVar := conf.EnvVar
	if envVar == "" {
		envVar = config.DefaultEnvVar
	}
	m := &Manager{
		store:     NewStore(conf.Root),
		urls:      conf.URLs,
		envVar:    envVar,
		client:    &http.Client{},
		prompter:  NewLinePrompter(os.Stdin, os.Stdout),
		persister: DefaultEnvPersister(),
		out:       ui.NewPrinter(os.Stdout),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Store() *Store {
	return m.store
}

func (m *Manager) EnvVar() string {
	return m.envVar
}

// emitProgress 记录日志并转发给回调
func (m *Manager) emitProgress(dp DownloadProgress) {
	switch dp.Status {
	case "downloading":
		if dp.TotalBytes > 0 {
			m.logger.Printf("[java@%s] downloaded %s / %s (%s/s)", dp.Version, humanBytes(dp.DownloadedBytes), humanBytes(dp.TotalBytes), humanBytes(int64(dp.Speed)))
		} else {
			m.logger.Printf("[java@%s] downloaded %s (%s/s)", dp.Version, humanBytes(dp.DownloadedBytes), humanBytes(int64(dp.Speed)))
		}
	case "failed":
		m.logger.Printf("[java@%s] install failed: %v", dp.Version, dp.Error)
	default:
		m.logger.Printf("[java@%s] %s", dp.Version, dp.Status)
	}
	if m.progressCallback != nil {
		m.progressCallback(dp)
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
