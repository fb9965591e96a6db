package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const DefaultReloadDebounce = 300 * time.Millisecond

// Manager keeps the JSON config file and the in-memory Config in step.
// Edits made through the Manager are written atomically; edits made by
// anyone else are picked up by Watch.
type Manager struct {
	path     string
	debounce time.Duration

	mu     sync.RWMutex
	cfg    Config
	raw    []byte // file content that produced cfg
	logger zerolog.Logger
}

type ManagerOption func(*Manager)

// WithConfigDir stores config.json inside dir.
func WithConfigDir(dir string) ManagerOption {
	return func(m *Manager) {
		if dir != "" {
			m.path = filepath.Join(dir, "config.json")
		}
	}
}

func WithConfigPath(path string) ManagerOption {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithDebounce sets how long Watch waits for a burst of file events to
// settle before reloading.
func WithDebounce(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.debounce = d
		}
	}
}

// NewManager loads the config file, creating it with defaults when missing.
func NewManager(opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		debounce: DefaultReloadDebounce,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.path == "" {
		path, err := defaultConfigPath()
		if err != nil {
			return nil, err
		}
		m.path = path
	}
	abs, err := filepath.Abs(m.path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	m.path = abs

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return m.write(*DefaultConfigWithRoot(filepath.Dir(m.path)))
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	cfg, err := m.decode(data)
	if err != nil {
		return err
	}
	m.cfg, m.raw = cfg, data
	return nil
}

// SetLogger attaches the logger used by Watch. The logger usually depends on
// the config itself, so it is set after NewManager returns.
func (m *Manager) SetLogger(logger zerolog.Logger) {
	m.mu.Lock()
	m.logger = logger.With().Str("component", "config").Logger()
	m.mu.Unlock()
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) UpdateFromJSON(jsonStr string) error {
	var cfg Config
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return fmt.Errorf("parse config json: %w", err)
	}
	return m.Update(cfg)
}

// Update validates cfg and persists it. Watch does not report changes made
// here back to its listener.
func (m *Manager) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if reflect.DeepEqual(m.Get(), cfg) {
		return nil
	}
	return m.write(cfg)
}

// Set changes one top-level key, addressed by its JSON name. The value is
// taken literally for string keys and decoded as JSON otherwise.
func (m *Manager) Set(key, value string) error {
	fields, err := m.Get().Fields()
	if err != nil {
		return err
	}

	current, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}

	if strings.HasPrefix(string(current), `"`) || !json.Valid([]byte(value)) {
		quoted, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fields[key] = quoted
	} else {
		fields[key] = json.RawMessage(value)
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return m.UpdateFromJSON(string(merged))
}

func (m *Manager) write(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := writeFileAtomic(m.path, data); err != nil {
		return err
	}
	m.cfg, m.raw = cfg, data
	return nil
}

// Watch reloads the file whenever it changes on disk until ctx is done.
// onChange receives every reloaded config that differs from the current one.
// A file that fails to parse or validate is logged and the previous config
// stays in effect.
func (m *Manager) Watch(ctx context.Context, onChange func(Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors and writeFileAtomic replace the file.
	if err := w.Add(filepath.Dir(m.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}
	go m.watch(ctx, w, onChange)
	return nil
}

func (m *Manager) watch(ctx context.Context, w *fsnotify.Watcher, onChange func(Config)) {
	defer w.Close()

	settle := time.NewTimer(m.debounce)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) == m.path && evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				settle.Reset(m.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			m.log().Warn().Err(err).Msg("config watcher error")
		case <-settle.C:
			cfg, changed, err := m.reload()
			if err != nil {
				m.log().Error().Err(err).Str("path", m.path).Msg("config reload rejected, keeping previous settings")
				continue
			}
			if changed {
				m.log().Info().Str("path", m.path).Msg("config reloaded")
				if onChange != nil {
					onChange(cfg)
				}
			}
		}
	}
}

// reload reads the file and adopts it when it parses, validates and differs
// from what the Manager already holds. Content the Manager wrote itself is
// recognised and skipped.
func (m *Manager) reload() (Config, bool, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return Config{}, false, fmt.Errorf("read config: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if bytes.Equal(data, m.raw) {
		return Config{}, false, nil
	}

	cfg, err := m.decode(data)
	if err != nil {
		return Config{}, false, err
	}
	m.raw = data
	if reflect.DeepEqual(cfg, m.cfg) {
		return Config{}, false, nil
	}
	m.cfg = cfg
	return cfg, true, nil
}

// decode overlays data onto the defaults so keys missing from older files
// keep sensible values.
func (m *Manager) decode(data []byte) (Config, error) {
	cfg := *DefaultConfigWithRoot(filepath.Dir(m.path))
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", m.path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", m.path, err)
	}
	return cfg, nil
}

func (m *Manager) log() *zerolog.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l := m.logger
	return &l
}

// Fields returns the config as a map keyed by JSON name.
func (c Config) Fields() (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "StockPulse", "config.json"), nil
}

// writeFileAtomic replaces path so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
