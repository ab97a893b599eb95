// Package config resolves the column names used by the model behaviors.
//
// Values come from, in increasing precedence: the embedded defaults, an
// optional configuration file, MODELKIT_ environment variables and runtime
// calls to Set.
//
//	cfg, err := config.Load("config/modelkit.yaml")
//	if err != nil {
//		return err
//	}
//	config.SetDefault(cfg)
package config

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides. The key
// sluggable_fields.slug is read from MODELKIT_SLUGGABLE_FIELDS_SLUG.
const EnvPrefix = "MODELKIT"

//go:embed defaults.yaml
var defaults []byte

// Config is a viper backed Resolver. It is safe for concurrent use: Set
// and file reloads take the same lock as Get. A reload does not reach
// mixins already built, which resolved their columns at construction.
type Config struct {
	mu       sync.RWMutex
	v        *viper.Viper
	log      *slog.Logger
	onChange []func(fsnotify.Event)
	watcher  *fsnotify.Watcher
}

// Option configures a Config.
type Option func(*Config)

// WithLogger sets the logger used to report configuration reloads.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.log = l
	}
}

// New returns a Config holding the embedded defaults and the environment
// overrides.
func New(opts ...Option) (*Config, error) {
	c := &Config{
		v:   viper.New(),
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	values, err := Defaults()
	if err != nil {
		return nil, err
	}
	for key, value := range values {
		c.v.SetDefault(key, value)
	}
	c.v.SetEnvPrefix(EnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()
	return c, nil
}

// Load returns a Config that also reads the given file. The format is
// derived from the file extension (yaml, toml or json).
func Load(path string, opts ...Option) (*Config, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return c, nil
}

// Get implements Resolver.
func (c *Config) Get(key, def string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.v.IsSet(key) {
		return def
	}
	return c.v.GetString(key)
}

// Set overrides a key at runtime. Mixins resolve their columns when they
// are constructed, so only query helpers observe the new value of an
// already attached mixin.
func (c *Config) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v.Set(key, value)
}

// OnChange registers a callback invoked after the watched file changed
// and was read again.
func (c *Config) OnChange(fn func(fsnotify.Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Watch re-reads the configuration file whenever it changes, until Close
// is called. It requires a Config returned by Load. The directory of the
// file is watched so that editors replacing the file are noticed.
func (c *Config) Watch() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	path := c.v.ConfigFileUsed()
	if path == "" {
		return fmt.Errorf("config: watch requires a configuration file")
	}
	if c.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	c.watcher = w
	go c.watch(w, path)
	return nil
}

func (c *Config) watch(w *fsnotify.Watcher, path string) {
	for {
		select {
		case e, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != path || !e.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			c.mu.Lock()
			err := c.v.ReadInConfig()
			callbacks := slices.Clone(c.onChange)
			c.mu.Unlock()
			if err != nil {
				c.log.Warn("config: reload failed", "file", path, "error", err)
				continue
			}
			c.log.Info("config: reloaded", "file", e.Name, "op", e.Op.String())
			for _, fn := range callbacks {
				fn(e)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			c.log.Warn("config: watch error", "error", err)
		}
	}
}

// Close stops watching the configuration file.
func (c *Config) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

// Save writes the current settings to path, creating its directory if
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

// Defaults returns the embedded defaults as flat dotted keys.
func Defaults() (map[string]string, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(defaults, &tree); err != nil {
		return nil, fmt.Errorf("config: parse defaults: %w", err)
	}
	flat := make(map[string]string)
	flatten("", tree, flat)
	return flat, nil
}

func flatten(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case map[string]any:
			flatten(key, v, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(v)
		}
	}
}

// WriteDefaults writes the embedded default configuration, comments
// included, to w. It is the starting point of a project configuration file.
func WriteDefaults(w io.Writer) error {
	_, err := w.Write(defaults)
	return err
}

var _ Resolver = (*Config)(nil)
