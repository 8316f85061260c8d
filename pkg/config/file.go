package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powerstate/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		LogLevel:         ptr.To("info"),
		JSONOutput:       ptr.To(false),
		IncludeBatteries: ptr.To(true),
		OnlyChanges:      ptr.To(false),
		SocketPath:       ptr.To(filepath.Join(os.TempDir(), "powerstate.sock")),
		// The socket only exposes read-only power information, but other
		// users still have to opt in.
		AllowNonRootAccess: ptr.To(false),
	}
)

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		logrus.Debugf("failed to get user config dir: %v", err)
		dir = os.TempDir()
	}
	return filepath.Join(dir, "powerstate", "config.json")
}

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	LogLevel           *string `json:"logLevel,omitempty"`
	JSONOutput         *bool   `json:"jsonOutput,omitempty"`
	IncludeBatteries   *bool   `json:"includeBatteries,omitempty"`
	OnlyChanges        *bool   `json:"onlyChanges,omitempty"`
	SocketPath         *string `json:"socketPath,omitempty"`
	AllowNonRootAccess *bool   `json:"allowNonRootAccess,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		LogLevel:           ptr.To(c.LogLevel()),
		JSONOutput:         ptr.To(c.JSONOutput()),
		IncludeBatteries:   ptr.To(c.IncludeBatteries()),
		OnlyChanges:        ptr.To(c.OnlyChanges()),
		SocketPath:         ptr.To(c.SocketPath()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
	}

	return rawConfig, nil
}

// valueOr returns *v, or *def when v is unset.
func valueOr[T any](v, def *T) T {
	if v != nil {
		return *v
	}
	return *def
}

func (f *File) LogLevel() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.LogLevel, defaultFileConfig.LogLevel)
}

func (f *File) JSONOutput() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.JSONOutput, defaultFileConfig.JSONOutput)
}

func (f *File) IncludeBatteries() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.IncludeBatteries, defaultFileConfig.IncludeBatteries)
}

func (f *File) OnlyChanges() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.OnlyChanges, defaultFileConfig.OnlyChanges)
}

func (f *File) SocketPath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.SocketPath, defaultFileConfig.SocketPath)
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return valueOr(f.c.AllowNonRootAccess, defaultFileConfig.AllowNonRootAccess)
}

func (f *File) SetLogLevel(level string) {
	if f.c == nil {
		panic("config is nil")
	}

	if _, err := logrus.ParseLevel(level); err != nil {
		panic("invalid log level " + level)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.LogLevel = &level
}

func (f *File) SetJSONOutput(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.JSONOutput = &b
}

func (f *File) SetIncludeBatteries(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.IncludeBatteries = &b
}

func (f *File) SetOnlyChanges(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.OnlyChanges = &b
}

func (f *File) SetSocketPath(p string) {
	if f.c == nil {
		panic("config is nil")
	}

	if p == "" {
		panic("socket path must not be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.SocketPath = &p
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.AllowNonRootAccess = &b
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if conf.LogLevel != nil {
		if _, err := logrus.ParseLevel(*conf.LogLevel); err != nil {
			return pkgerrors.Wrapf(err, "invalid logLevel in %s", f.filepath)
		}
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create config dir for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"logLevel":           f.LogLevel(),
		"jsonOutput":         f.JSONOutput(),
		"includeBatteries":   f.IncludeBatteries(),
		"onlyChanges":        f.OnlyChanges(),
		"socketPath":         f.SocketPath(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
	}
}
