package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/dshills/veco/internal/config/notify"
	"github.com/dshills/veco/internal/log"
)

// Default settings file locations.
const (
	UserDirName       = "veco"
	WorkspaceDirName  = ".veco"
	SettingsFileName  = "settings.yaml"
	updateSourceLabel = "update"
)

// DefaultUserFile returns ~/.config/veco/settings.yaml, or "" when the user
// config directory cannot be determined.
func DefaultUserFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, UserDirName, SettingsFileName)
}

// DefaultWorkspaceFile returns <root>/.veco/settings.yaml.
func DefaultWorkspaceFile(root string) string {
	if root == "" {
		return ""
	}
	return filepath.Join(root, WorkspaceDirName, SettingsFileName)
}

// Store holds the layered highlight settings and writes updates back to the
// settings files.
type Store struct {
	mu sync.RWMutex

	userFile      string
	workspaceFile string

	v       *viper.Viper
	current Highlight

	notifier *notify.Notifier
	logger   *log.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithUserFile sets the user (global) settings file.
func WithUserFile(path string) StoreOption {
	return func(s *Store) {
		s.userFile = path
	}
}

// WithWorkspaceFile sets the workspace settings file merged over the user file.
func WithWorkspaceFile(path string) StoreOption {
	return func(s *Store) {
		s.workspaceFile = path
	}
}

// WithNotifier sets the notifier that receives change events.
func WithNotifier(n *notify.Notifier) StoreOption {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a store and loads the settings files. Missing files are
// not an error; the built-in defaults apply.
func NewStore(opts ...StoreOption) (*Store, error) {
	s := &Store{
		notifier: notify.New(),
		logger:   log.NullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("config")

	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Notifier returns the change notifier.
func (s *Store) Notifier() *notify.Notifier {
	return s.notifier
}

// Files returns the configured settings files, user file first. Empty
// entries are omitted.
func (s *Store) Files() []string {
	var files []string
	if s.userFile != "" {
		files = append(files, s.userFile)
	}
	if s.workspaceFile != "" {
		files = append(files, s.workspaceFile)
	}
	return files
}

// Load re-reads the settings files without notifying.
func (s *Store) Load() error {
	v := viper.New()
	setDefaults(v)

	if err := readLayer(v, s.userFile, false); err != nil {
		return err
	}
	if err := readLayer(v, s.workspaceFile, true); err != nil {
		return err
	}

	h, err := decode(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.v = v
	s.current = h
	s.mu.Unlock()

	s.logger.Debug("loaded settings (user=%q workspace=%q)", s.userFile, s.workspaceFile)
	return nil
}

// Reload re-reads the settings files and emits a reload notification.
// On error the previous snapshot stays active.
func (s *Store) Reload(source string) error {
	if err := s.Load(); err != nil {
		s.logger.Warn("reload from %s failed: %v", source, err)
		return err
	}
	s.notifier.NotifyReload(source)
	return nil
}

// Highlight returns a copy of the current settings snapshot.
func (s *Store) Highlight() Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Get returns the merged raw value of an option key.
func (s *Store) Get(key string) (any, error) {
	if !isKnownKey(key) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.Get(FullKey(key)), nil
}

// Update writes key = value to the user file when global is true, else to
// the workspace file, then reloads and notifies subscribers of
// veco.highlight.<key>.
func (s *Store) Update(ctx context.Context, key string, value any, global bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !isKnownKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	target := s.workspaceFile
	if global {
		target = s.userFile
	}
	if target == "" {
		return ErrNoTarget
	}

	old, _ := s.Get(key)

	keyPath := append(strings.Split(Section, "."), key)
	if err := WriteSetting(target, keyPath, encodeValue(value)); err != nil {
		return err
	}
	if err := s.Load(); err != nil {
		return err
	}

	s.logger.Info("updated %s in %s", FullKey(key), target)
	s.notifier.NotifySet(FullKey(key), old, value, updateSourceLabel)
	return nil
}

func isKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

func encodeValue(value any) any {
	switch v := value.(type) {
	case []Keyword:
		return EncodeKeywords(v)
	case Style:
		return map[string]any(v)
	default:
		return value
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(FullKey(KeyEnabled), d.Enabled)
	v.SetDefault(FullKey(KeyToggleURI), d.ToggleURI)
	v.SetDefault(FullKey(KeyIsCaseSensitive), d.IsCaseSensitive)
	v.SetDefault(FullKey(KeyEnableDiagnostics), d.EnableDiagnostics)
	v.SetDefault(FullKey(KeyMaxFilesForSearch), d.MaxFilesForSearch)
	v.SetDefault(FullKey(KeyDefaultStyle), map[string]any(d.DefaultStyle))
	v.SetDefault(FullKey(KeyKeywords), EncodeKeywords(d.Keywords))
	v.SetDefault(FullKey(KeyKeywordsPattern), d.KeywordsPattern)
	v.SetDefault(FullKey(KeyInclude), d.Include)
	v.SetDefault(FullKey(KeyExclude), d.Exclude)
}

func readLayer(v *viper.Viper, path string, merge bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	v.SetConfigFile(path)
	var err error
	if merge {
		err = v.MergeInConfig()
	} else {
		err = v.ReadInConfig()
	}
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return &ParseError{Path: path, Message: "reading settings", Err: err}
	}
	return nil
}

func decode(v *viper.Viper) (Highlight, error) {
	h := Highlight{
		Enabled:           v.GetBool(FullKey(KeyEnabled)),
		ToggleURI:         v.GetBool(FullKey(KeyToggleURI)),
		IsCaseSensitive:   v.GetBool(FullKey(KeyIsCaseSensitive)),
		EnableDiagnostics: v.GetBool(FullKey(KeyEnableDiagnostics)),
		MaxFilesForSearch: v.GetInt(FullKey(KeyMaxFilesForSearch)),
		KeywordsPattern:   v.GetString(FullKey(KeyKeywordsPattern)),
		Include:           v.GetStringSlice(FullKey(KeyInclude)),
		Exclude:           v.GetStringSlice(FullKey(KeyExclude)),
		DefaultStyle:      NewStyle(v.GetStringMap(FullKey(KeyDefaultStyle))),
	}

	keywords, err := ParseKeywords(v.Get(FullKey(KeyKeywords)))
	if err != nil {
		return Highlight{}, fmt.Errorf("%s: %w", FullKey(KeyKeywords), err)
	}
	h.Keywords = keywords
	return h, nil
}
