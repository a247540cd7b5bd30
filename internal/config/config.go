package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfigFailed обозначает любую проблему с чтением или разбором config.yaml.
var ErrConfigFailed = errors.New("config: failed to load")

const (
	DefaultNoticeDuration = 3 * time.Second
	DefaultAdminPrivilege = 2

	StorageBadger = "badger"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config описывает пользовательские настройки клиента и вычисляемые пути.
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	LogLevel       string        `yaml:"log_level"`
	LogFile        string        `yaml:"log_file"`
	NoticeDuration time.Duration `yaml:"notice_duration"`
	AdminPrivilege int           `yaml:"admin_privilege"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Storage        StorageConfig `yaml:"storage"`

	AppDir string `yaml:"-"`
}

// StorageConfig выбирает долговременное хранилище сессии.
type StorageConfig struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	RedisURL  string `yaml:"redis_url"`
	KeyPrefix string `yaml:"key_prefix"`
}

// envOverrides перекрывает значения из YAML переменными окружения.
type envOverrides struct {
	APIBaseURL    string `env:"TRAINSYS_API_BASE_URL"`
	LogLevel      string `env:"TRAINSYS_LOG_LEVEL"`
	StorageDriver string `env:"TRAINSYS_STORAGE_DRIVER"`
	RedisURL      string `env:"TRAINSYS_REDIS_URL"`
}

// Error содержит дополнительный контекст при неудачной загрузке конфигурации.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ErrConfigFailed.Error()
	}
	return fmt.Sprintf("%v: %s: %v", ErrConfigFailed, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is позволяет сопоставлять любую *Error с ErrConfigFailed.
func (e *Error) Is(target error) bool {
	return target == ErrConfigFailed
}

// DetectAppDir возвращает каталог, в котором находится исполняемый файл.
func DetectAppDir() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("detect executable: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exePath)
	if err == nil {
		exePath = resolved
	}
	return filepath.Dir(exePath), nil
}

// DefaultPath возвращает путь к config.yaml относительно каталога приложения.
func DefaultPath(appDir string) string {
	return filepath.Join(appDir, "config.yaml")
}

// Load читает .env и YAML конфигурации, применяет переопределения окружения
// и appDir ко всем относительным путям.
func Load(path string, appDir string) (*Config, error) {
	if path == "" {
		return nil, &Error{Path: path, Err: errors.New("config path is empty")}
	}
	if appDir == "" {
		return nil, &Error{Path: path, Err: errors.New("app directory is empty")}
	}
	if err := loadDotEnv(filepath.Join(appDir, ".env")); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	cfg.AppDir = appDir
	cfg.LogLevel = normalizeLogLevel(cfg.LogLevel)
	cfg.applyDefaults()
	cfg.applyAppDir()
	if err := cfg.validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if err := cfg.ensureDirectories(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("decode environment: %w", err)
	}
	if env.APIBaseURL != "" {
		c.APIBaseURL = env.APIBaseURL
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if env.StorageDriver != "" {
		c.Storage.Driver = env.StorageDriver
	}
	if env.RedisURL != "" {
		c.Storage.RedisURL = env.RedisURL
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.NoticeDuration <= 0 {
		c.NoticeDuration = DefaultNoticeDuration
	}
	if c.AdminPrivilege <= 0 {
		c.AdminPrivilege = DefaultAdminPrivilege
	}
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageBadger
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join("data", "session")
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "trainsys:"
	}
}

func (c *Config) applyAppDir() {
	if c.AppDir == "" {
		return
	}
	c.AppDir = filepath.Clean(c.AppDir)
	c.LogFile = makeAbsolute(c.LogFile, c.AppDir)
	c.Storage.Path = makeAbsolute(c.Storage.Path, c.AppDir)
}

func (c *Config) validate() error {
	switch {
	case c.APIBaseURL == "":
		return errors.New("api_base_url is required")
	case c.LogFile == "":
		return errors.New("log_file is required")
	case c.AppDir == "":
		return errors.New("app directory is unknown")
	case c.RequestTimeout < 0:
		return errors.New("request_timeout must not be negative")
	}
	if _, ok := allowedLevels[c.LogLevel]; !ok {
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}
	switch c.Storage.Driver {
	case StorageBadger, StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for redis driver")
		}
	default:
		return fmt.Errorf("unsupported storage.driver %q", c.Storage.Driver)
	}
	return nil
}

func (c *Config) ensureDirectories() error {
	paths := []string{filepath.Dir(c.LogFile)}
	if c.Storage.Driver == StorageBadger {
		paths = append(paths, c.Storage.Path)
	}
	for _, dir := range paths {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func makeAbsolute(path string, base string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if base == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func normalizeLogLevel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "info"
	}
	return value
}

var allowedLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"error": {},
}
