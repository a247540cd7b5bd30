// Package devserver реализует встроенный заменитель удалённого API продажи билетов
// для локальной разработки и сквозных тестов. Данные хранятся в памяти.
package devserver

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config описывает настройки dev-сервера.
type Config struct {
	ListenAddr     string      `yaml:"listen_addr"`
	Prefix         string      `yaml:"prefix"`
	AdminPrivilege int         `yaml:"admin_privilege"`
	RateLimit      float64     `yaml:"rate_limit"`
	RateBurst      int         `yaml:"rate_burst"`
	BcryptCost     int         `yaml:"bcrypt_cost"`
	Users          []SeedUser  `yaml:"users"`
	Trains         []SeedTrain `yaml:"trains"`
}

// SeedUser задаёт пользователя, создаваемого при старте.
type SeedUser struct {
	UserID    int64  `yaml:"user_id"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Privilege int    `yaml:"privilege"`
}

// SeedTrain задаёт поезд, создаваемый при старте; ReleasedDates сразу выпускаются в продажу.
type SeedTrain struct {
	TrainID       string   `yaml:"train_id"`
	SeatNum       int      `yaml:"seat_num"`
	Stations      []string `yaml:"stations"`
	Durations     []int    `yaml:"durations"`
	Prices        []int    `yaml:"prices"`
	ReleasedDates []string `yaml:"released_dates"`
}

// LoadConfig читает YAML конфигурацию dev-сервера.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Prefix == "" {
		c.Prefix = "/api"
	}
	c.Prefix = "/" + strings.Trim(c.Prefix, "/")
	if c.AdminPrivilege <= 0 {
		c.AdminPrivilege = 2
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 20
	}
}
