package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	once     sync.Once
	instance *Config
)

const (
	envFile  = "./configs/.env"
	yamlFile = "./configs/config.yaml"
)

// Config resolves keys from the process environment first and falls back to
// the defaults read from configs/config.yaml.
type Config struct {
	defaults map[string]string
}

func New() *Config {
	once.Do(func() {
		cfg, err := Load(envFile, yamlFile)
		if err != nil {
			log.Fatal("loading config error: ", err)
		}
		instance = cfg
	})
	return instance
}

// Load reads an optional .env file into the environment and an optional yaml
// file of defaults. Missing files are not an error.
func Load(envPath, yamlPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading envs: %w", err)
	}
	cfg := &Config{defaults: map[string]string{}}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", yamlPath, err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", yamlPath, err)
	}
	for k, v := range raw {
		cfg.defaults[k] = fmt.Sprint(v)
	}
	return cfg, nil
}

func (c *Config) GetString(key string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return c.defaults[key]
}

func (c *Config) GetInt(key string, fallback int) int {
	v, err := strconv.Atoi(c.GetString(key))
	if err != nil {
		return fallback
	}
	return v
}

func (c *Config) GetDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return fallback
	}
	return v
}
