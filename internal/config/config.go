// Package config loads the settings that feed a status check run.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrNoURLs         = errors.New("no URLs provided, use --file or pass URLs as arguments")
	ErrBlankURL       = errors.New("blank URL in input")
	ErrInvalidWorkers = errors.New("workers must be a positive integer")
	ErrInvalidTimeout = errors.New("timeout must be a positive number of seconds")
	ErrInvalidRetries = errors.New("retries must not be negative")
)

const EnvPrefix = "STATUSCHECK"

type Config struct {
	URLs           []string     `mapstructure:"urls"`
	File           string       `mapstructure:"file"`
	Workers        int          `mapstructure:"workers"`
	Timeout        int          `mapstructure:"timeout"`
	Retries        int          `mapstructure:"retries"`
	Output         string       `mapstructure:"output"`
	Markdown       string       `mapstructure:"markdown"`
	FailOnFailures bool         `mapstructure:"fail_on_failures"`
	Log            LogConfig    `mapstructure:"log"`
	Kafka          KafkaConfig  `mapstructure:"kafka"`
	Server         ServerConfig `mapstructure:"server"`
}

type LogConfig struct {
	Level    string   `mapstructure:"level"`
	Files    []string `mapstructure:"files"`
	Internal bool     `mapstructure:"internal"`
	Verbose  bool     `mapstructure:"verbose"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	History int    `mapstructure:"history"`
}

// New returns a viper instance with defaults, env binding and the optional
// statuscheck.yaml search paths configured.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("statuscheck")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("timeout", 5)
	v.SetDefault("retries", 0)
	v.SetDefault("output", "status.json")
	v.SetDefault("markdown", "")
	v.SetDefault("fail_on_failures", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.files", []string{})
	v.SetDefault("log.internal", false)
	v.SetDefault("log.verbose", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "status-results")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.history", 100)
}

// Load reads the optional config file and unmarshals everything into a
// Config. URLs from args and from the URL file are appended to any listed in
// the config file. Nothing is validated here.
func Load(v *viper.Viper, args []string) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.URLs = append(cfg.URLs, args...)
	if cfg.File != "" {
		fileURLs, err := ReadURLFile(cfg.File)
		if err != nil {
			return nil, err
		}
		cfg.URLs = append(cfg.URLs, fileURLs...)
	}
	return &cfg, nil
}

// ReadURLFile reads one URL per line. Surrounding whitespace is trimmed;
// blank lines and lines starting with # are skipped.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read line: %w", err)
	}
	return urls, nil
}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Retries < 0 {
		return ErrInvalidRetries
	}
	return nil
}

// ValidateCheck additionally requires a non-empty list of non-blank URLs.
func (c *Config) ValidateCheck() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.URLs) == 0 {
		return ErrNoURLs
	}
	for i, u := range c.URLs {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("%w at position %d", ErrBlankURL, i)
		}
	}
	return nil
}

func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
