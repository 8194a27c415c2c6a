package searchapplications

import (
	"fmt"
	"time"
)

type Config struct {
	Index       string
	Timeout     time.Duration
	DefaultSize int
	MaxSize     int
}

func DefaultConfig() *Config {
	return &Config{
		Index:       "applications",
		Timeout:     5 * time.Second,
		DefaultSize: 50,
		MaxSize:     200,
	}
}

func (c *Config) Validate() error {
	if c.Index == "" {
		return fmt.Errorf("index is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DefaultSize <= 0 || c.MaxSize < c.DefaultSize {
		return fmt.Errorf("sizes must satisfy 0 < default_size <= max_size")
	}
	return nil
}
