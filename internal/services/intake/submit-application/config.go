package submitapplication

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Timeout time.Duration
	// AllowedExtensions are lower-case and include the dot. Empty allows any.
	AllowedExtensions []string
	MaxResumeBytes    int64
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		AllowedExtensions: []string{".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt"},
		MaxResumeBytes:    10 << 20,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxResumeBytes <= 0 {
		return fmt.Errorf("max_resume_bytes must be positive")
	}
	for _, ext := range c.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("allowed extension %q must start with a dot", ext)
		}
	}
	return nil
}

func (c *Config) extensionAllowed(ext string) bool {
	if len(c.AllowedExtensions) == 0 {
		return true
	}
	ext = strings.ToLower(ext)
	for _, allowed := range c.AllowedExtensions {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}
	return false
}
