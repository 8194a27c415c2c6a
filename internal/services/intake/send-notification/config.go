package sendnotification

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	EmailEnabled    bool
	SMSEnabled      bool
	NotifyApplicant bool
	FromEmail       string
	HRRecipients    []string
	TopicARN        string
	Timeout         time.Duration
}

func DefaultConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.EmailEnabled {
		if strings.TrimSpace(c.FromEmail) == "" {
			return fmt.Errorf("from_email is required when email is enabled")
		}
		if len(c.HRRecipients) == 0 && !c.NotifyApplicant {
			return fmt.Errorf("email is enabled but there are no recipients")
		}
	}
	if c.SMSEnabled && strings.TrimSpace(c.TopicARN) == "" {
		return fmt.Errorf("topic_arn is required when sms is enabled")
	}
	return nil
}
