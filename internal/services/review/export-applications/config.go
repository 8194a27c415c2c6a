package exportapplications

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// IncludeCreatedAt is the default when a request does not choose.
	IncludeCreatedAt bool
	SheetName        string
	// Location renders the Created At column.
	Location *time.Location
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:   60 * time.Second,
		SheetName: "Applications",
		Location:  time.UTC,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.SheetName == "" || len(c.SheetName) > 31 {
		return fmt.Errorf("sheet_name must be 1-31 characters")
	}
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	return nil
}
