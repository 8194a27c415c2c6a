package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Clients bundles the AWS service clients used for submission notifications.
// Both share one resolved configuration.
type Clients struct {
	Region string
	SES    *ses.Client
	SNS    *sns.Client
}

// LoadConfig resolves credentials from the default chain (env, shared config,
// instance role) for the given region.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	if region == "" {
		return aws.Config{}, fmt.Errorf("aws region is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

func NewClients(ctx context.Context, region string) (*Clients, error) {
	cfg, err := LoadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return NewClientsFromConfig(cfg), nil
}

func NewClientsFromConfig(cfg aws.Config) *Clients {
	return &Clients{
		Region: cfg.Region,
		SES:    ses.NewFromConfig(cfg),
		SNS:    sns.NewFromConfig(cfg),
	}
}
