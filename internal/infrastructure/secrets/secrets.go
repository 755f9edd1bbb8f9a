package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretGetter is the subset of the Secrets Manager client used here
type SecretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Resolver reads connection strings from AWS Secrets Manager
type Resolver struct {
	client SecretGetter
}

// NewResolver builds a resolver using the default AWS credential chain
func NewResolver(ctx context.Context, region string) (*Resolver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Resolver{client: secretsmanager.NewFromConfig(cfg)}, nil
}

// NewResolverWithClient is used when the client is constructed elsewhere
func NewResolverWithClient(client SecretGetter) *Resolver {
	return &Resolver{client: client}
}

// DSN returns the database connection string stored in secretID.
// The secret may be the raw DSN or a JSON object with a "dsn" or "url" key.
func (r *Resolver) DSN(ctx context.Context, secretID string) (string, error) {
	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret value: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretID)
	}

	raw := strings.TrimSpace(*out.SecretString)
	if !strings.HasPrefix(raw, "{") {
		return raw, nil
	}

	var payload struct {
		DSN string `json:"dsn"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal secret: %w", err)
	}
	if payload.DSN != "" {
		return payload.DSN, nil
	}
	if payload.URL != "" {
		return payload.URL, nil
	}
	return "", fmt.Errorf("secret %s has no dsn or url field", secretID)
}
