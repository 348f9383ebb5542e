package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

// IAMRoleCredentials authorizes COPY with a role attached to the cluster.
type IAMRoleCredentials struct {
	ARN string
}

// CopyCredentials renders the iam_role clause.
func (c IAMRoleCredentials) CopyCredentials(_ context.Context) (string, error) {
	if c.ARN == "" {
		return "", fmt.Errorf("IAM role ARN is empty: %w", dwh.ErrInvalidConfig)
	}
	return "iam_role " + quoteLiteral(c.ARN), nil
}

// AWSKeyCredentials authorizes COPY with access keys from the AWS default
// credential chain (environment, shared config, SSO, instance role).
type AWSKeyCredentials struct {
	region   string
	provider aws.CredentialsProvider
}

// NewAWSKeyCredentials resolves the default credential chain for region.
func NewAWSKeyCredentials(ctx context.Context, region string) (*AWSKeyCredentials, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSKeyCredentials{region: region, provider: cfg.Credentials}, nil
}

// NewAWSKeyCredentialsFromProvider wraps an explicit provider.
func NewAWSKeyCredentialsFromProvider(region string, provider aws.CredentialsProvider) *AWSKeyCredentials {
	return &AWSKeyCredentials{region: region, provider: provider}
}

// CopyCredentials retrieves the current keys and renders the credentials clause.
// Temporary credentials carry their session token.
func (c *AWSKeyCredentials) CopyCredentials(ctx context.Context) (string, error) {
	if c.provider == nil {
		return "", fmt.Errorf("no AWS credentials provider configured for region %s", c.region)
	}
	creds, err := c.provider.Retrieve(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}

	parts := []string{
		"aws_access_key_id=" + creds.AccessKeyID,
		"aws_secret_access_key=" + creds.SecretAccessKey,
	}
	if creds.SessionToken != "" {
		parts = append(parts, "token="+creds.SessionToken)
	}
	return "credentials " + quoteLiteral(strings.Join(parts, ";")), nil
}

// NewCredentialsResolver prefers the IAM role from settings and falls back to
// the default credential chain.
func NewCredentialsResolver(ctx context.Context, settings *dwh.Settings) (dwh.CredentialsResolver, error) {
	if settings.IAMRole.ARN != "" {
		return IAMRoleCredentials{ARN: settings.IAMRole.ARN}, nil
	}
	return NewAWSKeyCredentials(ctx, settings.S3.Region)
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

var (
	_ dwh.CredentialsResolver = IAMRoleCredentials{}
	_ dwh.CredentialsResolver = (*AWSKeyCredentials)(nil)
)
