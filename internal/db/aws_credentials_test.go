package db

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

func staticProvider(id, secret, token string) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{AccessKeyID: id, SecretAccessKey: secret, SessionToken: token}, nil
	})
}

func TestIAMRoleCredentials(t *testing.T) {
	creds := IAMRoleCredentials{ARN: "arn:aws:iam::123456789012:role/dwhRole"}

	clause, err := creds.CopyCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "iam_role 'arn:aws:iam::123456789012:role/dwhRole'", clause)
}

func TestIAMRoleCredentials_EmptyARN(t *testing.T) {
	_, err := IAMRoleCredentials{}.CopyCredentials(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dwh.ErrInvalidConfig)
}

func TestAWSKeyCredentials(t *testing.T) {
	t.Run("static keys", func(t *testing.T) {
		creds := NewAWSKeyCredentialsFromProvider("us-west-2", staticProvider("AKIAEXAMPLE", "secret", ""))

		clause, err := creds.CopyCredentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "credentials 'aws_access_key_id=AKIAEXAMPLE;aws_secret_access_key=secret'", clause)
	})

	t.Run("session token", func(t *testing.T) {
		creds := NewAWSKeyCredentialsFromProvider("us-west-2", staticProvider("ASIA", "s", "tok"))

		clause, err := creds.CopyCredentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "credentials 'aws_access_key_id=ASIA;aws_secret_access_key=s;token=tok'", clause)
	})

	t.Run("provider failure", func(t *testing.T) {
		failing := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{}, errors.New("no EC2 IMDS role found")
		})
		creds := NewAWSKeyCredentialsFromProvider("us-west-2", failing)

		_, err := creds.CopyCredentials(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to retrieve AWS credentials")
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewAWSKeyCredentialsFromProvider("us-west-2", nil).CopyCredentials(context.Background())
		assert.Error(t, err)
	})
}

func TestNewCredentialsResolver_PrefersIAMRole(t *testing.T) {
	settings := &dwh.Settings{
		IAMRole: dwh.IAMRoleConfig{ARN: "arn:aws:iam::1:role/r"},
		S3:      dwh.S3Config{Region: "us-west-2"},
	}

	resolver, err := NewCredentialsResolver(context.Background(), settings)
	require.NoError(t, err)
	assert.IsType(t, IAMRoleCredentials{}, resolver)
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'plain'", quoteLiteral("plain"))
	assert.Equal(t, "'it''s'", quoteLiteral("it's"))
}
