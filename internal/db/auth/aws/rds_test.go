package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mydv/vrsync/internal/config"
)

func rdsConfig(region string) *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Host:     "fleet.cluster-abc.eu-west-2.rds.amazonaws.com",
		Port:     5432,
		User:     "vrsync",
		Database: "vrsync",
		DynamicAuth: &config.DynamicAuthConfig{
			AWSRDSIAM: &config.DynamicAuthAWSRDSIAM{Region: region},
		},
	}
}

type fakeIMDS struct {
	region string
	err    error
}

func (f fakeIMDS) GetRegion(context.Context, *imds.GetRegionInput, ...func(*imds.Options)) (*imds.GetRegionOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &imds.GetRegionOutput{Region: f.region}, nil
}

func TestResolveRegion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfg        *config.DatabaseConfig
		imds       fakeIMDS
		wantRegion string
		errMsg     string
	}{
		{
			name:       "static region",
			cfg:        rdsConfig("eu-west-2"),
			wantRegion: "eu-west-2",
		},
		{
			name:   "empty region",
			cfg:    rdsConfig(""),
			errMsg: "AWS RDS IAM region is not configured",
		},
		{
			name:   "missing dynamic auth block",
			cfg:    &config.DatabaseConfig{Host: "db", Port: 5432},
			errMsg: "AWS RDS IAM region is not configured",
		},
		{
			name:       "detected from IMDS",
			cfg:        rdsConfig(RegionDetect),
			imds:       fakeIMDS{region: "eu-central-1"},
			wantRegion: "eu-central-1",
		},
		{
			name:   "IMDS unreachable",
			cfg:    rdsConfig(RegionDetect),
			imds:   fakeIMDS{err: errors.New("dial timeout")},
			errMsg: "failed to get region from IMDS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			region, err := resolveRegion(context.Background(), tt.cfg, func() regionLookup { return tt.imds })
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRegion, region)
		})
	}
}

func TestPgxAuthFunc_RequiresRegion(t *testing.T) {
	t.Parallel()

	fn, err := PgxAuthFunc(context.Background(), rdsConfig(""), "vrsync")
	require.Error(t, err)
	assert.Nil(t, fn)
}

func TestNewToken_StaticCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	token, err := NewToken(context.Background(), rdsConfig("eu-west-2"), "vrsync")
	require.NoError(t, err)
	assert.Contains(t, token, "fleet.cluster-abc.eu-west-2.rds.amazonaws.com:5432?Action=connect")
	assert.Contains(t, token, "DBUser=vrsync")
}
