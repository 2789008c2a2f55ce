// Package aws signs Postgres logins with AWS RDS IAM tokens.
package aws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/jackc/pgx/v5"

	"github.com/mydv/vrsync/internal/config"
)

// RegionDetect asks the instance metadata service for the region
const RegionDetect = "detect"

const imdsTimeout = 2 * time.Second

var errNoRegion = errors.New("AWS RDS IAM region is not configured")

// regionLookup is the part of the IMDS client used here
type regionLookup interface {
	GetRegion(ctx context.Context, in *imds.GetRegionInput, opts ...func(*imds.Options)) (*imds.GetRegionOutput, error)
}

func defaultRegionLookup() regionLookup {
	return imds.New(imds.Options{HTTPClient: &http.Client{Timeout: imdsTimeout}})
}

// resolveRegion returns the configured region, or the instance region when
// configured as RegionDetect
func resolveRegion(ctx context.Context, cfg *config.DatabaseConfig, lookup func() regionLookup) (string, error) {
	var region string
	if cfg.DynamicAuth != nil && cfg.DynamicAuth.AWSRDSIAM != nil {
		region = cfg.DynamicAuth.AWSRDSIAM.Region
	}

	switch region {
	case "":
		return "", errNoRegion
	case RegionDetect:
		out, err := lookup().GetRegion(ctx, &imds.GetRegionInput{})
		if err != nil {
			return "", fmt.Errorf("failed to get region from IMDS: %w", err)
		}
		return out.Region, nil
	default:
		return region, nil
	}
}

// signer builds short-lived RDS auth tokens for one endpoint and user. The
// credentials provider is loaded once and refreshes itself.
type signer struct {
	endpoint    string
	region      string
	user        string
	credentials awssdk.CredentialsProvider
}

func newSigner(ctx context.Context, cfg *config.DatabaseConfig, user string) (*signer, error) {
	region, err := resolveRegion(ctx, cfg, defaultRegionLookup)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &signer{
		endpoint:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		region:      region,
		user:        user,
		credentials: awsCfg.Credentials,
	}, nil
}

func (s *signer) token(ctx context.Context) (string, error) {
	token, err := auth.BuildAuthToken(ctx, s.endpoint, s.region, s.user, s.credentials)
	if err != nil {
		return "", fmt.Errorf("failed to build RDS auth token for %s: %w", s.endpoint, err)
	}
	return token, nil
}

// NewToken returns a single RDS IAM token for user, for one-shot
// connections such as migrations
func NewToken(ctx context.Context, cfg *config.DatabaseConfig, user string) (string, error) {
	s, err := newSigner(ctx, cfg, user)
	if err != nil {
		return "", err
	}
	return s.token(ctx)
}

// PgxAuthFunc returns a pool BeforeConnect hook that sets a fresh token as
// the password of every new connection. Tokens expire after fifteen minutes
// so they are never reused across connections.
func PgxAuthFunc(
	ctx context.Context,
	cfg *config.DatabaseConfig,
	user string,
) (func(ctx context.Context, connConfig *pgx.ConnConfig) error, error) {
	s, err := newSigner(ctx, cfg, user)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, connConfig *pgx.ConnConfig) error {
		token, err := s.token(ctx)
		if err != nil {
			return err
		}
		connConfig.Password = token
		return nil
	}, nil
}
