// Package awsapi wraps AWS SDK client construction behind small interfaces.
//
// The connector only ever calls three API operations (StartInstances,
// DescribeInstanceStatus, GetCallerIdentity), so the interfaces here mirror
// exactly those method signatures. Tests substitute fakes; production code
// passes the real SDK clients, which satisfy the interfaces directly.
//
// Everything beyond these calls — SSO token handling, credential caching,
// the session channel itself — stays delegated to the AWS CLI and
// session-manager-plugin (see internal/session).
package awsapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// InstanceAPI is the slice of the EC2 API the connector uses.
type InstanceAPI interface {
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	DescribeInstanceStatus(ctx context.Context, params *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error)
}

// IdentityAPI is the slice of the STS API the connector uses.
type IdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// LoadConfig resolves shared AWS configuration for the given profile and
// region. Credential retrieval is lazy: a profile whose SSO token has
// expired loads fine here and only fails at the first API call, which is
// exactly what the connector's auth check relies on.
func LoadConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithSharedConfigProfile(profile),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config for profile %s: %w", profile, err)
	}
	return cfg, nil
}

// NewInstanceClient returns the real EC2 client behind InstanceAPI.
func NewInstanceClient(cfg aws.Config) InstanceAPI {
	return ec2.NewFromConfig(cfg)
}

// NewIdentityClient returns the real STS client behind IdentityAPI.
func NewIdentityClient(cfg aws.Config) IdentityAPI {
	return sts.NewFromConfig(cfg)
}

// ErrorCode extracts the provider-side error code (e.g.
// "InvalidInstanceID.NotFound", "UnauthorizedOperation") from an SDK error,
// or "" when the error did not come from the API.
func ErrorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}
