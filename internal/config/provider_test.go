package config

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSSM struct {
	params  map[string]string
	err     error
	batches [][]string
}

func (m *mockSSM) GetParameters(_ context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	m.batches = append(m.batches, in.Names)
	if m.err != nil {
		return nil, m.err
	}
	if !aws.ToBool(in.WithDecryption) {
		return nil, errors.New("decryption not requested")
	}
	out := &ssm.GetParametersOutput{}
	for _, name := range in.Names {
		if v, ok := m.params[name]; ok {
			out.Parameters = append(out.Parameters, ssmtypes.Parameter{Name: aws.String(name), Value: aws.String(v)})
		} else {
			out.InvalidParameters = append(out.InvalidParameters, name)
		}
	}
	return out, nil
}

func providerWith(client ssmClient) *SSMProvider {
	p := NewSSMProvider("us-east-1")
	p.client = client
	return p
}

func TestSSMProvider_BatchesOfTen(t *testing.T) {
	mock := &mockSSM{params: map[string]string{}}
	var keys []string
	for i := 0; i < 23; i++ {
		k := fmt.Sprintf("/prod/sitewizard/p%02d", i)
		keys = append(keys, k)
		mock.params[k] = fmt.Sprintf("v%d", i)
	}

	got, err := providerWith(mock).GetParametersBatch(context.Background(), keys)
	require.NoError(t, err)

	assert.Len(t, got, 23)
	assert.Equal(t, "v7", got["/prod/sitewizard/p07"])
	require.Len(t, mock.batches, 3)
	assert.Len(t, mock.batches[0], 10)
	assert.Len(t, mock.batches[2], 3)
}

func TestSSMProvider_InvalidParameters(t *testing.T) {
	mock := &mockSSM{params: map[string]string{"/a": "1"}}

	_, err := providerWith(mock).GetParametersBatch(context.Background(), []string{"/a", "/missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/missing")
}

func TestSSMProvider_ClientError(t *testing.T) {
	boom := errors.New("access denied")
	_, err := providerWith(&mockSSM{err: boom}).GetParametersBatch(context.Background(), []string{"/a"})
	assert.ErrorIs(t, err, boom)
}

func TestSSMProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &mockSSM{}
	_, err := providerWith(mock).GetParametersBatch(ctx, []string{"/a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mock.batches)
}

func TestSSMProvider_NoKeys(t *testing.T) {
	got, err := NewSSMProvider("us-east-1").GetParametersBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnvVarProvider(t *testing.T) {
	t.Setenv("SITEWIZARD_TEST_SECRET", "s3cret")

	got, err := NewEnvVarProvider().GetParametersBatch(context.Background(), []string{"SITEWIZARD_TEST_SECRET", "SITEWIZARD_TEST_ABSENT"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"SITEWIZARD_TEST_SECRET": "s3cret"}, got)
}

func TestBuildInfo(t *testing.T) {
	b := NewBuildInfo()
	assert.Equal(t, "dev", b.Version)
	assert.NotEmpty(t, b.Commit)
	assert.NotEmpty(t, b.BuildTime)

	b = BuildInfo{Version: "1.4.0", Commit: "0123456789abcdef", BuildTime: "2026-03-01T00:00:00Z"}
	assert.Equal(t, "1.4.0 (0123456789ab, 2026-03-01T00:00:00Z)", b.String())
}
