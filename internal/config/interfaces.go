package config

import "context"

// SecretProvider resolves secret parameters by key. SSMProvider serves
// deployed stages; EnvVarProvider lets local runs exercise the same path.
type SecretProvider interface {
	// GetParametersBatch returns the plaintext value of every key it could
	// resolve. Unresolved keys are absent from the map.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
