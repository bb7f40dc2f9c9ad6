package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError reports which loading stage failed.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

const (
	ssmParamSuffix = "_SSM_PARAM"
	localEnv       = "local"
	ssmTimeout     = 30 * time.Second
)

// env is the process environment seen by the loader. Tests substitute a map.
type env interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
	All() []string
}

type osEnv struct{}

func (osEnv) Lookup(key string) (string, bool) { return os.LookupEnv(key) }
func (osEnv) Set(key, value string) error      { return os.Setenv(key, value) }
func (osEnv) All() []string                    { return os.Environ() }

// LoadConfig reads .env (if present), resolves *_SSM_PARAM pointers through
// provider outside local, populates Config from the environment and
// validates it. provider may be nil when APP_ENV=local.
func LoadConfig(provider SecretProvider) (*Config, error) {
	_ = godotenv.Load()
	return load(provider, osEnv{})
}

func load(provider SecretProvider, e env) (*Config, error) {
	time.Local = time.UTC

	if appEnv, _ := e.Lookup("APP_ENV"); appEnv != localEnv {
		if err := resolveSSMParams(provider, e); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{Type: ErrParsing, Message: "failed to process environment", Err: err}
	}
	cfg.Build = NewBuildInfo()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies the struct tags plus the cross-section rules tags cannot
// express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return &ConfigError{Type: ErrValidation, Message: "configuration validation failed", Err: err}
	}

	var errs []error
	if c.Billing.BypassCheckout && c.Environment == "prod" {
		errs = append(errs, errors.New("BILLING_BYPASS_CHECKOUT is not allowed in prod"))
	}
	if c.Redis.URL == "" && !c.IsLocal() {
		errs = append(errs, errors.New("REDIS_URL is required outside local"))
	}
	if len(errs) > 0 {
		return &ConfigError{Type: ErrValidation, Message: "configuration validation failed", Err: errors.Join(errs...)}
	}
	return nil
}

// ResolveSecrets runs only the SSM step, for entry points that read single
// variables with os.Getenv instead of loading a full Config. It is a no-op in
// local.
func ResolveSecrets(provider SecretProvider) error {
	_ = godotenv.Load()
	if appEnv, _ := os.LookupEnv("APP_ENV"); appEnv == localEnv {
		return nil
	}
	return resolveSSMParams(provider, osEnv{})
}

// ssmBindings maps SSM paths to the variable each one fills, e.g.
// DATABASE_URL_SSM_PARAM=/prod/db -> {"/prod/db": "DATABASE_URL"}. Variables
// already set directly win over SSM and are skipped.
func ssmBindings(e env) map[string]string {
	bindings := make(map[string]string)
	for _, kv := range e.All() {
		key, path, ok := strings.Cut(kv, "=")
		if !ok || path == "" || !strings.HasSuffix(key, ssmParamSuffix) {
			continue
		}
		target := strings.TrimSuffix(key, ssmParamSuffix)
		if _, set := e.Lookup(target); set {
			continue
		}
		bindings[path] = target
	}
	return bindings
}

func resolveSSMParams(provider SecretProvider, e env) error {
	bindings := ssmBindings(e)
	if len(bindings) == 0 {
		return nil
	}

	paths := make([]string, 0, len(bindings))
	for p := range bindings {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	if provider == nil {
		return &ConfigError{Type: ErrSSMResolution, Message: "a SecretProvider is required to resolve " + targets(bindings, paths)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), ssmTimeout)
	defer cancel()

	resolved, err := provider.GetParametersBatch(ctx, paths)
	if err != nil {
		return &ConfigError{Type: ErrSSMResolution, Message: fmt.Sprintf("failed to resolve %d SSM parameters", len(paths)), Err: err}
	}

	var missing []string
	for _, p := range paths {
		value, ok := resolved[p]
		if !ok {
			missing = append(missing, p)
			continue
		}
		if err := e.Set(bindings[p], value); err != nil {
			return &ConfigError{Type: ErrSSMResolution, Message: "failed to set " + bindings[p], Err: err}
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Type: ErrSSMResolution, Message: "SSM parameters not found for " + targets(bindings, missing)}
	}
	return nil
}

func targets(bindings map[string]string, paths []string) string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = bindings[p]
	}
	return strings.Join(names, ", ")
}
