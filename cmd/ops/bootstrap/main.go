// Package main implements the bootstrap CLI for the site wizard.
//
// It populates AWS SSM Parameter Store with the secrets the API and the site
// provisioner resolve at startup through <VAR>_SSM_PARAM bindings, then
// prints those bindings for the deployment template.
//
// Usage:
//
//	go run ./cmd/ops/bootstrap --env=dev
//	go run ./cmd/ops/bootstrap --env=dev --export-env
//	go run ./cmd/ops/bootstrap --env=prod --profile=sitewizard-prod --region=us-east-1
//
// Parameters already present are kept, so the tool can be re-run after a
// partial setup. --overwrite re-prompts for every parameter.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"golang.org/x/term"
)

var validEnvironments = map[string]bool{
	"dev":     true,
	"staging": true,
	"prod":    true,
}

// Identity is the AWS caller the tool runs as.
type Identity struct {
	Account string
	ARN     string
}

func main() {
	envFlag := flag.String("env", "", "Target environment (dev/staging/prod) [required]")
	profileFlag := flag.String("profile", "", "AWS CLI profile (default: uses default credential chain)")
	regionFlag := flag.String("region", "us-east-1", "AWS region")
	overwriteFlag := flag.Bool("overwrite", false, "Prompt again for parameters that already exist")
	exportEnvFlag := flag.Bool("export-env", false, "Export the SSM parameters to a .env file for local development")
	exportEnvPath := flag.String("export-env-path", ".env", "Path of the exported .env file")
	flag.Parse()

	if err := validateEnv(*envFlag); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	awsCfg, identity, err := initializeSession(ctx, *profileFlag, *regionFlag)
	if err != nil {
		logger.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	logger.Info("AWS identity verified", "account_id", identity.Account, "arn", identity.ARN, "region", *regionFlag)

	stdin := bufio.NewReader(os.Stdin)
	if *envFlag == "prod" && !confirmProduction(stdin, os.Stderr, identity, *regionFlag) {
		fmt.Fprintln(os.Stderr, "Aborted. No changes were made.")
		return
	}

	manager := NewSSMManager(ssm.NewFromConfig(awsCfg), *envFlag, logger)
	params := Inventory(DefaultProbes())
	printBanner(os.Stderr, *envFlag, *regionFlag, identity)

	runner := &Runner{
		SSM:       manager,
		Params:    params,
		In:        stdin,
		Out:       os.Stderr,
		Overwrite: *overwriteFlag,
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		runner.ReadSecret = func() (string, error) {
			b, err := term.ReadPassword(int(os.Stdin.Fd()))
			return string(b), err
		}
	}

	if _, err := runner.Run(ctx); err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, "\nDeployment bindings:")
	if err := PrintBindings(ctx, os.Stdout, manager, params); err != nil {
		logger.Error("failed to list bindings", "error", err)
		os.Exit(1)
	}

	if *exportEnvFlag {
		if err := ExportEnvFile(ctx, manager, params, *exportEnvPath); err != nil {
			logger.Error("failed to export .env file", "error", err)
			os.Exit(1)
		}
		logger.Info(".env file exported", "path", *exportEnvPath)
	}
}

func validateEnv(env string) error {
	if env == "" {
		return fmt.Errorf("--env is required")
	}
	if !validEnvironments[env] {
		return fmt.Errorf("invalid environment %q (must be dev, staging, or prod)", env)
	}
	return nil
}

// initializeSession loads the SDK configuration and confirms the
// credentials work with STS GetCallerIdentity.
func initializeSession(ctx context.Context, profile, region string) (aws.Config, Identity, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, Identity{}, fmt.Errorf("loading AWS config: %w", err)
	}

	idCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(idCtx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return aws.Config{}, Identity{}, fmt.Errorf("verifying AWS identity (profile %q, region %q): %w", profile, region, err)
	}
	return cfg, Identity{Account: aws.ToString(out.Account), ARN: aws.ToString(out.Arn)}, nil
}

// confirmProduction requires the operator to type "yes".
func confirmProduction(in *bufio.Reader, out io.Writer, id Identity, region string) bool {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  WARNING: You are targeting the PRODUCTION environment")
	fmt.Fprintf(out, "  Account: %s\n  Region:  %s\n  ARN:     %s\n\n", id.Account, region, id.ARN)
	fmt.Fprint(out, "Type 'yes' to continue: ")

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}

func printBanner(out io.Writer, env, region string, id Identity) {
	fmt.Fprintln(out, "------------------------------------------------------------")
	fmt.Fprintln(out, "  Site Wizard Bootstrap")
	fmt.Fprintf(out, "  Environment:  %s\n", env)
	fmt.Fprintf(out, "  AWS Account:  %s\n", id.Account)
	fmt.Fprintf(out, "  AWS Region:   %s\n", region)
	fmt.Fprintf(out, "  SSM Prefix:   /%s/sitewizard/\n", env)
	fmt.Fprintln(out, "------------------------------------------------------------")
}
