package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// maxAttempts is how many invalid answers a parameter tolerates before the
// run aborts.
const maxAttempts = 3

// Step outcomes reported in the summary.
const (
	statusWritten = "written"
	statusExists  = "exists"
	statusSkipped = "skipped"
)

// StepResult records what happened to one parameter.
type StepResult struct {
	Label  string
	Path   string
	Status string
}

// Runner walks the inventory, prompting for each parameter that is not yet in
// SSM. Existing parameters are kept unless Overwrite is set, so re-running is
// safe.
type Runner struct {
	SSM        *SSMManager
	Params     []Parameter
	In         io.Reader
	Out        io.Writer
	ReadSecret func() (string, error) // masked input; nil reads a line from In
	Overwrite  bool

	scanner *bufio.Scanner
}

// Run processes every parameter in order and prints a summary.
func (r *Runner) Run(ctx context.Context) ([]StepResult, error) {
	results := make([]StepResult, 0, len(r.Params))
	for _, p := range r.Params {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.process(ctx, p)
		if err != nil {
			return results, fmt.Errorf("%s: %w", p.Label, err)
		}
		results = append(results, res)
	}
	r.printSummary(results)
	return results, nil
}

func (r *Runner) process(ctx context.Context, p Parameter) (StepResult, error) {
	path := r.SSM.SSMPath(p.Key)
	res := StepResult{Label: p.Label, Path: path}

	exists, err := r.SSM.ParameterExists(ctx, path)
	if err != nil {
		return res, err
	}
	if exists && !r.Overwrite {
		fmt.Fprintf(r.Out, "  [exists] %s (%s)\n", p.Label, path)
		res.Status = statusExists
		return res, nil
	}

	fmt.Fprintf(r.Out, "\n%s\n  %s\n", p.Label, p.Prompt)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		value, err := r.read(p.Secure)
		if err != nil {
			return res, err
		}
		value = strings.TrimSpace(value)

		if value == "" {
			if p.Optional {
				res.Status = statusSkipped
				return res, nil
			}
			fmt.Fprintln(r.Out, "  a value is required")
			continue
		}
		if p.Validate != nil {
			if err := p.Validate(ctx, value); err != nil {
				fmt.Fprintf(r.Out, "  invalid: %v\n", err)
				continue
			}
		}

		if err := r.SSM.Put(ctx, path, value, p.Secure, exists); err != nil {
			return res, err
		}
		res.Status = statusWritten
		return res, nil
	}
	return res, fmt.Errorf("no valid value after %d attempts", maxAttempts)
}

func (r *Runner) read(secure bool) (string, error) {
	fmt.Fprint(r.Out, "  > ")
	if secure && r.ReadSecret != nil {
		v, err := r.ReadSecret()
		fmt.Fprintln(r.Out)
		return v, err
	}
	if r.scanner == nil {
		r.scanner = bufio.NewScanner(r.In)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return r.scanner.Text(), nil
}

func (r *Runner) printSummary(results []StepResult) {
	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "Summary")
	for _, res := range results {
		fmt.Fprintf(r.Out, "  %-8s %-24s %s\n", res.Status, res.Label, res.Path)
	}
}

// PrintBindings writes the <VAR>_SSM_PARAM lines the deployment template
// needs for every parameter present in SSM.
func PrintBindings(ctx context.Context, w io.Writer, m *SSMManager, params []Parameter) error {
	for _, p := range params {
		path := m.SSMPath(p.Key)
		ok, err := m.ParameterExists(ctx, path)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(w, "%s_SSM_PARAM=%s\n", p.EnvVar, path)
		}
	}
	return nil
}

// localDefaults complete an exported .env so the API starts against local
// infrastructure without further edits.
var localDefaults = map[string]string{
	"APP_ENV":               "local",
	"LOG_LEVEL":             "debug",
	"WIZARD_URL":            "http://localhost:3000",
	"SITES_PUBLIC_DOMAIN":   "sites.localhost.test",
	"ASSETS_BUCKET":         "sitewizard-assets",
	"ASSETS_PUBLIC_URL":     "http://localhost:4566/sitewizard-assets",
	"SQS_SITE_PROVISIONING": "http://localhost:4566/000000000000/site-provisioning",
	"AWS_ENDPOINT_URL":      "http://localhost:4566",
	"ENABLE_METRICS":        "false",
}

// ExportEnvFile reads every present parameter back from SSM and writes them,
// with localDefaults, to path with owner-only permissions.
func ExportEnvFile(ctx context.Context, m *SSMManager, params []Parameter, path string) error {
	env := make(map[string]string, len(localDefaults)+len(params))
	for k, v := range localDefaults {
		env[k] = v
	}
	for _, p := range params {
		ssmPath := m.SSMPath(p.Key)
		ok, err := m.ParameterExists(ctx, ssmPath)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		value, err := m.GetParameterValue(ctx, ssmPath)
		if err != nil {
			return err
		}
		env[p.EnvVar] = value
	}

	content, err := godotenv.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding env file: %w", err)
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
