package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/phillarmonic/paramflow/internal/prompt"
)

const deploySchema = `name: deploy
description: Deploy the service
groups:
  - name: deployment
    parameters: [deploy_env, prod_confirmation]
parameters:
  - name: deploy_env
    type: choice
    required: true
    choices: [dev, prod]
  - name: prod_confirmation
    type: boolean
    required: true
    condition:
      expression: deploy_env == 'prod'
      description: production deploys must be confirmed
  - name: replicas
    type: number
    default: 2
  - name: api_token
    secret: true
`

// workspace creates a working directory holding the given files
func workspace(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	keyring.MockInit()
}

func runApp(t *testing.T, setup func(*App), args ...string) (string, error) {
	t.Helper()

	a := NewApp("1.2.0", "unknown", "unknown")
	var out, errOut bytes.Buffer
	a.in = strings.NewReader("")
	a.out = &out
	a.errOut = &errOut
	a.isTerminal = func() bool { return false }
	a.environ = func() []string { return nil }
	if setup != nil {
		setup(a)
	}

	err := a.Execute(args)
	return out.String(), err
}

func decodeJSON(t *testing.T, out string) map[string]any {
	t.Helper()
	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &values), out)
	return values
}

func TestResolve_ParameterSwitches(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": deploySchema})

	out, err := runApp(t, nil, "resolve", "--deploy-env", "prod", "--prod-confirmation", "--no-interactive")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"deploy_env":        "prod",
		"prod_confirmation": true,
		"replicas":          float64(2),
	}, decodeJSON(t, out))
}

func TestResolve_MissingRequired(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": deploySchema})

	_, err := runApp(t, nil, "resolve", "--deploy-env", "prod", "--no-interactive")
	require.Error(t, err)

	var report bytes.Buffer
	ReportError(&report, err)
	assert.Contains(t, report.String(), "Parameter resolution failed")
	assert.Contains(t, report.String(), "required parameter 'prod_confirmation' is missing (required because deploy_env == 'prod')")
}

func TestResolve_VarsAndEnvFiles(t *testing.T) {
	workspace(t, map[string]string{
		"paramflow.yml": deploySchema,
		".env":          "REPLICAS=4\nDEPLOY_ENV=prod\n",
	})

	out, err := runApp(t, nil, "resolve", "--var", "deploy_env=dev", "--var", "ticket=OPS-1", "-o", "env", "--no-interactive")
	require.NoError(t, err)

	assert.Contains(t, out, `DEPLOY_ENV="dev"`)
	assert.Contains(t, out, "REPLICAS=4")
	assert.NotContains(t, out, "PROD_CONFIRMATION")
	assert.NotContains(t, out, "TICKET")
}

func TestResolve_InvalidVar(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": deploySchema})

	_, err := runApp(t, nil, "resolve", "--var", "deploy_env", "--no-interactive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid variable 'deploy_env'")
}

func TestResolve_Interactive(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": deploySchema})

	scripted := prompt.NewScripted(map[string][]string{
		"deploy_env":        {"staging", "prod"},
		"prod_confirmation": {"yes"},
	})

	out, err := runApp(t, func(a *App) { a.prompter = scripted }, "resolve", "--interactive")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"deploy_env":        "prod",
		"prod_confirmation": true,
		"replicas":          float64(2),
	}, decodeJSON(t, out))
	assert.Equal(t, []string{"deploy_env", "deploy_env", "prod_confirmation"}, scripted.AskedNames())
}

func TestResolve_AutoModeWithoutTerminal(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": deploySchema})

	scripted := prompt.NewScripted(map[string][]string{"deploy_env": {"dev"}})
	_, err := runApp(t, func(a *App) { a.prompter = scripted }, "resolve")

	require.Error(t, err)
	assert.Empty(t, scripted.Asked())
}

func TestResolve_UnknownOutput(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": deploySchema})

	_, err := runApp(t, nil, "resolve", "--deploy-env", "dev", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format 'xml'")
}

func TestResolve_SchemaErrors(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": "parameters:\n  - name: env\n    type: choice\n"})

	_, err := runApp(t, nil, "resolve", "--no-interactive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choice parameter needs at least one choice")
}

func TestSecret_SetAndResolve(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": deploySchema})

	out, err := runApp(t, nil, "secret", "set", "api_token", "s3cret-token")
	require.NoError(t, err)
	assert.Contains(t, out, "stored deploy/api_token")

	out, err = runApp(t, nil, "resolve", "--deploy-env", "dev", "-o", "table", "--no-interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "****")
	assert.Contains(t, out, "keyring")
	assert.NotContains(t, out, "s3cret-token")

	out, err = runApp(t, nil, "resolve", "--deploy-env", "dev", "--reveal-secrets", "--no-interactive")
	require.NoError(t, err)
	assert.Equal(t, "s3cret-token", decodeJSON(t, out)["api_token"])

	out, err = runApp(t, nil, "resolve", "--deploy-env", "dev", "--no-keyring", "--no-interactive")
	require.NoError(t, err)
	assert.NotContains(t, decodeJSON(t, out), "api_token")

	_, err = runApp(t, nil, "secret", "delete", "api_token")
	require.NoError(t, err)

	out, err = runApp(t, nil, "resolve", "--deploy-env", "dev", "--no-interactive")
	require.NoError(t, err)
	assert.NotContains(t, decodeJSON(t, out), "api_token")
}

func TestSecret_FromStdin(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": deploySchema})

	_, err := runApp(t, func(a *App) { a.in = strings.NewReader("piped-token\n") }, "secret", "set", "api_token")
	require.NoError(t, err)

	out, err := runApp(t, nil, "resolve", "--deploy-env", "dev", "--reveal-secrets", "--no-interactive")
	require.NoError(t, err)
	assert.Equal(t, "piped-token", decodeJSON(t, out)["api_token"])
}

func TestSecret_RejectsPlainParameters(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": deploySchema})

	_, err := runApp(t, nil, "secret", "set", "replicas", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter is not marked secret")

	_, err = runApp(t, nil, "secret", "set", "nobody", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parameter 'nobody'")
}

func TestCheck(t *testing.T) {
	cyclic := `parameters:
  - name: a
    type: boolean
    condition: b == true
  - name: b
    type: boolean
    condition: a == true
`
	workspace(t, map[string]string{"cyclic.yml": cyclic, "paramflow.yml": deploySchema})

	out, err := runApp(t, nil, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "4 parameters, 1 groups")
	assert.NotContains(t, out, "cycle")

	out, err = runApp(t, nil, "check", "-f", "cyclic.yml")
	require.NoError(t, err)
	assert.Contains(t, out, "condition cycle a -> b -> a")
}

func TestDescribe(t *testing.T) {
	workspace(t, map[string]string{"workflow.md": "---\n" + deploySchema + "---\n# Deploy\n\nShips it.\n"})

	out, err := runApp(t, nil, "describe", "--plain")
	require.NoError(t, err)

	assert.Contains(t, out, "deploy")
	assert.Contains(t, out, "deployment")
	assert.Contains(t, out, "Other parameters")
	assert.Contains(t, out, "--deploy-env")
	assert.Contains(t, out, "choices: dev, prod")
	assert.Contains(t, out, "only when deploy_env == 'prod' (production deploys must be confirmed)")
	assert.Contains(t, out, "default: 2")
	assert.Contains(t, out, "# Deploy")

	assert.Less(t, strings.Index(out, "--prod-confirmation"), strings.Index(out, "--replicas"))
}

func TestDebug(t *testing.T) {
	workspace(t, map[string]string{"paramflow.yml": deploySchema})

	out, err := runApp(t, nil, "debug", "--param", "prod_confirmation", "--set", "deploy_env=prod")
	require.NoError(t, err)
	assert.Contains(t, out, "=== LEXER DEBUG ===")
	assert.Contains(t, out, "Comparison deploy_env == 'prod' (string)")
	assert.Contains(t, out, "deploy_env == 'prod' => true")

	out, err = runApp(t, nil, "debug", "--tokens", "a ==")
	require.NoError(t, err)
	assert.Contains(t, out, "=== LEXER DEBUG ===")
	assert.NotContains(t, out, "AST")

	_, err = runApp(t, nil, "debug", "--param", "replicas")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no condition")
}
