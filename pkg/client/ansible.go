package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/tasks"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

const (
	playbookFile  = "playbook.yml"
	inventoryFile = "inventory.yml"
)

// AnsiblePlaybook runs invocations through the ansible-playbook binary
type AnsiblePlaybook struct {
	binary  string
	timeout time.Duration
	logger  *utils.Logger

	// swapped in tests
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewAnsiblePlaybook creates an executor for the given binary. A zero timeout disables it.
func NewAnsiblePlaybook(binary string, timeout time.Duration, logger *utils.Logger) *AnsiblePlaybook {
	if binary == "" {
		binary = constants.DefaultPlaybookBinary
	}
	return &AnsiblePlaybook{
		binary:  binary,
		timeout: timeout,
		logger:  logger,
		command: exec.CommandContext,
	}
}

// Run writes the playbook and inventory to a scratch directory and executes them
func (a *AnsiblePlaybook) Run(ctx context.Context, inv Invocation) (*RunResult, error) {
	if inv.Settings.PexpectUsePoll {
		return nil, fmt.Errorf("interactive polling is not supported")
	}

	dir, err := os.MkdirTemp("", "netans-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	playbookPath, inventoryPath, err := writeInvocation(dir, inv)
	if err != nil {
		return nil, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	cmd := a.command(ctx, a.binary, "-i", inventoryPath, playbookPath)
	cmd.Dir = dir
	cmd.Stdin = nil
	cmd.Env = append(os.Environ(),
		"ANSIBLE_STDOUT_CALLBACK=json",
		"ANSIBLE_HOST_KEY_CHECKING=False",
		"ANSIBLE_NOCOLOR=1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	a.logger.Debug("Running %s -i %s %s", a.binary, inventoryPath, playbookPath)
	start := time.Now()
	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return &RunResult{
			Status: constants.StatusTimeout,
			Stdout: []string{fmt.Sprintf("%s timed out after %s", a.binary, a.timeout)},
		}, nil
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return nil, fmt.Errorf("failed to run %s: %w", a.binary, runErr)
	}

	a.logger.Debug("%s finished in %s", a.binary, time.Since(start).Round(time.Millisecond))
	return parseOutput(stdout.Bytes(), stderr.Bytes(), runErr != nil), nil
}

func writeInvocation(dir string, inv Invocation) (string, string, error) {
	playbook, err := tasks.MarshalPlaybook(inv.Playbook)
	if err != nil {
		return "", "", err
	}
	playbookPath := filepath.Join(dir, playbookFile)
	if err := os.WriteFile(playbookPath, playbook, 0o600); err != nil {
		return "", "", fmt.Errorf("failed to write playbook: %w", err)
	}

	inventory, err := yaml.Marshal(inv.Inventory)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal inventory: %w", err)
	}
	inventoryPath := filepath.Join(dir, inventoryFile)
	if err := os.WriteFile(inventoryPath, inventory, 0o600); err != nil {
		return "", "", fmt.Errorf("failed to write inventory: %w", err)
	}

	return playbookPath, inventoryPath, nil
}

// parseOutput reads the json stdout callback. Non-JSON output is kept as raw lines.
func parseOutput(stdout, stderr []byte, exitFailed bool) *RunResult {
	result := &RunResult{Status: constants.StatusSuccessful}

	if gjson.ValidBytes(stdout) {
		doc := gjson.ParseBytes(stdout)

		doc.Get("stats").ForEach(func(host, st gjson.Result) bool {
			if st.Get("failures").Int() > 0 || st.Get("unreachable").Int() > 0 {
				result.Failures = append(result.Failures, host.String())
			}
			return true
		})
		sort.Strings(result.Failures)

		doc.Get("plays").ForEach(func(_, play gjson.Result) bool {
			play.Get("tasks").ForEach(func(_, task gjson.Result) bool {
				name := task.Get("task.name").String()
				task.Get("hosts").ForEach(func(host, res gjson.Result) bool {
					if res.Get("failed").Bool() || res.Get("unreachable").Bool() {
						result.Stdout = append(result.Stdout,
							fmt.Sprintf("%s: %s: %s", host.String(), name, res.Get("msg").String()))
					}
					return true
				})
				return true
			})
			return true
		})
	} else {
		result.Stdout = append(result.Stdout, nonEmptyLines(stdout)...)
	}

	if exitFailed {
		result.Status = constants.StatusFailed
		result.Stdout = append(result.Stdout, nonEmptyLines(stderr)...)
	}

	return result
}

func nonEmptyLines(b []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(b), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
