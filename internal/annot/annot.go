// Package annot provides the shared plumbing for annotation steps that
// shell out to external genomics tools through caller-supplied wrapper
// scripts. A wrapper receives its input file as the first argument and
// prints the path of its results file to stdout; anything it writes to
// stderr is captured for error reporting.
package annot

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alulab/vartab/pkg/errors"
)

// RunScript executes a wrapper script with bash and returns the results
// path the script prints to stdout. A non-zero exit, an empty stdout, or
// a results path that does not exist all fail the step.
func RunScript(ctx context.Context, operation, script string, args ...string) (string, error) {
	argv := append([]string{script}, args...)
	cmd := exec.CommandContext(ctx, "bash", argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		perr := &errors.ProcessError{
			Operation: operation,
			Command:   "bash " + filepath.Base(script),
			Output:    stderr.String(),
			Err:       err,
		}
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		return "", perr
	}

	resultsPath := strings.TrimSpace(stdout.String())
	if resultsPath == "" {
		return "", &errors.ProcessError{
			Operation: operation,
			Command:   "bash " + filepath.Base(script),
			Output:    stderr.String(),
			Err:       stderrors.New("wrapper printed no results path"),
		}
	}
	if _, err := os.Stat(resultsPath); err != nil {
		return "", errors.WrapIO("stat", resultsPath, err)
	}
	return resultsPath, nil
}
