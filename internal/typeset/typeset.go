// Package typeset wraps the external pdflatex toolchain. A failed run is
// reported back with the engine's log output; it never touches the in-memory
// circuit.
package typeset

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds a single engine run.
const DefaultTimeout = 30 * time.Second

// Result holds the outcome of one typesetting run.
type Result struct {
	Success bool
	PDFPath string
	Errors  []string
	Stdout  string
}

// Engine runs a LaTeX engine in a working directory.
type Engine struct {
	executable string
	workDir    string
	timeout    time.Duration
}

// New creates an engine wrapper. executable is looked up on PATH if not
// absolute; workDir receives the source and compiled artifacts.
func New(executable, workDir string) (*Engine, error) {
	path, err := exec.LookPath(executable)
	if err != nil {
		return nil, fmt.Errorf("latex engine not found: %w", err)
	}
	absWork, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve work directory: %w", err)
	}
	if err := os.MkdirAll(absWork, 0755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	return &Engine{executable: path, workDir: absWork, timeout: DefaultTimeout}, nil
}

// Compile writes source to <name>.tex in the work directory and runs the
// engine over it. Engine failures come back inside Result, not as an error;
// the error return covers only the plumbing around the run.
func (e *Engine) Compile(ctx context.Context, source, name string) (*Result, error) {
	texPath := filepath.Join(e.workDir, name+".tex")
	if err := os.WriteFile(texPath, []byte(source), 0644); err != nil {
		return nil, fmt.Errorf("write source: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.executable,
		"-interaction=nonstopmode", "-halt-on-error", name+".tex")
	cmd.Dir = e.workDir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stdout

	runErr := cmd.Run()

	result := &Result{Stdout: stdout.String()}
	if runErr != nil {
		result.Errors = extractErrors(stdout.String())
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, runErr.Error())
		}
		return result, nil
	}

	pdfPath := filepath.Join(e.workDir, name+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		result.Errors = append(result.Errors, "no PDF produced")
		return result, nil
	}
	result.Success = true
	result.PDFPath = pdfPath
	return result, nil
}

// ExportSource writes the LaTeX source verbatim to the given path.
func ExportSource(source, path string) error {
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		return fmt.Errorf("write latex source: %w", err)
	}
	return nil
}

// extractErrors pulls the "!"-prefixed error lines out of an engine log.
func extractErrors(log string) []string {
	var errs []string
	for _, line := range strings.Split(log, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "!") {
			errs = append(errs, line)
		}
	}
	return errs
}
