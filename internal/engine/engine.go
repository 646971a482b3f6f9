// Package engine runs ordered catalog command lists and captures a
// full per-step transcript.
//
// Hard contract: each command string is split into program + args on
// whitespace only and spawned directly. Nothing is ever passed through
// a shell, so pipes, &&, globbing, and variable expansion do not apply.
// "Fixing" this by invoking a real shell would silently widen the
// security surface to shell metacharacters.
package engine

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Outcome is the aggregate result of one command batch.
type Outcome struct {
	// Success is the AND of every step: true only if all commands
	// spawned and exited zero.
	Success bool
	// Transcript holds the command line, stdout, and stderr of every
	// step, in catalog order, regardless of per-step outcome. It is the
	// only record distinguishing which steps failed.
	Transcript string
}

// Engine executes command batches through a CommandRunner.
type Engine struct {
	runner CommandRunner
}

func New(runner CommandRunner) *Engine {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Engine{runner: runner}
}

// Run executes every command in order. A failing step (non-zero exit or
// spawn failure) does not stop the batch: every remaining command still
// runs, so late cleanup steps execute even after an early failure.
//
// No timeout wraps a step; a hung external command hangs this call.
func (e *Engine) Run(commands []string) Outcome {
	var transcript strings.Builder
	allSuccess := true

	for _, command := range commands {
		parts := strings.Fields(command)
		if len(parts) == 0 {
			continue
		}
		log.Debug().Str("command", command).Msg("engine step")

		stdout, stderr, exitCode, err := e.runner.Run(parts[0], parts[1:]...)

		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			// Spawn failure: no process ran at all.
			fmt.Fprintf(&transcript, "Failed to execute command '%s': %v\n", command, err)
			allSuccess = false
			log.Error().Str("command", command).Err(err).Msg("engine spawn failed")
			continue
		}

		fmt.Fprintf(&transcript, "Command: %s\n", command)
		if len(stdout) > 0 {
			fmt.Fprintf(&transcript, "Output: %s\n", stdout)
		}
		if len(stderr) > 0 {
			fmt.Fprintf(&transcript, "Error: %s\n", stderr)
		}

		if exitCode != 0 {
			allSuccess = false
			log.Error().Str("command", command).Int32("exit_code", exitCode).Msg("engine step failed")
		}
	}

	return Outcome{Success: allSuccess, Transcript: transcript.String()}
}
