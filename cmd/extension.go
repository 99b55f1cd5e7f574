package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
)

// Environment passed to extensions.
const (
	EnvDataDir = "VTH_DATA_DIR"
	EnvBase    = "VTH_BASE"
	EnvUser    = "VTH_USER"
	EnvVerbose = "VTH_VERBOSE"
)

// RunExtension attempts to find and execute an external vth-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(app *App, subcommand string, args []string) (bool, int) {
	externalCmdName := "vth-" + subcommand

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		app.Logger.Debug("no extension found", "command", externalCmdName, "error", err)
		return false, 0
	}

	dataDir, err := filepath.Abs(app.Config.DataDir)
	if err != nil {
		dataDir = app.Config.DataDir
	}
	user, _ := app.Session.User()

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Pass the resolved settings as environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, EnvDataDir+"="+dataDir)
	cmd.Env = append(cmd.Env, EnvBase+"="+app.Config.Base)
	cmd.Env = append(cmd.Env, EnvUser+"="+user)
	cmd.Env = append(cmd.Env, EnvVerbose+"="+strconv.FormatBool(*Verbose))

	app.Logger.Info("running extension", slog.String("path", lp), slog.Any("args", args))
	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				return true, status.ExitStatus()
			}
		}
		// If it's not an ExitError or we can't get the status, report a generic error
		fmt.Fprintf(stderr, "Error executing external command %q: %v\n", externalCmdName, err)

		return true, 1 // Indicate that an attempt was made, but it failed
	}

	return true, 0 // External command executed successfully with exit code 0
}
