package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"
)

// middleware decorates a command with one policy.
type middleware func(subcommands.Command) subcommands.Command

// chain applies mws to c, the first one being the outermost.
func chain(c subcommands.Command, mws ...middleware) subcommands.Command {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

type loggerKey struct{}

// loggerFrom returns the command logger stored in ctx, or def.
func loggerFrom(ctx context.Context, def *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return def
}

// logged logs the start and the outcome of every run, tagged with a unique run id.
func logged(log *slog.Logger) middleware {
	return func(c subcommands.Command) subcommands.Command {
		return &loggedCmd{Command: c, log: log}
	}
}

type loggedCmd struct {
	subcommands.Command
	log *slog.Logger
}

func (c *loggedCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	log := c.log.With("command", c.Name(), "run_id", uuid.NewString())
	ctx = context.WithValue(ctx, loggerKey{}, log)

	log.Info("command started", "args", f.Args())
	status := c.Command.Execute(ctx, f, args...)
	if status == subcommands.ExitSuccess {
		log.Info("command succeeded")
	} else {
		log.Warn("command did not succeed", "status", int(status))
	}
	return status
}

// timed logs the elapsed time of every run.
func timed(c subcommands.Command) subcommands.Command {
	return &timedCmd{Command: c}
}

type timedCmd struct {
	subcommands.Command
}

func (c *timedCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	start := time.Now()
	defer func() {
		loggerFrom(ctx, slog.Default()).Debug("command timed", "elapsed", time.Since(start))
	}()
	return c.Command.Execute(ctx, f, args...)
}

// confirmed asks the operator for a y/N confirmation before running the command,
// unless -yes is set.
func confirmed(c subcommands.Command) subcommands.Command {
	return &confirmedCmd{Command: c}
}

type confirmedCmd struct {
	subcommands.Command
	yes bool
}

func (c *confirmedCmd) SetFlags(f *flag.FlagSet) {
	c.Command.SetFlags(f)
	f.BoolVar(&c.yes, "yes", false, "do not ask for confirmation")
}

func (c *confirmedCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintf(stdout, "Confirm %s %s? [y/N] ", c.Name(), strings.Join(flagValues(f), " "))
		answer, _ := bufio.NewReader(stdin).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			fmt.Fprintln(stdout, "Cancelled.")
			loggerFrom(ctx, slog.Default()).Info("command cancelled by the operator")
			return subcommands.ExitFailure
		}
	}
	return c.Command.Execute(ctx, f, args...)
}

// flagValues lists the flags explicitly set on the command line, as -name=value.
func flagValues(f *flag.FlagSet) []string {
	var values []string
	f.Visit(func(fl *flag.Flag) {
		if fl.Name != "yes" {
			values = append(values, fmt.Sprintf("-%s=%s", fl.Name, fl.Value))
		}
	})
	return values
}
