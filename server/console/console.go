// Package console runs commands typed on the standard input of the server.
package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// Executor runs fn in a world transaction and returns once it completed.
type Executor func(fn func(tx *world.Tx))

// WorldExecutor returns an Executor running commands in transactions of w.
func WorldExecutor(w *world.World) Executor {
	return func(fn func(tx *world.Tx)) {
		<-w.Exec(fn)
	}
}

// Console reads command lines and executes them as the console source.
type Console struct {
	exec   Executor
	log    *slog.Logger
	reader io.Reader
}

// New returns a Console reading from os.Stdin. Command output is written to
// log.
func New(exec Executor, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{exec: exec, log: log.With("subsystem", "console"), reader: os.Stdin}
}

// WithReader makes the console read from r instead of os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run executes lines until ctx is cancelled or the input ends.
func (c *Console) Run(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	src := &source{log: c.log}
	for ctx.Err() == nil && scanner.Scan() {
		name, args, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		command, ok := cmd.ByAlias(name)
		if !ok {
			c.log.Error("Unknown command.", "command", name)
			continue
		}
		c.exec(func(tx *world.Tx) {
			command.Execute(args, src, tx)
		})
	}
	if err := scanner.Err(); err != nil {
		c.log.Error("Read console input.", "error", err)
	}
}

// parseLine splits a command line into the command name and its arguments.
// The leading slash is optional.
func parseLine(line string) (name, args string, ok bool) {
	line = strings.TrimPrefix(strings.TrimSpace(line), "/")
	name, args, _ = strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(args), name != ""
}

type source struct {
	log *slog.Logger
}

func (*source) Position() mgl64.Vec3 { return mgl64.Vec3{} }

func (*source) Name() string { return "Console" }

func (s *source) SendCommandOutput(o *cmd.Output) {
	for _, msg := range o.Messages() {
		s.log.Info(msg.String())
	}
	for _, err := range o.Errors() {
		s.log.Error(err.Error())
	}
}
