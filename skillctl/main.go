// Command skillctl is a terminal client for SkillShare.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/theleywin/SkillShare/src/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, &cliApp{cfg: config.LoadClient()}, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs one command line against app and releases its resources.
func execute(ctx context.Context, app *cliApp, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer app.close()
	return root.ExecuteContext(ctx)
}
