package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kira1928/javatools/pkg/tools"
	"github.com/kira1928/javatools/pkg/ui"
)

// app 保存命令行运行所需的外部依赖，测试时可替换
type app struct {
	rootDir string
	urlFile string
	envVar  string
	verbose bool

	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	environ []string
	setenv  func(key, value string) error
	// nil 表示使用当前平台默认实现
	persister tools.EnvPersister
}

func defaultApp() *app {
	return &app{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		environ: os.Environ(),
		setenv:  os.Setenv,
	}
}

// reportedError marks an error whose message has already been shown to the user.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], defaultApp())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, a *app) int {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return tools.ExitOK
	}
	var reported reportedError
	if !errors.As(err, &reported) {
		ui.NewPrinter(a.stderr).Error("Error: %v", err)
	}
	return tools.ExitCode(err)
}
