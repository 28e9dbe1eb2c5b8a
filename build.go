//go:build buildtool

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// javatools 的构建脚本
// 用法：
//   go run -tags buildtool ./build.go [task] [flags]
// 例如：
//   go run -tags buildtool ./build.go build
//   go run -tags buildtool ./build.go release -os windows -arch amd64

const (
	defaultAppName  = "javatools"
	defaultBuildDir = "build"
	defaultDistDir  = "dist"
	entryPackage    = "./cmd"
	versionVar      = "github.com/kira1928/javatools/pkg/version.Version"
)

// setx 只在 Windows 上可用，其余平台打印手动 export 提示
var releasePlatforms = []string{
	"windows/amd64",
	"windows/arm64",
	"linux/amd64",
	"linux/arm64",
	"darwin/amd64",
	"darwin/arm64",
}

type options struct {
	appName  string
	buildDir string
	distDir  string
	goos     string
	goarch   string
	verbose  bool
}

func main() {
	task, opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	switch task {
	case "", "help":
		printHelp()
		return
	case "build":
		err = build(opts, false)
	case "release":
		err = build(opts, true)
	case "dist":
		err = dist(opts)
	case "test":
		err = runCmd("go", []string{"test", "./..."}, nil, opts.verbose)
	case "clean":
		err = clean(opts)
	default:
		fmt.Fprintf(os.Stderr, "unknown task: %s\n\n", task)
		printHelp()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (string, options, error) {
	opts := options{
		appName:  defaultAppName,
		buildDir: defaultBuildDir,
		distDir:  defaultDistDir,
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
	}

	task := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		task, args = args[0], args[1:]
	}

	value := func(i *int, flag string) (string, error) {
		*i++
		if *i >= len(args) {
			return "", fmt.Errorf("flag %s needs a value", flag)
		}
		return args[*i], nil
	}
	for i := 0; i < len(args); i++ {
		var err error
		switch a := args[i]; a {
		case "-os":
			opts.goos, err = value(&i, a)
		case "-arch":
			opts.goarch, err = value(&i, a)
		case "-app-name":
			opts.appName, err = value(&i, a)
		case "-build-dir":
			opts.buildDir, err = value(&i, a)
		case "-dist-dir":
			opts.distDir, err = value(&i, a)
		case "-v", "-verbose":
			opts.verbose = true
		case "-h", "--help":
			task = "help"
		default:
			err = fmt.Errorf("unknown flag: %s", a)
		}
		if err != nil {
			return "", opts, err
		}
	}
	return task, opts, nil
}

func printHelp() {
	fmt.Println("javatools build script")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  go run -tags buildtool ./build.go <task> [flags]")
	fmt.Println()
	fmt.Println("Tasks:")
	fmt.Println("  build      build for the selected platform")
	fmt.Println("  release    stripped build with the git version embedded")
	fmt.Println("  dist       release builds for every supported platform")
	fmt.Println("  test       run go test ./...")
	fmt.Println("  clean      remove build/ and dist/")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -os <GOOS>          target OS (default: current)")
	fmt.Println("  -arch <GOARCH>      target architecture (default: current)")
	fmt.Println("  -app-name <name>    binary name (default: javatools)")
	fmt.Println("  -build-dir <dir>    output folder for build/release (default: build)")
	fmt.Println("  -dist-dir <dir>     output folder for dist (default: dist)")
	fmt.Println("  -v                  echo the commands being run")
}

func binaryName(appName, goos, goarch string, withPlatform bool) string {
	name := appName
	if withPlatform {
		name = fmt.Sprintf("%s-%s-%s", appName, goos, goarch)
	}
	if goos == "windows" {
		name += ".exe"
	}
	return name
}

func build(opts options, release bool) error {
	if err := os.MkdirAll(opts.buildDir, 0o755); err != nil {
		return err
	}
	out := filepath.Join(opts.buildDir, binaryName(opts.appName, opts.goos, opts.goarch, false))
	fmt.Printf("building %s/%s -> %s\n", opts.goos, opts.goarch, out)
	return goBuild(opts, out, opts.goos, opts.goarch, release)
}

func dist(opts options) error {
	if err := os.MkdirAll(opts.distDir, 0o755); err != nil {
		return err
	}
	for _, p := range releasePlatforms {
		goos, goarch, ok := strings.Cut(p, "/")
		if !ok {
			return fmt.Errorf("无效平台: %s", p)
		}
		out := filepath.Join(opts.distDir, binaryName(opts.appName, goos, goarch, true))
		fmt.Printf("building %s/%s -> %s\n", goos, goarch, out)
		if err := goBuild(opts, out, goos, goarch, true); err != nil {
			return err
		}
	}
	fmt.Printf("all platforms built into %s/\n", opts.distDir)
	return nil
}

func goBuild(opts options, out, goos, goarch string, release bool) error {
	args := []string{"build", "-trimpath"}
	if release {
		ldflags := "-s -w"
		if v := gitDescribe(); v != "" {
			ldflags += " -X " + versionVar + "=" + v
		}
		args = append(args, "-ldflags", ldflags)
	}
	args = append(args, "-o", out, entryPackage)
	env := append(os.Environ(), "GOOS="+goos, "GOARCH="+goarch, "CGO_ENABLED=0")
	return runCmd("go", args, env, opts.verbose)
}

func clean(opts options) error {
	fmt.Println("清理构建文件 ...")
	if err := os.RemoveAll(opts.buildDir); err != nil {
		return err
	}
	return os.RemoveAll(opts.distDir)
}

func runCmd(cmd string, args []string, env []string, verbose bool) error {
	if verbose {
		fmt.Printf("$ %s %s\n", cmd, strings.Join(args, " "))
	}
	c := exec.Command(cmd, args...)
	if env != nil {
		c.Env = env
	}
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// gitDescribe 返回形如 v0.2.0-3-gabc123 的版本，不在 git 仓库中时返回空
func gitDescribe() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(string(out)), "v")
}
