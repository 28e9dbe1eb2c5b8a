package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/kira1928/javatools/pkg/config"
	"github.com/kira1928/javatools/pkg/tools"
	"github.com/kira1928/javatools/pkg/ui"
	"github.com/kira1928/javatools/pkg/version"
	"github.com/spf13/cobra"
)

const appName = "javatools"

const helpText = `
Commands:
  download <version> [url]
      - Download and install a specific Java version.
      - If [url] is not provided, the default URL for the given version is used,
        or you are asked for one.
      - Example: javatools download 17
      - Example with custom URL: javatools download 21-open https://example.com/jdk-21-open.zip

  switch <version>
      - Switch to a specific Java version.
      - Points JAVA_HOME at <version>/bin (permanently on Windows).
      - Example: javatools switch 17

  delete <version>
      - Delete a specific Java version from the system.
      - Example: javatools delete 17

  list
      - List all installed Java versions; the active one is marked with *.
      - Example: javatools list

  current
      - Show which installed version JAVA_HOME points at.

  version
      - Show the javatools version.

  help
      - Show this help message.

Flags:
  --root <dir>      version store (default: $JAVATOOLS_HOME or ~/.java_versions)
  --urls <file>     url table overriding the defaults (default: <root>/urls.yaml)
  --env-var <name>  environment variable to update (default: JAVA_HOME)
  -v, --verbose     log download progress to stderr
`

const logo = `
    VUAV Tool - Java Management Tool
    --------------------------------

____   ________ ___  _________   ____
\   \ /   /    |   \/  _  \   \ /   /
 \   Y   /|    |   /  /_\  \   Y   /
  \     / |    |  /    |    \     /
   \___/  |______/\____|__  /\___/
                          \/
`

const copyright = `
    Copyright (c) 2024 VUAV. All rights reserved.
    Licensed under the MIT License.
`

// printHelp 输出帮助信息，末尾附带 logo 与版权信息
func printHelp(w io.Writer) {
	fmt.Fprint(w, helpText)
	fmt.Fprintln(w, ui.InfoStyle.Render(logo))
	fmt.Fprintln(w, ui.SuccessStyle.Render(copyright))
}

func init() {
	// 与旧版脚本一致，命令名不区分大小写
	cobra.EnableCaseInsensitive = true
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Download, install and switch between Java versions",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			ui.NewPrinter(cmd.ErrOrStderr()).Error("Unknown command: %s", args[0])
			_ = cmd.Help()
			return reportedError{fmt.Errorf("%w: %s", tools.ErrUnknownCommand, args[0])}
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVar(&a.rootDir, "root", "", "Version store directory")
	cmd.PersistentFlags().StringVar(&a.urlFile, "urls", "", "YAML url table overriding the defaults")
	cmd.PersistentFlags().StringVar(&a.envVar, "env-var", config.DefaultEnvVar, "Environment variable pointing at the active version")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log download progress to stderr")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", tools.ErrUsage, err)
	})

	defaultHelp := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c != c.Root() {
			defaultHelp(c, args)
			return
		}
		printHelp(c.OutOrStdout())
	})

	cmd.AddCommand(newDownloadCmd(a))
	cmd.AddCommand(newSwitchCmd(a))
	cmd.AddCommand(newDeleteCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newCurrentCmd(a))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// usageArgs accepts between min and max positional arguments and prints the
// usage line otherwise.
func usageArgs(min, max int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || len(args) > max {
			fmt.Fprintf(cmd.ErrOrStderr(), "Usage: %s\n", usage)
			return reportedError{fmt.Errorf("%w: usage: %s", tools.ErrUsage, usage)}
		}
		return nil
	}
}

func (a *app) manager(cmd *cobra.Command) (*tools.Manager, tools.Session, error) {
	conf, err := config.Load(a.rootDir, a.urlFile, a.envVar)
	if err != nil {
		return nil, tools.Session{}, err
	}

	logger := log.New(io.Discard, "", 0)
	if a.verbose {
		logger = log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
	}
	opts := []tools.Option{
		tools.WithOutput(cmd.OutOrStdout()),
		tools.WithPrompter(tools.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())),
		tools.WithLogger(logger),
	}
	if a.persister != nil {
		opts = append(opts, tools.WithEnvPersister(a.persister))
	}
	return tools.NewManager(conf, opts...), tools.NewSession(a.environ), nil
}

// apply copies variables changed by an operation into the process environment.
func (a *app) apply(before, after tools.Session) error {
	for k, v := range after.Diff(before) {
		if err := a.setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

func newDownloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download <version> [url]",
		Short: "Download and install a specific Java version",
		Args:  usageArgs(1, 2, "download <version> [url]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, sess, err := a.manager(cmd)
			if err != nil {
				return err
			}
			var url string
			if len(args) > 1 {
				url = args[1]
			}
			next, err := m.Install(cmd.Context(), sess, args[0], url)
			if err != nil {
				return err
			}
			return a.apply(sess, next)
		},
	}
}

func newSwitchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <version>",
		Short: "Switch to a specific Java version",
		Args:  usageArgs(1, 1, "switch <version>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, sess, err := a.manager(cmd)
			if err != nil {
				return err
			}
			next, err := m.Switch(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}
			return a.apply(sess, next)
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <version>",
		Short: "Delete a specific Java version",
		Args:  usageArgs(1, 1, "delete <version>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := a.manager(cmd)
			if err != nil {
				return err
			}
			_, err = m.Delete(args[0])
			return err
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all installed Java versions",
		Args:  usageArgs(0, 0, "list"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, sess, err := a.manager(cmd)
			if err != nil {
				return err
			}
			_, err = m.List(sess)
			return err
		},
	}
}

func newCurrentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the Java version the environment variable points at",
		Args:  usageArgs(0, 0, "current"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, sess, err := a.manager(cmd)
			if err != nil {
				return err
			}
			out := ui.NewPrinter(cmd.OutOrStdout())
			if v, ok := m.Current(sess); ok {
				out.Success("Current Java version: %s", v)
				out.Plain("%s=%s", m.EnvVar(), sess.Value(m.EnvVar()))
				return nil
			}
			if value := strings.TrimSpace(sess.Value(m.EnvVar())); value != "" {
				out.Plain("%s=%s is not managed by %s.", m.EnvVar(), value, appName)
				return nil
			}
			out.Plain("%s is not set.", m.EnvVar())
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the javatools version",
		Args:  usageArgs(0, 0, "version"),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, version.Version)
		},
	}
}
