// Command shellpure analyzes and purifies shell scripts, Makefiles and
// Dockerfiles: deterministic, idempotent, safe output in, report out.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/config"
	"github.com/shellpure/shellpure/pkgs/logging"
	"github.com/shellpure/shellpure/pkgs/purifier"
	"github.com/shellpure/shellpure/pkgs/report"
)

func main() {
	var (
		cfgPath     string
		dialectName string
		format      string
		write       bool
		watch       bool
		verbose     bool
	)

	rootCmd := &cobra.Command{
		Use:   "shellpure",
		Short: "Purify shell scripts, Makefiles and Dockerfiles",
		Long: "shellpure parses build scripts, finds constructs that break determinism,\n" +
			"idempotency, security or parallel safety, applies the fixes that are safe,\n" +
			"and reports the rest.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&dialectName, "dialect", "d", "auto", "Input dialect: auto, shell, makefile, dockerfile")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	purifyCmd := &cobra.Command{
		Use:   "purify [file]",
		Short: "Rewrite a script with all safe fixes applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cfgPath, verbose)
			if err != nil {
				return err
			}
			if watch {
				return app.watch(args[0], dialectName, write)
			}
			return app.purify(args[0], dialectName, write)
		},
	}
	purifyCmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file in place instead of printing")
	purifyCmd.Flags().BoolVar(&watch, "watch", false, "Re-run purification whenever the file changes")

	checkCmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Analyze without rewriting; exit 1 when findings remain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cfgPath, verbose)
			if err != nil {
				return err
			}
			return app.check(args[0], dialectName, report.Format(format))
		},
	}
	checkCmd.Flags().StringVar(&format, "format", "text", "Report format: text, json, markdown")

	rootCmd.AddCommand(purifyCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg *config.Config
	log *zap.Logger
}

func newApp(cfgPath string, verbose bool) (*app, error) {
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	log := logging.Nop()
	if verbose {
		built, err := logging.New(logging.Options{Verbose: true})
		if err != nil {
			return nil, err
		}
		log = built
	}
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) run(file, dialectName string) (*purifier.Result, error) {
	source, err := readInput(file)
	if err != nil {
		return nil, err
	}
	dialect, err := resolveDialect(file, dialectName)
	if err != nil {
		return nil, err
	}

	a.log.Debug("purifying",
		zap.String("file", file),
		zap.Stringer("dialect", dialect))

	res, err := purifier.Purify(source, displayName(file), dialect, a.cfg.Pipeline())
	if err != nil {
		return nil, err
	}

	a.log.Info("purified",
		zap.String("file", res.Name),
		zap.Int("findings", len(res.Issues)),
		zap.Int("applied", res.Applied),
		zap.Int("manual", res.Manual))
	return res, nil
}

func (a *app) purify(file, dialectName string, write bool) error {
	res, err := a.run(file, dialectName)
	if err != nil {
		return err
	}

	if write && file != "-" {
		if res.Changed() {
			if err := os.WriteFile(file, []byte(res.Output), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", file, err)
			}
		}
	} else {
		fmt.Print(res.Output)
	}

	// the summary goes to stderr so piped output stays clean
	fmt.Fprint(os.Stderr, report.FromResult(res).Text())
	return nil
}

func (a *app) check(file, dialectName string, format report.Format) error {
	res, err := a.run(file, dialectName)
	if err != nil {
		return err
	}

	out, err := report.FromResult(res).Render(format)
	if err != nil {
		return err
	}
	fmt.Print(out)

	if len(res.Issues) > 0 {
		os.Exit(1)
	}
	return nil
}

func resolveDialect(file, name string) (ast.Dialect, error) {
	switch name {
	case "auto", "":
		return purifier.DetectDialect(file), nil
	case "shell":
		return ast.Shell, nil
	case "makefile":
		return ast.Makefile, nil
	case "dockerfile":
		return ast.Dockerfile, nil
	}
	return 0, fmt.Errorf("unknown dialect %q (want auto, shell, makefile or dockerfile)", name)
}

func readInput(file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}
	return string(data), nil
}

func displayName(file string) string {
	if file == "-" {
		return "stdin"
	}
	return file
}
