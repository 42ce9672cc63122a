// Command lifosh is the host-facing CLI that boots one lifo-sh kernel
// and either runs a script file (or piped stdin) to completion, or
// attaches the interactive shell facade to the real controlling
// terminal, mirroring the teacher's cobra-based CLI entrypoint.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifo-sh/lifo-sh/kernel"
	"github.com/lifo-sh/lifo-sh/shell/facade"
	"github.com/lifo-sh/lifo-sh/shell/interp"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		file     string
		manifest string
		noColor  bool
		exitCode int
		runErr   error
	)

	rootCmd := &cobra.Command{
		Use:           "lifosh [script]",
		Short:         "Run or interact with a lifo-sh virtual UNIX environment",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			if len(posArgs) == 1 {
				file = posArgs[0]
			}
			cfg, err := loadBootConfig(manifest)
			if err != nil {
				return err
			}
			rt := kernel.Boot(cfg)

			switch {
			case file != "":
				code, err := runScriptFile(rt, file)
				exitCode = code
				return err
			case hasPipedInput():
				code, err := runScriptReader(rt, os.Stdin)
				exitCode = code
				return err
			default:
				return runInteractive(rt)
			}
		},
	}

	rootCmd.Flags().StringVarP(&file, "file", "f", "", "Script file to run (default: interactive shell, or stdin if piped)")
	rootCmd.Flags().StringVar(&manifest, "manifest", "", "YAML boot manifest (env overrides, store budget, hostname)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored error output")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		runErr = err
	}
	if runErr != nil {
		FormatError(os.Stderr, runErr, ShouldUseColor(noColor))
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

func loadBootConfig(manifestPath string) (kernel.Config, error) {
	if manifestPath == "" {
		return kernel.Config{StoreBudget: -1}, nil
	}
	cfg, err := kernel.LoadConfig(manifestPath)
	if err != nil {
		return kernel.Config{}, &CLIError{
			Type:    "manifest",
			Message: fmt.Sprintf("failed to load boot manifest %q", manifestPath),
			Details: err.Error(),
			Hint:    "Check that the file is valid YAML with env/hostname/store_budget keys.",
		}
	}
	return cfg, nil
}

func runScriptFile(rt *kernel.Runtime, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 1, &CLIError{
			Type:    "usage",
			Message: fmt.Sprintf("cannot open script %q", path),
			Details: err.Error(),
		}
	}
	defer f.Close()
	return runScriptReader(rt, f)
}

func runScriptReader(rt *kernel.Runtime, r io.Reader) (int, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return 1, fmt.Errorf("lifosh: reading script input: %w", err)
	}
	source = stripShebang(source)
	i := interp.New(rt.State, rt.VFS, os.Stdout, os.Stderr, nil)
	return i.Run(string(source)), nil
}

func runInteractive(rt *kernel.Runtime) error {
	term, err := newOSTerminal()
	if err != nil {
		return err
	}
	defer term.restore()

	f := facade.New(rt.State, rt.VFS, term)
	f.Start()
	go term.pump()

	<-f.Done()
	fmt.Fprint(os.Stdout, "\r\n")
	return nil
}

// hasPipedInput reports whether stdin is not a character device, i.e.
// it's a pipe or redirected file rather than an interactive terminal.
func hasPipedInput() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// stripShebang drops a leading "#!..." line so a script can be run
// directly (chmod +x, #!/usr/bin/env lifosh) without the shell's
// comment handling ever seeing it.
func stripShebang(source []byte) []byte {
	if len(source) < 2 || source[0] != '#' || source[1] != '!' {
		return source
	}
	for i := 2; i < len(source); i++ {
		if source[i] == '\n' {
			return source[i+1:]
		}
	}
	return []byte{}
}
