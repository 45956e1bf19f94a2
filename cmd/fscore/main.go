// Command fscore owns CLI flag/environment parsing and stdio JSON-RPC
// framing, and dispatches validated requests into the facade package.
// Apart from start-up wiring (roots.Init, config.Load and the root logger),
// it reaches the core only through facade.New and facade.Client methods.
package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/fscore/internal/fscore/config"
	"github.com/mutagen-io/fscore/internal/fscore/facade"
	"github.com/mutagen-io/fscore/internal/fscore/logging"
	"github.com/mutagen-io/fscore/internal/fscore/roots"
)

var rootConfiguration struct {
	roots    []string
	allowCwd bool
}

var rootCommand = &cobra.Command{
	Use:   "fscore",
	Short: "fscore exposes a sandboxed filesystem RPC service over stdio",
	RunE:  rootMain,
}

func init() {
	flags := rootCommand.Flags()
	flags.StringArrayVar(&rootConfiguration.roots, "root", nil, "an allowed root directory (repeatable)")
	flags.BoolVar(&rootConfiguration.allowCwd, "allow-cwd", false, "additionally allow the current working directory")

	cobra.EnableCommandSorting = false
}

// errBadArguments marks an error as a CLI-argument problem, which exits 2,
// rather than an unhandled runtime failure, which exits 1.
type errBadArguments struct{ cause error }

func (e *errBadArguments) Error() string { return e.cause.Error() }
func (e *errBadArguments) Unwrap() error { return e.cause }

func rootMain(command *cobra.Command, arguments []string) error {
	if err := roots.Init(rootConfiguration.roots, rootConfiguration.allowCwd); err != nil {
		return &errBadArguments{errors.Wrap(err, "unable to initialize allowed roots")}
	}

	logger := logging.Root.Sublogger("fscore")
	cfg := config.Load(logger)
	client := facade.New(cfg, logger)
	defer client.Close()

	return serve(os.Stdin, os.Stdout, client)
}

func main() {
	rootCommand.SilenceUsage = true
	rootCommand.SilenceErrors = true

	err := rootCommand.Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)

	var badArgs *errBadArguments
	if stderrors.As(err, &badArgs) {
		os.Exit(2)
	}
	os.Exit(1)
}
