// Command stratagen generates entity descriptors from YAML schemas and
// renders or executes entity commands against them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	// Database drivers available to exec.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const version = "0.1.0"

// CLI defines the command-line interface of stratagen.
type CLI struct {
	Gen     GenCmd           `cmd:"" help:"Generate Go entity descriptors from a YAML schema"`
	Render  RenderCmd        `cmd:"" help:"Print the SQL of a command without executing it"`
	Exec    ExecCmd          `cmd:"" help:"Execute a command against a database"`
	Version kong.VersionFlag `help:"Print version information and quit"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Exit); err != nil {
		fmt.Fprintln(os.Stderr, "stratagen:", err)
		stop()
		os.Exit(1)
	}
}

// run parses args and runs the selected command. exit is called by kong for
// --help and --version.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, exit func(int)) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("stratagen"),
		kong.Description("Dialect-aware SQL generation for declarative entities"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(stdout, (*io.Writer)(nil))
	return kctx.Run()
}
