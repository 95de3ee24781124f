// oasdocs generates markdown reference pages from an OpenAPI 3 document.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cubahno/oasdocs/internal/config"
	"github.com/cubahno/oasdocs/internal/includer"
	"github.com/cubahno/oasdocs/internal/openapi"
	"github.com/cubahno/oasdocs/internal/preview"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

// cliOptions describes oasdocs CLI flags and subcommands.
type cliOptions struct {
	Global globalFlags `group:"Global Options"`

	Build   buildCommand   `command:"build" description:"Write documentation pages to a directory"`
	Serve   serveCommand   `command:"serve" description:"Build pages in memory and serve them over HTTP"`
	Page    pageCommand    `command:"page" description:"Print the page of a single operation"`
	Sample  sampleCommand  `command:"sample" description:"Print the sample payload of a component schema"`
	Table   tableCommand   `command:"table" description:"Print the table of a component schema"`
	Version versionCommand `command:"version" description:"Print version information"`
}

// globalFlags override the config file and the environment.
type globalFlags struct {
	Config        string `short:"c" long:"config" description:"Path to the YAML config file" default:"oasdocs.yml"`
	LogLevel      string `long:"log-level" description:"Log level" choice:"debug" choice:"info" choice:"warn" choice:"error"`
	SampleFormat  string `long:"sample-format" description:"Encoding of sample payloads" choice:"json" choice:"yaml"`
	OnError       string `long:"on-error" description:"What to do with a schema that cannot be rendered" choice:"fail" choice:"skip"`
	NoRuntimeRefs bool   `long:"no-runtime-refs" description:"Expand nested inline objects in place instead of linking to tables of their own"`
}

// buildCommand writes pages to the output directory.
type buildCommand struct {
	runner *cliRunner
	Args   struct {
		Input  string `positional-arg-name:"input" description:"OpenAPI document path or URL (optional; config input when omitted)"`
		Output string `positional-arg-name:"output" description:"Output directory (optional; config output when omitted)"`
	} `positional-args:"yes"`
}

// Execute runs build subcommand.
func (command *buildCommand) Execute(_ []string) error {
	return command.runner.runBuild(command.Args.Input, command.Args.Output)
}

// serveCommand serves pages from memory.
type serveCommand struct {
	runner  *cliRunner
	Address string `short:"a" long:"address" description:"Address to listen on (optional; config preview address when omitted)"`
	Args    struct {
		Input string `positional-arg-name:"input" description:"OpenAPI document path or URL (optional; config input when omitted)"`
	} `positional-args:"yes"`
}

// Execute runs serve subcommand.
func (command *serveCommand) Execute(_ []string) error {
	return command.runner.runServe(command.Args.Input, command.Address)
}

// pageCommand prints a single operation page.
type pageCommand struct {
	runner *cliRunner
	Args   struct {
		Input     string `positional-arg-name:"input" description:"OpenAPI document path or URL" required:"yes"`
		Operation string `positional-arg-name:"operation" description:"Operation ID, generated IDs look like get-pets-petId" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

// Execute runs page subcommand.
func (command *pageCommand) Execute(_ []string) error {
	return command.runner.runPage(command.Args.Input, command.Args.Operation)
}

// componentArgs name a components.schemas entry of a document.
type componentArgs struct {
	Input     string `positional-arg-name:"input" description:"OpenAPI document path or URL" required:"yes"`
	Component string `positional-arg-name:"component" description:"Name of the components.schemas entry" required:"yes"`
}

// sampleCommand prints a component sample.
type sampleCommand struct {
	runner *cliRunner
	Args   componentArgs `positional-args:"yes" required:"yes"`
}

// Execute runs sample subcommand.
func (command *sampleCommand) Execute(_ []string) error {
	return command.runner.runSample(command.Args.Input, command.Args.Component)
}

// tableCommand prints a component table.
type tableCommand struct {
	runner *cliRunner
	Args   componentArgs `positional-args:"yes" required:"yes"`
}

// Execute runs table subcommand.
func (command *tableCommand) Execute(_ []string) error {
	return command.runner.runTable(command.Args.Input, command.Args.Component)
}

// versionCommand prints version information.
type versionCommand struct {
	runner *cliRunner
}

// Execute runs version subcommand.
func (command *versionCommand) Execute(_ []string) error {
	_, err := fmt.Fprintf(command.runner.stdout, "%s %s (%s)\n", command.runner.programName, Version, Commit)
	return err
}

// cliRunner executes CLI operations with custom IO streams.
type cliRunner struct {
	ctx         context.Context
	stdout      io.Writer
	stderr      io.Writer
	programName string
	global      *globalFlags
}

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes CLI logic and returns process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	programName := filepath.Base(strings.TrimSpace(os.Args[0]))
	if programName == "" || programName == "." {
		programName = "oasdocs"
	}

	runner := &cliRunner{
		ctx:         ctx,
		stdout:      stdout,
		stderr:      stderr,
		programName: programName,
	}
	return runner.run(args)
}

// run parses CLI args and maps errors to process exit codes.
func (runner *cliRunner) run(args []string) int {
	err := parseCLIArgs(args, runner)
	if err == nil {
		return 0
	}

	var flagErr *flags.Error
	if errors.As(err, &flagErr) {
		if flagErr.Type == flags.ErrHelp {
			writeCLIError(runner.stdout, err)
			return 0
		}

		writeCLIError(runner.stderr, err)
		return 2
	}

	writeCLIError(runner.stderr, err)
	return 1
}

// parseCLIArgs parses CLI arguments and triggers selected subcommand execution.
func parseCLIArgs(args []string, runner *cliRunner) error {
	options := &cliOptions{}
	runner.global = &options.Global
	options.Build.runner = runner
	options.Serve.runner = runner
	options.Page.runner = runner
	options.Sample.runner = runner
	options.Table.runner = runner
	options.Version.runner = runner

	parser := flags.NewParser(options, flags.HelpFlag)
	parser.Name = runner.programName

	_, err := parser.ParseArgs(args)
	return err
}

// config resolves the configuration: flags over env over the config file over defaults.
func (runner *cliRunner) config(input, output string) (*config.Config, error) {
	cfg, err := config.Load(runner.global.Config)
	if err != nil {
		return nil, err
	}

	if runner.global.LogLevel != "" {
		cfg.LogLevel = runner.global.LogLevel
	}
	if runner.global.SampleFormat != "" {
		cfg.SampleFormat = runner.global.SampleFormat
	}
	if runner.global.OnError != "" {
		cfg.OnError = runner.global.OnError
	}
	if runner.global.NoRuntimeRefs {
		cfg.RuntimeRefs = false
	}
	if input != "" {
		cfg.Input = input
	}
	if output != "" {
		cfg.Output = output
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runner.setupLogger(cfg)
	return cfg, nil
}

// setupLogger installs the default logger: text on a terminal, JSON otherwise.
func (runner *cliRunner) setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	useText := cfg.LogFormat == config.LogFormatText
	if cfg.LogFormat == config.LogFormatAuto {
		if f, ok := runner.stderr.(*os.File); ok {
			useText = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}

	var handler slog.Handler = slog.NewJSONHandler(runner.stderr, opts)
	if useText {
		handler = slog.NewTextHandler(runner.stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func (runner *cliRunner) load(cfg *config.Config) (*openapi.Document, error) {
	doc, err := openapi.LoadFile(runner.ctx, cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", cfg.Input, err)
	}
	slog.Debug("document loaded", "input", cfg.Input, "openapi", doc.GetVersion(), "operations", len(doc.Operations))
	return doc, nil
}

// runBuild writes pages of the document to the output directory.
func (runner *cliRunner) runBuild(input, output string) error {
	cfg, err := runner.config(input, output)
	if err != nil {
		return err
	}
	doc, err := runner.load(cfg)
	if err != nil {
		return err
	}

	pages, err := includer.Build(runner.ctx, doc, cfg)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if err := includer.Emit(runner.ctx, pages, includer.NewDirWriter(cfg.Output)); err != nil {
		return fmt.Errorf("write %q: %w", cfg.Output, err)
	}

	slog.Info("documentation written", "output", cfg.Output, "pages", len(pages))
	return nil
}

// runServe builds pages in memory and serves them until interrupted.
func (runner *cliRunner) runServe(input, address string) error {
	cfg, err := runner.config(input, "")
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Preview.Address = address
	}
	doc, err := runner.load(cfg)
	if err != nil {
		return err
	}

	pages, err := includer.Build(runner.ctx, doc, cfg)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	memory := includer.NewMemoryWriter()
	if err := includer.Emit(runner.ctx, pages, memory); err != nil {
		return err
	}

	return preview.New(memory, cfg).Start(runner.ctx)
}

// runPage prints the page of a single operation.
func (runner *cliRunner) runPage(input, operationID string) error {
	cfg, err := runner.config(input, "")
	if err != nil {
		return err
	}
	doc, err := runner.load(cfg)
	if err != nil {
		return err
	}

	page, err := includer.OperationPage(doc, cfg, operationID)
	if err != nil {
		return err
	}
	return writeOutput(runner.stdout, page.Content)
}

// runSample prints the sample payload of a component.
func (runner *cliRunner) runSample(input, component string) error {
	cfg, err := runner.config(input, "")
	if err != nil {
		return err
	}
	doc, err := runner.load(cfg)
	if err != nil {
		return err
	}

	data, err := includer.ComponentSample(doc, cfg, component)
	if err != nil {
		return err
	}
	return writeOutput(runner.stdout, data)
}

// runTable prints the table of a component followed by the tables it links to.
func (runner *cliRunner) runTable(input, component string) error {
	cfg, err := runner.config(input, "")
	if err != nil {
		return err
	}
	doc, err := runner.load(cfg)
	if err != nil {
		return err
	}

	res, err := includer.ComponentTable(doc, cfg, component)
	if err != nil {
		return err
	}
	return writeOutput(runner.stdout, []byte(res))
}

// writeOutput writes data to the stream, ending it with a newline.
func writeOutput(output io.Writer, data []byte) error {
	if _, err := output.Write(data); err != nil {
		return fmt.Errorf("write to stdout: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err := io.WriteString(output, "\n")
		return err
	}
	return nil
}

// writeCLIError writes a plain-text CLI error line to the selected stream.
func writeCLIError(output io.Writer, err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintln(output, err.Error())
}
