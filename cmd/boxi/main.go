package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Injng/boxi/internal/batch"
	"github.com/Injng/boxi/internal/expression"
	"github.com/Injng/boxi/internal/rosetta"
	"github.com/Injng/boxi/internal/server"
	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
)

const longDescription = `A simple integer calculator. Literals may be written in binary (0b),
octal (0o), decimal or hexadecimal (0x). Without an expression, boxi starts a REPL.

Examples:
    boxi '1 + 2'
    boxi '0x3 * 0x4'
    boxi '5 / 6'
    boxi '7 - 8'`

type Option struct {
	Verbose bool   `short:"v" long:"verbose" description:"[OPTIONAL] Print infix and postfix tokens"`
	JSON    bool   `long:"json" description:"[OPTIONAL] Print results as JSON"`
	NoColor bool   `long:"no-color" description:"[OPTIONAL] Disable colorized output"`
	File    string `short:"f" long:"file" description:"[OPTIONAL] Evaluate expressions listed in a YAML or JSON file"`
	Jobs    int    `short:"j" long:"jobs" env:"BOXI_JOBS" default:"4" description:"[OPTIONAL] Concurrency of batch evaluation"`
	Listen  string `short:"l" long:"listen" env:"BOXI_LISTEN" description:"[OPTIONAL] Listen host and port to serve the HTTP API"`
	Args    struct {
		Expression []string `positional-arg-name:"EXPRESSION"`
	} `positional-args:"yes"`
}

type cli struct {
	opt    Option
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	label  *color.Color
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opt Option
	parser := flags.NewParser(&opt, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "boxi"
	parser.LongDescription = longDescription
	_, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(stdout)
			return 0
		}
		printError(stderr, err)
		return 1
	}

	expr := strings.Join(opt.Args.Expression, " ")
	if opt.Listen != "" && (expr != "" || opt.File != "") {
		parser.WriteHelp(stderr)
		return 1
	}
	if opt.File != "" && expr != "" {
		parser.WriteHelp(stderr)
		return 1
	}

	c := &cli{
		opt:    opt,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		label:  color.New(color.Bold),
	}
	if !opt.NoColor && isTerminal(stdout) {
		c.label.EnableColor()
	} else {
		c.label.DisableColor()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opt.Listen != "":
		if err := serve(ctx, opt.Listen); err != nil {
			log.Printf("failed to serve: %v", err)
			return 1
		}
		return 0

	case opt.File != "":
		return c.runBatch(ctx)

	case len(opt.Args.Expression) != 0:
		if err := c.evaluate(expr); err != nil {
			if !opt.JSON {
				printError(stderr, err)
			}
			return 1
		}
		return 0

	default:
		if err := c.repl(); err != nil {
			log.Printf("failed to read input: %v", err)
			return 1
		}
		return 0
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "boxi: %v\n", err)
	fmt.Fprintln(w, "Try 'boxi --help' for more information.")
	fmt.Fprintln(w)
}

func (c *cli) evaluate(source string) error {
	expr, err := expression.Compile(source)
	if err == nil && c.opt.Verbose && !c.opt.JSON {
		c.printTokens("infix", expr.Infix)
		c.printTokens("postfix", expr.Postfix)
	}

	var ret int64
	if err == nil {
		ret, err = expr.Evaluate()
	}

	if c.opt.JSON {
		report := batch.Result{Entry: batch.Entry{Expression: source}, Value: ret, Err: err}.Report()
		if dumpErr := dumpJSON(c.stdout, report); dumpErr != nil {
			log.Printf("failed to dump result as JSON: %v", dumpErr)
		}
		return err
	}
	if err != nil {
		return err
	}

	c.printNum(ret)
	return nil
}

func (c *cli) printTokens(order string, tokens []expression.Token) {
	fmt.Fprintf(c.stdout, "--- %s tokens ---\n", order)
	for _, tok := range tokens {
		fmt.Fprintln(c.stdout, tok)
	}
	fmt.Fprintln(c.stdout)
}

func (c *cli) printNum(num int64) {
	r := rosetta.New(num)
	fmt.Fprintf(c.stdout, "%s %s\t%s %s\t%s %s\t%s %s\n",
		c.label.Sprint("dec:"), r.Decimal(),
		c.label.Sprint("hex:"), r.Hexadecimal(),
		c.label.Sprint("oct:"), r.Octal(),
		c.label.Sprint("bin:"), r.Binary(),
	)
}

func (c *cli) repl() error {
	// bufio.Reader has no line length limit, unlike bufio.Scanner
	r := bufio.NewReader(c.stdin)
	for {
		fmt.Fprint(c.stdout, "> ")
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintln(c.stdout)
			return err
		}
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(c.stdout)
			return nil
		}

		switch line = strings.TrimSpace(line); line {
		case "":
			continue
		case "exit":
			return nil
		}

		if err := c.evaluate(line); err != nil && !c.opt.JSON {
			printError(c.stdout, err)
		}
	}
}

func (c *cli) runBatch(ctx context.Context) int {
	entries, err := batch.Load(c.opt.File)
	if err != nil {
		printError(c.stderr, err)
		return 1
	}

	results, err := batch.Run(ctx, entries, c.opt.Jobs)
	if err != nil {
		log.Printf("failed to evaluate batch: %v", err)
		return 1
	}

	status := 0
	reports := make([]batch.Report, len(results))
	for i, result := range results {
		reports[i] = result.Report()
		if result.Err != nil {
			status = 1
		}
	}

	if c.opt.JSON {
		if err := dumpJSON(c.stdout, map[string][]batch.Report{"results": reports}); err != nil {
			log.Printf("failed to dump results as JSON: %v", err)
			return 1
		}
		return status
	}

	for _, result := range results {
		fmt.Fprintf(c.stdout, "%s: %s\n", c.label.Sprint(result.Name), result.Expression)
		if result.Err != nil {
			fmt.Fprintf(c.stdout, "    boxi: %v\n", result.Err)
			continue
		}
		fmt.Fprint(c.stdout, "    ")
		c.printNum(result.Value)
	}
	return status
}

func serve(ctx context.Context, listen string) error {
	srv := http.Server{
		Handler:           server.NewHTTPHandler(),
		Addr:              listen,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("failed to shut down: %v", err)
		}
	}()

	log.Printf("Listen HTTP on %s", listen)
	if err := srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

func dumpJSON(w io.Writer, v any) error {
	opts := []json.EncodeOptionFunc{json.DisableHTMLEscape()}
	if isTerminal(w) {
		opts = append(opts, json.Colorize(json.DefaultColorScheme))
	}

	b, err := json.MarshalIndentWithOption(v, "", "\t", opts...)
	if err != nil {
		return fmt.Errorf("json.MarshalIndentWithOption: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
