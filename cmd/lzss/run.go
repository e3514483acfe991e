package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	pb "github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"

	"github.com/jcoene/lzss/internal/api"
	"github.com/jcoene/lzss/internal/compression"
	"github.com/jcoene/lzss/internal/compression/algorithms/lzss"
	"github.com/jcoene/lzss/internal/config"
)

const (
	exitOK     = 0
	exitUsage  = 1
	exitDecode = 3
)

type cli struct {
	verbose     bool
	inspect     bool
	serve       bool
	passThrough bool
	outDir      string
	addr        string
	maxOutput   uint

	stdout io.Writer
	stderr io.Writer
	red    *color.Color
	cyan   *color.Color
}

func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{
		stdout: stdout,
		stderr: stderr,
		red:    color.New(color.FgRed),
		cyan:   color.New(color.FgCyan),
	}

	fs := flag.NewFlagSet("lzss", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&c.verbose, "v", false, "Trace every decoded token")
	fs.BoolVar(&c.inspect, "inspect", false, "Print the header of each file and exit")
	fs.BoolVar(&c.serve, "serve", false, "Run the HTTP decompression service")
	fs.BoolVar(&c.passThrough, "passthrough", false, "Copy files without an LZSS header unchanged")
	fs.StringVar(&c.outDir, "o", "", "Decode every file argument into this directory")
	fs.StringVar(&c.addr, "addr", "", "Listen address for -serve (default :$PORT)")
	fs.UintVar(&c.maxOutput, "max-output", 0, "Refuse headers declaring more bytes than this (0 = no limit)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: lzss [flags] infile outfile")
		fmt.Fprintln(stderr, "       lzss -o dir [flags] file...")
		fmt.Fprintln(stderr, "       lzss -inspect file...")
		fmt.Fprintln(stderr, "       lzss -serve [-addr :8080]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	switch {
	case c.serve:
		return c.runServer()
	case c.inspect:
		if fs.NArg() == 0 {
			fs.Usage()
			return exitUsage
		}
		return c.runInspect(fs.Args())
	case c.outDir != "":
		if fs.NArg() == 0 {
			fs.Usage()
			return exitUsage
		}
		return c.runBatch(fs.Args())
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return exitUsage
	}
	return c.runSingle(fs.Arg(0), fs.Arg(1))
}

func (c *cli) options() compression.Options {
	opts := compression.Options{
		Algorithm:     compression.DefaultAlgorithm,
		PassThrough:   c.passThrough,
		MaxOutputSize: uint32(min(c.maxOutput, uint(^uint32(0)))),
	}
	if c.verbose {
		opts.Tracer = c.tracer()
	}
	return opts
}

func (c *cli) runSingle(in, out string) int {
	data, err := os.ReadFile(in)
	if err != nil {
		c.fail("%v", err)
		return exitUsage
	}
	if c.verbose {
		fmt.Fprintf(c.stderr, "read %d bytes from %s\n", len(data), in)
	}

	decoded, stats, err := compression.Decompress(data, c.options())
	if err != nil {
		c.fail("%s: %v", in, err)
		return exitDecode
	}

	if err := os.WriteFile(out, decoded, 0o644); err != nil {
		c.fail("%v", err)
		return exitDecode
	}
	if c.verbose {
		fmt.Fprintf(c.stderr, "wrote %d bytes to %s (consumed %d of %d input bytes, passthrough=%t)\n",
			stats.ProcessedSize, out, stats.ConsumedSize, stats.OriginalSize, stats.PassedThrough)
	}
	return exitOK
}

func (c *cli) runInspect(files []string) int {
	code := exitOK
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			c.fail("%v", err)
			code = exitUsage
			continue
		}
		info, err := compression.Inspect(data, compression.Options{})
		if err != nil {
			c.fail("%s: %v", name, err)
			code = exitDecode
			continue
		}
		if info.Compressed {
			fmt.Fprintf(c.stdout, "%s: lzss, %d -> %d bytes\n", name, info.InputSize, info.ActualSize)
		} else {
			fmt.Fprintf(c.stdout, "%s: not compressed (magic 0x%08x, expected 0x%08x)\n", name, info.Magic, uint32(lzss.ID))
		}
	}
	return code
}

// runBatch decodes each file into outDir under its base name, keeping going after failures.
func (c *cli) runBatch(files []string) int {
	seen := make(map[string]string, len(files))
	for _, name := range files {
		base := filepath.Base(name)
		if prev, ok := seen[base]; ok {
			c.fail("%s and %s would both write %s", prev, name, filepath.Join(c.outDir, base))
			return exitUsage
		}
		seen[base] = name
	}

	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		c.fail("%v", err)
		return exitUsage
	}

	var total int64
	for _, name := range files {
		if fi, err := os.Stat(name); err == nil {
			total += fi.Size()
		}
	}

	var bar *pb.ProgressBar
	if c.isTerminal() && !c.verbose {
		bar = pb.New64(total)
		bar.Set(pb.Bytes, true)
		bar.SetWriter(c.stderr)
		bar.Start()
		defer bar.Finish()
	}

	code := exitOK
	opts := c.options()
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			c.fail("%v", err)
			code = exitUsage
			continue
		}
		if bar != nil {
			bar.Add(len(data))
		}

		decoded, _, err := compression.Decompress(data, opts)
		if err != nil {
			c.fail("%s: %v", name, err)
			code = exitDecode
			continue
		}
		out := filepath.Join(c.outDir, filepath.Base(name))
		if err := os.WriteFile(out, decoded, 0o644); err != nil {
			c.fail("%v", err)
			code = exitDecode
		}
	}
	return code
}

func (c *cli) runServer() int {
	cfg := config.Load()
	if c.maxOutput > 0 {
		cfg.MaxOutputSize = uint32(min(c.maxOutput, uint(^uint32(0))))
	}
	if c.passThrough {
		cfg.PassThrough = true
	}
	if c.verbose {
		cfg.Trace = true
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := c.addr
	if addr == "" {
		addr = ":" + cfg.Port
	}

	router := gin.Default()
	api.SetupRoutes(router, cfg)

	log.Printf("listening on %s (%s)", addr, cfg.Environment)
	if err := router.Run(addr); err != nil {
		c.fail("%v", err)
		return exitUsage
	}
	return exitOK
}

func (c *cli) tracer() lzss.Tracer {
	return lzss.TraceFunc(func(e lzss.Event) {
		switch e.Kind {
		case lzss.EventCommand:
			c.cyan.Fprintf(c.stderr, "%d: cmdByte = %x\n", e.Output, e.Command)
		case lzss.EventLiteral:
			fmt.Fprintf(c.stderr, "%d: copy %x\n", e.Output, e.Literal)
		case lzss.EventMatch:
			fmt.Fprintf(c.stderr, "%d: position = %d, count = %d, source = %d\n", e.Output, e.Position, e.Length, e.Source)
		case lzss.EventEnd:
			c.cyan.Fprintf(c.stderr, "%d: end of stream at input offset %d\n", e.Output, e.Input)
		}
	})
}

func (c *cli) fail(format string, args ...interface{}) {
	c.red.Fprintf(c.stderr, "lzss: "+format+"\n", args...)
}

func (c *cli) isTerminal() bool {
	f, ok := c.stderr.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
