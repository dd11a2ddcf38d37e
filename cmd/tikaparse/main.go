package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"tikaparse/internal/config"
	"tikaparse/internal/logging"
	"tikaparse/internal/tika"
)

const usage = `Usage: tikaparse [flags] <path|url|->

Parses a document with a Tika server and prints the result as JSON.

Flags:
`

type options struct {
	mode     string
	xml      bool
	raw      bool
	buffer   bool
	endpoint string
	timeout  time.Duration
	config   string
	headers  map[string]string
	verbose  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "tikaparse:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts, location, err := parseFlags(args, cfg, stderr)
	if err != nil {
		return err
	}

	logCfg := config.LogConfig{Level: "warn", Format: "console"}
	if opts.verbose {
		logCfg.Level = "debug"
	}
	logger := logging.New(logCfg, stderr)

	mode, err := tika.ParseServiceMode(opts.mode)
	if err != nil {
		return err
	}

	client := tika.NewClientFromConfig(&cfg.Tika, logger)
	callOpts := []tika.Option{
		tika.WithEndpoint(opts.endpoint),
		tika.WithXMLContent(opts.xml),
		tika.WithTimeout(opts.timeout),
		tika.WithHeaders(opts.headers),
	}
	if opts.config != "" {
		callOpts = append(callOpts, tika.WithConfigPath(opts.config))
	}

	result, err := parse(ctx, client, logger, location, stdin, mode, opts, callOpts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (*options, string, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("tikaparse", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVarP(&opts.mode, "mode", "m", string(tika.ModeAll), "service mode: all, meta or text")
	fs.BoolVar(&opts.xml, "xml", cfg.Tika.XMLContent, "request XHTML content instead of plain text")
	fs.BoolVar(&opts.raw, "raw", false, "print the raw {status, body} pair without normalizing")
	fs.BoolVar(&opts.buffer, "buffer", false, "read the whole input into memory and use the buffer entry point (mode all only)")
	fs.StringVarP(&opts.endpoint, "endpoint", "e", cfg.Tika.Endpoint, "Tika server base URL")
	fs.DurationVar(&opts.timeout, "timeout", time.Duration(cfg.Tika.TimeoutSecs)*time.Second, "per-request timeout")
	fs.StringVar(&opts.config, "tika-config", cfg.Tika.ConfigPath, "Tika config file sent with the request")
	fs.StringToStringVarP(&opts.headers, "header", "H", nil, "extra request header as Name=Value (repeatable)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, "", errors.New("exactly one input is required")
	}
	return opts, fs.Arg(0), nil
}

func parse(
	ctx context.Context,
	client *tika.Client,
	logger zerolog.Logger,
	location string,
	stdin io.Reader,
	mode tika.ServiceMode,
	opts *options,
	callOpts []tika.Option,
) (interface{}, error) {
	var src tika.Source
	if location == "-" {
		src = tika.ReaderSource{Name: "stdin", Reader: stdin}
	} else {
		src = tika.SourceFor(location)
	}

	if opts.buffer {
		if mode != tika.ModeAll {
			return nil, fmt.Errorf("--buffer only supports mode %q", tika.ModeAll)
		}
		data, err := readAll(ctx, src)
		if err != nil {
			return nil, err
		}
		logger.Debug().Int("bytes", len(data)).Msg("tikaparse: parsing buffer")
		if opts.raw {
			return client.ParseBufferRaw(ctx, data, callOpts...)
		}
		return client.ParseBuffer(ctx, data, callOpts...)
	}

	logger.Debug().Str("source", location).Str("mode", string(mode)).Msg("tikaparse: parsing source")
	if opts.raw {
		return client.ParseSourceRaw(ctx, src, mode, callOpts...)
	}
	return client.ParseSource(ctx, src, mode, callOpts...)
}

func readAll(ctx context.Context, src tika.Source) ([]byte, error) {
	rc, _, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
