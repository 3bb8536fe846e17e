/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command typedmodel validates JSON records against a typed registry and writes
// their normalized form.
//
//	typedmodel [flags] [file ...]
//
// Records are read as consecutive JSON values from the files, or from stdin when no
// file is given. Invalid records are reported on stderr and make the exit status 1.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/suparena/typedmodel"
	"github.com/suparena/typedmodel/config"
	"github.com/suparena/typedmodel/datastore"
	"github.com/suparena/typedmodel/datastore/ddb"
	"github.com/suparena/typedmodel/notion"
	"github.com/suparena/typedmodel/record"
	"github.com/suparena/typedmodel/registry"
)

const (
	notionSchema   = "notion"
	manifestSchema = "manifest"
	storeName      = "records"
)

type options struct {
	version    bool
	manifest   string
	schema     string
	format     string
	logLevel   string
	logFormat  string
	configFile string
	envFile    string
	put        bool
	keys       string
	files      []string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("typedmodel", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.StringVar(&opts.manifest, "manifest", "", "YAML manifest declaring extra families")
	fs.StringVar(&opts.schema, "schema", notionSchema, "Schema to validate against (notion or manifest)")
	fs.StringVar(&opts.format, "format", "json", "Output format: json or yaml")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	fs.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&opts.envFile, "env-file", ".env", "Environment file, ignored when missing")
	fs.BoolVar(&opts.put, "put", false, "Write valid records to the configured DynamoDB table")
	fs.StringVar(&opts.keys, "keys", "PK=BLOCK#{id},SK={type}", "Key template as ATTR=TEMPLATE pairs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.files = fs.Args()

	switch opts.format {
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown format %q", opts.format)
	}
	return opts, nil
}

func newLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// parseKeyTemplate reads "PK=BLOCK#{id},SK={type}".
func parseKeyTemplate(s string) (ddb.KeyTemplate, error) {
	keys := ddb.KeyTemplate{}
	for _, pair := range strings.Split(s, ",") {
		attr, tmpl, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || attr == "" || tmpl == "" {
			return nil, fmt.Errorf("invalid key template entry %q", pair)
		}
		keys[attr] = tmpl
	}
	return keys, nil
}

// buildCatalog registers the notion schema and, when a manifest is given, a manifest schema.
func buildCatalog(opts *options, logger *slog.Logger) (*typedmodel.Catalog, error) {
	catalog := typedmodel.NewCatalog()

	notionReg := registry.New(registry.WithLogger(logger))
	if err := notion.Register(notionReg); err != nil {
		return nil, fmt.Errorf("failed to register notion families: %w", err)
	}
	if err := catalog.RegisterRegistry(notionSchema, notionReg); err != nil {
		return nil, err
	}

	if opts.manifest != "" {
		m, err := registry.LoadManifestFile(opts.manifest)
		if err != nil {
			return nil, err
		}
		manifestReg := registry.New(registry.WithLogger(logger))
		families, err := m.Apply(manifestReg)
		if err != nil {
			return nil, fmt.Errorf("failed to apply manifest %s: %w", opts.manifest, err)
		}
		logger.Debug("Applied manifest.", "path", opts.manifest, "families", len(families))
		if err := catalog.RegisterRegistry(manifestSchema, manifestReg); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if opts.version {
		info := typedmodel.GetVersionInfo()
		fmt.Fprintf(stdout, "typedmodel version %s\n", info.Version)
		fmt.Fprintf(stdout, "Git commit: %s\n", info.GitCommit)
		fmt.Fprintf(stdout, "Build date: %s\n", info.BuildDate)
		fmt.Fprintf(stdout, "Go version: %s\n", info.GoVersion)
		return 0
	}

	logger, err := newLogger(opts.logLevel, opts.logFormat, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	loadOpts := []config.Option{config.WithEnvFile(opts.envFile)}
	if opts.configFile != "" {
		loadOpts = append(loadOpts, config.WithFile(opts.configFile))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		logger.Error("Failed to load configuration.", "error", err)
		return 2
	}

	catalog, err := buildCatalog(opts, logger)
	if err != nil {
		logger.Error("Failed to build catalog.", "error", err)
		return 2
	}
	reg, err := catalog.Registry(opts.schema)
	if err != nil {
		logger.Error("Unknown schema.", "schema", opts.schema, "available", catalog.List())
		return 2
	}

	var store datastore.RecordStore
	if opts.put {
		keys, err := parseKeyTemplate(opts.keys)
		if err != nil {
			logger.Error("Invalid key template.", "error", err)
			return 2
		}
		ddbStore, err := ddb.Open(ctx, cfg.Store, reg, keys, ddb.WithLogger(logger))
		if err != nil {
			logger.Error("Failed to open record store.", "error", err)
			return 2
		}
		if err := catalog.RegisterStore(opts.schema, storeName, ddbStore); err != nil {
			logger.Error("Failed to register record store.", "error", err)
			return 2
		}
		if store, err = catalog.Store(opts.schema, storeName); err != nil {
			logger.Error("Failed to resolve record store.", "error", err)
			return 2
		}
	}

	out := newWriter(opts.format, stdout)
	codec := record.NewCodec(reg)

	inputs := opts.files
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	invalid := 0
	for _, name := range inputs {
		n, err := processInput(ctx, name, stdin, codec, store, out, stderr)
		invalid += n
		if err != nil {
			logger.Error("Failed to read records.", "input", name, "error", err)
			return 1
		}
	}
	if err := out.Close(); err != nil {
		logger.Error("Failed to write output.", "error", err)
		return 1
	}

	if invalid > 0 {
		logger.Warn("Invalid records found.", "count", invalid)
		return 1
	}
	return 0
}

// processInput validates every record of one input and returns the number of invalid records.
func processInput(
	ctx context.Context,
	name string,
	stdin io.Reader,
	codec *record.Codec,
	store datastore.RecordStore,
	out recordWriter,
	stderr io.Writer,
) (int, error) {
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		r = f
	}

	invalid := 0
	dec := codec.NewDecoder(r)
	for index := 1; dec.More(); index++ {
		rec, err := dec.Next()
		if err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
				return invalid, fmt.Errorf("record %d: %w", index, err)
			}
			invalid++
			fmt.Fprintf(stderr, "%s: record %d: %v\n", name, index, err)
			continue
		}
		if store != nil {
			if err := store.Put(ctx, rec); err != nil {
				invalid++
				fmt.Fprintf(stderr, "%s: record %d: %v\n", name, index, err)
				continue
			}
		}
		if err := out.Write(rec); err != nil {
			return invalid, err
		}
	}
	return invalid, nil
}
