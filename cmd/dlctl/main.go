package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sir_venger/download_lite/pkg/downloadclient"
)

const defaultServer = "http://localhost:8080"

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		logger.Error().Err(err).Msg("dlctl failed")
		stop()
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  dlctl [-server URL] upload <file>")
	fmt.Fprintln(w, "  dlctl [-server URL] get [-o path] [-etag value] [-since http-date] <id>")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := flag.NewFlagSet("dlctl", flag.ContinueOnError)
	root.SetOutput(stderr)
	server := root.String("server", envOr("DLCTL_SERVER", defaultServer), "download server base URL")
	quiet := root.Bool("q", false, "do not draw progress")
	if err := root.Parse(args); err != nil {
		return err
	}
	if root.NArg() == 0 {
		usage(stderr)
		return errors.New("command is required")
	}

	var opts []downloadclient.Option
	if !*quiet {
		opts = append(opts, downloadclient.WithProgress(stderr))
	}
	cl := downloadclient.New(opts...)

	switch cmd, rest := root.Arg(0), root.Args()[1:]; cmd {
	case "upload":
		return runUpload(ctx, cl, *server, rest, stdout)
	case "get":
		return runGet(ctx, cl, *server, rest, stdout, stderr)
	default:
		usage(stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runUpload(ctx context.Context, cl *downloadclient.Client, server string, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("upload expects exactly one file")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	res, err := cl.Upload(ctx, server, filepath.Base(args[0]), f, info.Size())
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s\t%d\t%s\n", res.FileID, res.Size, res.ETag)
	return nil
}

func runGet(ctx context.Context, cl *downloadclient.Client, server string, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outPath := fs.String("o", "", "output file (default: server-provided name, - for stdout)")
	etag := fs.String("etag", "", "ETag from a previous download")
	since := fs.String("since", "", "Last-Modified from a previous download (HTTP date)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("get expects exactly one id")
	}
	id := fs.Arg(0)

	cached := downloadclient.Validators{ETag: *etag}
	if *since != "" {
		t, err := http.ParseTime(*since)
		if err != nil {
			return fmt.Errorf("parse -since: %w", err)
		}
		cached.LastModified = t
	}

	// тело пишем во временный файл и переименовываем только после успеха
	var (
		dst     io.Writer = stdout
		tmpFile *os.File
	)
	if *outPath != "-" {
		dir := "."
		if *outPath != "" {
			dir = filepath.Dir(*outPath)
		}
		var err error
		tmpFile, err = os.CreateTemp(dir, ".dlctl-*")
		if err != nil {
			return err
		}
		defer func() {
			_ = tmpFile.Close()
			_ = os.Remove(tmpFile.Name())
		}()
		dst = tmpFile
	}

	res, err := cl.Download(ctx, server, id, cached, dst)
	if err != nil {
		return err
	}
	if res.NotModified {
		fmt.Fprintln(stderr, "not modified")
		return nil
	}
	if tmpFile == nil {
		return nil
	}

	target := *outPath
	if target == "" {
		target = filepath.Base(res.Name)
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpFile.Name(), target); err != nil {
		return err
	}

	fmt.Fprintf(stderr, "saved %s (%d bytes, etag %s, last-modified %s)\n",
		target, res.Size, res.Validators.ETag, res.Validators.LastModified.UTC().Format(time.RFC1123))
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
