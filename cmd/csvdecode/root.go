package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/shapestone/shape-csvstream/internal/logging"
	"github.com/shapestone/shape-csvstream/pkg/csv"
	"github.com/shapestone/shape-csvstream/pkg/metrics"
	"github.com/shapestone/shape-csvstream/pkg/source"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	out      io.Writer
	v        *viper.Viper
	log      *zap.Logger
	registry *prometheus.Registry
	server   *http.Server
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "csvdecode",
		Short: "Stream delimiter-separated files as JSON lines",
		Long: `csvdecode reads a delimiter-separated file from a local path, an http(s) URL,
s3://bucket/key or gs://bucket/object, decompressing it on the fly, and prints
one JSON value per row.

Every flag can also be set through the environment (CSVDECODE_SKIP_INVALID=true)
or a config file passed with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}
	registerFlags(root.PersistentFlags())
	root.SetOut(out)

	root.AddCommand(
		&cobra.Command{
			Use:   "rows <uri>",
			Short: "Print every row as a JSON array of strings",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.rows(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "dicts <uri>",
			Short: "Print every row as a JSON object keyed by the header",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.dicts(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "check <uri>",
			Short: "Count rows and report rows with the wrong number of fields",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.check(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(out, "csvdecode v%s (%s)\n", version, csv.Format())
				fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
				fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			},
		},
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	v, err := newViper(cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	a.v = v

	a.log, err = logging.New(logging.Config{
		Level:    v.GetString(keyLogLevel),
		Encoding: v.GetString(keyLogFormat),
	})
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	if addr := v.GetString(keyMetricsAddr); addr != "" {
		return a.serveMetrics(addr)
	}
	return nil
}

func (a *app) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	a.log.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return nil
}

func (a *app) teardown() error {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.log.Warn("metrics server shutdown", zap.Error(err))
		}
	}
	_ = a.log.Sync()
	return nil
}

// open returns the source for uri and options wired to the logger and metrics.
func (a *app) open(ctx context.Context, uri string) (io.ReadCloser, csv.Options, error) {
	opts, err := readerOptions(a.v)
	if err != nil {
		return nil, opts, err
	}
	opts.Logger = a.log
	opts.Observer = metrics.NewCollector(a.registry, uri)

	srcOpts, err := sourceOptions(a.v)
	if err != nil {
		return nil, opts, err
	}
	src, err := source.Open(ctx, uri, append(srcOpts, source.WithLogger(a.log))...)
	if err != nil {
		return nil, opts, err
	}
	return src, opts, nil
}

func (a *app) rows(ctx context.Context, uri string) error {
	src, opts, err := a.open(ctx, uri)
	if err != nil {
		return err
	}
	defer src.Close()

	r, err := csv.NewReader(src, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	header, err := r.Header(ctx)
	if err != nil {
		return err
	}
	if header != nil {
		if err := enc.Encode(header); err != nil {
			return err
		}
	}
	for {
		row, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
}

func (a *app) dicts(ctx context.Context, uri string) error {
	src, opts, err := a.open(ctx, uri)
	if err != nil {
		return err
	}
	defer src.Close()

	d, err := csv.NewDictReader(src, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	for {
		m, err := d.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
}

// checkResult is the JSON summary printed by check.
type checkResult struct {
	Source  string      `json:"source"`
	Columns []string    `json:"columns,omitempty"`
	Rows    int         `json:"rows"`
	Invalid []badRecord `json:"invalid,omitempty"`
}

type badRecord struct {
	Record   int `json:"record"`
	Fields   int `json:"fields"`
	Expected int `json:"expected"`
}

// ErrInvalidRows is returned by check when any row has the wrong width.
var ErrInvalidRows = errors.New("rows with the wrong number of fields")

func (a *app) check(ctx context.Context, uri string) error {
	src, opts, err := a.open(ctx, uri)
	if err != nil {
		return err
	}
	defer src.Close()

	report, err := csv.Validate(ctx, src, opts)
	if err != nil {
		return err
	}

	result := checkResult{Source: uri, Columns: report.Header, Rows: report.Rows}
	for _, bad := range report.Invalid {
		a.log.Warn("row has wrong number of fields",
			zap.Int("record", bad.Record),
			zap.Int("fields", len(bad.Fields)),
			zap.Int("expected", bad.Expected))
		result.Invalid = append(result.Invalid, badRecord{
			Record:   bad.Record,
			Fields:   len(bad.Fields),
			Expected: bad.Expected,
		})
	}
	if err := json.NewEncoder(a.out).Encode(result); err != nil {
		return err
	}
	if len(result.Invalid) > 0 {
		return fmt.Errorf("%s: %d %w", uri, len(result.Invalid), ErrInvalidRows)
	}
	return nil
}
