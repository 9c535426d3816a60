// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command httpi sends one request through an httpi client chain built
// from a config file and flags, and prints what it observes.
//
//	httpi -X POST -H 'Accept: application/json' -d '{"n":1}' https://api.example.com/items
//	httpi --jsonp callback https://api.example.com/lookup?q=x
//	httpi --observe events --progress https://example.com/big.txt --response-type text
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/go-logr/logr"
	"github.com/gogama/httpi"
	"github.com/gogama/httpi/config"
	"github.com/gogama/httpi/request"
	"github.com/gogama/httpi/response"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/net/publicsuffix"
)

// Set by release ldflags.
var version = "dev"

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	URL          string   `kong:"arg,help='Request URL, absolute or relative to the configured base URL.'"`
	Config       string   `kong:"short='c',help='Path to TOML or YAML config file.',env='HTTPI_CONFIG'"`
	Method       string   `kong:"short='X',default='GET',help='Request method.'"`
	Header       []string `kong:"short='H',help='Request header as \"Name: value\". May be repeated.'"`
	Param        []string `kong:"short='p',help='Query parameter as name=value. May be repeated.'"`
	Data         string   `kong:"short='d',help='Request body. JSON is sent as JSON; @path reads a file.'"`
	Observe      string   `kong:"default='body',enum='body,response,events',help='What to print: body, response or events.'"`
	ResponseType string   `kong:"default='json',enum='json,text,arraybuffer,blob',help='Expected response type.'"`
	Progress     bool     `kong:"help='Ask for progress events.'"`
	Credentials  bool     `kong:"help='Send and store cookies.'"`
	JSONP        string   `kong:"name='jsonp',placeholder='PARAM',help='Send as JSONP with this callback query parameter.'"`
	LogLevel     string   `kong:"help='Log level: debug|info|warn|error (overrides config).',env='HTTPI_LOG_LEVEL'"`
	Metrics      bool     `kong:"help='Print request metrics to stderr when done.'"`
	Tracing      bool     `kong:"help='Start a trace and propagate it to the server.'"`
	Version      kong.VersionFlag
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("httpi"),
		kong.Description("Send an HTTP request through an httpi interceptor chain."),
		kong.Vars{"version": version},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kctx.FatalIfErrorf(run(ctx, &cli, os.Stdout, os.Stderr))
}

func run(ctx context.Context, cli *CLI, stdout, stderr io.Writer) error {
	cfg := config.Default()
	if cli.Config != "" {
		var err error
		if cfg, err = config.Load(cli.Config); err != nil {
			return err
		}
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.Metrics {
		cfg.Metrics.Enabled = true
	}
	if cli.Tracing {
		cfg.Tracing.Enabled = true
	}

	logger := newLogger(cfg.Log, stderr)

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}

	httpClient := &http.Client{}
	deps := config.Deps{
		Doer:   httpClient,
		Jar:    jar,
		Logger: logr.FromSlogHandler(logger.Handler()),
	}
	if cfg.Tracing.Enabled {
		tp := sdktrace.NewTracerProvider()
		defer func() {
			_ = tp.Shutdown(context.Background())
		}()
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.TraceContext{})
		httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
		deps.TracerProvider = tp
	}
	reg := prometheus.NewRegistry()
	deps.Registerer = reg

	cl, err := config.NewClient(cfg, deps)
	if err != nil {
		return err
	}

	call, err := newCall(cl, cli)
	if err != nil {
		return err
	}

	err = call.Subscribe(ctx, func(v interface{}) {
		printValue(stdout, v)
	})
	if cfg.Metrics.Enabled {
		printMetrics(stderr, reg)
	}
	return err
}

func newLogger(lc config.LogConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(lc.Format) {
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h)
}

func newCall(cl *httpi.Client, cli *CLI) (*httpi.Call, error) {
	if cli.JSONP != "" {
		return cl.Jsonp(cli.URL, cli.JSONP), nil
	}

	headers, err := parseHeaders(cli.Header)
	if err != nil {
		return nil, err
	}
	params, err := parseParams(cli.Param)
	if err != nil {
		return nil, err
	}
	body, err := parseBody(cli.Data)
	if err != nil {
		return nil, err
	}
	observe, err := parseObserve(cli.Observe)
	if err != nil {
		return nil, err
	}

	return cl.Request(cli.Method, cli.URL, httpi.Options{
		Body:            body,
		Headers:         headers,
		Params:          params,
		Observe:         observe,
		ResponseType:    request.ResponseType(cli.ResponseType),
		ReportProgress:  cli.Progress,
		WithCredentials: cli.Credentials,
	}), nil
}

func parseHeaders(raw []string) (map[string][]string, error) {
	headers := make(map[string][]string, len(raw))
	for _, h := range raw {
		i := strings.IndexByte(h, ':')
		if i <= 0 {
			return nil, fmt.Errorf("header %q: want \"Name: value\"", h)
		}
		name := strings.TrimSpace(h[:i])
		headers[name] = append(headers[name], strings.TrimSpace(h[i+1:]))
	}
	return headers, nil
}

func parseParams(raw []string) (map[string][]string, error) {
	params := make(map[string][]string, len(raw))
	for _, p := range raw {
		i := strings.IndexByte(p, '=')
		if i <= 0 {
			return nil, fmt.Errorf("param %q: want name=value", p)
		}
		params[p[:i]] = append(params[p[:i]], p[i+1:])
	}
	return params, nil
}

// parseBody returns nil for no data, decoded JSON for valid JSON data
// and the data itself as a string otherwise.
func parseBody(data string) (interface{}, error) {
	if data == "" {
		return nil, nil
	}
	if strings.HasPrefix(data, "@") {
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, err
		}
		data = string(b)
	}
	if gjson.Valid(data) {
		return gjson.Parse(data).Value(), nil
	}
	return data, nil
}

func parseObserve(s string) (httpi.Observe, error) {
	for _, o := range []httpi.Observe{httpi.ObserveBody, httpi.ObserveResponse, httpi.ObserveEvents} {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown observe %q", s)
}

func printValue(w io.Writer, v interface{}) {
	switch v := v.(type) {
	case nil:
	case string:
		fmt.Fprintln(w, v)
	case []byte:
		_, _ = w.Write(v)
	case *response.Blob:
		_, _ = w.Write(v.Data)
	case response.Sent:
		fmt.Fprintln(w, "> sent")
	case response.UploadProgress:
		fmt.Fprintf(w, "> upload %s\n", progress(v.Loaded, v.Total))
	case *response.HeaderResponse:
		fmt.Fprintf(w, "< %d %s\n", v.Status(), v.StatusText())
		printHeaders(w, v.Headers())
	case response.DownloadProgress:
		fmt.Fprintf(w, "< download %s\n", progress(v.Loaded, v.Total))
	case *response.Response:
		fmt.Fprintf(w, "< %d %s %s\n", v.Status(), v.StatusText(), v.URL())
		printHeaders(w, v.Headers())
		fmt.Fprintln(w)
		printValue(w, v.Body())
	case response.User:
		fmt.Fprintf(w, "* %v\n", v.Value)
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Fprintf(w, "%v\n", v)
			return
		}
		fmt.Fprintln(w, string(b))
	}
}

func printHeaders(w io.Writer, h request.Headers) {
	for _, name := range h.Keys() {
		for _, value := range h.Values(name) {
			fmt.Fprintf(w, "< %s: %s\n", name, value)
		}
	}
}

func progress(loaded, total int64) string {
	if total < 0 {
		return fmt.Sprintf("%d bytes", loaded)
	}
	return fmt.Sprintf("%d/%d bytes", loaded, total)
}

func printMetrics(w io.Writer, g prometheus.Gatherer) {
	mfs, err := g.Gather()
	if err != nil {
		fmt.Fprintf(w, "metrics: %v\n", err)
		return
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(labels)
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s{%s} count=%d sum=%g\n", mf.GetName(), strings.Join(labels, ","), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}
