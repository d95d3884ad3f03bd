/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command miniweb is the process entry point: it loads the Configuration
// (compiled defaults, then an optional directive file, then CLI flags),
// builds every component, and serves until SIGINT/SIGTERM, per spec.md §6.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flavioferretti/miniweb-sub000/internal/config"
	"github.com/flavioferretti/miniweb-sub000/internal/engine"
	"github.com/flavioferretti/miniweb-sub000/internal/handler"
	"github.com/flavioferretti/miniweb-sub000/internal/metrics"
	"github.com/flavioferretti/miniweb-sub000/internal/router"
	"github.com/flavioferretti/miniweb-sub000/internal/sampler"
	"github.com/flavioferretti/miniweb-sub000/internal/staticcache"
	"github.com/flavioferretti/miniweb-sub000/internal/templatestore"

	"github.com/google/uuid"
	libprm "github.com/nabbar/golib/file/perm"
	liblog "github.com/nabbar/golib/logger"
	logcfg "github.com/nabbar/golib/logger/config"
	logfld "github.com/nabbar/golib/logger/fields"
	loglvl "github.com/nabbar/golib/logger/level"
	"github.com/spf13/cobra"
)

const programName = "miniweb"

func main() {
	// spec.md §6: EPIPE/ECONNRESET on write just closes the connection; a
	// dying peer must never raise SIGPIPE into this process.
	signal.Ignore(syscall.SIGPIPE)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	port     int
	bind     string
	threads  int
	maxConns int
	verbose  bool
	confPath string
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           programName,
		Short:         "Host-diagnostics HTTP server",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &f)
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&f.port, "port", "p", 0, "listen port (overrides config)")
	fl.StringVarP(&f.bind, "bind", "b", "", "bind address (overrides config)")
	fl.IntVarP(&f.threads, "threads", "t", 0, "worker thread count (overrides config)")
	fl.IntVarP(&f.maxConns, "max-conns", "c", 0, "max concurrent connections (overrides config)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug-level logging")
	fl.StringVarP(&f.confPath, "config", "f", "", "path to the directive config file")

	return cmd
}

// loadConfig implements the precedence chain of spec.md §6: compiled
// defaults, then the resolved directive file (if any), then CLI overrides.
func loadConfig(cmd *cobra.Command, f *flags) (config.Configuration, []string, error) {
	cfg := config.Default()

	var unknown []string
	if path := config.ResolvePath(f.confPath, programName); path != "" {
		u, err := config.ParseFile(path, &cfg)
		if err != nil {
			return cfg, nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		unknown = u
	}

	fl := cmd.Flags()
	if fl.Changed("port") {
		cfg.Port = f.port
	}
	if fl.Changed("bind") {
		cfg.Bind = f.bind
	}
	if fl.Changed("threads") {
		cfg.Workers = f.threads
	}
	if fl.Changed("max-conns") {
		cfg.MaxConnections = f.maxConns
	}
	if fl.Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if err := cfg.Validate(); err != nil {
		return cfg, unknown, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, unknown, nil
}

func run(cmd *cobra.Command, f *flags) error {
	cfg, unknown, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := newLogger(ctx, cfg)
	for _, k := range unknown {
		log.Warning("ignoring unknown config directive", nil, k)
	}

	templates, err := templatestore.New(cfg.TemplatesDir)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	deps := &handler.Deps{
		Ctx:       ctx,
		Config:    cfg,
		Metric:    sampler.NewMetricSampler(),
		Network:   sampler.NewNetworkSampler(),
		Cache:     staticcache.New(staticcache.DefaultOptions()),
		Templates: templates,
		Prom:      metrics.New(),
	}
	deps.Metric.Ensure(ctx)
	deps.Network.Ensure(ctx)

	r := buildRouter(deps, cfg)

	eng := engine.New(engine.Config{
		Bind:           cfg.Bind,
		Port:           cfg.Port,
		Workers:        cfg.Workers,
		MaxConnections: cfg.MaxConnections,
		ConnTimeout:    time.Duration(cfg.ConnTimeoutSec) * time.Second,
		MaxRequestSize: cfg.MaxRequestBytes,
		TrustedProxy:   cfg.TrustedProxy,
	}, withObservability(r.Dispatch(notFoundHandler), deps.Prom, log))

	serveErr := make(chan error, 1)
	go func() { serveErr <- eng.Serve() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info(fmt.Sprintf("listening on %s:%d", cfg.Bind, cfg.Port), nil)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", nil, sig.String())
		eng.Shutdown()
		<-serveErr
		return nil
	case err := <-serveErr:
		if err != nil {
			log.Error("engine exited", err)
			return err
		}
		return nil
	}
}

// buildRouter registers every static route, the four dynamic-prefix
// handlers, and the declarative view table, per spec.md §4.2.
func buildRouter(d *handler.Deps, cfg config.Configuration) *router.Router {
	r := router.New()

	mustRegister(r, "GET", "/api/metrics", handler.NewMetricsHandler(d))
	mustRegister(r, "GET", "/api/networking", handler.NewNetworkingHandler(d))
	mustRegister(r, "GET", "/metrics", handler.NewPrometheusHandler(d))
	mustRegister(r, "GET", "/favicon.ico", handler.NewFaviconHandler(d, cfg.StaticDir))

	r.SetManRenderHandler(handler.NewManRenderHandler(d))
	r.SetManAPIHandler(handler.NewManAPIHandler(d))
	r.SetPackagesAPIHandler(handler.NewPackagesAPIHandler(d))
	r.SetStaticFilesHandler(handler.NewStaticHandler(d, cfg.StaticDir))
	r.SetViewHandler(handler.NewViewHandler(d))

	r.RegisterView(router.ViewRoute{
		Method:       "GET",
		Path:         "/",
		Title:        "MiniWeb - Dashboard",
		PageTemplate: "dashboard.html",
	})
	r.RegisterView(router.ViewRoute{
		Method:       "GET",
		Path:         "/man",
		Title:        "MiniWeb - Manual Pages",
		PageTemplate: "man.html",
	})
	r.RegisterView(router.ViewRoute{
		Method:       "GET",
		Path:         "/packages",
		Title:        "MiniWeb - Packages",
		PageTemplate: "packages.html",
	})
	r.RegisterView(router.ViewRoute{
		Method:       "GET",
		Path:         "/networking",
		Title:        "MiniWeb - Networking",
		PageTemplate: "networking.html",
	})

	return r
}

func mustRegister(r *router.Router, method, path string, h engine.Handler) {
	if err := r.Register(method, path, h); err != nil {
		panic(fmt.Sprintf("registering %s %s: %v", method, path, err))
	}
}

func notFoundHandler(req *engine.Request, resp *engine.Response) {
	resp.Status = 404
	resp.ContentType = "text/html"
	resp.Body = []byte("<html><body><h1>Not Found</h1></body></html>")
	resp.OwnsBody = true
}

// withObservability wraps dispatch with the per-request access log entry and
// the Prometheus request/byte counters (metrics.Registry), the single point
// where every request is accounted for regardless of which handler served
// it.
func withObservability(dispatch engine.Handler, prom *metrics.Registry, log liblog.Logger) engine.Handler {
	return func(req *engine.Request, resp *engine.Response) {
		start := time.Now()
		reqID := uuid.New().String()

		dispatch(req, resp)

		latency := time.Since(start)

		log.Access(req.ClientIP, "", start, latency, req.Method, req.Path, req.Version, resp.Status, int64(len(resp.Body))).
			FieldAdd("request_id", reqID).
			FieldAdd("https", req.IsHTTPS).
			Log()

		prom.ObserveRequest(req.Path, resp.Status, len(resp.Body))
	}
}

// newLogger builds the process logger: level follows Configuration.Verbose,
// and an optional file sink is attached when Configuration.LogFile is set,
// grounded on logger/config.OptionsFile (spec.md §6's log_file directive).
func newLogger(ctx context.Context, cfg config.Configuration) liblog.Logger {
	log := liblog.New(ctx)

	lvl := loglvl.InfoLevel
	if cfg.Verbose {
		lvl = loglvl.DebugLevel
	}
	log.SetLevel(lvl)
	log.SetFields(logfld.New(ctx).Add("service", programName))

	if cfg.LogFile != "" {
		opt := &logcfg.Options{
			LogFile: logcfg.OptionsFiles{
				{
					LogLevel:   []string{"debug", "info", "warning", "error"},
					Filepath:   cfg.LogFile,
					Create:     true,
					CreatePath: true,
					FileMode:   libprm.Perm(0o644),
					PathMode:   libprm.Perm(0o755),
				},
			},
		}
		if err := log.SetOptions(opt); err != nil {
			log.Error("applying log file configuration", err)
		}
	}

	return log
}
