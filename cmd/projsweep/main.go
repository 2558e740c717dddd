// Command projsweep measures the on-disk footprint of software projects,
// splitting code from dependency and Git-ignored content, with results
// cached between runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/projsweep/projsweep/cache"
	"github.com/projsweep/projsweep/config"
	"github.com/projsweep/projsweep/internal/logging"
	"github.com/projsweep/projsweep/scan"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default: per-user config dir)")
		logLevel    = flag.String("log-level", "info", "log level: debug, info, warn, error")
		logFormat   = flag.String("log-format", "console", "log format: console or json")
		parallel    = flag.Bool("parallel", false, "use the parallel scanner with progress output")
		noCache     = flag.Bool("no-cache", false, "bypass the size cache")
		clearCache  = flag.Bool("clear-cache", false, "clear the size cache and exit")
		cacheStats  = flag.Bool("cache-stats", false, "print size cache statistics and exit")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	)
	flag.Parse()

	if err := logging.Init(logging.Config{Level: *logLevel, Format: *logFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logging.Sync() }()

	if err := run(*configPath, *parallel, *noCache, *clearCache, *cacheStats, *metricsAddr); err != nil {
		logging.Error("projsweep failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(configPath string, parallel, noCache, clearCache, cacheStats bool, metricsAddr string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	cacheCfg := cfg.Cache.ToCacheConfig()
	if noCache {
		cacheCfg.Enabled = false
	}
	store, err := cache.New(cacheCfg)
	if err != nil {
		return err
	}

	switch {
	case clearCache:
		if err := store.ClearAll(); err != nil {
			return err
		}
		fmt.Println("size cache cleared")
		return nil
	case cacheStats:
		printCacheStats(store)
		return nil
	}

	if metricsAddr != "" {
		go serveMetrics(metricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = cfg.ScanPaths
	}

	calc := scan.NewCalculator(osfs.New("/"), scan.WithCache(store))

	// One failing project must not abort the batch; its sizes are simply
	// reported as unknown.
	failed := 0
	for _, path := range paths {
		var info scan.ProjectSizeInfo
		var err error
		if parallel {
			info, err = calc.CalculateProjectSizeParallel(ctx, path, printProgress)
		} else {
			info, err = calc.CalculateProjectSize(ctx, path)
		}
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			logging.Warn("failed to measure project", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		printSummary(path, info)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d projects could not be measured", failed, len(paths))
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOrCreateDefault()
}

func printSummary(path string, info scan.ProjectSizeInfo) {
	fmt.Printf("%s\n", path)
	fmt.Printf("  total:        %10s  (%d files)\n", formatBytes(info.TotalSize), info.TotalFileCount)
	fmt.Printf("  code:         %10s  (%d files)\n", formatBytes(info.CodeSize), info.CodeFileCount)
	fmt.Printf("  dependencies: %10s  (%d files)\n", formatBytes(info.DependencySize), info.DependencyFileCount)
	if info.IsGitRepo {
		fmt.Printf("  git-ignored:  %10s  (%d files)\n",
			formatBytes(info.GitignoreExcludedSize), info.GitignoreExcludedFileCount)
	}
}

func printProgress(p scan.Progress) {
	switch p.Stage {
	case scan.StageCompleted:
		fmt.Fprintf(os.Stderr, "\r%s: %d files, %s        \n",
			p.ProjectName, p.ProcessedFiles, formatBytes(p.BytesProcessed))
	default:
		fmt.Fprintf(os.Stderr, "\r%s: %s %d/%d %s",
			p.ProjectName, p.Stage, p.ProcessedFiles, p.TotalFiles, formatBytes(p.BytesProcessed))
	}
}

func printCacheStats(store *cache.SizeCache) {
	stats := store.Stats()
	fmt.Printf("cache file:      %s\n", store.Path())
	fmt.Printf("entries:         %d (%d expired, %d git repos)\n",
		stats.TotalEntries, stats.ExpiredEntries, stats.GitRepoCount)
	fmt.Printf("tracked total:   %s (code %s, dependencies %s)\n",
		formatBytes(stats.TotalSize), formatBytes(stats.CodeSize), formatBytes(stats.DependencySize))
	fmt.Printf("file size:       %s\n", formatBytes(stats.FileSize))
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Warn("metrics listener stopped", zap.Error(err))
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
