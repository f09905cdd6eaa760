// Command paceval compiles a PAC script and evaluates it for one or more
// URLs, printing the proxy directive for each.
//
//	paceval -script corp.pac https://www.example.com/ http://intranet/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/proxykit/paceval/internal/config"
	"github.com/proxykit/paceval/internal/logging"
	"github.com/proxykit/paceval/internal/pac"
	"github.com/proxykit/paceval/internal/resolve"
)

func main() {
	cfg := config.LoadOrDefault()

	scriptPath := flag.String("script", cfg.Script.Path, "Path to the PAC script")
	flag.Parse()

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "paceval: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: paceval [-script file.pac] url [url ...]")
		os.Exit(2)
	}

	source, err := os.ReadFile(*scriptPath)
	if err != nil {
		logger.Fatal("failed to read script", zap.Error(err))
	}

	name := cfg.Script.Name
	if name == "" {
		name = filepath.Base(*scriptPath)
	}

	ev := pac.New(pac.Script{Name: name, Source: string(source)}, pac.Config{
		Resolver: &resolve.System{Timeout: cfg.DNS.Timeout},
		Logger:   logger,
		PoolSize: cfg.Script.PoolSize,
	})
	defer ev.Close()

	ctx := context.Background()
	exit := 0
	for _, raw := range flag.Args() {
		host := hostOf(raw)
		directive, err := ev.Evaluate(ctx, raw, host)
		if err != nil {
			logger.Error("evaluation failed", zap.String("url", raw), zap.Error(err))
			exit = 1
			continue
		}
		fmt.Printf("%s\t%s\n", raw, directive)
	}
	os.Exit(exit)
}

// hostOf extracts the hostname to hand to FindProxyForURL. An unparsable
// argument is passed through untouched so scripts still see something.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
