package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/buildsys/mortar/config"
	"github.com/buildsys/mortar/httpclient"
	"github.com/buildsys/mortar/logger"
)

var exampleUsage = strings.TrimSpace(`
  restcall https://api.example.com/projects
  restcall -X POST -d '{"name":"bridge"}' https://api.example.com/projects
  restcall --config mortar.yaml -q page=2 -H "X-Tenant: acme" projects
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	var (
		cfgPath string
		method  string
		headers []string
		queries []string
		data    string
		timeout time.Duration
		retries int
		verbose bool
	)

	root := &cobra.Command{
		Use:     "restcall [flags] URL",
		Short:   "Issue a resilient HTTP request with retries and tracing",
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// Flags override file and environment values.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
			if changed["timeout"] {
				cfg.Timeout = timeout
			}
			if changed["retries"] {
				cfg.Retry.Max = retries
			}
			if verbose {
				cfg.Log.Level = "debug"
				cfg.Log.Payloads = true
			}

			log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
			client := httpclient.NewClient(cfg.ClientConfig(), log)

			req, err := buildRequest(args[0], headers, queries, data)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			resp, err := client.Do(ctx, strings.ToUpper(method), req)
			if err != nil {
				return err
			}

			return printBody(cmd, resp)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to YAML config file (default: mortar.yaml if present)")
	root.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method")
	root.Flags().StringArrayVarP(&headers, "header", "H", nil, `request header ("Name: value", repeatable)`)
	root.Flags().StringArrayVarP(&queries, "query", "q", nil, `query parameter ("key=value", repeatable)`)
	root.Flags().StringVarP(&data, "data", "d", "", "request body (raw; JSON passes through)")
	root.Flags().DurationVar(&timeout, "timeout", 0, "per-attempt timeout")
	root.Flags().IntVar(&retries, "retries", 0, "maximum retry count")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging with payloads")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "restcall:", err)
		os.Exit(1)
	}
}

func buildRequest(url string, headers, queries []string, data string) (*httpclient.Request, error) {
	req := &httpclient.Request{URL: url}

	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q (want \"Name: value\")", h)
		}
		if req.Headers == nil {
			req.Headers = make(map[string]string)
		}
		req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	for _, q := range queries {
		key, value, ok := strings.Cut(q, "=")
		if !ok {
			return nil, fmt.Errorf("invalid query parameter %q (want \"key=value\")", q)
		}
		if req.Query == nil {
			req.Query = make(map[string]any)
		}
		req.Query[key] = value
	}

	if data != "" {
		if json.Valid([]byte(data)) {
			req.Body = json.RawMessage(data)
		} else {
			req.Body = data
		}
	}

	return req, nil
}

func printBody(cmd *cobra.Command, resp *httpclient.Response) error {
	switch decoded := resp.Decoded.(type) {
	case nil:
		return nil
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), decoded)
	case []byte:
		_, err := cmd.OutOrStdout().Write(decoded)
		return err
	default:
		out, err := json.MarshalIndent(decoded, "", "  ")
		if err != nil {
			return fmt.Errorf("render response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}
	return nil
}
