package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/globalroute/navigator/internal/config"
	mcpserver "github.com/globalroute/navigator/internal/mcp"
	"github.com/globalroute/navigator/internal/planner"
	"github.com/globalroute/navigator/internal/server"
	"github.com/globalroute/navigator/pkg/classifier"
	"github.com/globalroute/navigator/pkg/countries"
	"github.com/globalroute/navigator/pkg/graph"
	"github.com/globalroute/navigator/pkg/llm"
	"github.com/globalroute/navigator/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	graphPath := flag.String("graph", "", "Transport network to load (snapshot or node-link .json); overrides graph.path")
	httpAddr := flag.String("http-addr", "", "HTTP listen address; overrides server.http_addr")
	mcpMode := flag.Bool("mcp", false, "Serve the MCP tools on stdio instead of HTTP")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Unable to load configuration: %v", err)
	}
	if *graphPath != "" {
		cfg.Graph.Path = *graphPath
	}
	if *httpAddr != "" {
		cfg.Server.HTTPAddr = *httpAddr
	}
	if *mcpMode {
		cfg.MCP.Enabled = true
	}

	// Logs go to stderr: stdout belongs to the MCP transport.
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	g, err := graph.LoadFile(cfg.Graph.Path)
	if err != nil {
		log.Fatalf("Unable to load transport network: %v", err)
	}
	metrics.GraphSize.WithLabelValues("nodes").Set(float64(g.Len()))
	metrics.GraphSize.WithLabelValues("edges").Set(float64(g.EdgeCount()))

	var cls classifier.Classifier
	if cfg.Classifier.Enabled {
		cls = classifier.NewLLMClassifier(llm.NewClient(cfg.Classifier.LLM), cfg.Classifier.Prompt)
		slog.Info("Cargo classifier enabled", "model", cfg.Classifier.LLM.Model, "base_url", cfg.Classifier.LLM.BaseURL)
	} else {
		slog.Info("Cargo classifier disabled, prohibited/restricted flags will not add constraints")
	}

	p := planner.New(g, countries.NewResolver(cls), planner.Options{
		DefaultTopN: cfg.Search.DefaultTopN,
		MaxTopN:     cfg.Search.MaxTopN,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MCP.Enabled {
		slog.Info("Serving MCP tools on stdio")
		if err := mcpserver.NewMCPServer(p).Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			log.Fatalf("MCP server stopped: %v", err)
		}
		return
	}

	srv, err := server.NewServer(p, cfg.Server)
	if err != nil {
		log.Fatalf("Unable to create the server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal(err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}
}
