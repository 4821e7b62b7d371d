// Command tetribot-server runs the tetribot REST and WebSocket API server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/yourusername/tetribot/pkg/api"
	"github.com/yourusername/tetribot/pkg/engine"
)

const version = "0.1.0"

func main() {
	host := flag.String("host", "localhost", "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", 8080, "Port to listen on")
	attackTableFile := flag.String("attack-table", "", "Path to attack table XML (empty uses the built-in table)")
	depth := flag.Int("depth", 0, "Beam search depth (0 = engine default)")
	width := flag.Int("width", 0, "Beam search width (0 = engine default)")
	cacheSize := flag.Int("cache-size", 0, "Evaluation cache size (0 = engine default)")
	disableCache := flag.Bool("disable-cache", false, "Disable the evaluation cache")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("tetribot API Server v%s\n", version)
		os.Exit(0)
	}

	log.Printf("tetribot API Server v%s", version)
	log.Printf("Loading engine data...")

	opts := engine.EngineOptions{
		AttackTableFile: *attackTableFile,
		Depth:           *depth,
		Width:           *width,
		CacheSize:       uint64(*cacheSize),
		DisableCache:    *disableCache,
	}

	eng, err := engine.NewEngine(opts)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	log.Printf("Engine loaded successfully")

	config := api.ServerConfig{
		Host:         *host,
		Port:         *port,
		ReadTimeout:  *readTimeout,
		WriteTimeout: *writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	server := api.NewServer(eng, config, version)

	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
