package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/screengrab/snapshot-mcp/internal/capture"
	"github.com/screengrab/snapshot-mcp/internal/server"
	"github.com/screengrab/snapshot-mcp/internal/snapshot"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("snapshot-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("snapshot-mcp - MCP server for screen snapshots")
			fmt.Println()
			fmt.Println("Usage: snapshot-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  -transport stdio|ws   Transport to serve on (default stdio)")
			fmt.Println("  -port N               Port to listen on for ws (default 3001)")
			fmt.Println("  --version, -v         Print version information")
			fmt.Println("  --help, -h            Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  SNAPSHOT_MCP_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println()
			fmt.Println("On the stdio transport the server communicates via MCP protocol")
			fmt.Println("over stdin/stdout. Configure it in your MCP client.")
			return
		}
	}

	transport := flag.String("transport", "stdio", "transport to serve on: stdio or ws")
	port := flag.Int("port", 3001, "port to listen on for the ws transport")
	flag.Parse()

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if os.Getenv("SNAPSHOT_MCP_LOG_LEVEL") == "debug" {
		log.Printf("Snapshot MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := capture.NewEngine(capture.NewDisplayBackend())
	srv := server.New(snapshot.NewService(engine))

	var err error
	switch *transport {
	case "stdio":
		err = srv.ServeStdio(ctx)
	case "ws":
		log.Printf("Listening for sessions on port %d", *port)
		err = srv.ListenAndServeWS(ctx, *port)
	default:
		log.Printf("Unknown transport %q (want stdio or ws)", *transport)
		os.Exit(1)
	}
	if err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
