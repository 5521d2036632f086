package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/screengrab/snapshot-mcp/internal/client"
	"github.com/screengrab/snapshot-mcp/internal/protocol"
)

func main() {
	serverCmd := flag.String("server", "snapshot-mcp", "server command to spawn for the pipe transport (with arguments)")
	url := flag.String("url", "", "websocket server URL to dial instead of spawning a subprocess, e.g. ws://localhost:3001/mcp")
	callTimeout := flag.Duration("call-timeout", 30*time.Second, "timeout applied to each tool call")
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime)

	transport, err := openTransport(*url, *serverCmd)
	if err != nil {
		log.Printf("Failed to connect: %v", err)
		os.Exit(1)
	}

	sess := client.NewSession(transport)
	defer sess.Close()

	if err := sess.Initialize(); err != nil {
		log.Printf("Failed to initialize session: %v", err)
		os.Exit(1)
	}
	fmt.Println("Connected to server")

	loop := client.NewLoop(sess, os.Stdin, os.Stdout, *callTimeout)
	if err := loop.Run(); err != nil {
		log.Printf("Session ended: %v", err)
		os.Exit(1)
	}
}

func openTransport(url, serverCmd string) (protocol.Transport, error) {
	if url != "" {
		return protocol.DialWS(url)
	}
	parts := strings.Fields(serverCmd)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty server command")
	}
	return protocol.NewPipeTransport(parts[0], parts[1:]...)
}
