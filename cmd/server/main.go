package main

import (
	"fmt"
	"log"
	"os"

	"github.com/searchktools/c10k-server/app"
	"github.com/searchktools/c10k-server/config"
	"github.com/searchktools/c10k-server/core/http"
)

var welcomePage = []byte(`<html><head><title>c10k-server</title></head>` +
	`<body><h1>Welcome to the high-performance HTTP server</h1>` +
	`<p>Event-driven epoll core with a bounded worker pool</p>` +
	`<p>Target: 10,000+ requests/second, 10,000+ concurrent connections</p>` +
	`<p>HTTP/1.1 with keep-alive</p>` +
	`</body></html>`)

// route is the application seam: GET on the index returns the welcome
// page, everything else is "no route".
func route(req *http.Request) []byte {
	if req.Method != "GET" {
		return nil
	}

	if req.Path == "/" || req.Path == "/index.html" {
		return welcomePage
	}

	return nil
}

func main() {
	cfg, err := config.FromArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage: server [port [worker_count]]: %v\n", err)
		os.Exit(1)
	}

	application := app.New(cfg, route)
	if err := application.Run(); err != nil {
		log.Fatalf("server failed to start: %v", err)
	}
}
