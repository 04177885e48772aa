/*
Package c10kserver is a high-concurrency HTTP/1.1 server built to sustain
the C10k regime on a Linux-class host.

The core is three tightly coupled pieces:

  - A reactor: one goroutine blocked on an OS readiness notifier
    (epoll on Linux, kqueue on BSD/macOS) with all client sockets armed in
    edge-triggered, one-shot mode.
  - A connection registry owning per-client state (descriptor, receive
    buffer, parse progress, keep-alive flag) under a single mutex.
  - A fixed worker pool that does all reading, parsing, handling and
    writing off the reactor goroutine.

One-shot arming is the load-bearing trick: the notifier never reports a
client descriptor again until the worker that consumed its event re-arms
it, so per-connection work is serialized without per-connection locks.

Quick start:

	package main

	import (
	    "github.com/searchktools/c10k-server/app"
	    "github.com/searchktools/c10k-server/config"
	    "github.com/searchktools/c10k-server/core/http"
	)

	func main() {
	    cfg := config.New()

	    application := app.New(cfg, func(req *http.Request) []byte {
	        if req.Method == "GET" && req.Path == "/" {
	            return []byte("<h1>hello</h1>")
	        }
	        return nil // no route: 404 for GET, 400 otherwise
	    })

	    application.Run()
	}

Modules:

  - app: process lifecycle, signal wiring, graceful shutdown
  - config: defaults, environment overrides, CLI argument parsing
  - core: the server (reactor, registry, request processing)
  - core/http: request decoding and response encoding
  - core/poller: I/O multiplexing (epoll/kqueue)
  - core/pools: worker pool, byte pools, connection recycling, GC tuning
*/
package c10kserver
