// Command chordctl is an interactive shell for probing a running
// Chord node: it dials the node's peer-facing gRPC endpoint and issues
// the same RPCs nodes use against each other.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"chorddht/internal/domain"
	"chorddht/internal/peerclient"
	"chorddht/internal/transport/grpcpeer"

	"github.com/peterh/liner"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "address of the Chord node to connect to")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	client, err := grpcpeer.Dial(*addr)
	if err != nil {
		log.Fatalf("failed to connect to node at %s: %v", *addr, err)
	}
	defer client.Close()

	currentAddr := *addr
	fmt.Printf("chord interactive client. connected to %s\n", currentAddr)
	fmt.Println("available commands: ping/successor/successors/predecessor/find/use/exit")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt(fmt.Sprintf("chord[%s]> ", currentAddr))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("aborted")
				continue
			}
			break
		}
		line.AppendHistory(input)

		args := strings.Fields(strings.TrimSpace(input))
		if len(args) == 0 {
			continue
		}
		cmd := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)

		switch cmd {
		case "ping":
			start := time.Now()
			err := client.Ping(ctx)
			if err != nil {
				fmt.Printf("ping failed: %v | latency=%s\n", err, time.Since(start))
			} else {
				fmt.Printf("pong | latency=%s\n", time.Since(start))
			}

		case "successor":
			start := time.Now()
			p, err := client.Successor(ctx)
			if err != nil {
				fmt.Printf("successor failed: %v | latency=%s\n", err, time.Since(start))
			} else {
				fmt.Printf("successor: %s (%s) | latency=%s\n", p.ID, p.Addr, time.Since(start))
			}

		case "successors":
			start := time.Now()
			list, err := client.SuccessorList(ctx)
			if err != nil {
				fmt.Printf("successor_list failed: %v | latency=%s\n", err, time.Since(start))
				cancel()
				continue
			}
			fmt.Printf("successor list (%d entries) | latency=%s\n", len(list), time.Since(start))
			for i, p := range list {
				fmt.Printf("  [%d] %s (%s)\n", i, p.ID, p.Addr)
			}

		case "predecessor":
			start := time.Now()
			p, err := client.Predecessor(ctx)
			if err != nil {
				fmt.Printf("predecessor failed: %v | latency=%s\n", err, time.Since(start))
			} else if p.Empty() {
				fmt.Printf("predecessor: unknown | latency=%s\n", time.Since(start))
			} else {
				fmt.Printf("predecessor: %s (%s) | latency=%s\n", p.ID, p.Addr, time.Since(start))
			}

		case "find":
			if len(args) < 2 {
				fmt.Println("usage: find <id-hex>")
				cancel()
				continue
			}
			id, err := parseID(args[1])
			if err != nil {
				fmt.Printf("invalid id: %v\n", err)
				cancel()
				continue
			}
			start := time.Now()
			p, err := client.FindSuccessor(ctx, id)
			if err != nil {
				fmt.Printf("find_successor failed: %v | latency=%s\n", err, time.Since(start))
			} else {
				fmt.Printf("find_successor(%s) = %s (%s) | latency=%s\n", id, p.ID, p.Addr, time.Since(start))
			}

		case "use":
			if len(args) < 2 {
				fmt.Println("usage: use <addr>")
				cancel()
				continue
			}
			newAddr := args[1]
			newClient, err := grpcpeer.Dial(newAddr)
			if err != nil {
				fmt.Printf("failed to connect to %s: %v\n", newAddr, err)
				cancel()
				continue
			}
			_ = client.Close()
			client = newClient
			currentAddr = newAddr
			fmt.Printf("switched connection to %s\n", currentAddr)

		case "exit", "quit":
			fmt.Println("bye!")
			cancel()
			return

		default:
			fmt.Printf("unknown command: %s\n", cmd)
		}

		cancel()
	}
}

var _ peerclient.Client // documents the interface this CLI talks to

func parseID(hex string) (domain.ID, error) {
	return domain.ParseID(hex)
}
