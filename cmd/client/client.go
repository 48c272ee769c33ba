package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"time"
)

func main() {
	// 1. CLI Parameter Parsing
	serverAddr := flag.String("server", "127.0.0.1:9001", "Address of the matching server")
	commands := flag.String("cmd", "", "Commands separated by ';' (default: read lines from stdin)")
	wait := flag.Duration("wait", time.Second, "How long to wait for replies after the last command")
	flag.Parse()

	// Connect to Server
	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Fprintf(os.Stderr, "Connected to %s\n", *serverAddr)

	// Start Listening for Reports (Async)
	go readReports(conn)

	var in io.Reader = os.Stdin
	if *commands != "" {
		in = strings.NewReader(strings.ReplaceAll(*commands, ";", "\n"))
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := fmt.Fprintln(conn, line); err != nil {
			log.Fatalf("Failed to send %q: %v", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Error reading commands: %v", err)
	}

	// Give the server time to answer the last commands.
	time.Sleep(*wait)
}

// readReports prints every line the server sends back.
func readReports(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			fmt.Print(line)
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("Connection lost: %v", err)
			}
			os.Exit(0)
		}
	}
}
