package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"gato/pkg/http"
	"gato/pkg/logging"
	"gato/pkg/router"
	"gato/pkg/server"
)

func main() {
	fmt.Println("=== Gato Engine Demo ===")
	fmt.Println()

	// Demo 1: Status registry
	fmt.Println("1. Status Registry:")
	for _, code := range []int{200, 404, 418, 505} {
		fmt.Printf("   %d: %s\n", code, http.StatusText(code))
	}
	fmt.Println()

	// Demo 2: Request parsing
	fmt.Println("2. Request Parsing:")
	raw := "POST /echo?lang=go HTTP/1.1\r\nHost: localhost\r\nX-Test:value\r\n\r\nhello"
	req, err := http.ParseRequest([]byte(raw))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("   Method: %s\n", req.Method)
	fmt.Printf("   Path: %s\n", req.Path())
	fmt.Printf("   Query lang: %s\n", req.Query().Get("lang"))
	fmt.Printf("   X-Test: %s\n", req.Header.Get("X-Test"))
	fmt.Printf("   Body: %s\n", req.Body)
	fmt.Println()

	// Demo 3: Malformed input
	fmt.Println("3. Malformed Input:")
	if _, err := http.ParseRequest([]byte("GET / HTTP/1.1")); err != nil {
		fmt.Printf("   %v\n", err)
	}
	fmt.Println()

	// Demo 4: Response serialization
	fmt.Println("4. Response Serialization:")
	resp := http.Text(http.StatusOK, "Hello, World!")
	fmt.Printf("%q\n", resp.Bytes())
	fmt.Println()

	// Demo 5: Live round trip
	fmt.Println("5. Live Round Trip:")
	if err := roundTrip(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println()
	fmt.Println("=== Demo Complete ===")
}

// roundTrip serves one request on a loopback port and prints the raw reply.
func roundTrip() error {
	logger, err := logging.New("warn", os.Stderr)
	if err != nil {
		return err
	}

	r := router.New()
	r.GET("/api/time", http.HandlerFunc(func(req *http.Request) *http.Response {
		return http.JSON(http.StatusOK, map[string]string{"time": time.Now().Format(time.RFC3339)})
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := server.New(server.DefaultConfig(), r, logger)
	go srv.Serve(ln)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "GET /api/time HTTP/1.1\r\nHost: demo\r\n\r\n"); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	fmt.Printf("%s\n", reply)
	return nil
}
