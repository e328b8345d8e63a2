package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ServeStdio runs the server over newline-delimited JSON-RPC on stdin
// and stdout. It blocks until stdin closes or the context is cancelled.
func ServeStdio(ctx context.Context, s *Server) error {
	return serveLines(ctx, s, os.Stdin, os.Stdout)
}

// serveLines reads one JSON-RPC request per line and writes one response
// per line. Undecodable lines get a parse-error response and the loop
// continues; only transport-level write failures end it.
func serveLines(ctx context.Context, s *Server, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var req MCPRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			if err := encoder.Encode(parseErrorResponse(err)); err != nil {
				return fmt.Errorf("write error response: %w", err)
			}
			continue
		}

		if err := encoder.Encode(s.HandleRequest(ctx, req)); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request line: %w", err)
	}
	return nil
}

// ServeHTTP returns a handler that answers JSON-RPC requests POSTed as
// JSON bodies. Other methods get 405.
func ServeHTTP(s *Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		var mcpReq MCPRequest
		if err := json.NewDecoder(req.Body).Decode(&mcpReq); err != nil {
			_ = json.NewEncoder(w).Encode(parseErrorResponse(err))
			return
		}
		_ = json.NewEncoder(w).Encode(s.HandleRequest(req.Context(), mcpReq))
	})
}

// ServeSSE returns a handler for Server-Sent Events transport: the
// client POSTs one JSON-RPC request and receives the response as an SSE
// event on the same connection.
func ServeSSE(s *Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		var mcpReq MCPRequest
		if err := json.NewDecoder(req.Body).Decode(&mcpReq); err != nil {
			writeSSEEvent(w, flusher, "error", parseErrorResponse(err))
			return
		}
		writeSSEEvent(w, flusher, "message", s.HandleRequest(req.Context(), mcpReq))
	})
}

func parseErrorResponse(err error) MCPResponse {
	return MCPResponse{
		JSONRPC: "2.0",
		Error:   &MCPError{Code: ErrCodeParseError, Message: err.Error()},
	}
}

func writeSSEEvent(w io.Writer, f http.Flusher, event string, data any) {
	payload, _ := json.Marshal(data)
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return
	}
	f.Flush()
}
