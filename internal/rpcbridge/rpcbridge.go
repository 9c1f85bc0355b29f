// Package rpcbridge is the single-instance command surface (§6): a TCP
// server that exposes a safelisted subset of the shell's command handlers
// to a second process started against the same data directory, and a
// client that probes for an owning instance before falling back to
// becoming the owner itself. Grounded on original_source/src/rpc_service.py
// (RPCServer/RPCClient over rpyc), reshaped onto stdlib net + encoding/json
// line-delimited requests rather than a pickling RPC layer, in the
// teacher's preference for small mutex-guarded structs over a framework.
package rpcbridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "rpcbridge")

// DefaultPort is the TCP port the bridge binds when none is configured.
const DefaultPort = 18861

// Safelist is the set of commands a remote peer may invoke over RPC; every
// other command must be run against the owning process's own shell.
var Safelist = map[string]bool{
	"help":  true,
	"list":  true,
	"tasks": true,
}

// Request is one line-delimited JSON command sent to the bridge.
type Request struct {
	Command string            `json:"command"`
	Params  map[string]string `json:"params,omitempty"`
}

// Response is the bridge's reply to one Request.
type Response struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Handler executes one parsed command against the owning process's state,
// returning the text a shell would have printed.
type Handler func(command string, params map[string]string) (string, error)

// ParseCommand splits a "name[:k=v,k=v,...]" command line into its command
// name and parameter map (§6). Malformed "k=v" pairs are skipped rather
// than rejected, matching the command surface's "unknown keys warn, don't
// fail" tolerance.
func ParseCommand(input string) (string, map[string]string) {
	input = strings.TrimSpace(input)
	name, rest, hasParams := strings.Cut(input, ":")
	params := map[string]string{}
	if !hasParams || rest == "" {
		return name, params
	}
	for _, pair := range strings.Split(rest, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		params[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return name, params
}

// Server owns the TCP listener and dispatches safelisted commands to
// Handler. Non-safelisted commands are rejected with an error rather than
// reaching the owning process's full handler map.
type Server struct {
	listener net.Listener
	handler  Handler
}

// Listen binds addr (host:port) and returns a Server ready for Serve.
func Listen(addr string, handler Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("rpcbridge: bind %s: %w", addr, err)
	}
	return &Server{listener: ln, handler: handler}, nil
}

// Addr returns the bound address, useful when addr was ":0" in tests.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Serve accepts connections until ctx is cancelled or the listener closes.
func (s *Server) Serve(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.WithError(err).Warn("accept failed")
				return
			}
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error { return s.listener.Close() }

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Minute))

	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			enc.Encode(Response{Error: fmt.Sprintf("malformed request: %v", err)})
			continue
		}

		if req.Command == "ping" {
			enc.Encode(Response{Output: "pong"})
			continue
		}

		if !Safelist[req.Command] {
			enc.Encode(Response{Error: fmt.Sprintf("command %q is not exposed over rpc", req.Command)})
			continue
		}

		out, err := s.handler(req.Command, req.Params)
		if err != nil {
			enc.Encode(Response{Error: err.Error()})
			continue
		}
		enc.Encode(Response{Output: out})
	}
}

// Client is a thin remote shell connected to an owning Server.
type Client struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

// Dial attempts to connect to addr within timeout. The boolean return is
// false whenever no owning instance is reachable, the caller's signal to
// become the owner itself (§6's "client first attempts to connect; on
// failure, it becomes the owner and binds the port").
func Dial(addr string, timeout time.Duration) (*Client, bool) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, false
	}

	c := &Client{conn: conn, enc: json.NewEncoder(conn), dec: json.NewDecoder(conn)}
	if _, err := c.Execute("ping", nil); err != nil {
		conn.Close()
		return nil, false
	}
	return c, true
}

// Execute runs one command on the owning instance and returns its output.
func (c *Client) Execute(command string, params map[string]string) (string, error) {
	if err := c.enc.Encode(Request{Command: command, Params: params}); err != nil {
		return "", fmt.Errorf("rpcbridge: send: %w", err)
	}
	var resp Response
	if err := c.dec.Decode(&resp); err != nil {
		return "", fmt.Errorf("rpcbridge: receive: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%s", resp.Error)
	}
	return resp.Output, nil
}

// Close releases the client's connection.
func (c *Client) Close() error { return c.conn.Close() }
