package rpcbridge

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		input   string
		command string
		params  map[string]string
	}{
		{"list", "list", map[string]string{}},
		{"download_artist:id=patreon_123", "download_artist", map[string]string{"id": "patreon_123"}},
		{"list:sort_by=status,limit=10", "list", map[string]string{"sort_by": "status", "limit": "10"}},
		{"help:", "help", map[string]string{}},
		{"list:garbage", "list", map[string]string{}},
	}

	for _, tc := range cases {
		command, params := ParseCommand(tc.input)
		if command != tc.command {
			t.Errorf("ParseCommand(%q) command = %q, want %q", tc.input, command, tc.command)
		}
		if !reflect.DeepEqual(params, tc.params) {
			t.Errorf("ParseCommand(%q) params = %v, want %v", tc.input, params, tc.params)
		}
	}
}

func TestServer_RejectsNonSafelistedCommand(t *testing.T) {
	srv, err := Listen("127.0.0.1:0", func(cmd string, params map[string]string) (string, error) {
		return "should not run", nil
	})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)

	client, ok := Dial(srv.Addr(), time.Second)
	if !ok {
		t.Fatal("Dial failed to reach server")
	}
	defer client.Close()

	if _, err := client.Execute("download_artist", map[string]string{"id": "x"}); err == nil {
		t.Error("Execute(download_artist) over rpc: want error, got nil")
	}
}

func TestServer_ExecutesSafelistedCommand(t *testing.T) {
	srv, err := Listen("127.0.0.1:0", func(cmd string, params map[string]string) (string, error) {
		return "ok: " + cmd, nil
	})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)

	client, ok := Dial(srv.Addr(), time.Second)
	if !ok {
		t.Fatal("Dial failed to reach server")
	}
	defer client.Close()

	out, err := client.Execute("list", nil)
	if err != nil {
		t.Fatalf("Execute(list): %v", err)
	}
	if out != "ok: list" {
		t.Errorf("Execute(list) = %q, want %q", out, "ok: list")
	}
}

func TestDial_NoServerReturnsFalse(t *testing.T) {
	if _, ok := Dial("127.0.0.1:1", 100*time.Millisecond); ok {
		t.Error("Dial to unused port: want ok=false")
	}
}
