//go:build integration

package integration

import (
    "bytes"
    "fmt"
    "net"
    "strings"
    "testing"

    probecli "github.com/quorumprobe/quorumprobe/pkg/cli"
)

// statServer answers the raw four-letter stat command with the given mode.
func statServer(t *testing.T, mode string) string {
    t.Helper()
    ln, err := net.Listen("tcp", "127.0.0.1:0")
    if err != nil { t.Fatal(err) }
    t.Cleanup(func() { _ = ln.Close() })
    go func() {
        for {
            c, err := ln.Accept()
            if err != nil { return }
            go func(c net.Conn) {
                defer c.Close()
                buf := make([]byte, 4)
                if _, err := c.Read(buf); err != nil { return }
                fmt.Fprintf(c, "Zookeeper version: 3.8.4\nMode: %s\nNode count: 4\n", mode)
            }(c)
        }
    }()
    return ln.Addr().String()
}

func runCLI(t *testing.T, args ...string) error {
    t.Helper()
    root := probecli.NewRootCmd()
    var out bytes.Buffer
    root.SetOut(&out)
    root.SetErr(&out)
    root.SetArgs(args)
    return root.Execute()
}

func TestCoordinationReady_HealthyEnsemble(t *testing.T) {
    raw := strings.Join([]string{statServer(t, "leader"), statServer(t, "follower"), statServer(t, "follower")}, ",")
    if err := runCLI(t, "coordination-ready", raw, "2", "3", "1"); err != nil {
        t.Fatalf("expected ready, got %v", err)
    }
}

func TestCoordinationReady_Standalone(t *testing.T) {
    if err := runCLI(t, "coordination-ready", statServer(t, "standalone"), "2", "3", "1"); err != nil {
        t.Fatalf("expected ready, got %v", err)
    }
}

func TestCoordinationReady_UnreachableNodeFailsFast(t *testing.T) {
    dead, err := net.Listen("tcp", "127.0.0.1:0")
    if err != nil { t.Fatal(err) }
    deadAddr := dead.Addr().String()
    _ = dead.Close()

    raw := strings.Join([]string{statServer(t, "leader"), deadAddr, statServer(t, "follower")}, ",")
    if err := runCLI(t, "coordination-ready", raw, "1", "30", "1"); err == nil {
        t.Fatal("expected failure with an unreachable node")
    }
}

func TestCoordinationReady_LeaderlessEnsembleFails(t *testing.T) {
    raw := strings.Join([]string{statServer(t, "follower"), statServer(t, "follower"), statServer(t, "follower")}, ",")
    if err := runCLI(t, "coordination-ready", raw, "1", "2", "0"); err == nil {
        t.Fatal("expected failure for a leaderless ensemble")
    }
}
