package zkstatus

import (
    "errors"
    "net"
    "testing"
    "time"

    "github.com/quorumprobe/quorumprobe/pkg/connstr"
)

func TestParseMode(t *testing.T) {
    cases := []struct{
        in   string
        want Role
    }{
        {"Zookeeper version: 3.8.4\nLatency min/avg/max: 0/0/0\nMode: leader\nNode count: 5\n", RoleLeader},
        {"Mode: follower\n", RoleFollower},
        {"Mode: standalone", RoleStandalone},
    }
    for _, c := range cases {
        got, err := ParseMode([]byte(c.in))
        if err != nil {
            t.Fatalf("ParseMode(%q) error: %v", c.in, err)
        }
        if got != c.want {
            t.Fatalf("ParseMode(%q): got %q want %q", c.in, got, c.want)
        }
    }
}

func TestParseModeMissing(t *testing.T) {
    _, err := ParseMode([]byte("This ZooKeeper instance is not currently serving requests\n"))
    if !errors.Is(err, ErrNoModeLine) {
        t.Fatalf("expected ErrNoModeLine, got %v", err)
    }
}

// fakeStatServer accepts one connection, reads the command and writes resp.
func fakeStatServer(t *testing.T, resp string) connstr.Endpoint {
    t.Helper()
    ln, err := net.Listen("tcp", "127.0.0.1:0")
    if err != nil { t.Fatal(err) }
    t.Cleanup(func() { _ = ln.Close() })
    go func() {
        c, err := ln.Accept()
        if err != nil { return }
        defer c.Close()
        buf := make([]byte, 4)
        if _, err := c.Read(buf); err != nil { return }
        if string(buf) != "stat" { return }
        _, _ = c.Write([]byte(resp))
    }()
    return connstr.Endpoint{Host: "127.0.0.1", Port: ln.Addr().(*net.TCPAddr).Port}
}

func TestModeFromServer(t *testing.T) {
    ep := fakeStatServer(t, "Zookeeper version: 3.8.4\nMode: follower\nNode count: 4\n")
    if got := Mode(ep, 2*time.Second); got != RoleFollower {
        t.Fatalf("got role %q want %q", got, RoleFollower)
    }
}

func TestModeNotServing(t *testing.T) {
    ep := fakeStatServer(t, "This ZooKeeper instance is not currently serving requests\n")
    if got := Mode(ep, 2*time.Second); got != RoleNotServing {
        t.Fatalf("got role %q want %q", got, RoleNotServing)
    }
}

func TestModeDown(t *testing.T) {
    ln, err := net.Listen("tcp", "127.0.0.1:0")
    if err != nil { t.Fatal(err) }
    ep := connstr.Endpoint{Host: "127.0.0.1", Port: ln.Addr().(*net.TCPAddr).Port}
    _ = ln.Close()
    if got := Mode(ep, 500*time.Millisecond); got != RoleDown {
        t.Fatalf("got role %q want %q", got, RoleDown)
    }
}
