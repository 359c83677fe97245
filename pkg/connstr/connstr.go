package connstr

import (
    "fmt"
    "net"
    "strconv"
    "strings"
)

// Endpoint is one coordination or broker node address.
type Endpoint struct {
    Host string
    Port int
}

// Addr returns the endpoint as host:port, IPv6-safe.
func (e Endpoint) Addr() string { return net.JoinHostPort(e.Host, strconv.Itoa(e.Port)) }

func (e Endpoint) String() string { return e.Addr() }

// ConnectString is a parsed zookeeper connect string: the ordered endpoint
// list plus the chroot path the client should root its reads under.
type ConnectString struct {
    Endpoints []Endpoint
    // Chroot is the path from the first "/" onward; "/" when absent.
    Chroot string
}

// Servers returns the endpoints as host:port strings, as expected by the
// zookeeper client.
func (c ConnectString) Servers() []string {
    out := make([]string, 0, len(c.Endpoints))
    for _, e := range c.Endpoints {
        out = append(out, e.Addr())
    }
    return out
}

// Parse splits a connect string of the form
// "host1:port1,host2:port2/optional/chroot" into endpoints and chroot.
// A malformed endpoint token (missing colon, non-numeric port) is a
// configuration bug and returns an error; it is never retried upstream.
func Parse(raw string) (ConnectString, error) {
    cs := ConnectString{Chroot: "/"}
    hosts := raw
    if i := strings.Index(raw, "/"); i >= 0 {
        hosts = raw[:i]
        cs.Chroot = raw[i:]
    }
    if strings.TrimSpace(hosts) == "" {
        return ConnectString{}, fmt.Errorf("connstr: no endpoints in %q", raw)
    }
    for _, tok := range strings.Split(hosts, ",") {
        tok = strings.TrimSpace(tok)
        if tok == "" { continue }
        host, portStr, err := net.SplitHostPort(tok)
        if err != nil {
            return ConnectString{}, fmt.Errorf("connstr: bad endpoint %q: %w", tok, err)
        }
        port, err := strconv.Atoi(portStr)
        if err != nil {
            return ConnectString{}, fmt.Errorf("connstr: bad port in %q: %w", tok, err)
        }
        cs.Endpoints = append(cs.Endpoints, Endpoint{Host: host, Port: port})
    }
    if len(cs.Endpoints) == 0 {
        return ConnectString{}, fmt.Errorf("connstr: no endpoints in %q", raw)
    }
    return cs, nil
}
