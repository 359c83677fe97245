package brokers

import (
    "time"

    "github.com/go-zookeeper/zk"
)

// zkConn adapts *zk.Conn to the read-only Conn surface the resolver uses.
type zkConn struct {
    c *zk.Conn
}

func (z zkConn) Exists(path string) (bool, error) {
    ok, _, err := z.c.Exists(path)
    return ok, err
}

func (z zkConn) Children(path string) ([]string, error) {
    children, _, err := z.c.Children(path)
    return children, err
}

func (z zkConn) Get(path string) ([]byte, error) {
    data, _, err := z.c.Get(path)
    return data, err
}

func (z zkConn) Close() { z.c.Close() }

// DialZK opens a zookeeper session against servers. The session logger is
// silenced so client chatter does not pollute the diagnostic output.
func DialZK(servers []string, sessionTimeout time.Duration) (Conn, error) {
    c, _, err := zk.Connect(servers, sessionTimeout, zk.WithLogInfo(false))
    if err != nil {
        return nil, err
    }
    return zkConn{c: c}, nil
}
