package zkstatus

import (
    "bufio"
    "bytes"
    "errors"
    "net"
    "strings"
    "time"

    "github.com/quorumprobe/quorumprobe/pkg/connstr"
    "github.com/quorumprobe/quorumprobe/pkg/observability/metrics"
)

// Role is the role a coordination node reports in its status response. The
// set is open-ended on the wire; the evaluator only gives meaning to the
// constants below.
type Role string

const (
    RoleLeader     Role = "leader"
    RoleFollower   Role = "follower"
    RoleStandalone Role = "standalone"
    // RoleNotServing marks a node that answered but reported no mode,
    // e.g. while still syncing or when quorum is lost.
    RoleNotServing Role = "not serving"
    // RoleDown marks a node the raw status query could not talk to.
    RoleDown Role = "down"
)

// The four-letter status command and the response read ceiling are fixed by
// deployed zookeeper servers; both must stay exactly as-is.
const (
    statCmd        = "stat"
    readLimit      = 1048
    modeLinePrefix = "Mode: "
)

// ErrNoModeLine reports a status response that contained no mode line.
var ErrNoModeLine = errors.New("zkstatus: no mode line in response")

// ParseMode scans a raw status response for a "Mode: " line and returns the
// reported role. A response without one yields ErrNoModeLine.
func ParseMode(resp []byte) (Role, error) {
    s := bufio.NewScanner(bytes.NewReader(resp))
    for s.Scan() {
        line := s.Text()
        if strings.HasPrefix(line, modeLinePrefix) {
            return Role(strings.TrimSpace(strings.TrimPrefix(line, modeLinePrefix))), nil
        }
    }
    return "", ErrNoModeLine
}

// Mode queries ep with the raw status command and returns the node's role.
// Socket failures map to RoleDown and a mode-less response to RoleNotServing;
// it never returns an error because both states are ordinary answers for a
// node that is still starting up.
//
// The response is taken from a single bounded read: the status payload is
// small and emitted promptly, so no framed read loop is attempted.
func Mode(ep connstr.Endpoint, timeout time.Duration) Role {
    role := query(ep, timeout)
    metrics.StatusQueries.WithLabelValues(string(role)).Inc()
    return role
}

func query(ep connstr.Endpoint, timeout time.Duration) Role {
    conn, err := net.DialTimeout("tcp", ep.Addr(), timeout)
    if err != nil {
        return RoleDown
    }
    defer conn.Close()
    _ = conn.SetDeadline(time.Now().Add(timeout))
    if _, err := conn.Write([]byte(statCmd)); err != nil {
        return RoleDown
    }
    buf := make([]byte, readLimit)
    n, err := conn.Read(buf)
    if err != nil {
        return RoleDown
    }
    role, err := ParseMode(buf[:n])
    if err != nil {
        return RoleNotServing
    }
    return role
}
