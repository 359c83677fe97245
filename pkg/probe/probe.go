package probe

import (
    "context"
    "net"
    "time"

    "github.com/cenkalti/backoff/v4"

    "github.com/quorumprobe/quorumprobe/pkg/connstr"
    "github.com/quorumprobe/quorumprobe/pkg/observability/metrics"
)

// pollInterval is the fixed delay between connect attempts. The prober does
// not grow the interval: startup waits are short and a 1s cadence keeps the
// worst-case overshoot bounded.
const pollInterval = 1 * time.Second

// WaitForService blocks until a TCP connect to ep succeeds, retrying once per
// second, and reports whether it succeeded before timeout elapsed. All
// connect failures (DNS, refused, timed out) are treated the same: not ready
// yet. It never returns an error.
func WaitForService(ep connstr.Endpoint, timeout time.Duration) bool {
    ctx, cancel := context.WithTimeout(context.Background(), timeout)
    defer cancel()

    attempt := func() error {
        d := net.Dialer{Timeout: pollInterval}
        conn, err := d.DialContext(ctx, "tcp", ep.Addr())
        if err != nil {
            return err
        }
        _ = conn.Close()
        return nil
    }

    b := backoff.WithContext(backoff.NewConstantBackOff(pollInterval), ctx)
    if err := backoff.Retry(attempt, b); err != nil {
        metrics.ProbeAttempts.WithLabelValues("unreachable").Inc()
        return false
    }
    metrics.ProbeAttempts.WithLabelValues("reachable").Inc()
    return true
}
