package ensemble

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/cenkalti/backoff/v4"

    "github.com/quorumprobe/quorumprobe/pkg/connstr"
    "github.com/quorumprobe/quorumprobe/pkg/internal/logutil"
    "github.com/quorumprobe/quorumprobe/pkg/observability/metrics"
    "github.com/quorumprobe/quorumprobe/pkg/observability/tracing"
    "github.com/quorumprobe/quorumprobe/pkg/probe"
    "github.com/quorumprobe/quorumprobe/pkg/zkstatus"
)

// ErrNotReady reports that the ensemble never reached a healthy role
// distribution within the configured retries.
var ErrNotReady = errors.New("ensemble: not ready")

// Ready decides ensemble health from a full role snapshot. It is pure: the
// caller retries with a fresh snapshot, it never patches individual roles.
//
// A single node is healthy only as standalone. A multi-node ensemble is
// healthy only with exactly one leader and every other node following; any
// unexpected role falls out of the follower-count equality and fails closed.
func Ready(roles []zkstatus.Role) bool {
    for _, r := range roles {
        if r == zkstatus.RoleDown || r == zkstatus.RoleNotServing {
            return false
        }
    }
    if len(roles) == 1 {
        return roles[0] == zkstatus.RoleStandalone
    }
    leaders, followers := 0, 0
    for _, r := range roles {
        switch r {
        case zkstatus.RoleLeader:
            leaders++
        case zkstatus.RoleFollower:
            followers++
        }
    }
    return leaders == 1 && followers == len(roles)-1
}

// Options configures CheckReady.
type Options struct {
    // ServiceTimeout bounds the per-endpoint reachability wait and the raw
    // status query deadline.
    ServiceTimeout time.Duration
    // Retries is the number of full role-snapshot evaluations attempted.
    Retries int
    // Wait is the fixed delay between snapshot attempts.
    Wait time.Duration
    // Logger optional; diagnostics go to the default (stderr) logger when nil.
    Logger *log.Logger
}

// CheckReady probes every endpoint in raw for TCP reachability, then polls
// role snapshots until the ensemble evaluates healthy or retries exhaust.
// The returned error is non-nil only for a malformed connect string; an
// unhealthy ensemble is reported as (false, nil) with diagnostics logged.
func CheckReady(ctx context.Context, raw string, opts Options) (bool, error) {
    ctx, end := tracing.StartSpan(ctx, "ensemble.CheckReady")
    defer end()

    cs, err := connstr.Parse(raw)
    if err != nil {
        return false, err
    }

    // Unreachable nodes fail the whole check before any role query: a node
    // that cannot accept a TCP connection can never report a mode.
    for _, ep := range cs.Endpoints {
        if !probe.WaitForService(ep, opts.ServiceTimeout) {
            logutil.Errorf(opts.Logger, "cannot connect to %s within %s", ep, opts.ServiceTimeout)
            return false, nil
        }
    }

    var roles []zkstatus.Role
    attempt := func() error {
        roles = roles[:0]
        for _, ep := range cs.Endpoints {
            roles = append(roles, zkstatus.Mode(ep, opts.ServiceTimeout))
        }
        if !Ready(roles) {
            metrics.EnsembleChecks.WithLabelValues("not_ready").Inc()
            return ErrNotReady
        }
        metrics.EnsembleChecks.WithLabelValues("ready").Inc()
        return nil
    }

    retries := opts.Retries
    if retries < 1 { retries = 1 }
    b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.Wait), uint64(retries-1)), ctx)
    if err := backoff.Retry(attempt, b); err != nil {
        logutil.Errorf(opts.Logger, "ensemble did not stabilize after %d attempts", retries)
        for i, ep := range cs.Endpoints {
            logutil.Errorf(opts.Logger, "  %s reported %q", ep, roles[i])
        }
        return false, nil
    }
    logutil.Infof(opts.Logger, "ensemble of %d node(s) is ready", len(cs.Endpoints))
    return true, nil
}
