package brokers

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "path"
    "sort"
    "time"

    "github.com/cenkalti/backoff/v4"

    "github.com/quorumprobe/quorumprobe/pkg/connstr"
    "github.com/quorumprobe/quorumprobe/pkg/internal/logutil"
    "github.com/quorumprobe/quorumprobe/pkg/observability/metrics"
    "github.com/quorumprobe/quorumprobe/pkg/observability/tracing"
    "github.com/quorumprobe/quorumprobe/pkg/probe"
)

// idsPath is where brokers register themselves, relative to the chroot.
const idsPath = "/brokers/ids"

// Record is one registered broker. ID comes from the registration znode's
// base name, the rest from its JSON payload. Endpoints is opaque here; it is
// carried for diagnostics only.
type Record struct {
    ID        string          `json:"-"`
    Host      string          `json:"host"`
    Port      int             `json:"port"`
    Endpoints json.RawMessage `json:"endpoints"`
}

// Endpoint returns the broker's address for reachability probing.
func (r Record) Endpoint() connstr.Endpoint {
    return connstr.Endpoint{Host: r.Host, Port: r.Port}
}

// The recoverable error kinds inside one resolution iteration. Each of them
// logs and moves on to the next retry; nothing else can come out of an
// iteration.
var (
    // ErrConnect covers dial failures and any client op failing mid-read.
    ErrConnect = errors.New("brokers: coordination client failure")
    // ErrNotFound marks the chroot or members path not existing yet.
    ErrNotFound = errors.New("brokers: path not present yet")
    // ErrDecode marks an unparsable broker registration payload.
    ErrDecode = errors.New("brokers: bad broker record")
    // ErrTooFew marks a successful read that found fewer brokers than asked.
    ErrTooFew = errors.New("brokers: not enough brokers registered")
)

// Conn is the read-only slice of the coordination client the resolver needs.
// The production implementation is DialZK; tests supply fakes.
type Conn interface {
    Exists(path string) (bool, error)
    Children(path string) ([]string, error)
    Get(path string) ([]byte, error)
    Close()
}

// Dialer opens a fresh client session against the given servers.
type Dialer func(servers []string, sessionTimeout time.Duration) (Conn, error)

// Resolver discovers registered brokers from the coordination data tree.
type Resolver struct {
    // Dial defaults to DialZK.
    Dial Dialer
    // SessionTimeout for each per-iteration client session; defaults to 10s.
    SessionTimeout time.Duration
    // Logger optional.
    Logger *log.Logger
}

// Resolve reads broker registrations until at least minCount are present,
// retrying up to retries iterations with a fixed wait between them. Every
// iteration opens and closes its own client session, so a flaky early
// connection never poisons later attempts. It returns the records found last,
// whether or not the count was reached.
func (r *Resolver) Resolve(ctx context.Context, cs connstr.ConnectString, minCount, retries int, wait time.Duration) (bool, []Record) {
    dial := r.Dial
    if dial == nil { dial = DialZK }
    sessionTimeout := r.SessionTimeout
    if sessionTimeout <= 0 { sessionTimeout = 10 * time.Second }

    var last []Record
    attempt := func() error {
        records, err := readMembers(dial, sessionTimeout, cs)
        if len(records) > 0 { last = records }
        if err != nil {
            metrics.MembershipIterations.WithLabelValues("retry").Inc()
            logutil.Warnf(r.Logger, "membership read failed, will retry: %v", err)
            return err
        }
        metrics.BrokersDiscovered.Set(float64(len(records)))
        if len(records) < minCount {
            metrics.MembershipIterations.WithLabelValues("retry").Inc()
            logutil.Warnf(r.Logger, "found %d broker(s), want at least %d", len(records), minCount)
            return fmt.Errorf("%w: %d < %d", ErrTooFew, len(records), minCount)
        }
        metrics.MembershipIterations.WithLabelValues("ok").Inc()
        return nil
    }

    if retries < 1 { retries = 1 }
    b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(wait), uint64(retries-1)), ctx)
    if err := backoff.Retry(attempt, b); err != nil {
        return false, last
    }
    return true, last
}

// readMembers performs one full membership read on a fresh client session.
// The session is closed on every exit path.
func readMembers(dial Dialer, sessionTimeout time.Duration, cs connstr.ConnectString) ([]Record, error) {
    conn, err := dial(cs.Servers(), sessionTimeout)
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrConnect, err)
    }
    defer conn.Close()

    // The chroot may not have been created yet by the brokers' tooling.
    if cs.Chroot != "/" {
        ok, err := conn.Exists(cs.Chroot)
        if err != nil {
            return nil, fmt.Errorf("%w: exists %s: %v", ErrConnect, cs.Chroot, err)
        }
        if !ok {
            return nil, fmt.Errorf("%w: chroot %s", ErrNotFound, cs.Chroot)
        }
    }

    members := path.Join(cs.Chroot, idsPath)
    ok, err := conn.Exists(members)
    if err != nil {
        return nil, fmt.Errorf("%w: exists %s: %v", ErrConnect, members, err)
    }
    if !ok {
        return nil, fmt.Errorf("%w: %s", ErrNotFound, members)
    }

    ids, err := conn.Children(members)
    if err != nil {
        return nil, fmt.Errorf("%w: children %s: %v", ErrConnect, members, err)
    }
    sort.Strings(ids)

    records := make([]Record, 0, len(ids))
    for _, id := range ids {
        data, err := conn.Get(path.Join(members, id))
        if err != nil {
            return nil, fmt.Errorf("%w: get %s: %v", ErrConnect, id, err)
        }
        var rec Record
        if err := json.Unmarshal(data, &rec); err != nil {
            return nil, fmt.Errorf("%w: %s: %v", ErrDecode, id, err)
        }
        rec.ID = id
        records = append(records, rec)
    }
    return records, nil
}

// CheckOptions configures CheckClusterReady.
type CheckOptions struct {
    // MinBrokers is the registration count the cluster must reach.
    MinBrokers int
    // ServiceTimeout bounds each broker reachability probe.
    ServiceTimeout time.Duration
    // Retries and Wait bound the membership resolution loop.
    Retries int
    Wait    time.Duration
    // Logger optional.
    Logger *log.Logger
    // Dial overrides the coordination client dialer (tests).
    Dial Dialer
}

// CheckClusterReady resolves broker membership from raw and then probes every
// discovered broker for TCP reachability. The returned error is non-nil only
// for a malformed connect string.
func CheckClusterReady(ctx context.Context, raw string, opts CheckOptions) (bool, error) {
    ctx, end := tracing.StartSpan(ctx, "brokers.CheckClusterReady")
    defer end()

    cs, err := connstr.Parse(raw)
    if err != nil {
        return false, err
    }

    r := &Resolver{Dial: opts.Dial, Logger: opts.Logger}
    found, records := r.Resolve(ctx, cs, opts.MinBrokers, opts.Retries, opts.Wait)
    if !found {
        logutil.Errorf(opts.Logger, "expected %d broker(s), found %d", opts.MinBrokers, len(records))
        return false, nil
    }

    ready := true
    for _, rec := range records {
        if !probe.WaitForService(rec.Endpoint(), opts.ServiceTimeout) {
            logutil.Errorf(opts.Logger, "broker %s at %s is not reachable", rec.ID, rec.Endpoint())
            ready = false
        }
    }
    if ready {
        logutil.Infof(opts.Logger, "cluster of %d broker(s) is ready", len(records))
    }
    return ready, nil
}
