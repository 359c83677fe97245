package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    ProbeAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "quorumprobe",
        Name:      "probe_attempts_total",
        Help:      "TCP reachability probe attempts by result",
    }, []string{"result"})

    StatusQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "quorumprobe",
        Name:      "status_queries_total",
        Help:      "Raw status queries by reported node role",
    }, []string{"role"})

    EnsembleChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "quorumprobe",
        Name:      "ensemble_checks_total",
        Help:      "Ensemble readiness evaluations by result",
    }, []string{"result"})

    MembershipIterations = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "quorumprobe",
        Name:      "membership_iterations_total",
        Help:      "Broker membership resolution iterations by result",
    }, []string{"result"})

    BrokersDiscovered = prometheus.NewGauge(prometheus.GaugeOpts{
        Namespace: "quorumprobe",
        Name:      "brokers_discovered",
        Help:      "Number of broker records found by the last membership read",
    })
)

// Register registers metrics into the default Prometheus registry (idempotent).
func Register() {
    once.Do(func() {
        prometheus.MustRegister(ProbeAttempts)
        prometheus.MustRegister(StatusQueries)
        prometheus.MustRegister(EnsembleChecks)
        prometheus.MustRegister(MembershipIterations)
        prometheus.MustRegister(BrokersDiscovered)
    })
}
