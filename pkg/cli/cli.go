package cli

import (
    "context"
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/spf13/cobra"

    "github.com/quorumprobe/quorumprobe/pkg/brokers"
    "github.com/quorumprobe/quorumprobe/pkg/ensemble"
    "github.com/quorumprobe/quorumprobe/pkg/listeners"
    "github.com/quorumprobe/quorumprobe/pkg/observability/metrics"
    "github.com/quorumprobe/quorumprobe/pkg/observability/tracing"
)

// ErrCheckFailed is returned by a readiness subcommand whose check did not
// pass; the process exits 1. Diagnostics have already been logged to stderr.
var ErrCheckFailed = errors.New("check failed")

// NewRootCmd returns the quorumprobe root command with all subcommands
// attached.
func NewRootCmd() *cobra.Command {
    var traceEnable bool
    var shutdown func(context.Context) error
    root := &cobra.Command{
        Use:           "quorumprobe",
        Short:         "readiness checks for coordination ensembles and broker clusters",
        SilenceUsage:  true,
        SilenceErrors: true,
        PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
            metrics.Register()
            var err error
            shutdown, err = tracing.Setup(traceEnable)
            return err
        },
        PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
            if shutdown != nil { return shutdown(context.Background()) }
            return nil
        },
    }
    root.PersistentFlags().BoolVar(&traceEnable, "trace", false, "enable OpenTelemetry stdout tracing (dev)")
    AddAll(root)
    return root
}

// AddAll attaches the readiness subcommands to the provided root command.
func AddAll(root *cobra.Command) {
    root.AddCommand(NewCoordinationReadyCmd())
    root.AddCommand(NewClusterReadyCmd())
    root.AddCommand(NewListenersCmd())
}

// NewCoordinationReadyCmd returns the "coordination-ready" command.
func NewCoordinationReadyCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "coordination-ready <connect_string> <timeout_secs> <retries> <wait_secs>",
        Short: "Wait for the coordination ensemble to be reachable and stable",
        Args:  cobra.ExactArgs(4),
        RunE: func(cmd *cobra.Command, args []string) error {
            timeout, err := seconds(args[1])
            if err != nil { return err }
            retries, err := count(args[2])
            if err != nil { return err }
            wait, err := seconds(args[3])
            if err != nil { return err }
            ok, err := ensemble.CheckReady(cmd.Context(), args[0], ensemble.Options{
                ServiceTimeout: timeout,
                Retries:        retries,
                Wait:           wait,
            })
            if err != nil { return err }
            if !ok { return ErrCheckFailed }
            return nil
        },
    }
}

// NewClusterReadyCmd returns the "cluster-ready" command.
func NewClusterReadyCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "cluster-ready <connect_string> <min_members> <timeout_secs> <retries> <wait_secs>",
        Short: "Wait for the broker cluster to register and become reachable",
        Args:  cobra.ExactArgs(5),
        RunE: func(cmd *cobra.Command, args []string) error {
            minMembers, err := count(args[1])
            if err != nil { return err }
            timeout, err := seconds(args[2])
            if err != nil { return err }
            retries, err := count(args[3])
            if err != nil { return err }
            wait, err := seconds(args[4])
            if err != nil { return err }
            ok, err := brokers.CheckClusterReady(cmd.Context(), args[0], brokers.CheckOptions{
                MinBrokers:     minMembers,
                ServiceTimeout: timeout,
                Retries:        retries,
                Wait:           wait,
            })
            if err != nil { return err }
            if !ok { return ErrCheckFailed }
            return nil
        },
    }
}

// NewListenersCmd returns the "listeners" command. The rewritten string is
// the only thing written to stdout; everything else this tool says goes to
// stderr.
func NewListenersCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "listeners <advertised_listeners>",
        Short: "Rewrite advertised listener hosts to bind all interfaces",
        Args:  cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            fmt.Fprintln(cmd.OutOrStdout(), listeners.Rewrite(args[0]))
            return nil
        },
    }
}

func seconds(s string) (time.Duration, error) {
    n, err := strconv.Atoi(s)
    if err != nil || n < 0 {
        return 0, fmt.Errorf("bad seconds value %q", s)
    }
    return time.Duration(n) * time.Second, nil
}

func count(s string) (int, error) {
    n, err := strconv.Atoi(s)
    if err != nil || n < 0 {
        return 0, fmt.Errorf("bad count value %q", s)
    }
    return n, nil
}
