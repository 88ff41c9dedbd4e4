package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/interrupt-sim/interrupt-sim/sim"
	"github.com/interrupt-sim/interrupt-sim/sim/output"
	"github.com/interrupt-sim/interrupt-sim/sim/trace"
)

var (
	// CLI flags for the run command
	logLevel    string // Log verbosity level
	tracePath   string // Trace file to replay
	outputPath  string // Execution log file
	sqlitePath  string // Optional SQLite database for the execution log
	useSQLite   bool   // Record the run in SQLite even without --sqlite
	showSummary bool   // Print run metrics after the log is written
	runDevices  deviceSource
	runCosts    costFlags
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "interrupt-sim",
	Short: "Discrete-event simulator for CPU interrupt and syscall servicing",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd replays a trace and writes the execution log
var runCmd = &cobra.Command{
	Use:   "run [trace vector_table device_table]",
	Short: "Replay a trace and write the execution log",
	Long: "Replay a trace of CPU, SYSCALL and END_IO events against the device table and write " +
		"one \"<start>, <duration>, <description>\" line per micro-operation.",
	Args: cobra.MaximumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		// Positional form mirrors: interrupts <trace> <vector_table> <device_table>
		if len(args) > 0 {
			tracePath = args[0]
		}
		if len(args) == 3 {
			runDevices.VectorsPath, runDevices.DelaysPath = args[1], args[2]
		} else if len(args) == 2 {
			logrus.Fatalf("positional form needs trace, vector table and device table")
		}
		if tracePath == "" {
			logrus.Fatalf("Trace file not provided. Exiting simulation.")
		}

		costs, err := runCosts.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		table, err := runDevices.load()
		if err != nil {
			logrus.Fatalf("unable to load device table; %v", err)
		}

		f, err := os.Open(tracePath)
		if err != nil {
			logrus.Fatalf("unable to open trace; %v", err)
		}
		defer func() { _ = f.Close() }()

		sinks := []output.Sink{output.NewTextSink(outputPath)}
		if useSQLite || sqlitePath != "" {
			db, err := output.NewSQLiteSink(sqlitePath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Recording run %s in %s", db.RunID(), db.Path())
			sinks = append(sinks, db)
		}

		logrus.Infof("Starting simulation: %d devices, costs=%+v", table.Len(), costs)
		s := sim.NewSimulator(table, costs)
		flusher := output.NewFlusher(s.Log, sinks...)
		atexit.Register(flusher.FlushOnExit)

		if err := replay(s, trace.NewReader(f)); err != nil {
			// Entries of the events completed so far are still written by the exit handler.
			logrus.Errorf("Simulation aborted: %v (log truncated after %d entries at t=%d)", err, s.Log.Len(), s.Clock)
			atexit.Exit(1)
		}
		if err := flusher.Flush(); err != nil {
			logrus.Fatalf("%v", err)
		}
		if showSummary {
			s.Metrics.Print(os.Stdout)
		}
		logrus.Info("Simulation complete.")
	},
}

// replay runs the trace through the simulator and records how many lines the reader consumed and skipped.
func replay(s *sim.Simulator, r *trace.Reader) error {
	err := s.Run(r)
	s.Metrics.TraceLines = r.Lines()
	s.Metrics.SkippedLines = r.Skipped()
	if r.Skipped() > 0 {
		logrus.Warnf("%d trace lines were not recognized and were skipped", r.Skipped())
	}
	return err
}

// printDevices writes the device table with each device's vector position and service cost.
func printDevices(w io.Writer, table *sim.DeviceTable, costs sim.Costs) {
	fmt.Fprintf(w, "%-6s %-12s %-10s %-10s %s\n", "ID", "ISR", "IO_DELAY", "VECTOR", "SERVICE_MS")
	for _, d := range table.Devices() {
		fmt.Fprintf(w, "%-6d %-12s %-10d 0x%04X     %d\n",
			d.ID, d.ISRAddress, d.IODelay, costs.VectorPosition(d.ID), costs.Overhead()+d.IODelay)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&tracePath, "trace", "", "Trace file (one \"ACTIVITY, operand\" per line)")
	runCmd.Flags().StringVar(&runDevices.VectorsPath, "vectors", "", "Vector table file (one ISR address per line)")
	runCmd.Flags().StringVar(&runDevices.DelaysPath, "devices", "", "Device table file (one I/O delay in ms per line)")
	runCmd.Flags().StringVar(&runDevices.DeviceConfig, "device-config", "", "YAML device table (alternative to --vectors/--devices)")
	runCmd.Flags().StringVar(&outputPath, "output", output.DefaultExecutionFile, "Execution log output file")
	runCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Also record the execution log in this SQLite database")
	runCmd.Flags().BoolVar(&useSQLite, "record", false, "Record the run in a new SQLite database named after the run id")
	runCmd.Flags().BoolVar(&showSummary, "summary", false, "Print run metrics to stdout")
	runCosts.register(runCmd.Flags())

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(devicesCmd)
}
