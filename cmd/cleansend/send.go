package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/york-fs/cleansend/internal/config"
	"github.com/york-fs/cleansend/internal/logging"
	"github.com/york-fs/cleansend/internal/profile"
	"github.com/york-fs/cleansend/internal/sim"
	"github.com/york-fs/cleansend/internal/transport"
)

var (
	sendPort        string
	sendBaud        int
	sendRate        float64
	sendProfile     string
	sendDuration    time.Duration
	sendConfigPath  string
	sendSchemaPath  string
	sendLogFile     string
	sendSeed        int64
	sendStatusEvery time.Duration
	sendSoftErrors  bool
	sendTUI         bool
	sendQuiet       bool
	sendVerbose     bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Stream telemetry frames to a serial port",
	Long:  "send connects to a serial port and emits APPS, BMS and inverter frames round-robin at a fixed rate.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := sendConfig(cmd)
		if err != nil {
			return err
		}

		logger, closeLog, err := logging.New(sendLogOptions(cfg))
		if err != nil {
			return err
		}
		defer closeLog()

		portName, err := resolvePort(cmd, cfg.Port)
		if err != nil {
			return err
		}

		writer, cleanup, err := newSinks(logger, cfg.LogFile, sinkModes{tui: sendTUI, quiet: sendQuiet}, sim.StreamInfo{
			Scenario: profile.ByName(cfg.MissionProfile).Name,
			Port:     portName,
			Baud:     cfg.Baud,
			RateHz:   cfg.RateHz,
			Duration: secondsToDuration(cfg.DurationS),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logger)

		s := sim.New(transport.Dial(portName, cfg.Baud), writer, sim.Options{
			Profile:     cfg.MissionProfile,
			RateHz:      cfg.RateHz,
			Duration:    secondsToDuration(cfg.DurationS),
			StatusEvery: secondsToDuration(cfg.StatusEveryS),
			SoftErrors:  cfg.SoftErrors,
			Seed:        cfg.Seed,
		})
		rep, runErr := s.Run(ctx)
		cleanup()

		fmt.Fprintf(cmd.OutOrStdout(), "stream %s %s: %d packets, %d bytes, %.1fs, odometer %.3f km, energy %.2f Wh\n",
			rep.StreamID, rep.State, rep.Packets, rep.Bytes, rep.Elapsed.Seconds(), rep.OdometerKM, rep.EnergyWh)

		if runErr != nil {
			var openErr *transport.OpenError
			if errors.As(runErr, &openErr) {
				if ports, lerr := transport.List(); lerr == nil && len(ports) > 0 {
					return fmt.Errorf("%w\navailable ports:\n%s", runErr, formatPorts(ports))
				}
			}
			return runErr
		}
		return nil
	},
}

// sendConfig merges defaults, the optional config file, and explicit
// flags, in that order.
func sendConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if sendConfigPath != "" {
		loaded, err := config.Load(sendConfigPath, sendSchemaPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = sendPort
	}
	if flags.Changed("baud") {
		cfg.Baud = sendBaud
	}
	if flags.Changed("rate") {
		cfg.RateHz = sendRate
	}
	if flags.Changed("mission-profile") {
		cfg.MissionProfile = sendProfile
	}
	if flags.Changed("duration") {
		cfg.DurationS = sendDuration.Seconds()
	}
	if flags.Changed("log-file") {
		cfg.LogFile = sendLogFile
	}
	if flags.Changed("seed") {
		cfg.Seed = sendSeed
	}
	if flags.Changed("status-every") {
		cfg.StatusEveryS = sendStatusEvery.Seconds()
	}
	if flags.Changed("soft-errors") {
		cfg.SoftErrors = sendSoftErrors
	}
	return &cfg, nil
}

// sendLogOptions routes text logs away from the terminal when the TUI
// owns it or --quiet is set. With a log file configured they land in a
// sibling .log file, otherwise they are discarded.
func sendLogOptions(cfg *config.Config) logging.Options {
	opts := logging.Options{Verbose: sendVerbose}
	if sendQuiet || sendTUI {
		if cfg.LogFile != "" {
			opts.File = cfg.LogFile + ".log"
		} else {
			opts.Quiet = true
		}
	}
	return opts
}

// resolvePort picks the serial device: the configured name if any,
// otherwise an interactive selection when stdin is a terminal.
func resolvePort(cmd *cobra.Command, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	ports, err := transport.List()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", errors.New("no serial ports found, pass --port")
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no port configured, available:\n%s", formatPorts(ports))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available ports:")
	for i, p := range ports {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, p)
	}
	fmt.Fprint(out, "Port number: ")
	var choice int
	if _, err := fmt.Scanln(&choice); err != nil {
		return "", fmt.Errorf("read port selection: %w", err)
	}
	if choice < 1 || choice > len(ports) {
		return "", fmt.Errorf("port selection %d out of range", choice)
	}
	return ports[choice-1].Name, nil
}

func formatPorts(ports []transport.PortInfo) string {
	var b strings.Builder
	for i, p := range ports {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %s", p)
	}
	return b.String()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func init() {
	sendCmd.Flags().StringVarP(&sendPort, "port", "p", "", "Serial port device (prompts when omitted on a terminal)")
	sendCmd.Flags().IntVarP(&sendBaud, "baud", "b", 57600, "Serial baud rate")
	sendCmd.Flags().Float64VarP(&sendRate, "rate", "r", 10, "Packets per second")
	sendCmd.Flags().StringVarP(&sendProfile, "mission-profile", "m", profile.DefaultName, "Mission profile ("+strings.Join(profile.Names(), ", ")+")")
	sendCmd.Flags().DurationVarP(&sendDuration, "duration", "d", 0, "How long to stream (0 = until interrupted)")
	sendCmd.Flags().StringVar(&sendConfigPath, "config", "", "Path to stream configuration YAML")
	sendCmd.Flags().StringVar(&sendSchemaPath, "schema", "schemas/cleansend.cue", "Path to CUE schema file")
	sendCmd.Flags().StringVar(&sendLogFile, "log-file", "", "Path to export packet diagnostics (JSONL)")
	sendCmd.Flags().Int64Var(&sendSeed, "seed", 0, "RNG seed (0 = time-seeded)")
	sendCmd.Flags().DurationVar(&sendStatusEvery, "status-every", 30*time.Second, "Status row cadence")
	sendCmd.Flags().BoolVar(&sendSoftErrors, "soft-errors", false, "Retry failed writes next tick instead of stopping")
	sendCmd.Flags().BoolVar(&sendTUI, "tui", false, "Render a live dashboard instead of log lines")
	sendCmd.Flags().BoolVar(&sendQuiet, "quiet", false, "Suppress log output")
	sendCmd.Flags().BoolVarP(&sendVerbose, "verbose", "v", false, "Enable debug logging")
}
