package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/york-fs/cleansend/internal/sim"
	"github.com/york-fs/cleansend/internal/transport"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPort      string
	replayBaud      int
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a packet log over a serial port",
	Long:  "replay re-encodes frames from a JSONL packet log and writes them out, pacing by the logged timestamps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var port transport.Port
		if replayPrintOnly {
			port = &hexDumpPort{w: cmd.OutOrStdout()}
		} else {
			if replayPort == "" {
				return fmt.Errorf("--port required unless --print-only")
			}
			p, err := transport.OpenSerial(replayPort, replayBaud)
			if err != nil {
				return err
			}
			defer p.Close()
			port = p
		}
		sent, err := sim.ReplayLogFile(replayInput, port, replaySpeed)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "replayed %d packets\n", sent)
		return nil
	},
}

// hexDumpPort prints frames instead of writing them to a device.
type hexDumpPort struct {
	w io.Writer
	n int
}

func (h *hexDumpPort) Write(b []byte) (int, error) {
	h.n++
	fmt.Fprintf(h.w, "[%04d] % x\n", h.n, b)
	return len(b), nil
}

func (h *hexDumpPort) Flush() error { return nil }
func (h *hexDumpPort) Close() error { return nil }

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to JSONL packet log")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 = no pacing)")
	replayCmd.Flags().StringVarP(&replayPort, "port", "p", "", "Serial port device")
	replayCmd.Flags().IntVarP(&replayBaud, "baud", "b", 57600, "Serial baud rate")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Hex-dump frames to STDOUT instead of writing to a port")
	replayCmd.MarkFlagRequired("input")
}
