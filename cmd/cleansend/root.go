package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cleansend",
	Short: "EV telemetry bench streamer",
	Long:  "cleansend generates Formula Student vehicle telemetry and streams it over a serial port as length-free protobuf frames.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(replayCmd)
}
