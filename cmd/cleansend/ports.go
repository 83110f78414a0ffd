package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/york-fs/cleansend/internal/transport"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long:  "ports enumerates serial devices, with USB vendor and product detail where available.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := transport.List()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no serial ports found")
			return nil
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}
