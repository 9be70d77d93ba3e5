package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bilimux/internal/hwaccel"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report the hardware acceleration the multiplexer would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			profile := hwaccel.NewProber(logger).Detect(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Vendor:  %s\n", profile.Vendor)
			if profile.Accelerated() {
				fmt.Fprintf(out, "Hwaccel: %s\n", profile.AccelFlag)
			} else {
				fmt.Fprintln(out, "Hwaccel: (none)")
			}
			fmt.Fprintf(out, "Codec:   %s\n", profile.Encoder)
			return nil
		},
	}
}
