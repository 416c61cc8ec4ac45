package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ucid-labs/ucid/internal/qrpayload"
)

func newQR() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "format or parse identity QR payloads",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "format <uid> <seed phrase>",
			Short: "print the QR payload of an identity",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), qrpayload.Format(args[0], args[1]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "parse <payload>",
			Short: "split a QR payload into UID and seed phrase",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				creds, err := qrpayload.Parse(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "uid:  %s\nseed: %s\n", creds.UID, creds.SeedPhrase)
				return nil
			},
		},
	)
	return cmd
}
