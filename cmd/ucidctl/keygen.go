package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ucid-labs/ucid/internal/mnemonic"
	"github.com/ucid-labs/ucid/internal/qrpayload"
	"github.com/ucid-labs/ucid/internal/uid"
)

func newKeygen() *cobra.Command {
	var withQR bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "generate a UID and a checked 12-word seed phrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, err := mnemonic.New().GenerateChecked()
			if err != nil {
				return err
			}
			id := uid.New()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "uid:  %s\nseed: %s\n", id, seed)
			if withQR {
				fmt.Fprintf(out, "qr:   %s\n", qrpayload.Format(id, seed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withQR, "qr", false, "also print the QR payload")
	return cmd
}
