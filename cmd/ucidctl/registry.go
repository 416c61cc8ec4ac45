package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ucid-labs/ucid/internal/registry"
)

func newRegistry() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "inspect and maintain the credential registry",
	}
	cmd.AddCommand(
		registryCommand("list", "print every registered UID", cobra.NoArgs,
			func(ctx context.Context, cmd *cobra.Command, svc *registry.Service, _ []string) error {
				uids, err := svc.ListAll(ctx)
				if err != nil {
					return err
				}
				for _, id := range uids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			}),
		registryCommand("dump", "print the raw registry mapping as JSON", cobra.NoArgs,
			func(ctx context.Context, cmd *cobra.Command, svc *registry.Service, _ []string) error {
				records, err := svc.DumpAll(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}),
		registryCommand("clear", "delete every identity", cobra.NoArgs,
			func(ctx context.Context, cmd *cobra.Command, svc *registry.Service, _ []string) error {
				if _, err := svc.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "registry cleared")
				return nil
			}),
		registryCommand("register <uid> <seed phrase>", "register an identity with no wallets", cobra.ExactArgs(2),
			func(ctx context.Context, cmd *cobra.Command, svc *registry.Service, args []string) error {
				ok, err := svc.Register(ctx, args[0], args[1], nil)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("uid %s is already registered", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", args[0])
				return nil
			}),
		registryCommand("exists <uid>", "report whether a UID is registered", cobra.ExactArgs(1),
			func(ctx context.Context, cmd *cobra.Command, svc *registry.Service, args []string) error {
				ok, err := svc.Exists(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			}),
		registryCommand("verify <uid> <seed phrase>", "check a seed phrase against a UID", cobra.ExactArgs(2),
			func(ctx context.Context, cmd *cobra.Command, svc *registry.Service, args []string) error {
				ok, err := svc.Verify(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			}),
		registryCommand("rewrite <uid>", "re-encode the stored wallet list of a UID", cobra.ExactArgs(1),
			func(ctx context.Context, cmd *cobra.Command, svc *registry.Service, args []string) error {
				ok, err := svc.RewriteConnectedWallets(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ok)
				return nil
			}),
	)
	return cmd
}

type registryAction func(ctx context.Context, cmd *cobra.Command, svc *registry.Service, args []string) error

func registryCommand(use, short string, args cobra.PositionalArgs, action registryAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), func(ctx context.Context, svc *registry.Service) error {
				return action(ctx, cmd, svc, args)
			})
		},
	}
}
