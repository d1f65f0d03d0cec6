package main

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gocuria/wallet"
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the node's signing keys",
	}

	var force bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Generate and save a new keypair for this node",
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring := wallet.NewKeyring(cfg.DataDir, cfg.NodeID)
			if _, err := keyring.Load(); err == nil && !force {
				return fmt.Errorf("keys for node %s already exist; use --force to replace them", cfg.NodeID)
			}
			w, err := keyring.Create()
			if err != nil {
				return err
			}
			if err := keyring.Save(); err != nil {
				return err
			}
			pub, _ := wallet.KeyFiles(cfg.DataDir, cfg.NodeID)
			pterm.Success.Printfln("Saved keys for node %s (%s)", cfg.NodeID, pub)
			pterm.Info.Printfln("Public key: %s", w.PublicKey)
			return nil
		},
	}
	create.Flags().BoolVar(&force, "force", false, "Replace existing keys")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the node's public key",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wallet.Load(cfg.DataDir, cfg.NodeID)
			if errors.Is(err, wallet.ErrIdentityNotFound) {
				return fmt.Errorf("no keys for node %s; run 'gocuria keys create'", cfg.NodeID)
			}
			if err != nil {
				return err
			}
			fmt.Println(w.PublicKey)
			return nil
		},
	}

	cmd.AddCommand(create, show)
	return cmd
}
