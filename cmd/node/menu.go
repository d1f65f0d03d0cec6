package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gocuria/blockchain"
	"gocuria/node"
)

const (
	actionTransaction = "Add a new transaction"
	actionMine        = "Mine a new block"
	actionChain       = "Output the blockchain blocks"
	actionVerifyPool  = "Check transaction validity"
	actionCreateKeys  = "Create wallet"
	actionLoadKeys    = "Load wallet"
	actionSaveKeys    = "Save keys"
	actionResolve     = "Resolve conflicts"
	actionAddPeer     = "Add peer node"
	actionRemovePeer  = "Remove peer node"
	actionPeers       = "List peer nodes"
	actionQuit        = "Quit"
)

var menuActions = []string{
	actionTransaction, actionMine, actionChain, actionVerifyPool,
	actionCreateKeys, actionLoadKeys, actionSaveKeys,
	actionResolve, actionAddPeer, actionRemovePeer, actionPeers, actionQuit,
}

func menuCmd() *cobra.Command {
	var serve bool
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Drive the node from an interactive menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := node.NewFullNode(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				n.Stop(ctx)
			}()

			if serve {
				go func() {
					if err := n.Start(); err != nil {
						logger.Error("HTTP API stopped", "err", err)
					}
				}()
			}
			return runMenu(n)
		},
	}
	cmd.Flags().BoolVar(&serve, "serve", true, "Also serve the HTTP API so peers can reach this node")
	return cmd
}

func runMenu(n *node.FullNode) error {
	pterm.DefaultHeader.WithFullWidth().Printfln("gocuria node %s", cfg.NodeID)

	for {
		action, err := pterm.DefaultInteractiveSelect.
			WithDefaultText("Please choose").
			WithOptions(menuActions).
			WithMaxHeight(len(menuActions)).
			Show()
		if err != nil {
			return err
		}
		if action == actionQuit {
			pterm.Info.Println("Done!")
			return nil
		}

		runAction(n, action)

		if err := n.Ledger().VerifyOwnChain(); err != nil {
			pterm.Error.Printfln("Invalid blockchain: %v", err)
			return err
		}
		if funds, err := n.Ledger().OwnBalance(); err == nil {
			pterm.Info.Printfln("Balance of %s: %6.2f", short(n.Ledger().PublicKey()), funds)
		}
	}
}

func runAction(n *node.FullNode, action string) {
	l := n.Ledger()

	switch action {
	case actionTransaction:
		w, ok := n.Keyring().Current()
		if !ok {
			pterm.Warning.Println("No wallet set up. Create or load one first.")
			return
		}
		recipient, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Enter the recipient of the transaction").Show()
		amountText, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Your transaction amount please").Show()
		amount, err := strconv.ParseFloat(strings.TrimSpace(amountText), 64)
		if err != nil {
			pterm.Error.Printfln("Invalid amount %q", amountText)
			return
		}
		sig, err := w.Sign(w.PublicKey, strings.TrimSpace(recipient), amount)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		tx := blockchain.Transaction{Sender: w.PublicKey, Recipient: strings.TrimSpace(recipient), Signature: sig, Amount: amount}
		if err := l.AddTransaction(tx); err != nil {
			pterm.Error.Printfln("Transaction failed: %v", err)
			return
		}
		pterm.Success.Println("Added transaction!")

	case actionMine:
		if l.NeedsResolve() {
			pterm.Warning.Println("Resolve conflicts first.")
			return
		}
		spinner, _ := pterm.DefaultSpinner.Start("Mining...")
		block, err := l.MineBlock()
		if err != nil {
			spinner.Fail(fmt.Sprintf("Mining failed: %v", err))
			return
		}
		spinner.Success(fmt.Sprintf("Mined block %d with proof %d", block.Index, block.Proof))

	case actionChain:
		printChain(l.Chain())

	case actionVerifyPool:
		if err := l.VerifyPool(); err != nil {
			pterm.Error.Printfln("There are invalid transactions: %v", err)
			return
		}
		pterm.Success.Println("All transactions are valid")

	case actionCreateKeys:
		w, err := n.Keyring().Create()
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		reinitialize(n, w.PublicKey)

	case actionLoadKeys:
		w, err := n.Keyring().Load()
		if err != nil {
			pterm.Error.Printfln("Loading the wallet failed: %v", err)
			return
		}
		reinitialize(n, w.PublicKey)

	case actionSaveKeys:
		if err := n.Keyring().Save(); err != nil {
			pterm.Error.Printfln("Saving the keys failed: %v", err)
			return
		}
		pterm.Success.Println("Keys saved")

	case actionResolve:
		if l.Resolve() {
			pterm.Success.Println("Chain was replaced!")
		} else {
			pterm.Info.Println("Local chain kept!")
		}

	case actionAddPeer:
		addr, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Peer address (host:port)").Show()
		if err := l.AddPeerNode(addr); err != nil {
			pterm.Error.Println(err)
		}

	case actionRemovePeer:
		peers := l.PeerNodes()
		if len(peers) == 0 {
			pterm.Info.Println("No peers")
			return
		}
		addr, _ := pterm.DefaultInteractiveSelect.WithDefaultText("Peer to remove").WithOptions(peers).Show()
		l.RemovePeerNode(addr)

	case actionPeers:
		pterm.DefaultBulletList.WithItems(bullets(l.PeerNodes())).Render()
	}
}

func reinitialize(n *node.FullNode, publicKey string) {
	if err := n.Ledger().Reinitialize(publicKey); err != nil {
		pterm.Error.Printfln("Reloading the ledger failed: %v", err)
		return
	}
	pterm.Success.Printfln("Using wallet %s", short(publicKey))
}

func printChain(chain []blockchain.Block) {
	data := pterm.TableData{{"Index", "Previous hash", "Transactions", "Proof", "Timestamp"}}
	for _, b := range chain {
		ts := "-"
		if b.Timestamp > 0 {
			ts = time.Unix(0, int64(b.Timestamp*float64(time.Second))).Format(time.DateTime)
		}
		data = append(data, []string{
			strconv.Itoa(b.Index),
			short(b.PreviousHash),
			strconv.Itoa(len(b.Transactions)),
			strconv.Itoa(b.Proof),
			ts,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func bullets(items []string) []pterm.BulletListItem {
	out := make([]pterm.BulletListItem, len(items))
	for i, item := range items {
		out[i] = pterm.BulletListItem{Level: 0, Text: item}
	}
	return out
}

func short(s string) string {
	if len(s) > 16 {
		return s[:16] + "..."
	}
	return s
}
