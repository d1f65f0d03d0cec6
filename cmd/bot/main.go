// Command bot runs a small local network of nodes that mine and trade with
// each other at random intervals. It exists to exercise broadcasting and
// conflict resolution under traffic.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gocuria/blockchain/store"
	"gocuria/config"
	"gocuria/mocks"
	"gocuria/node"
)

type Bot struct {
	name   string
	node   *node.FullNode
	addr   string
	rng    *rand.Rand
	logger *slog.Logger
}

func NewBot(name, dataDir string, timeout time.Duration, logger *slog.Logger) (*Bot, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	cfg := config.Config{
		NodeID:      name,
		Listen:      ln.Addr().String(),
		DataDir:     dataDir,
		Storage:     store.BackendMemory,
		PeerTimeout: timeout,
	}
	n, err := node.NewFullNode(cfg, logger)
	if err != nil {
		ln.Close()
		return nil, err
	}
	w, err := n.Keyring().Create()
	if err != nil {
		ln.Close()
		return nil, err
	}
	if err := n.Ledger().Reinitialize(w.PublicKey); err != nil {
		ln.Close()
		return nil, err
	}

	go func() {
		if err := n.Serve(ln); err != nil {
			logger.Error("bot server stopped", "bot", name, "err", err)
		}
	}()

	return &Bot{
		name:   name,
		node:   n,
		addr:   cfg.Listen,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logger.With("bot", name),
	}, nil
}

// Act resolves when a peer has signalled a conflict, and otherwise either
// sends a random transaction or mines a block.
func (b *Bot) Act(recipients []string) {
	l := b.node.Ledger()
	if l.NeedsResolve() {
		replaced := l.Resolve()
		b.logger.Info("resolved conflicts", "replaced", replaced, "blocks", len(l.Chain()))
		return
	}

	if b.rng.IntN(2) == 0 {
		w, _ := b.node.Keyring().Current()
		funds, _ := l.OwnBalance()
		tx, err := mocks.GenerateRandomTransaction(b.rng, w, recipients, funds)
		if err == nil {
			err = l.AddTransaction(tx)
		}
		if err == nil {
			b.logger.Info("sent transaction", "amount", tx.Amount)
			return
		}
		if !errors.Is(err, mocks.ErrNoFunds) {
			b.logger.Warn("transaction failed", "err", err)
		}
	}

	block, err := l.MineBlock()
	if err != nil {
		b.logger.Warn("mining failed", "err", err)
		return
	}
	b.logger.Info("mined block", "index", block.Index, "transactions", len(block.Transactions))
}

// Run acts at random intervals in [minWait, maxWait) until ctx is done.
func (b *Bot) Run(ctx context.Context, recipients []string, minWait, maxWait time.Duration) {
	for {
		wait := minWait + time.Duration(b.rng.Int64N(int64(maxWait-minWait)))
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			b.Act(recipients)
		}
	}
}

func main() {
	var (
		numBots  int
		minWait  time.Duration
		maxWait  time.Duration
		timeout  time.Duration
		duration time.Duration
	)

	rootCmd := &cobra.Command{
		Use:          "bot",
		Short:        "Run a local network of mining and trading nodes",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if numBots < 2 {
				return fmt.Errorf("need at least 2 bots, got %d", numBots)
			}
			if maxWait <= minWait {
				return fmt.Errorf("max-wait must be greater than min-wait")
			}
			logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

			dataDir, err := os.MkdirTemp("", "gocuria-bot-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dataDir)

			bots := make([]*Bot, numBots)
			for i := range bots {
				bots[i], err = NewBot(fmt.Sprintf("bot-%d", i+1), dataDir, timeout, logger)
				if err != nil {
					return err
				}
			}

			var recipients []string
			for _, b := range bots {
				recipients = append(recipients, b.node.Ledger().PublicKey())
				for _, peer := range bots {
					if peer != b {
						b.node.Ledger().AddPeerNode(peer.addr)
					}
				}
			}
			pterm.Info.Printfln("Started %d bots", numBots)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			done := make(chan struct{})
			for _, b := range bots {
				go func(b *Bot) {
					b.Run(ctx, recipients, minWait, maxWait)
					done <- struct{}{}
				}(b)
			}
			for range bots {
				<-done
			}

			for _, b := range bots {
				shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				b.node.Stop(shutdown)
				cancel()
				pterm.Info.Printfln("%s: %d blocks", b.name, len(b.node.Ledger().Chain()))
			}
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.IntVar(&numBots, "bots", 4, "Number of nodes to run")
	flags.DurationVar(&minWait, "min-wait", 2*time.Second, "Shortest pause between actions")
	flags.DurationVar(&maxWait, "max-wait", 10*time.Second, "Longest pause between actions")
	flags.DurationVar(&timeout, "peer-timeout", 5*time.Second, "Timeout for each peer request")
	flags.DurationVar(&duration, "duration", 0, "Stop after this long (0 runs until interrupted)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
