package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/bwiize/dashboard/internal/config"
	"github.com/bwiize/dashboard/internal/domain"
	"github.com/bwiize/dashboard/internal/engine"
	"github.com/bwiize/dashboard/internal/escrow"
	"github.com/bwiize/dashboard/internal/worker"
)

const simulateTimeout = 30 * time.Second

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "run a scripted session and print the final snapshot",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "challenges", Value: domain.DefaultChallengesRequired, Usage: "challenge completions to send"},
			&cli.StringFlag{Name: "deposit", Value: "10", Usage: "XRP to deposit after connecting the wallet"},
			&cli.BoolFlag{Name: "release", Value: true, Usage: "release the escrow once it is ready"},
			&cli.StringFlag{Name: "escrow", Usage: "XRP amount for a new escrow created after release"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := setup(c)
			if err != nil {
				return err
			}
			deposit, err := parseAmount(c.String("deposit"))
			if err != nil {
				return err
			}
			var newEscrow decimal.Decimal
			if s := c.String("escrow"); s != "" {
				if newEscrow, err = parseAmount(s); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(c.Context, simulateTimeout)
			defer cancel()

			eng, err := runSession(ctx, cfg, session{
				challenges: c.Int("challenges"),
				deposit:    deposit,
				release:    c.Bool("release"),
				newEscrow:  newEscrow,
			})
			if err != nil {
				return err
			}

			out := json.NewEncoder(c.App.Writer)
			out.SetIndent("", "  ")
			return out.Encode(map[string]any{
				"snapshot":      eng.Snapshot(),
				"notifications": eng.Notifications(),
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the loaded dashboard to the configured spreadsheet destinations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "xlsx path; overrides EXPORT_PATH"},
			&cli.IntFlag{Name: "challenges", Usage: "challenge completions to send before exporting"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := setup(c)
			if err != nil {
				return err
			}
			if out := c.String("out"); out != "" {
				cfg.ExportPath = out
			}

			ctx, cancel := context.WithTimeout(c.Context, simulateTimeout)
			defer cancel()

			exporter, err := newExporter(ctx, cfg)
			if err != nil {
				return err
			}
			if exporter == nil {
				return errors.New("no export destination: set --out, EXPORT_PATH or GOOGLE_SHEETS_ID")
			}

			eng, err := runSession(ctx, cfg, session{challenges: c.Int("challenges")})
			if err != nil {
				return err
			}
			snap := eng.Snapshot()
			if err := exporter.Export(ctx, snap); err != nil {
				return err
			}
			slog.Info("Export: snapshot written", "version", snap.Version, "path", cfg.ExportPath)
			return nil
		},
	}
}

// session is a scripted sequence of user actions.
type session struct {
	challenges int
	deposit    decimal.Decimal
	release    bool
	newEscrow  decimal.Decimal
}

// runSession loads an engine, replays s against it and returns the engine once every
// scheduled transition has resolved.
func runSession(ctx context.Context, cfg config.Config, s session) (*engine.Engine, error) {
	sched := worker.NewScheduler()
	go sched.Run(ctx)

	eng := newEngine(cfg, sched)
	eng.Load()
	snap, err := eng.Await(ctx, func(s domain.Snapshot) bool { return s.Loaded })
	if err != nil {
		return nil, fmt.Errorf("waiting for load: %w", err)
	}

	if s.deposit.IsPositive() {
		if _, err := eng.ConnectWallet(); err != nil {
			return nil, err
		}
		snap, err = eng.Await(ctx, func(s domain.Snapshot) bool { return s.Wallet.Phase() != domain.WalletPending })
		if err != nil {
			return nil, fmt.Errorf("waiting for wallet: %w", err)
		}
		if snap.Wallet.Phase() == domain.WalletConnected {
			if _, err := eng.DepositXRP(s.deposit); err != nil {
				return nil, err
			}
		}
	}

	for i := range s.challenges {
		id := fmt.Sprintf("challenge-%d", i+1)
		if i < len(snap.DailyChallenges) {
			id = snap.DailyChallenges[i].ID
		}
		if _, err := eng.ChallengeCompleted(id); err != nil {
			return nil, err
		}
	}

	if esc := eng.Snapshot().Escrow; s.release && esc != nil && esc.Status == domain.EscrowReady {
		if _, err := eng.ReleaseEscrow(); err != nil {
			return nil, err
		}
		if s.newEscrow.IsPositive() {
			if _, err := eng.CreateEscrow(escrow.CreateInput{Amount: s.newEscrow}); err != nil {
				return nil, err
			}
		}
	}

	// The celebration lands after its own delay.
	if s.challenges > 0 && cfg.CelebrationDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(cfg.CelebrationDelay + 100*time.Millisecond):
		}
	}
	return eng, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
