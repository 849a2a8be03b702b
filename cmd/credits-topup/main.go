// Command credits-topup grants order credits to a tenant.
//
//	credits-topup -client 7 -user 100 -amount 500
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/shipdesk-backend/internal/clients"
	"github.com/angelmondragon/shipdesk-backend/internal/credits"
	"github.com/angelmondragon/shipdesk-backend/pkg/config"
	"github.com/angelmondragon/shipdesk-backend/pkg/db"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
)

type topUp struct {
	clientID int64
	userID   int64
	amount   int
}

type granter interface {
	GrantCredits(ctx context.Context, clientID, userID int64, amount int) (int, error)
}

func parseArgs(args []string) (topUp, error) {
	fs := flag.NewFlagSet("credits-topup", flag.ContinueOnError)
	var req topUp
	fs.Int64Var(&req.clientID, "client", 0, "client id to credit")
	fs.Int64Var(&req.userID, "user", 0, "user id recorded on the credit transaction")
	fs.IntVar(&req.amount, "amount", 0, "credits to add")
	if err := fs.Parse(args); err != nil {
		return topUp{}, err
	}
	switch {
	case req.clientID <= 0:
		return topUp{}, fmt.Errorf("-client must be a positive id")
	case req.userID <= 0:
		return topUp{}, fmt.Errorf("-user must be a positive id")
	case req.amount <= 0:
		return topUp{}, fmt.Errorf("-amount must be positive")
	}
	return req, nil
}

func run(ctx context.Context, ledger granter, logg *logger.Logger, req topUp) (int, error) {
	balance, err := ledger.GrantCredits(ctx, req.clientID, req.userID, req.amount)
	if err != nil {
		return 0, err
	}
	if logg != nil {
		ctx = logg.WithClientID(ctx, req.clientID)
		logg.Info(logg.WithFields(ctx, map[string]any{"amount": req.amount, "balance": balance}), "credits granted")
	}
	return balance, nil
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "credits-topup"})
	_ = godotenv.Load()

	req, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "credits-topup",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(logg, "database", err)
	defer dbClient.Close()

	outboxRepo := outbox.NewRepository(dbClient.DB())
	ledger, err := credits.NewLedger(credits.Options{
		DB:          dbClient.DB(),
		Tx:          dbClient,
		Settings:    clients.NewCachedProvider(clients.NewRepository(dbClient.DB()), 0),
		Outbox:      outbox.NewService(outboxRepo, logg),
		OutboxRepo:  outboxRepo,
		DefaultCost: cfg.Credits.DefaultOrderCost,
		Logger:      logg,
	})
	requireResource(logg, "credit ledger", err)

	balance, err := run(ctx, ledger, logg, req)
	if err != nil {
		logg.Error(ctx, "credit top-up failed", err)
		os.Exit(1)
	}
	fmt.Printf("client %d balance: %d\n", req.clientID, balance)
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
