package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"walletbot/config"
	"walletbot/internal/dataservice"
)

func main() {
	fmt.Println("🔍 Starting Backend Health Check...")
	fmt.Println("----------------------------------------")

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Printf("❌ FAIL: config - %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Open store
	store, err := dataservice.OpenStore(ctx, cfg.Backend)
	if err != nil {
		fmt.Printf("❌ FAIL: open %s store - %v\n", cfg.Backend.Driver, err)
		os.Exit(1)
	}
	defer store.Close()

	failed := false

	// 2. Ping
	start := time.Now()
	if err := store.Ping(ctx); err != nil {
		fmt.Printf("❌ FAIL: %-22s - Error: %v\n", "ping ("+cfg.Backend.Driver+")", err)
		failed = true
	} else {
		fmt.Printf("✅ PASS: %-22s - took %v\n", "ping ("+cfg.Backend.Driver+")", time.Since(start))
	}

	// 3. Default account
	accountID := cfg.Account.DefaultAccountID
	if acct, err := store.GetAccount(ctx, accountID); err != nil {
		fmt.Printf("❌ FAIL: %-22s - Error: %v\n", "account "+accountID, err)
		failed = true
	} else {
		fmt.Printf("✅ PASS: %-22s - Balance: %.2f Goal: %.2f\n", "account "+accountID, acct.CurrentBalance, acct.SavingsGoal)
	}

	// 4. Every tool end to end
	fmt.Println("\n[Tools] Running each registered tool...")
	fetcher := dataservice.NewFetcher(store)
	for _, def := range dataservice.ToolsDefinition() {
		if !checkTool(ctx, fetcher, def.Function.Name, accountID) {
			failed = true
		}
	}

	fmt.Println("----------------------------------------")
	if failed {
		fmt.Println("❌ Health Check Failed.")
		os.Exit(1)
	}
	fmt.Println("✅ Health Check Completed.")
}

func checkTool(ctx context.Context, f *dataservice.Fetcher, name, accountID string) bool {
	kind, ok := dataservice.ParseToolKind(name)
	if !ok {
		fmt.Printf("❌ FAIL: %-22s - not dispatchable\n", name)
		return false
	}

	start := time.Now()
	payload, err := f.Execute(ctx, kind, accountID)
	if err != nil {
		fmt.Printf("❌ FAIL: %-22s - Error: %v\n", name, err)
		return false
	}
	fmt.Printf("✅ PASS: %-22s - %s (took %v)\n", name, payload, time.Since(start))
	return true
}
