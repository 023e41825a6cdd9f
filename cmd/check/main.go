package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/safety"
	"solana-token-sentinel/internal/solana"
)

func main() {
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint")
	mint := flag.String("mint", "", "Token mint address to assess")
	maxTopHolderPct := flag.Float64("max-top-holder-pct", safety.DefaultMaxTopHolderPercent, "Fail the holder check above this top-holder share")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall assessment timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[check] ", log.LstdFlags)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *mint == "" {
		logger.Fatal("--mint is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rpc := solana.NewHTTPClient(*rpcEndpoint)
	engine := safety.NewEngine(rpc, safety.Config{MaxTopHolderPercent: *maxTopHolderPct}, logger)

	slot, err := rpc.GetSlot(ctx)
	if err != nil {
		logger.Fatalf("rpc endpoint unreachable: %v", err)
	}

	report := engine.Assess(ctx, &domain.TokenInfo{Mint: *mint})

	fmt.Printf("Token: %s (slot %d)\n\n", *mint, slot)
	printCheck("Mint authority", report.MintAuthority)
	printCheck("Freeze authority", report.FreezeAuthority)
	printCheck("Metadata", report.Metadata)
	printCheck("Liquidity", report.Liquidity)
	printCheck("Top holders", report.TopHolders)
	fmt.Printf("\nScore: %d/100\nRecommendation: %s\n", report.OverallScore, report.Recommendation)

	if report.Recommendation == domain.RecommendationDanger {
		os.Exit(1)
	}
}

func printCheck(name string, r domain.CheckResult) {
	fmt.Printf("  %-18s %-8s %s", name, r.Status, r.Message)
	if r.Value != nil {
		fmt.Printf(" (%.1f%%)", *r.Value)
	}
	if r.Address != nil {
		fmt.Printf(" [%s]", *r.Address)
	}
	fmt.Println()
}
