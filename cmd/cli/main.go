package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledger-cli",
		Short: "Mobile wallet ledger CLI tool",
		Long:  `A command line interface for inspecting wallets and transactions over the ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}
	walletCmd.AddCommand(&cobra.Command{
		Use:   "balance <owner-id> <currency>",
		Short: "Show a wallet balance",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON(fmt.Sprintf("/api/v1/owners/%s/wallets/%s", args[0], args[1]))
		},
	})

	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Transaction operations",
	}
	txCmd.AddCommand(&cobra.Command{
		Use:   "get <reference-id>",
		Short: "Show a transaction by reference",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/transactions/" + args[0])
		},
	})
	txCmd.AddCommand(&cobra.Command{
		Use:   "list <owner-id>",
		Short: "List an owner's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			listTransactions(args[0])
		},
	})
	txCmd.AddCommand(&cobra.Command{
		Use:   "cancel <reference-id>",
		Short: "Cancel a pending transaction before settlement",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cancelTransaction(args[0])
		},
	})
	txCmd.AddCommand(&cobra.Command{
		Use:   "stuck",
		Short: "List pending transactions past their settlement window",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/transactions/stuck")
		},
	})

	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(txCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getJSON(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	printJSON(result)
}

func listTransactions(ownerID string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/owners/" + ownerID + "/transactions")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var txs []struct {
		ReferenceID string `json:"reference_id"`
		Kind        string `json:"kind"`
		Currency    string `json:"currency"`
		Amount      string `json:"amount"`
		Status      string `json:"status"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &txs); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-32s %-12s %-6s %-14s %-10s %s\n", "REFERENCE", "KIND", "CCY", "AMOUNT", "STATUS", "DESCRIPTION")
	for _, tx := range txs {
		fmt.Printf("%-32s %-12s %-6s %-14s %-10s %s\n",
			tx.ReferenceID, tx.Kind, tx.Currency, tx.Amount, tx.Status, truncate(tx.Description, 40))
	}
}

func cancelTransaction(referenceID string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/transactions/"+referenceID+"/cancel", "application/json", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Cancel FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Cancelled")
	printJSON(result)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
