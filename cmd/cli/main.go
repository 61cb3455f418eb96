package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shopbook-cli",
		Short: "Shopbook CLI tool",
		Long:  `A command line interface for interacting with the Shopbook API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Shopbook API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("SHOPBOOK_TOKEN"), "Bearer token for authenticated endpoints")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the current running balance",
		Run: func(cmd *cobra.Command, args []string) {
			showBalance()
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard statistics",
		Run: func(cmd *cobra.Command, args []string) {
			showStats()
		},
	}

	sellsCmd := &cobra.Command{
		Use:   "sells",
		Short: "List sell entries",
		Run: func(cmd *cobra.Command, args []string) {
			listSells()
		},
	}

	entryCmd := &cobra.Command{
		Use:   "entry <id>",
		Short: "Show a single entry as JSON",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			showEntry(args[0])
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Recompute the balance from all entries and compare",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	rootCmd.AddCommand(balanceCmd, statsCmd, sellsCmd, entryCmd, checkCmd, hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func get(path string) []byte {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
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

	return body
}

func showBalance() {
	body := get("/api/v1/balance")

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Balance: %v\n", result["amount"])
	fmt.Printf("Updated: %v\n", result["updated_at"])
}

func showStats() {
	body := get("/api/v1/stats")

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Balance: %v\n", result["balance"])
	for _, window := range []string{"all_time", "today", "this_month"} {
		totals, ok := result[window].(map[string]any)
		if !ok {
			continue
		}
		fmt.Printf("%s:\n", window)
		fmt.Printf("  sells:     %v\n", totals["sell_total"])
		fmt.Printf("  purchases: %v\n", totals["purchase_total"])
		fmt.Printf("  expenses:  %v\n", totals["expense_total"])
		fmt.Printf("  profit:    %v\n", totals["profit_total"])
		fmt.Printf("  loss:      %v\n", totals["loss_total"])
	}
}

func listSells() {
	body := get("/api/v1/sells/")

	var sells []map[string]any
	if err := json.Unmarshal(body, &sells); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	for _, s := range sells {
		fmt.Printf("%v  %-20v  total=%v advance=%v rest=%v  %v\n",
			s["order_id"], truncate(fmt.Sprintf("%v", s["name"]), 20),
			s["total_amount"], s["advance"], s["rest_money"], s["completion"])
	}
}

func showEntry(id string) {
	body := get("/api/v1/entries/" + id)

	var entry map[string]any
	if err := json.Unmarshal(body, &entry); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printJSON(entry)
}

type checkEntry struct {
	Kind           string          `json:"kind"`
	Note           string          `json:"note"`
	Completion     string          `json:"completion"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Advance        decimal.Decimal `json:"advance"`
	RestMoney      decimal.Decimal `json:"rest_money"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	ProfitOrLoss   decimal.Decimal `json:"profit_or_loss"`
}

// effect replays the balance effect of a single entry, mirroring what the
// server applies on create.
func (e checkEntry) effect() decimal.Decimal {
	switch e.Kind {
	case "sell":
		eff := e.Advance
		if e.Completion == "completed" {
			eff = eff.Add(e.ProfitOrLoss)
		}
		return eff
	case "purchase":
		return e.TotalAmount.Add(e.DeliveryCharge).Neg()
	case "expense", "other":
		return e.TotalAmount.Neg()
	case "restMoney":
		return e.RestMoney
	case "delivery":
		if e.Note == "Delivery Charge (Own)" {
			return e.TotalAmount.Neg()
		}
		return decimal.Zero
	}
	return decimal.Zero
}

func checkConsistency() {
	expected := decimal.Zero

	// Sells also credit their accrued rest money, but that is already counted
	// through the restMoney entries themselves.
	for offset := 0; ; offset += 500 {
		body := get(fmt.Sprintf("/api/v1/entries/?limit=500&offset=%d", offset))

		var entries []checkEntry
		if err := json.Unmarshal(body, &entries); err != nil {
			fmt.Printf("Failed to parse response: %v\n", err)
			os.Exit(1)
		}

		for _, e := range entries {
			expected = expected.Add(e.effect())
		}

		if len(entries) < 500 {
			break
		}
	}

	var balance struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(get("/api/v1/balance"), &balance); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Recomputed: %s\n", expected)
	fmt.Printf("Reported:   %s\n", balance.Amount)

	if !expected.Equal(balance.Amount) {
		fmt.Println("MISMATCH: the running balance does not reconcile with the entries")
		os.Exit(1)
	}

	fmt.Println("OK")
}

// bcryptGenerate is swapped in tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for seeding users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Println(string(hashed))
			return nil
		},
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode json: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
