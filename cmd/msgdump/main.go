// msgdump 將資料庫中的訊息或帳號以 CSV 形式輸出到 STDOUT。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"social_media/internal/models"
	"social_media/internal/repository"
	"social_media/internal/storage"
	"social_media/pkg/config"
)

const usage = `Social Media Dump Tool

Usage:
  msgdump [-config <path>] [-account <id>]
  msgdump [-config <path>] -accounts
Options:
  -config     Path to config.yaml (defaults to ./pkg/config/config.yaml).
  -accounts   Dump all accounts as id,username.
  -account    Only dump messages posted by this account id.`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("msgdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprintln(stderr, usage) }
	configPath := fs.String("config", "", "")
	accounts := fs.Bool("accounts", false, "")
	accountID := fs.Uint("account", 0, "")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Can't load config: %s\n", err)
		return 1
	}

	db, err := storage.Open(cfg.DB, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Can't open database: %s\n", err)
		return 1
	}
	defer db.Close()

	repos := repository.NewRepositories(db)
	if *accounts {
		list, err := repos.Account.FindAll(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "SQL error: %s\n", err)
			return 1
		}
		writeAccounts(stdout, list)
		return 0
	}

	var messages []models.Message
	if *accountID != 0 {
		messages, err = repos.Message.FindByPostedBy(ctx, *accountID)
	} else {
		messages, err = repos.Message.FindAll(ctx)
	}
	if err != nil {
		fmt.Fprintf(stderr, "SQL error: %s\n", err)
		return 1
	}
	writeMessages(stdout, messages)
	return 0
}

func writeAccounts(w io.Writer, accounts []models.Account) {
	for _, a := range accounts {
		fmt.Fprintf(w, "%d,%s\n", a.AccountID, a.Username)
	}
}

func writeMessages(w io.Writer, messages []models.Message) {
	for _, m := range messages {
		fmt.Fprintf(w, "%d,%d,%d,%s\n", m.MessageID, m.PostedBy, m.TimePostedEpoch, m.MessageText)
	}
}
