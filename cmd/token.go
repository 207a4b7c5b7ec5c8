package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/performance-bonus/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var tokenUser string

// tokenCmd issues access tokens for local development. The API itself has no
// login endpoint.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for a user",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		ctx := context.Background()
		db, gdb, rdb, err := connect(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()
		if rdb != nil {
			defer rdb.Close()
		}

		services, err := buildServices(cfg, gdb, cmdable(rdb), prometheus.NewRegistry(), logger.Discard())
		if err != nil {
			log.Fatalf("failed to build services: %v", err)
		}

		tok, err := services.Auth.IssueToken(ctx, tokenUser)
		if err != nil {
			log.Fatalf("failed to issue token: %v", err)
		}

		fmt.Println(tok.AccessToken)
		fmt.Println("expires at", tok.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id to issue the token for")
	_ = tokenCmd.MarkFlagRequired("user")
}
