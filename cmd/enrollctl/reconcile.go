package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"academy-app/config"
	"academy-app/database"
	"academy-app/internal/infra/logger"
	"academy-app/internal/repo/postgres"
	"academy-app/internal/services/payments"
)

func openRepo() (*config.Config, *zap.Logger, *postgres.EnrollmentRepo, error) {
	cfg, err := config.LoadEnv()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := database.Open(cfg.DBURL, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, postgres.NewEnrollmentRepo(db), nil
}

func reconcileCmd() *cobra.Command {
	var (
		fix   bool
		limit int
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Find payments without an enrollment and optionally repair them",
		Long: `Scans completed payments whose enrollment row is missing.
Without --fix only the orphaned payment ids are reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, repo, err := openRepo()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			verifier := payments.NewVerifier(cfg.Gateway.KeySecret, repo, log)
			report, err := payments.NewReconciler(repo, verifier, log).Run(cmd.Context(), fix, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Write missing enrollments")
	cmd.Flags().IntVar(&limit, "limit", 500, "Maximum payments to scan")

	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show payment and enrollment totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, repo, err := openRepo()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			stats, err := repo.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
