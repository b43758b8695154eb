package main

import (
	"context"
	"fmt"
	"time"

	"TeleClinic/config"
	"TeleClinic/database"
	"TeleClinic/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and booking indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()
			return runMigrations(cmd.Context(), rt)
		},
	}
}

func runMigrations(ctx context.Context, rt *runtime) error {
	if err := database.Migrate(ctx, rt.db); err != nil {
		return err
	}
	rt.log.Info("schema is up to date")
	return nil
}

// fix-index repairs the unique reservation index. Several replicas may run it on
// deploy, so it is serialized through a redis lock.
func newFixIndexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fix-index",
		Short: "Rebuild the active-booking unique index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			return rt.cache.WithLock(cmd.Context(), "lock:fix-index", 5*time.Minute, 10, 3*time.Second, func(ctx context.Context) error {
				fixed, err := database.FixIndexes(ctx, rt.db, rt.log)
				if err != nil {
					return err
				}
				rt.log.Info("index repair finished", zap.Strings("rebuilt", fixed))
				return nil
			})
		},
	}
}

// issue-token mints an access token for a user. Identity lives in the clinic's
// sign-in service; this is for operators and local testing.
func newIssueTokenCommand() *cobra.Command {
	var userID, role string
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Print a PASETO access token for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch role {
			case utils.RolePatient, utils.RoleDoctor, utils.RoleAdmin:
			default:
				return fmt.Errorf("role must be %s, %s or %s", utils.RolePatient, utils.RoleDoctor, utils.RoleAdmin)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tokens, err := utils.NewTokenMaker(cfg.SymmetricKey)
			if err != nil {
				return err
			}
			token, err := tokens.GenerateAccessToken(userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID to embed in the token")
	cmd.Flags().StringVar(&role, "role", utils.RolePatient, "Patient, Doctor or Admin")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
