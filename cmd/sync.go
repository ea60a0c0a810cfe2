/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the task list with S3",
}

func syncRun(direction string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log.Printf("🔄 Running `jmt sync %s`...", direction)
		a, err := openApp(false)
		if err != nil {
			log.Printf("%v", err)
			return err
		}
		defer a.Close()

		if err := SyncWithS3(cmd.Context(), a, direction); err != nil {
			log.Printf("❌ Sync failed: %v", err)
			return fmt.Errorf("❌ Sync failed: %w", err)
		}

		log.Printf("✅ `jmt sync %s` completed successfully.", direction)
		return nil
	}
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload local changes to S3",
	RunE:  syncRun("push"),
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download latest changes from S3",
	RunE:  syncRun("pull"),
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show differences between the local list and S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer a.Close()

		return ShowSyncStatus(cmd.Context(), a)
	},
}

func init() {
	syncCmd.AddCommand(syncPushCmd, syncPullCmd, syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}
