/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/nakachan-ing/jmt-cli/internal/store"
	"github.com/spf13/cobra"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize config.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := store.GetConfigPath()
		if err != nil {
			log.Fatalf("❌ Failed to get config path: %v", err)
		}

		if _, err := os.Stat(configPath); err == nil && !initForce {
			fmt.Println("📄 Config file already exists:", configPath)
			fmt.Println("   Use --force to overwrite it.")
			return
		}

		if err := store.SaveConfigTo(configPath, model.DefaultConfig()); err != nil {
			log.Fatalf("❌ Failed to create config file: %v", err)
		}

		config, err := store.LoadConfigFrom(configPath)
		if err != nil {
			log.Fatalf("❌ Error loading config: %v", err)
		}
		if err := os.MkdirAll(config.DataDir, 0755); err != nil {
			log.Fatalf("❌ Failed to create data directory: %v", err)
		}

		fmt.Println("✅ jmt initialized successfully!")
		fmt.Println("📄 Config file created at:", configPath)
		fmt.Println("🗂  Tasks are stored in:", config.DataDir)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}
