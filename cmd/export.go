/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/nakachan-ing/jmt-cli/internal/util"
	"github.com/spf13/cobra"
)

var exportXLSX string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the task list to a spreadsheet",
	Run: func(cmd *cobra.Command, args []string) {
		if exportXLSX == "" {
			log.Printf("❌ --xlsx is required")
			os.Exit(1)
		}

		a := mustOpenApp()
		defer a.Close()

		tasks := a.tasks.Load()
		if err := util.ExportXLSX(tasks, exportXLSX); err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}
		fmt.Printf("✅ %d tasks exported to %s\n", len(tasks), exportXLSX)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportXLSX, "xlsx", "", "Write an .xlsx workbook to this path")
}
