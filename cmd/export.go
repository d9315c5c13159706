/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrunetcore/farmhub/config"
	"github.com/agrunetcore/farmhub/internal/export"
	"github.com/agrunetcore/farmhub/internal/query"
	"github.com/agrunetcore/farmhub/internal/services"
	"github.com/agrunetcore/farmhub/internal/store"
)

var exportOutput string

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the registered farmer list as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		farmers := services.NewFarmerService(store.NewFarmerRepository(cfg.FarmerDataFile()))

		list, err := farmers.List(cmd.Context())
		if err != nil {
			return err
		}

		// Newest first, same default ordering as the dashboard views.
		result := query.Apply(list, query.State{
			SortBy:   query.SortByCreatedAt,
			SortDir:  query.SortDesc,
			Page:     1,
			PageSize: len(list) + 1,
		})

		filename := exportOutput
		if filename == "" {
			filename = export.Filename(time.Now())
		}

		file, err := os.Create(filename)
		if err != nil {
			return err
		}
		defer file.Close()

		if err := export.Write(file, result.Items); err != nil {
			if errors.Is(err, export.ErrNoRows) {
				fmt.Println("no farmers to export")
				_ = os.Remove(filename)
				return nil
			}
			return err
		}

		fmt.Printf("wrote %d farmers to %s\n", len(result.Items), filename)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (defaults to farmers_<date>.csv)")
}
