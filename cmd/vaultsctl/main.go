package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag    string
	tenantFlag string
	rootCmd    = &cobra.Command{
		Use:   "vaultsctl",
		Short: "CLI client for the ingestion service REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Ingestion service base URL")
	rootCmd.PersistentFlags().StringVarP(&tenantFlag, "tenant", "t", "", "Tenant ID (service default when omitted)")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Trigger an ingestion pass for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(apiFlag, tenantFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(syncCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the sync checkpoint for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(apiFlag, tenantFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(statusCmd)

	assessCmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess a DLP violation and print its governance actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file required")
			}
			return runAssess(apiFlag, file, os.Stdout)
		},
	}
	assessCmd.Flags().StringP("file", "f", "", "Path to a JSON violation event")
	_ = assessCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(assessCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
