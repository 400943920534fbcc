// Package main is the entry point for the portfolio assistant. Without a
// subcommand it runs as an AWS Lambda handler.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "portfolio-assistant",
	Short:        "Portfolio question answering backend",
	Long:         "Answers questions about a portfolio through an enhance, generate and rule-based fallback pipeline.",
	SilenceUsage: true,
	RunE:         runLambda,
}

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an API Gateway Lambda handler",
	RunE:  runLambda,
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runLambda(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	lambda.Start(a.handler.Handle)
	return nil
}
