// coachctl runs the unification and coaching pipeline offline against a data
// directory and prints results as JSON.
package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/coaching"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/ingest"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/unify"
)

var (
	dataDir    string
	ordersFile string
	rosterFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "coachctl",
	Short: "Run the service-order coaching pipeline from the command line",
	Long: `coachctl ingests the service-order export and technician roster from a data
directory, runs the unification and coaching analytics pipeline, and prints
the result as JSON. The same code paths back the HTTP API.`,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the fleet-wide coaching summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(newEngine().Summary())
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Search normalized service orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")
		result := newUnifier().SearchServiceOrders(unify.SearchParams{
			Search: search,
			Limit:  limit,
		})
		return printJSON(result)
	},
}

var recommendationsCmd = &cobra.Command{
	Use:   "recommendations",
	Short: "Generate coaching recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := newEngine()
		techID, _ := cmd.Flags().GetString("technician")
		if techID == "" {
			return printJSON(engine.AllRecommendations())
		}
		recs, err := engine.GenerateForTechnician(techID)
		if err != nil {
			return errors.Wrapf(err, "generate recommendations for %s", techID)
		}
		return printJSON(recs)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "Directory holding the source exports")
	rootCmd.PersistentFlags().StringVar(&ordersFile, "orders-file", "service_orders.csv", "Service-order export file name")
	rootCmd.PersistentFlags().StringVar(&rosterFile, "roster-file", "technicians.csv", "Technician roster file name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	ordersCmd.Flags().String("search", "", "Free-text filter")
	ordersCmd.Flags().Int("limit", 50, "Page size")
	recommendationsCmd.Flags().String("technician", "", "Limit to one technician id")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(recommendationsCmd)
}

func newUnifier() *unify.Service {
	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	loader := &ingest.Loader{
		Dir:        dataDir,
		OrdersFile: ordersFile,
		RosterFile: rosterFile,
		Logger:     logger,
	}
	return unify.New(loader, unify.DefaultTTL, false, logger)
}

func newEngine() *coaching.Engine {
	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return coaching.NewEngine(newUnifier(), logger)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encode output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
