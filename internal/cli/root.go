package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tanami-dev/tanami/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "tanami",
	Short: "Tanami - farming assistant from the command line",
	Long: `Tanami CLI - Harvest estimates, planting recommendations, disease
detection, the farmers' marketplace and NamiBot, from your terminal.

Configure the backend with TANAMI_API_URL and log in with 'tanami login'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&commands.Verbose, "verbose", "v", false, "Log API requests to stderr")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tanami version %s\n", version)
		},
	})

	// Account
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())

	// Farming tools
	rootCmd.AddCommand(commands.NewHarvestCmd())
	rootCmd.AddCommand(commands.NewRecommendCmd())
	rootCmd.AddCommand(commands.NewDetectCmd())

	// Marketplace
	rootCmd.AddCommand(commands.NewProductsCmd())
	rootCmd.AddCommand(commands.NewSellCmd())

	// Education
	rootCmd.AddCommand(commands.NewArticlesCmd())
	rootCmd.AddCommand(commands.NewVideosCmd())
	rootCmd.AddCommand(commands.NewUploadArticleCmd())
	rootCmd.AddCommand(commands.NewUploadVideoCmd())

	rootCmd.AddCommand(commands.NewChatCmd())
}

// Execute runs the root command. Ctrl-C cancels in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
