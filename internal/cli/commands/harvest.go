package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tanami-dev/tanami/internal/client"
)

// NewHarvestCmd creates the harvest command
func NewHarvestCmd() *cobra.Command {
	var req client.HarvestRequest
	var format string

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Estimate harvest yield and income",
		Example: `  tanami harvest --crop padi --area 1000
  tanami harvest --crop tomat --area 250 --planting-date 2025-01-15 --price-per-kg 8000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarvest(cmd.Context(), req, format)
		},
	}

	cmd.Flags().StringVar(&req.CropType, "crop", "", "Crop type, e.g. padi or tomat")
	cmd.Flags().Float64Var(&req.Area, "area", 0, "Planted area in m²")
	cmd.Flags().StringVar(&req.PlantingDate, "planting-date", "", "Planting date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().Float64Var(&req.PricePerKg, "price-per-kg", 0, "Selling price per kg (defaults to the crop's market price)")
	addOutputFlag(cmd, &format)

	_ = cmd.MarkFlagRequired("crop")
	_ = cmd.MarkFlagRequired("area")

	return cmd
}

func runHarvest(ctx context.Context, req client.HarvestRequest, format string, opts ...RunOption) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	if req.PlantingDate == "" {
		req.PlantingDate = time.Now().Format(time.DateOnly)
	}

	return run(ctx, opts, func(rc *runConfig) error {
		result, err := rc.env.Client.CalculateHarvest(ctx, req)
		if err != nil {
			return explain(err)
		}

		return render(rc.out, format, result, func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "CROP\t%s\n", result.CropType)
			fmt.Fprintf(tw, "AREA\t%g m²\n", result.Area)
			fmt.Fprintf(tw, "PRICE PER KG\tRp %.0f\n", result.PricePerKg)
			fmt.Fprintf(tw, "ESTIMATED YIELD\t%.1f kg\n", result.EstimatedYield)
			fmt.Fprintf(tw, "ESTIMATED INCOME\tRp %.0f\n", result.EstimatedIncome)
			fmt.Fprintf(tw, "GROWING PERIOD\t%d days\n", result.HarvestDurationDays)
			fmt.Fprintf(tw, "HARVEST DATE\t%s\n", orDash(result.EstimatedHarvestDate))
		})
	})
}
