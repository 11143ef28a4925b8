package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tanami-dev/tanami/internal/client"
)

// recommendOptions are the recommend command's flags
type recommendOptions struct {
	crop     string
	location string
	lat, lon float64
	hasCoord bool
	format   string
}

// NewRecommendCmd creates the recommend command
func NewRecommendCmd() *cobra.Command {
	var o recommendOptions

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Show weather-based planting recommendations",
		Example: `  tanami recommend --location Tegal
  tanami recommend --crop padi --lat -6.87 --lon 109.14`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.hasCoord = cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon")
			return runRecommend(cmd.Context(), o)
		},
	}

	cmd.Flags().StringVar(&o.crop, "crop", client.AllCrops, "Crop ID ("+strings.Join(client.CropIDs(), ", ")+")")
	cmd.Flags().StringVar(&o.location, "location", "", "Place name to look up, e.g. Yogyakarta")
	cmd.Flags().Float64Var(&o.lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&o.lon, "lon", 0, "Longitude")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	cmd.MarkFlagsMutuallyExclusive("location", "lat")
	addOutputFlag(cmd, &o.format)

	_ = cmd.RegisterFlagCompletionFunc("crop", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return client.CropIDs(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runRecommend(ctx context.Context, o recommendOptions, opts ...RunOption) error {
	if err := checkFormat(o.format); err != nil {
		return err
	}
	if o.location == "" && !o.hasCoord {
		return fmt.Errorf("a location is required (use --location or --lat and --lon)")
	}

	return run(ctx, opts, func(rc *runConfig) error {
		lat, lon := o.lat, o.lon

		if o.location != "" {
			place, err := rc.env.Client.Geocode(ctx, rc.env.Config.API.GeocoderURL, o.location)
			if err != nil {
				return fmt.Errorf("failed to find location: %w", err)
			}
			lat, lon = place.Lat, place.Lon
			if o.format == FormatTable {
				fmt.Fprintf(rc.out, "Location: %s (%.4f, %.4f)\n\n", place.Name, lat, lon)
			}
		}

		recs, err := rc.env.Client.PlantingRecommendations(ctx, o.crop, lat, lon)
		if err != nil {
			return explain(err)
		}

		if len(recs) == 0 && o.format == FormatTable {
			fmt.Fprintln(rc.out, "No recommendations available for this location.")
			return nil
		}

		return render(rc.out, o.format, recs, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "CROP\tSTATUS\tBEST DATES\tTEMP\tRAIN\tHUMIDITY\tRECOMMENDATION")
			fmt.Fprintln(tw, "────\t──────\t──────────\t────\t────\t────────\t──────────────")
			for _, rec := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f°C\t%.1f mm\t%.0f%%\t%s\n",
					orDash(firstNonEmpty(rec.Crop, rec.ID)),
					orDash(firstNonEmpty(rec.StatusText, rec.Status)),
					orDash(strings.Join(rec.BestDates, ", ")),
					rec.AvgTemp,
					rec.TotalRainfall,
					rec.AvgHumidity,
					rec.Recommendation,
				)
			}
		})
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
