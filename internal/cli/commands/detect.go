package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tanami-dev/tanami/internal/client"
)

// NewDetectCmd creates the detect command
func NewDetectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect plant disease from a leaf photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd.Context(), args[0], format)
		},
	}

	addOutputFlag(cmd, &format)

	return cmd
}

func runDetect(ctx context.Context, path, format string, opts ...RunOption) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	image, f, err := client.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return run(ctx, opts, func(rc *runConfig) error {
		detection, err := rc.env.Client.DetectDisease(ctx, image)
		if err != nil {
			return explain(err)
		}

		return render(rc.out, format, detection, func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "DISEASE\t%s\n", orDash(firstNonEmpty(detection.Disease, detection.DiseaseClass)))
			fmt.Fprintf(tw, "CATEGORY\t%s\n", orDash(detection.Category))
			fmt.Fprintf(tw, "CONFIDENCE\t%.1f%%\n", detection.Confidence)
			fmt.Fprintf(tw, "RECOMMENDATION\t%s\n", orDash(detection.Recommendation))
		})
	})
}
