package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tanami-dev/tanami/internal/client"
)

// NewProductsCmd creates the products command
func NewProductsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"ls"},
		Short:   "List marketplace products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProducts(cmd.Context(), format)
		},
	}

	addOutputFlag(cmd, &format)

	return cmd
}

func runProducts(ctx context.Context, format string, opts ...RunOption) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	return run(ctx, opts, func(rc *runConfig) error {
		products, err := rc.env.Client.Products(ctx)
		if err != nil {
			return explain(err)
		}

		if len(products) == 0 && format == FormatTable {
			fmt.Fprintln(rc.out, "No products found.")
			fmt.Fprintln(rc.out, "\nList a product with: tanami sell --name <name> --price <price> --image <file>")
			return nil
		}

		return render(rc.out, format, products, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "ID\tNAME\tPRICE\tFARMER\tDESCRIPTION")
			fmt.Fprintln(tw, "──\t────\t─────\t──────\t───────────")
			for _, p := range products {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					p.ID,
					p.Name,
					formatPrice(p.Price),
					farmerName(p.Farmer),
					truncate(p.Description, 48),
				)
			}
		})
	})
}

// NewSellCmd creates the sell command
func NewSellCmd() *cobra.Command {
	var product client.NewProduct
	var imagePath string

	cmd := &cobra.Command{
		Use:     "sell",
		Short:   "List a product for sale (petani accounts)",
		Example: `  tanami sell --name "Cabai Rawit" --price 45000 --description "Cabai segar, per kg" --image cabai.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSell(cmd.Context(), product, imagePath)
		},
	}

	cmd.Flags().StringVar(&product.Name, "name", "", "Product name")
	cmd.Flags().StringVar(&product.Price, "price", "", "Price in rupiah")
	cmd.Flags().StringVar(&product.Description, "description", "", "Product description")
	cmd.Flags().StringVar(&imagePath, "image", "", "Product photo")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runSell(ctx context.Context, product client.NewProduct, imagePath string, opts ...RunOption) error {
	image, f, err := client.OpenFile(imagePath)
	if err != nil {
		return err
	}
	defer f.Close()
	product.Image = image

	return run(ctx, opts, func(rc *runConfig) error {
		if _, err := rc.env.Client.AddProduct(ctx, product); err != nil {
			return explain(err)
		}

		fmt.Fprintf(rc.out, "✓ Product '%s' listed for %s\n", product.Name, formatPrice(product.Price))
		return nil
	})
}

func farmerName(f *client.Farmer) string {
	if f == nil {
		return "-"
	}
	return orDash(f.Name)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
