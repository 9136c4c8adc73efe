package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/cosmetics-storefront/catalog"
	"github.com/aluiziolira/cosmetics-storefront/models"
)

func (a *app) catalogCommand() *cobra.Command {
	var (
		page     int
		search   string
		category string
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List one page of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			index, err := catalog.NewCategoryIndex(a.client, a.cfg.CategoryCacheSize)
			if err != nil {
				return err
			}
			b := catalog.NewBrowser(a.client, index)
			b.SetSearch(search)
			if err := b.SetCategory(ctx, category); err != nil {
				return report(cmd, "products", err)
			}

			fmt.Fprintln(out, "Loading products...")
			if err := b.Mount(ctx); err != nil {
				return report(cmd, "products", err)
			}
			if page != 1 {
				if !b.Pager().CanGoTo(page) {
					fmt.Fprintf(out, "Page %d is out of range, showing page %d of %d\n",
						page, b.Pager().Page(), b.Listing().TotalPages)
				} else if err := b.Pager().GoToPage(ctx, page); err != nil {
					return report(cmd, "products", err)
				}
			}

			renderListing(out, b.Listing())
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Catalog page to show")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter the page by name or description")
	cmd.Flags().StringVarP(&category, "category", "c", catalog.AllCategories, "Filter the page by category id")
	return cmd
}

func renderListing(out io.Writer, l catalog.Listing) {
	switch l.State {
	case catalog.ViewLoading:
		fmt.Fprintln(out, "Loading products...")
		return
	case catalog.ViewError:
		fmt.Fprintf(out, "Failed to load products: %v\n", l.Err)
		fmt.Fprintln(out, "Run the command again to retry.")
		return
	}

	fmt.Fprintln(out, l.Summary())
	if l.State == catalog.ViewEmpty {
		fmt.Fprintln(out, "No products found.")
		if l.Search != "" || l.Category != catalog.AllCategories {
			fmt.Fprintln(out, "Try clearing the search or category filter.")
		}
	}
	for _, p := range l.Items {
		renderProductLine(out, p, true)
	}
	fmt.Fprintf(out, "Page %d of %d\n", l.Page, l.TotalPages)
}

func renderProductLine(out io.Writer, p models.Product, showPrice bool) {
	price := "Login to view price"
	if showPrice {
		price = "₹" + p.Price.StringFixed(2)
	}
	line := fmt.Sprintf("  %-32s %-12s", p.Name, price)
	if p.CategoryName != "" {
		line += " " + p.CategoryName
	}
	if p.Featured {
		line += " *"
	}
	fmt.Fprintf(out, "%s  [%s]\n", strings.TrimRight(line, " "), p.ID)
}

func (a *app) productCommand() *cobra.Command {
	var (
		image       int
		option      int
		similarPage int
	)
	cmd := &cobra.Command{
		Use:   "product <id>",
		Short: "Show a product with its options and similar products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			d := catalog.NewDetail(a.client)
			fmt.Fprintln(out, "Loading product...")
			if err := d.Load(ctx, args[0]); err != nil {
				return report(cmd, "product", err)
			}
			if similarPage > 1 {
				if err := d.Similar().GoToPage(ctx, similarPage); err != nil {
					return report(cmd, "similar products", err)
				}
			}
			d.SelectImage(image)
			d.SelectOption(option)

			renderDetail(out, d, a.session.Authenticated(), a.cfg.WhatsAppNumber)
			return nil
		},
	}
	cmd.Flags().IntVar(&image, "image", 0, "Index of the image to show")
	cmd.Flags().IntVar(&option, "option", 0, "Index of the quantity option to select")
	cmd.Flags().IntVar(&similarPage, "similar-page", 1, "Page of similar products")
	return cmd
}

func renderDetail(out io.Writer, d *catalog.Detail, authenticated bool, whatsApp string) {
	p := d.Product()
	if p == nil {
		return
	}
	fmt.Fprintf(out, "%s [%s]\n", p.Name, p.ID)
	if p.Brand != "" {
		fmt.Fprintf(out, "Brand:    %s\n", p.Brand)
	}
	if p.CategoryName != "" {
		fmt.Fprintf(out, "Category: %s\n", p.CategoryName)
	}
	if authenticated {
		fmt.Fprintf(out, "Price:    ₹%s\n", p.Price.StringFixed(2))
	} else {
		fmt.Fprintln(out, "Price:    Login to view price")
	}
	fmt.Fprintf(out, "Image:    %s (%d of %d)\n", d.MainImage(), d.SelectedImage()+1, len(p.Images))

	selected := d.SelectedOptionIndex()
	fmt.Fprintln(out, "Options:")
	for i, o := range p.QuantityOptions {
		marker := " "
		if i == selected {
			marker = ">"
		}
		if authenticated {
			fmt.Fprintf(out, " %s %s (min %d) ₹%s\n", marker, o.Label, o.MinOrder, o.Price.StringFixed(2))
		} else {
			fmt.Fprintf(out, " %s %s (min %d) Login to view price\n", marker, o.Label, o.MinOrder)
		}
	}
	if len(p.Features) > 0 {
		fmt.Fprintln(out, "Features:")
		for _, f := range p.Features {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}
	fmt.Fprintf(out, "\nEnquire on WhatsApp: %s\n", d.WhatsAppURL(whatsApp, authenticated))

	similar := d.SimilarItems()
	if len(similar) == 0 {
		return
	}
	snap := d.Similar().Snapshot()
	fmt.Fprintf(out, "\nSimilar products (page %d of %d):\n", snap.Page, snap.TotalPages)
	for _, s := range similar {
		renderProductLine(out, s, authenticated)
	}
}

func (a *app) featuredCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "List featured products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Loading featured products...")
			products, err := a.client.FeaturedProducts(cmd.Context())
			if err != nil {
				return report(cmd, "featured products", err)
			}
			if len(products) == 0 {
				fmt.Fprintln(out, "No featured products.")
				return nil
			}
			for _, p := range products {
				renderProductLine(out, p, true)
				if p.ShortDescription != "" {
					fmt.Fprintf(out, "      %s\n", p.ShortDescription)
				}
			}
			return nil
		},
	}
}

func (a *app) categoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Loading categories...")
			categories, err := a.client.ListCategories(cmd.Context())
			if err != nil {
				return report(cmd, "categories", err)
			}
			if len(categories) == 0 {
				fmt.Fprintln(out, "No categories.")
			}
			for _, c := range categories {
				fmt.Fprintf(out, "  %-24s %s\n", c.ID, c.Name)
			}
			return nil
		},
	}
}

func (a *app) brandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List brands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Loading brands...")
			brands, err := a.client.ListBrands(cmd.Context())
			if err != nil {
				return report(cmd, "brands", err)
			}
			if len(brands) == 0 {
				fmt.Fprintln(out, "No brands.")
			}
			for _, b := range brands {
				fmt.Fprintf(out, "  %-24s %s\n", b.ID, b.Name)
			}
			return nil
		},
	}
}
