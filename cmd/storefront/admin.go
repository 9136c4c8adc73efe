package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/cosmetics-storefront/api"
	"github.com/aluiziolira/cosmetics-storefront/models"
	"github.com/aluiziolira/cosmetics-storefront/parser"
)

func (a *app) adminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Back-office catalog and account management",
	}

	category := &cobra.Command{Use: "category", Short: "Manage categories"}
	category.AddCommand(a.adminCategoryAddCommand(), a.adminCategoryEditCommand(), a.adminCategoryDeleteCommand())

	product := &cobra.Command{Use: "product", Short: "Manage products"}
	product.AddCommand(a.adminProductAddCommand(), a.adminProductUpdateCommand(), a.adminProductDeleteCommand())

	brand := &cobra.Command{Use: "brand", Short: "Manage brands"}
	brand.AddCommand(a.adminBrandAddCommand())

	cmd.AddCommand(category, product, brand,
		a.adminUserStatusCommand("approve", "Approve a pending registration", models.UserApproved, (*api.Client).ApproveUser),
		a.adminUserStatusCommand("reject", "Reject a pending registration", models.UserRejected, (*api.Client).RejectUser),
	)
	return cmd
}

// readUpload loads a local image for a multipart upload.
func readUpload(path string) (models.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Upload{}, errors.Wrap(err, "read image")
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return models.Upload{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (a *app) adminCategoryAddCommand() *cobra.Command {
	var name, image string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a category with an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var upload models.Upload
			if image != "" {
				var err error
				if upload, err = readUpload(image); err != nil {
					return fail("reading category image", err)
				}
			}
			created, err := a.admin.CreateCategory(cmd.Context(), name, upload)
			if err != nil {
				return report(cmd, "category", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category created: %s [%s]\n", created.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Category name")
	cmd.Flags().StringVar(&image, "image", "", "Path to the category image")
	return cmd
}

func (a *app) adminCategoryEditCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.admin.UpdateCategory(cmd.Context(), args[0], name); err != nil {
				return report(cmd, "category", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Category updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New category name")
	return cmd
}

func (a *app) adminCategoryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.admin.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return report(cmd, "category", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Category deleted.")
			return nil
		},
	}
}

func (a *app) adminProductAddCommand() *cobra.Command {
	var (
		form   models.ProductForm
		images []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Images = form.Images[:0]
			for _, path := range images {
				upload, err := readUpload(path)
				if err != nil {
					return fail("reading product image", err)
				}
				form.Images = append(form.Images, upload)
			}
			created, err := a.admin.CreateProduct(cmd.Context(), form)
			if err != nil {
				return report(cmd, "product", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product created: %s [%s]\n", created.Name, created.ID)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&form.Name, "name", "", "Product name")
	flags.StringVar(&form.Description, "description", "", "Product description")
	flags.StringVar(&form.CategoryID, "category", "", "Category id")
	flags.StringVar(&form.Brand, "brand", "", "Brand name")
	flags.BoolVar(&form.Featured, "featured", false, "Show on the home page")
	flags.StringVar(&form.Points, "points", "", "Feature bullets, one per line")
	flags.StringVar(&form.Variants, "variants", "", `Variants as JSON, e.g. [{"price":"120","quantity":"12"}]`)
	flags.StringVar(&form.Pricing.Single, "price-single", "", "Single unit price")
	flags.StringVar(&form.Pricing.Dozen, "price-dozen", "", "Dozen price")
	flags.StringVar(&form.Pricing.Carton, "price-carton", "", "Carton price")
	flags.StringArrayVar(&images, "image", nil, "Path to a product image (repeatable, up to 5)")
	return cmd
}

func (a *app) adminProductUpdateCommand() *cobra.Command {
	var (
		name, description, category, brand, points, variants string
		featured                                             bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a product; only the given flags are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var update models.ProductUpdate
			if flags.Changed("name") {
				update.Name = &name
			}
			if flags.Changed("description") {
				update.Description = &description
			}
			if flags.Changed("category") {
				update.CategoryID = &category
			}
			if flags.Changed("brand") {
				update.Brand = &brand
			}
			if flags.Changed("featured") {
				update.Featured = &featured
			}
			if flags.Changed("points") {
				update.Points = parser.SplitPoints(points)
			}
			if flags.Changed("variants") {
				if err := json.Unmarshal([]byte(variants), &update.Variants); err != nil {
					return report(cmd, "product", api.ValidationError{Field: "variants", Message: "Invalid variants JSON"})
				}
			}

			if err := a.admin.UpdateProduct(cmd.Context(), args[0], update); err != nil {
				return report(cmd, "product", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Product updated.")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "Product name")
	flags.StringVar(&description, "description", "", "Product description")
	flags.StringVar(&category, "category", "", "Category id")
	flags.StringVar(&brand, "brand", "", "Brand name")
	flags.BoolVar(&featured, "featured", false, "Show on the home page")
	flags.StringVar(&points, "points", "", "Feature bullets, one per line")
	flags.StringVar(&variants, "variants", "", "Variants as JSON")
	return cmd
}

func (a *app) adminProductDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.admin.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return report(cmd, "product", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Product deleted.")
			return nil
		},
	}
}

func (a *app) adminBrandAddCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a brand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.admin.CreateBrand(cmd.Context(), name)
			if err != nil {
				return report(cmd, "brand", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Brand created: %s [%s]\n", created.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Brand name")
	return cmd
}

func (a *app) adminUserStatusCommand(use, short, status string, apply func(*api.Client, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apply(a.admin, cmd.Context(), args[0]); err != nil {
				return report(cmd, "user", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s %s.\n", args[0], status)
			return nil
		},
	}
}
