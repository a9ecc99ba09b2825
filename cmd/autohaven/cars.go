package main

import (
	"fmt"
	"text/tabwriter"

	"autohaven/internal/domain/filter"
	"autohaven/internal/domain/model"

	"github.com/spf13/cobra"
)

func newCarsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cars",
		Short: "List, show and manage car listings",
	}
	cmd.AddCommand(
		newCarsListCmd(a),
		newCarsGetCmd(a),
		newCarsCreateCmd(a),
		newCarsUpdateCmd(a),
		newCarsDeleteCmd(a),
	)
	return cmd
}

func newCarsListCmd(a *app) *cobra.Command {
	var (
		page, limit        int
		carMake            string
		priceMin, priceMax float64
		yearMin, yearMax   int
		asJSON             bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cars, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := filter.Criteria{Make: carMake}
			flags := cmd.Flags()
			if flags.Changed("price-min") {
				criteria.PriceMin = filter.Float(priceMin)
			}
			if flags.Changed("price-max") {
				criteria.PriceMax = filter.Float(priceMax)
			}
			if flags.Changed("year-min") {
				criteria.YearMin = filter.Int(yearMin)
			}
			if flags.Changed("year-max") {
				criteria.YearMax = filter.Int(yearMax)
			}

			res, err := a.session.ListCars(cmd.Context(), page, limit, criteria)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tYEAR\tMAKE\tMODEL\tPRICE\tMILEAGE\tAVAILABLE")
			for _, l := range res.Items {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.2f\t%.0f\t%t\n",
					l.ID, l.Year, l.Make, l.Model, l.Price, l.Mileage, l.IsAvailable)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			p := res.Pagination
			fmt.Fprintf(cmd.OutOrStdout(), "page %d (limit %d), %d matching\n", p.Page, p.Limit, p.Total)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&page, "page", 1, "page number")
	f.IntVar(&limit, "limit", 10, "page size (max 100)")
	f.StringVar(&carMake, filter.KeyMake, "", "make contains (case-insensitive)")
	f.Float64Var(&priceMin, "price-min", 0, "minimum price")
	f.Float64Var(&priceMax, "price-max", 0, "maximum price")
	f.IntVar(&yearMin, "year-min", 0, "earliest model year")
	f.IntVar(&yearMax, "year-max", 0, "latest model year")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newCarsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one car",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			car, err := a.session.GetCar(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), car)
		},
	}
}

// listingFlags binds the editable listing fields. Only flags the user set
// end up in the patch.
type listingFlags struct {
	carMake, carModel, fuelType, transmission string
	imageURL, description                     string
	year                                      int
	price, mileage                            float64
	features                                  []string
	available                                 bool
}

func (lf *listingFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&lf.carMake, "make", "", "manufacturer")
	f.StringVar(&lf.carModel, "model", "", "model name")
	f.IntVar(&lf.year, "year", 0, "model year")
	f.Float64Var(&lf.price, "price", 0, "asking price")
	f.Float64Var(&lf.mileage, "mileage", 0, "odometer reading")
	f.StringVar(&lf.fuelType, "fuel-type", "", "fuel type, e.g. Gasoline")
	f.StringVar(&lf.transmission, "transmission", "", "transmission, e.g. Automatic")
	f.StringVar(&lf.imageURL, "image-url", "", "photo URL")
	f.StringVar(&lf.description, "description", "", "free-text description")
	f.StringSliceVar(&lf.features, "feature", nil, "feature (repeatable)")
	f.BoolVar(&lf.available, "available", true, "listing is available")
}

func (lf *listingFlags) patch(cmd *cobra.Command) model.ListingPatch {
	f := cmd.Flags()
	var p model.ListingPatch
	str := func(name string, v string, dst **string) {
		if f.Changed(name) {
			*dst = &v
		}
	}
	str("make", lf.carMake, &p.Make)
	str("model", lf.carModel, &p.Model)
	str("fuel-type", lf.fuelType, &p.FuelType)
	str("transmission", lf.transmission, &p.Transmission)
	str("image-url", lf.imageURL, &p.ImageURL)
	str("description", lf.description, &p.Description)
	if f.Changed("year") {
		p.Year = &lf.year
	}
	if f.Changed("price") {
		p.Price = &lf.price
	}
	if f.Changed("mileage") {
		p.Mileage = &lf.mileage
	}
	if f.Changed("feature") {
		p.Features = &lf.features
	}
	if f.Changed("available") {
		p.IsAvailable = &lf.available
	}
	return p
}

func newCarsCreateCmd(a *app) *cobra.Command {
	lf := &listingFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a car (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := lf.patch(cmd)
			if fields.Features == nil {
				none := []string{}
				fields.Features = &none
			}
			car, err := a.session.CreateCar(cmd.Context(), fields)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), car)
		},
	}
	lf.bind(cmd)
	return cmd
}

func newCarsUpdateCmd(a *app) *cobra.Command {
	lf := &listingFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a car (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			car, err := a.session.UpdateCar(cmd.Context(), args[0], lf.patch(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), car)
		},
	}
	lf.bind(cmd)
	return cmd
}

func newCarsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a car (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.DeleteCar(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
			return nil
		},
	}
}
