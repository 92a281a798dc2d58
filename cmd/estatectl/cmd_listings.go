package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/EstateEmpire/estateempire-backend/client"
)

func (a *app) listingsCmd() *cobra.Command {
	var opts client.ListOptions
	cmd := &cobra.Command{
		Use:       "listings <rent|sale|mine>",
		Short:     "List available properties, or your own as an agent",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"rent", "sale", "mine"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				props []client.Property
				kind  client.ListKind
				err   error
			)
			switch args[0] {
			case "rent":
				props, err = a.api.ListForRent(cmd.Context(), opts)
				kind = client.KindForRent
			case "sale":
				props, err = a.api.ListForSale(cmd.Context(), opts)
				kind = client.KindForSale
			case "mine":
				props, err = a.api.MyListings(cmd.Context())
				kind = client.KindListings
			default:
				return fmt.Errorf("unknown listing kind %q", args[0])
			}
			if err != nil {
				return explain(err)
			}
			printProperties(cmd.OutOrStdout(), props, kind)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Location, "location", "", "filter by location")
	f.Int64Var(&opts.MinPrice, "min-price", 0, "minimum price")
	f.Int64Var(&opts.MaxPrice, "max-price", 0, "maximum price")
	f.IntVar(&opts.Bedrooms, "bedrooms", 0, "minimum bedrooms")
	f.IntVar(&opts.Limit, "limit", 0, "page size")
	f.IntVar(&opts.Offset, "offset", 0, "page offset")
	return cmd
}

func (a *app) listingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Show, add or remove a single listing",
	}
	cmd.AddCommand(a.listingShowCmd(), a.listingAddCmd(), a.listingRemoveCmd())
	return cmd
}

func (a *app) listingShowCmd() *cobra.Command {
	var listingType string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.api.GetProperty(cmd.Context(), id, listingType)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (#%d)\n", p.Name, p.ID)
			fmt.Fprintf(w, "  %s, %s, for %s\n", p.Type, p.Location, p.ListingType)
			fmt.Fprintf(w, "  %s, %d bed, %d bath, %s\n", formatKES(p.Price), p.Bedrooms, p.Bathrooms, p.Status)
			if p.AvailableUnits != nil {
				fmt.Fprintf(w, "  %d unit(s) available\n", *p.AvailableUnits)
			}
			if p.Description != "" {
				fmt.Fprintf(w, "\n%s\n", p.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listingType, "type", "", "rent or sale")
	return cmd
}

func (a *app) listingAddCmd() *cobra.Command {
	var (
		l     client.Listing
		units int
	)
	cmd := &cobra.Command{
		Use:   "add <rent|sale>",
		Short: "Publish a new listing (agents)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if units > 0 {
				l.Units = &units
			}
			p, err := a.api.CreateListing(cmd.Context(), args[0], l)
			if err != nil {
				return explain(err)
			}
			ok(cmd.OutOrStdout(), "Listed %s as #%d.", p.Name, p.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&l.Name, "name", "", "listing name")
	f.StringVar(&l.Type, "unit-type", "", "unit type, e.g. Bedsitter")
	f.Int64Var(&l.Price, "price", 0, "price in Ksh")
	f.StringVar(&l.Location, "location", "", "location")
	f.StringVar(&l.Description, "description", "", "description")
	f.StringVar(&l.Image, "image", "", "image URL")
	f.IntVar(&l.Bedrooms, "bedrooms", 0, "bedrooms")
	f.IntVar(&l.Bathrooms, "bathrooms", 0, "bathrooms")
	f.IntVar(&units, "units", 0, "units available (rent only)")
	return cmd
}

func (a *app) listingRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete one of your listings (agents)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.api.DeleteListing(cmd.Context(), id); err != nil {
				return explain(err)
			}
			ok(cmd.OutOrStdout(), "Deleted listing #%d.", id)
			return nil
		},
	}
}

func printProperties(w io.Writer, props []client.Property, kind client.ListKind) {
	if len(props) == 0 {
		fmt.Fprintln(w, client.EmptyState(kind))
		return
	}
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10), p.Name, p.Type, p.Location, formatKES(p.Price), strconv.Itoa(p.Bedrooms), p.Status,
		})
	}
	printTable(w, []string{"ID", "NAME", "TYPE", "LOCATION", "PRICE", "BEDS", "STATUS"}, rows)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid listing id %q", s)
	}
	return id, nil
}
