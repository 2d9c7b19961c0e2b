package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/dino-reserve/models"
	"github.com/yeremiapane/dino-reserve/services"
)

func newStatsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "show database statistics",
		Args:  cobra.NoArgs,
		RunE: withDB(env, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			st, err := env.reports().Stats(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\nDINO RESERVE DATABASE STATISTICS")
			table := newTable(out, "Metric", "Count")
			table.AppendBulk([][]string{
				{"Restaurants", strconv.FormatInt(st.Restaurants, 10)},
				{"Total Tables", strconv.FormatInt(st.Tables, 10)},
				{"Total Reservations", strconv.FormatInt(st.Reservations, 10)},
				{"Active Reservations", strconv.FormatInt(st.Reserved, 10)},
				{"Cancelled Reservations", strconv.FormatInt(st.Cancelled, 10)},
				{"Upcoming Reservations", strconv.FormatInt(st.Upcoming, 10)},
			})
			table.Render()
			return nil
		}),
	}
}

func newRestaurantsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "restaurants",
		Short: "list all restaurants with their current occupancy",
		Args:  cobra.NoArgs,
		RunE: withDB(env, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			rows, err := env.reports().Occupancy(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\nRESTAURANTS")
			table := newTable(out, "ID", "Name", "Location", "Dino Type", "Reserved/Total")
			for _, row := range rows {
				table.Append([]string{
					strconv.FormatUint(uint64(row.Restaurant.ID), 10),
					row.Restaurant.Name,
					row.Restaurant.Location,
					row.Restaurant.DinoType,
					fmt.Sprintf("%d/%d", row.ReservedTables, row.TotalTables),
				})
			}
			table.Render()
			return nil
		}),
	}
}

func newTablesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <restaurant_id>",
		Short: "list the tables of a restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: withDB(env, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("restaurant_id", args[0])
			if err != nil {
				return err
			}
			restaurant, board, err := env.reports().TableBoard(ctx, id, services.FromNow)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nTABLES FOR %s\n", strings.ToUpper(restaurant.Name))
			table := newTable(out, "Table #", "Capacity", "Status", "Customer")
			for _, t := range board {
				status, customer := "Available", "-"
				if t.IsReserved {
					status, customer = "Reserved", t.CurrentReservation.CustomerName
				}
				table.Append([]string{strconv.Itoa(t.TableNumber), strconv.Itoa(t.Capacity), status, customer})
			}
			table.Render()
			return nil
		}),
	}
}

func newReservationsCmd(env *Env) *cobra.Command {
	var limit int
	var status string
	cmd := &cobra.Command{
		Use:   "reservations",
		Short: "list recent reservations, newest first",
		Args:  cobra.NoArgs,
		RunE: withDB(env, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			if status != "" && !models.ValidStatus(status) {
				return fmt.Errorf("invalid --status %q: must be %s or %s", status, models.StatusReserved, models.StatusCancelled)
			}
			rows, err := env.reports().ListReservations(ctx, services.ReservationFilter{
				Status:      status,
				Limit:       limit,
				NewestFirst: true,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nRESERVATIONS (Last %d)\n", limit)
			table := newTable(out, "ID", "Restaurant", "Table", "Customer", "Phone", "Party", "Time", "Status")
			for _, r := range rows {
				table.Append([]string{
					strconv.FormatUint(uint64(r.ID), 10),
					restaurantName(r),
					tableLabel(r),
					r.CustomerName,
					r.Phone,
					strconv.Itoa(r.PartySize),
					formatTime(r.ReservationTime, env.Clock.Location),
					statusLabel(r.Status),
				})
			}
			table.Render()
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", services.DefaultReservationLimit, "number of results")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (reserved or cancelled)")
	return cmd
}

func newUpcomingCmd(env *Env) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "show upcoming reservations",
		Args:  cobra.NoArgs,
		RunE: withDB(env, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			reports := env.reports()
			rows, err := reports.Upcoming(ctx, days)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nUPCOMING RESERVATIONS (Next %d days)\n", days)
			if len(rows) == 0 {
				fmt.Fprintln(out, "No upcoming reservations!")
				return nil
			}
			table := newTable(out, "Restaurant", "Table", "Customer", "Party", "Time", "In")
			for _, r := range rows {
				table.Append([]string{
					restaurantName(r),
					tableLabel(r),
					r.CustomerName,
					strconv.Itoa(r.PartySize),
					formatTime(r.ReservationTime, env.Clock.Location),
					hoursUntil(reports.Since(r.ReservationTime)),
				})
			}
			table.Render()
			fmt.Fprintf(out, "\nTotal: %d reservations\n", len(rows))
			return nil
		}),
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of days ahead")
	return cmd
}

func restaurantName(r models.Reservation) string {
	if r.Table == nil || r.Table.Restaurant == nil {
		return "-"
	}
	return r.Table.Restaurant.Name
}

func tableLabel(r models.Reservation) string {
	if r.Table == nil {
		return fmt.Sprintf("Table id %d", r.TableID)
	}
	return fmt.Sprintf("Table %d", r.Table.TableNumber)
}
