package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/dino-reserve/database"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
)

func newCancelCmd(env *Env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel <reservation_id>",
		Short: "cancel a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: withDB(env, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("reservation_id", args[0])
			if err != nil {
				return err
			}
			svc := env.reservations()
			res, err := svc.Get(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\nCancelling reservation:")
			fmt.Fprintf(out, "   Customer: %s\n", res.CustomerName)
			fmt.Fprintf(out, "   Time: %s\n", formatTime(res.ReservationTime, env.Clock.Location))

			if !yes && !confirm(cmd.InOrStdin(), out, "\nAre you sure?") {
				fmt.Fprintln(out, "Operation aborted")
				return nil
			}
			if _, err := svc.Cancel(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(out, "Reservation cancelled!")
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newCleanupCmd(env *Env) *cobra.Command {
	var days int
	var yes bool
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "delete old cancelled reservations",
		Args:  cobra.NoArgs,
		RunE: withDB(env, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			svc := env.reservations()
			count, err := svc.CountPurgeable(ctx, days)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if count == 0 {
				fmt.Fprintln(out, "No old cancelled reservations to clean up!")
				return nil
			}

			cutoff := svc.PurgeCutoff(days).In(env.Clock.Location).Format("2006-01-02")
			fmt.Fprintf(out, "\nFound %d old cancelled reservations (before %s)\n", count, cutoff)
			if !yes && !confirm(cmd.InOrStdin(), out, "Delete them?") {
				fmt.Fprintln(out, "Operation aborted")
				return nil
			}

			deleted, err := svc.Purge(ctx, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %d old reservations!\n", deleted)
			return nil
		}),
	}
	cmd.Flags().IntVar(&days, "days", 30, "delete cancelled reservations older than N days")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newSeedCmd(env *Env) *cobra.Command {
	var samples, past int
	var randSeed int64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "create the restaurants, their tables and sample reservations",
		Args:  cobra.NoArgs,
		RunE: withDB(env, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			created, err := database.SeedReference(ctx, env.DB)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(out, "Created restaurants with %d tables each\n", database.TablesPerRestaurant)
			} else {
				fmt.Fprintln(out, "Restaurants already exist, skipping")
			}

			if samples == 0 && past == 0 {
				return nil
			}
			if randSeed == 0 {
				randSeed = time.Now().UnixNano()
			}
			n, err := database.SeedSamples(ctx, env.DB, env.reservations(), database.SampleOptions{
				Upcoming: samples,
				Past:     past,
				Rand:     rand.New(rand.NewSource(randSeed)),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %d sample reservations\n", n)
			return nil
		}),
	}
	cmd.Flags().IntVar(&samples, "samples", 20, "number of upcoming sample reservations")
	cmd.Flags().IntVar(&past, "past", 10, "number of past sample reservations")
	cmd.Flags().Int64Var(&randSeed, "rand-seed", 0, "random seed for sample data (0 picks one)")
	return cmd
}

func newTokenCmd(env *Env) *cobra.Command {
	var ttl time.Duration
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "issue an admin bearer token signed with ADMIN_JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.prepare(false); err != nil {
				return err
			}
			if env.Config.AdminJWTSecret == "" {
				return errors.New("ADMIN_JWT_SECRET is not set")
			}
			token, err := utils.GenerateAdminToken([]byte(env.Config.AdminJWTSecret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&subject, "subject", "dinoctl", "subject recorded in the token")
	return cmd
}

func parseIDArg(name, raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &services.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return uint(id), nil
}
