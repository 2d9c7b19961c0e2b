// Package cli implements dinoctl, the operator tool for inspecting and
// maintaining the reservation store.
package cli

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/dino-reserve/config"
	"github.com/yeremiapane/dino-reserve/database"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
	"gorm.io/gorm"
)

// Env is the state shared by every command. A zero Config is loaded from the
// environment, a nil DB is opened from it and a zero Clock follows the
// system clock.
type Env struct {
	Config config.Config
	DB     *gorm.DB
	Clock  services.Clock
}

func (env *Env) reports() *services.ReportService {
	return services.NewReportService(env.DB, env.Clock)
}

func (env *Env) reservations() *services.ReservationService {
	return services.NewReservationService(env.DB, env.Clock, nil)
}

// prepare loads configuration and opens the store unless the caller has
// already provided them.
func (env *Env) prepare(needDB bool) error {
	if env.Config.AppName == "" {
		_ = godotenv.Load()
		env.Config = config.Load()
		if err := utils.InitLogger(env.Config.LogLevel, env.Config.LogFile); err != nil {
			return err
		}
	}
	if env.Clock.Now == nil {
		env.Clock = services.SystemClock(env.Config.Location())
	}
	if env.Clock.Location == nil {
		env.Clock.Location = time.Local
	}
	if !needDB || env.DB != nil {
		return nil
	}

	db, err := config.InitDB(env.Config)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	env.DB = db
	return nil
}

// NewRootCommand assembles dinoctl. Pass a zero Env to read configuration
// from the environment.
func NewRootCommand(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "dinoctl",
		Short: "Dino Reserve database manager",
		Long: `Inspect and maintain the Dino Reserve reservation store.

Examples:
  dinoctl stats              # show database statistics
  dinoctl restaurants        # list all restaurants
  dinoctl tables 1           # show tables for restaurant 1
  dinoctl reservations       # list recent reservations
  dinoctl upcoming           # show upcoming reservations
  dinoctl cancel 42          # cancel reservation #42
  dinoctl cleanup            # remove old cancelled reservations
`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newStatsCmd(env),
		newRestaurantsCmd(env),
		newTablesCmd(env),
		newReservationsCmd(env),
		newUpcomingCmd(env),
		newCancelCmd(env),
		newCleanupCmd(env),
		newSeedCmd(env),
		newTokenCmd(env),
	)
	return root
}

func withDB(env *Env, run func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := env.prepare(true); err != nil {
			return err
		}
		return run(cmd.Context(), cmd, args)
	}
}
