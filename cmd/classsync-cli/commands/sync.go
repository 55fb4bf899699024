package commands

import (
	"classsync-backend/internal/classsync"
	"classsync-backend/internal/components/chrono"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var syncForce *bool

func init() {
	syncForce = syncCmd.Flags().Bool("force", false, "Ignore any cached result.")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(watchCmd)
}

func printResult(result classsync.Result) {
	switch {
	case result.NoClasses:
		fmt.Println("the portal says there are no classes scheduled")
	case result.Cached:
		fmt.Printf("%d classes (cached from %s)\n", len(result.Records), result.FetchedAt.Format("2006-01-02 15:04"))
	default:
		fmt.Printf("synced %d classes from %s\n", len(result.Records), result.Source)
	}
}

var syncCmd = &cobra.Command{
	Use:   "sync [--force]",
	Short: "Fetches the schedule from the portal and merges it into the local database.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp(cmd.Context())
		defer a.Close()

		result, err := a.service.FetchAndSync(cmd.Context(), *syncForce)
		if err != nil {
			fatal("failed to sync", err)
		}
		printResult(result)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Syncs now and then again every refresh interval until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a := openApp(ctx)
		defer a.Close()

		cron := chrono.NewStandardCron(a.tel, a.clock)
		defer cron.Stop()

		refresher := classsync.NewRefresher(a.service, cron, a.tel)
		err := refresher.Start(ctx)
		if err != nil {
			fatal("failed to schedule refresh", err)
		}
		defer refresher.Stop()

		result, err := refresher.Tick(ctx)
		if err != nil {
			slog.Warn("initial sync failed", "err", err.Error())
		} else {
			printResult(result)
		}

		<-ctx.Done()
		slog.Info("stopping watch")
	},
}
