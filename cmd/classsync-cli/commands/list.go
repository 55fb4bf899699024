package commands

import (
	"classsync-backend/internal/components/chrono"
	"classsync-backend/internal/scrapers/timetable"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	listCourse   *string
	listUpcoming *bool
	historyLimit *int
	publishAll   *bool
)

func init() {
	listCourse = listCmd.Flags().String("course", "", "Only list classes whose code starts with this.")
	listUpcoming = listCmd.Flags().Bool("upcoming", false, "Only list classes that have not ended yet.")
	historyLimit = historyCmd.Flags().Int("limit", 20, "How many runs to show.")
	publishAll = publishCmd.Flags().Bool("all", false, "Also publish classes that already happened.")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(publishCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--course <code>] [--upcoming]",
	Short: "Lists the classes in the local database.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp(cmd.Context())
		defer a.Close()

		records, err := a.service.Records(cmd.Context())
		if err != nil {
			fatal("failed to list classes", err)
		}

		now := a.clock.Now()
		loc := a.clock.Location()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Code", "Name", "Date", "Time", "Location", "Status"})
		for _, r := range records {
			if *listCourse != "" && !strings.HasPrefix(r.CourseCode, *listCourse) {
				continue
			}
			if *listUpcoming && r.EndTime.Before(now) {
				continue
			}
			span := timetable.TimeRange{Start: r.StartTime.In(loc), End: r.EndTime.In(loc)}
			t.AppendRow(table.Row{
				r.CourseCode,
				r.CourseName,
				span.Start.Format("Mon 02 Jan 2006"),
				span.String(),
				r.Location,
				r.Status.String(),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Shows attendance statistics computed from the local database.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp(cmd.Context())
		defer a.Close()

		stats, err := a.service.Statistics(cmd.Context())
		if err != nil {
			fatal("failed to compute statistics", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Total", stats.Total},
			{"Completed", stats.Completed},
			{"Absent", stats.Absent},
			{"Planned", stats.Planned},
			{"Attendance rate", percent(stats.AttendanceRate)},
			{"Portal class rate", percent(stats.WebClassRate)},
			{"Portal campus rate", percent(stats.WebCampusRate)},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>]",
	Short: "Shows the most recent sync runs.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp(cmd.Context())
		defer a.Close()

		runs, err := a.service.History(cmd.Context(), *historyLimit)
		if err != nil {
			fatal("failed to read history", err)
		}

		loc := a.clock.Location()
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Started", "Took", "Classes", "Error"})
		for _, r := range runs {
			t.AppendRow(table.Row{
				r.Id,
				r.Started.In(loc).Format(time.DateTime),
				r.Finished.Sub(r.Started).Round(time.Millisecond).String(),
				r.Records,
				r.Err,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish [--all]",
	Short: "Publishes stored classes as calendar entries.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp(cmd.Context())
		defer a.Close()

		from := chrono.StartOfDay(a.clock.Now())
		if *publishAll {
			from = time.Time{}
		}
		published, err := a.service.PublishSchedule(cmd.Context(), from)
		if err != nil {
			fatal("failed to publish schedule", err)
		}
		fmt.Println("published", published, "entries")
	},
}
