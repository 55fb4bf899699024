package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(purgeCmd)
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Deletes every class from the local database.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp(cmd.Context())
		defer a.Close()

		err := a.service.ClearAll(cmd.Context())
		if err != nil {
			fatal("failed to clear classes", err)
		}
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge <course_code>",
	Short: "Deletes every class of one course from the local database.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp(cmd.Context())
		defer a.Close()

		deleted, err := a.service.PurgeCourse(cmd.Context(), args[0])
		if err != nil {
			fatal("failed to purge course", err)
		}
		fmt.Println("deleted", deleted, "classes")
	},
}
