package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an opportunity and its entire history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initSession(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		id := args[0]
		opp, ok := env.records.Get(id)
		if !ok {
			fmt.Printf("No opportunity with id %s.\n", id)
			return nil
		}

		// The confirmation gate lives here: the record store itself is
		// unconditionally destructive once invoked.
		if !deleteYes {
			fmt.Printf("Delete %q (%s) and all %d recorded attempts? [y/N] ", opp.Name, opp.CustomerName, len(opp.Records))
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := env.records.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Deleted %s.\n", id)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
