package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked opportunities with their latest verdict",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initSession(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		opps := env.records.List()
		if len(opps) == 0 {
			fmt.Println("No opportunities tracked yet. Run 'bantq qualify' to start.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCUSTOMER\tSCORE\tVERDICT\tHISTORY\tLAST CHECKED")
		for _, o := range opps {
			latest := o.Latest()
			fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%s (%s)\t%d\t%s\n",
				o.ID,
				o.Name,
				o.CustomerName,
				latest.Result.OverallScore,
				latest.Result.Verdict,
				latest.Result.Verdict.Label(),
				len(o.Records),
				latest.Timestamp.Format("2006-01-02 15:04"),
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
