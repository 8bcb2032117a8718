package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/bant-qualifier/internal/model"
)

var showHistory bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the latest evaluation for an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initSession(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.session.Select(args[0]); err != nil {
			return err
		}

		opp, _ := env.records.Get(args[0])
		printEvaluation(opp, *env.session.Current())

		if showHistory && len(opp.Records) > 1 {
			fmt.Printf("\nHistory (%d attempts):\n", len(opp.Records))
			for i, rec := range opp.Records {
				fmt.Printf("  %d. %s  score %.0f  %s\n",
					i+1,
					rec.Timestamp.Format("2006-01-02 15:04"),
					rec.Result.OverallScore,
					rec.Result.Verdict,
				)
			}
		}
		return nil
	},
}

func printEvaluation(opp model.Opportunity, ev model.Evaluation) {
	fmt.Printf("%s / %s\n", opp.Name, opp.CustomerName)
	fmt.Printf("Overall: %.0f/100 -> %s (%s)\n\n", ev.OverallScore, ev.Verdict, ev.Verdict.Label())

	for _, ds := range ev.DetailedScores {
		fmt.Printf("[%s] %.0f pts (%s)\n", ds.Category, ds.Score, ds.Progress)
		fmt.Printf("  %s\n", ds.Reasoning)
	}

	fmt.Printf("\n%s\n", ev.SummaryEvaluation)

	if len(ev.FutureActions) > 0 {
		fmt.Println("\nRecommended next actions:")
		for _, a := range ev.FutureActions {
			fmt.Printf("  - %s\n", a)
		}
	}
	if ev.MilestoneTip != "" {
		fmt.Printf("\nMilestone tip: %s\n", ev.MilestoneTip)
	}
	if ev.Strategy != "" {
		fmt.Printf("\nStrategy: %s\n", ev.Strategy)
	}
	if len(ev.RiskFactors) > 0 {
		fmt.Printf("\nRisk factors: %s\n", strings.Join(ev.RiskFactors, "; "))
	}
}

func init() {
	showCmd.Flags().BoolVar(&showHistory, "history", false, "list all prior qualification attempts")
	rootCmd.AddCommand(showCmd)
}
