package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/bant-qualifier/internal/model"
)

var (
	qualifyID        string
	qualifyInputFile string
	qualifyProject   string
	qualifyCustomer  string
	qualifyDealSize  string
	qualifyBudget    string
	qualifyAuthority string
	qualifyNeed      string
	qualifyTimeline  string
	qualifyCompete   string
)

var qualifyCmd = &cobra.Command{
	Use:   "qualify",
	Short: "Submit a qualification attempt for evaluation",
	Long: `Submits a qualification form to the evaluation provider and records the
result. Without --id a new opportunity is created; with --id a new attempt
is appended to the existing opportunity's history and unset flags fall back
to its most recent submission.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initSession(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		session := env.session
		if qualifyID != "" {
			if err := session.Select(qualifyID); err != nil {
				return err
			}
			if err := session.Revalidate(); err != nil {
				return err
			}
		} else {
			if err := session.StartNew(); err != nil {
				return err
			}
		}

		input, err := buildInput(session.FormSeed())
		if err != nil {
			return err
		}

		fmt.Println("Evaluating opportunity...")
		if err := session.Submit(ctx, input); err != nil {
			return err
		}

		opp, _ := env.records.Get(session.SelectedID())
		printEvaluation(opp, *session.Current())
		fmt.Printf("\nRecorded as %s (attempt %d).\n", opp.ID, len(opp.Records))
		return nil
	},
}

// buildInput assembles the qualification input from --input JSON, the form
// seed (prior submission on re-qualification), and explicit flags, in
// ascending precedence.
func buildInput(seed *model.QualificationInput) (model.QualificationInput, error) {
	var input model.QualificationInput
	if seed != nil {
		input = *seed
	}

	if qualifyInputFile != "" {
		data, err := os.ReadFile(qualifyInputFile)
		if err != nil {
			return input, eris.Wrap(err, "read input file")
		}
		if err := json.Unmarshal(data, &input); err != nil {
			return input, eris.Wrap(err, "parse input file")
		}
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&input.ProjectName, qualifyProject)
	set(&input.CustomerName, qualifyCustomer)
	set(&input.DealSize, qualifyDealSize)
	set(&input.Budget, qualifyBudget)
	set(&input.Authority, qualifyAuthority)
	set(&input.Need, qualifyNeed)
	set(&input.Timeline, qualifyTimeline)
	set(&input.Competition, qualifyCompete)

	return input, nil
}

func init() {
	qualifyCmd.Flags().StringVar(&qualifyID, "id", "", "re-qualify an existing opportunity")
	qualifyCmd.Flags().StringVar(&qualifyInputFile, "input", "", "JSON file with the qualification form")
	qualifyCmd.Flags().StringVar(&qualifyProject, "project", "", "project name")
	qualifyCmd.Flags().StringVar(&qualifyCustomer, "customer", "", "customer name")
	qualifyCmd.Flags().StringVar(&qualifyDealSize, "deal-size", "", "estimated deal size")
	qualifyCmd.Flags().StringVar(&qualifyBudget, "budget", "", "budget status narrative")
	qualifyCmd.Flags().StringVar(&qualifyAuthority, "authority", "", "decision-maker access narrative")
	qualifyCmd.Flags().StringVar(&qualifyNeed, "need", "", "pain point narrative")
	qualifyCmd.Flags().StringVar(&qualifyTimeline, "timeline", "", "adoption timeline narrative")
	qualifyCmd.Flags().StringVar(&qualifyCompete, "competition", "", "competitive position narrative")
	rootCmd.AddCommand(qualifyCmd)
}
