package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/bant-qualifier/internal/model"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show the committed category weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initSession(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		printWeights(env.weights.Get())
		return nil
	},
}

var weightsSetCmd = &cobra.Command{
	Use:   "set category=value ...",
	Short: "Update category weights",
	Long: `Updates one or more category weights and commits the result. Each weight
must stay within [0, 30] and the five weights must sum to exactly 100; an
invalid draft leaves the committed configuration untouched.

  bantq weights set budget=30 authority=25 need=25 timeline=10 competition=10`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initSession(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		session := env.session
		if err := session.OpenSettings(); err != nil {
			return err
		}

		for _, arg := range args {
			category, value, err := parseAssignment(arg)
			if err != nil {
				return err
			}
			if err := session.ProposeWeight(category, value); err != nil {
				return err
			}
		}

		if err := session.SaveSettings(ctx); err != nil {
			return err
		}

		fmt.Println("Weights committed.")
		printWeights(env.weights.Get())
		return nil
	},
}

func parseAssignment(arg string) (model.Category, int, error) {
	name, raw, ok := strings.Cut(arg, "=")
	if !ok {
		return "", 0, eris.Errorf("expected category=value, got %q", arg)
	}
	category, err := model.ParseCategory(name)
	if err != nil {
		return "", 0, err
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", 0, eris.Wrapf(err, "parse weight for %s", category)
	}
	return category, value, nil
}

func printWeights(w model.BantWeights) {
	for _, c := range model.Categories {
		fmt.Printf("  %-12s %d\n", c, w.Weight(c))
	}
	fmt.Printf("  %-12s %d\n", "total", w.Sum())
}

func init() {
	weightsCmd.AddCommand(weightsSetCmd)
	rootCmd.AddCommand(weightsCmd)
}
