package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/domain/profile"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	"github.com/kailas-cloud/schemefinder/internal/repository/jsonfile"
	catalogus "github.com/kailas-cloud/schemefinder/internal/usecase/catalog"
	matchuc "github.com/kailas-cloud/schemefinder/internal/usecase/match"
)

func newMatchCmd() *cobra.Command {
	var (
		data     string
		state    string
		category string
		gender   string
		age      int
		income   float64
		text     string
		tag      string
		sortBy   string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank the dataset for a profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prof, err := profile.New(state, scheme.Category(category), scheme.Gender(gender), age, income)
			if err != nil {
				return err
			}
			order, err := matchuc.ParseSort(sortBy)
			if err != nil {
				return err
			}

			catalog := catalogus.New(jsonfile.New(data), zap.NewNop())
			res, err := matchuc.New(catalog).Results(cmd.Context(), matchuc.Query{
				Profile: prof,
				Text:    text,
				Tag:     tag,
				Sort:    order,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d of %d eligible schemes for %s/%s/%s age %d income %.0f\n",
				len(res.Matches), res.Eligible, prof.State, prof.Category, prof.Gender, prof.Age, prof.Income)
			if len(res.Matches) == 0 {
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCORE\tSLUG\tNAME\tSTATES")
			for _, m := range res.Matches {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
					m.Score, m.Scheme.Slug, m.Scheme.Name, strings.Join(m.Scheme.States.Values(), ","))
			}
			if len(res.Tags) > 0 {
				fmt.Fprintf(tw, "\ntags: %s\n", strings.Join(res.Tags, ", "))
			}
			return tw.Flush()
		},
	}

	def := profile.Default()
	cmd.Flags().StringVar(&data, "data", "data/schemes.json", "JSON dataset")
	cmd.Flags().StringVar(&state, "state", def.State, "state id")
	cmd.Flags().StringVar(&category, "category", string(def.Category), "profile category")
	cmd.Flags().StringVar(&gender, "gender", string(def.Gender), "male, female or other")
	cmd.Flags().IntVar(&age, "age", def.Age, "age in years")
	cmd.Flags().Float64Var(&income, "income", def.Income, "annual household income")
	cmd.Flags().StringVarP(&text, "query", "q", "", "case-insensitive text filter")
	cmd.Flags().StringVar(&tag, "tag", "", "only schemes with this tag")
	cmd.Flags().StringVar(&sortBy, "sort", string(matchuc.SortBest), "best or name")
	return cmd
}
