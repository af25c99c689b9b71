package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	mydb "github.com/yumyai/mutlookup/pkg/db"
	"github.com/yumyai/mutlookup/pkg/handler/request"
	"github.com/yumyai/mutlookup/pkg/model"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		protein string
		binning string
		mode    string
	)

	cmd := &cobra.Command{
		Use:   "query MUTATION[,MUTATION...]",
		Short: "Print the prevalence of strains carrying every given mutation",
		Long: `Select strains whose label contains every mutation (AND) and print the
per-source counts and the binned timeline. RBD positions above the
configured offset are renumbered first, so N501Y is looked up as N171Y.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := request.LookupForm{
				Protein:   protein,
				Mutations: strings.Join(args, ","),
				Binning:   request.NewBinning(binning),
				Mode:      request.NewCountMode(mode),
				Scale:     model.ScaleLinear,
			}
			req, err := form.ToModel()
			if err != nil {
				return err
			}

			mdb, err := mydb.NewMatrixDB(a.cfg.Data)
			if err != nil {
				return err
			}
			res, err := model.NewLookup(mdb, a.remap()).Run(req)
			if err != nil {
				return err
			}
			return writeLookupResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&protein, "protein", "p", string(model.ProteinMpro), "Protein: mpro, plpro or rbd")
	cmd.Flags().StringVarP(&binning, "binning", "b", string(model.BinWeekly), "Time binning: daily, weekly or monthly")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(model.ModeRelative), "Count type: absolute or relative")
	return cmd
}

func writeLookupResult(w io.Writer, res *model.LookupResult) error {
	fmt.Fprintf(w, "%s: %s", res.Protein.DisplayName(), strings.Join(res.Mutations, ", "))
	if strings.Join(res.AdjustedTokens, ",") != strings.Join(res.Mutations, ",") {
		fmt.Fprintf(w, " (looked up as %s)", strings.Join(res.AdjustedTokens, ", "))
	}
	fmt.Fprintln(w)

	for _, r := range res.Results {
		if !r.Found {
			fmt.Fprintf(w, "%s: mutation(s) not found in %d strains\n", r.Source.DisplayName(), r.MatrixRows)
			continue
		}
		fmt.Fprintf(w, "%s: %d sequences, %d unique strains, prevalence %.2f%%\n",
			r.Source.DisplayName(), r.SequenceCount, r.UniqueStrains, r.Prevalence*100)
	}
	if !res.AnyFound() || len(res.Results) == 0 {
		return nil
	}

	header := []string{"Period"}
	for _, r := range res.Results {
		header = append(header, r.Source.DisplayName(), "Total")
	}
	data := pterm.TableData{header}
	for i, pc := range res.Results[0].Series {
		row := []string{pc.Period.Label}
		for _, r := range res.Results {
			row = append(row, formatValue(r.Series[i], res.Mode), strconv.Itoa(r.Series[i].Total))
		}
		data = append(data, row)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithRightAlignment().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

func formatValue(pc model.PeriodCount, mode model.CountMode) string {
	if mode == model.ModeAbsolute {
		return strconv.Itoa(pc.Matched)
	}
	return strconv.FormatFloat(pc.Relative, 'f', 2, 64) + "%"
}
