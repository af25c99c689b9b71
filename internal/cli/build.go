package cli

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	mydb "github.com/yumyai/mutlookup/pkg/db"
	"github.com/yumyai/mutlookup/pkg/model"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		proteins []string
		sources  []string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build date matrices from the strain mutation tables",
		Long: `Read <data>/<source>/<protein>/<source>_<protein>_strain_mutations.csv and
write <source>_<protein>_date_matrix.csv next to it. Rows whose date list
cannot be parsed are skipped and counted. A pair whose input is missing
fails on its own; the other pairs are still built.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := parseProteins(proteins)
			if err != nil {
				return err
			}
			ss, err := parseSources(sources)
			if err != nil {
				return err
			}

			mdb, err := mydb.NewMatrixDB(a.cfg.Data)
			if err != nil {
				return err
			}

			reports, buildErr := model.BuildAll(mdb, ss, ps)
			if len(reports) > 0 {
				if err := writeBuildReports(cmd, reports); err != nil {
					return err
				}
			}
			return buildErr
		},
	}

	cmd.Flags().StringSliceVarP(&proteins, "protein", "p", nil, "Protein(s) to build (default: all)")
	cmd.Flags().StringSliceVarP(&sources, "source", "s", nil, "Source(s) to build (default: all)")
	return cmd
}

func parseProteins(raw []string) ([]model.Protein, error) {
	if len(raw) == 0 {
		return model.ALL_PROTEINS, nil
	}
	out := make([]model.Protein, 0, len(raw))
	for _, r := range raw {
		p, err := model.ParseProtein(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseSources(raw []string) ([]model.Source, error) {
	if len(raw) == 0 {
		return model.ALL_SOURCES, nil
	}
	out := make([]model.Source, 0, len(raw))
	for _, r := range raw {
		s, err := model.ParseSource(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func writeBuildReports(cmd *cobra.Command, reports []model.BuildReport) error {
	data := pterm.TableData{{"Source", "Protein", "Rows", "Skipped", "Strains", "Dates", "Sequences", "Bytes", "Output"}}
	for _, r := range reports {
		data = append(data, []string{
			r.Source.DisplayName(),
			string(r.Protein),
			strconv.Itoa(r.RowsRead),
			strconv.Itoa(r.RowsSkipped),
			strconv.Itoa(r.Strains),
			strconv.Itoa(r.Dates),
			strconv.Itoa(r.Sequences),
			strconv.FormatInt(r.Bytes, 10),
			r.Output,
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
	return err
}
