package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/skiron-cli/internal/dataset"
	"github.com/KaramelBytes/skiron-cli/internal/task"
	"github.com/KaramelBytes/skiron-cli/internal/utils"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <data.csv>",
	Short: "List the header columns and record count of a data file",
	Long:  "Inspect prints the lowercased column names a task file can refer to in scal, vec and datetime.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		headers, err := task.ReadHeader(path)
		if err != nil {
			return err
		}
		rows, err := dataset.CountRows(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s, %s records, %d columns\n", path,
			humanize.Bytes(uint64(utils.FileSize(path))), humanize.Comma(int64(rows)), len(headers))
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.AppendHeader(table.Row{"#", "Column"})
		for i, h := range headers {
			tbl.AppendRow(table.Row{strconv.Itoa(i + 1), h})
		}
		fmt.Fprintln(out, tbl.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
