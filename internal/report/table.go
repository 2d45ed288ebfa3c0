package report

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/smartpaddy/advisor/pkg/domain"
)

// Missing stands in for an empty history cell.
const Missing = "N/A"

// Data is a header row plus string cells, shared by the CLI tables and the
// TUI's bubbles tables.
type Data struct {
	Headers []string
	Rows    [][]string
}

// HistoryHeaders are the prediction history columns.
var HistoryHeaders = []string{
	"#", "Temperature", "Soil pH", "Rainfall", "Field Area",
	"Predicted Yield (kg/ha)", "Harvest Date", "Created At",
}

// UserHeaders are the admin user-list columns.
var UserHeaders = []string{"ID", "Email", "Role"}

// History tabulates entries in the order given, numbering from 1.
func History(entries []domain.PredictionHistoryEntry) Data {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		yield := Missing
		if e.PredictedYield != nil {
			yield = domain.FormatValue(*e.PredictedYield)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			domain.FormatValue(e.Temperature),
			domain.FormatValue(e.SoilPH),
			domain.FormatValue(e.Rainfall),
			domain.FormatValue(e.FieldArea),
			yield,
			orMissing(e.HarvestingDate),
			orMissing(e.CreatedAt),
		})
	}
	return Data{Headers: HistoryHeaders, Rows: rows}
}

// Users tabulates the admin user list.
func Users(users []domain.User) Data {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Email, string(u.Role)})
	}
	return Data{Headers: UserHeaders, Rows: rows}
}

// WriteTable renders data as a bordered text table.
func WriteTable(w io.Writer, data Data) error {
	table := tablewriter.NewTable(w)

	headers := make([]any, len(data.Headers))
	for i, h := range data.Headers {
		headers[i] = h
	}
	table.Header(headers...)

	for _, row := range data.Rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}
