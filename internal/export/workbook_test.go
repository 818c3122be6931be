package export

import (
	"path/filepath"
	"testing"

	"github.com/ppiankov/fundscrape/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTables() []*model.Table {
	timeline := model.NewTable(model.TableTimeline, model.Taxonomy{"Received", "Closed"})
	timeline.Append(model.Record{
		ID: "FP001", Name: "Example Project", URL: "https://example.org/FP001",
		Outcomes: []model.Outcome{model.Value("2021-01-01"), model.LabelAbsent()},
	})

	finance := model.NewTable(model.TableFinance, model.Taxonomy{"Grant", "Co-Financing"})
	finance.Append(model.Record{
		ID: "FP001", Name: "Example Project", URL: "https://example.org/FP001",
		Outcomes: []model.Outcome{model.Value("25000000"), model.PresentButEmpty()},
	})

	return []*model.Table{timeline, finance}
}

func TestWorkbook_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, NewWorkbook(path).Write(sampleTables()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.Equal(t, []string{"Timeline", "Finance"}, f.GetSheetList())

	rows, err := f.GetRows("Timeline")
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"ID", "Project Name", "Project URL", "Received", "Closed"},
		{"FP001", "Example Project", "https://example.org/FP001", "2021-01-01", "na"},
	}, rows)

	raw, err := f.GetCellValue("Finance", "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Equal(t, "25000000", raw)

	typ, err := f.GetCellType("Finance", "D2")
	require.NoError(t, err)
	require.NotEqual(t, excelize.CellTypeSharedString, typ)
	require.NotEqual(t, excelize.CellTypeInlineString, typ)

	for _, cell := range []string{"E2", "A2"} {
		typ, err := f.GetCellType("Finance", cell)
		require.NoError(t, err)
		require.Equal(t, excelize.CellTypeSharedString, typ, "cell %s should stay text", cell)
	}

	width, err := f.GetColWidth("Timeline", "B")
	require.NoError(t, err)
	require.Equal(t, 30.0, width)

	width, err = f.GetColWidth("Finance", "D")
	require.NoError(t, err)
	require.Equal(t, 12.0, width)
}

func TestWorkbook_EmptyTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	tables := []*model.Table{
		model.NewTable(model.TableTimeline, model.Taxonomy{"A"}),
		model.NewTable(model.TableFinance, model.Taxonomy{"B"}),
		model.NewTable(model.TableMeta, model.Taxonomy{"C"}),
	}
	require.NoError(t, NewWorkbook(path).Write(tables))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.Equal(t, []string{"Timeline", "Finance", "Meta"}, f.GetSheetList())
	rows, err := f.GetRows("Meta")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"ID", "Project Name", "Project URL", "C"}}, rows)
}

func TestWorkbook_UnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "out.xlsx")
	require.Error(t, NewWorkbook(path).Write(sampleTables()))
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		in   string
		want interface{}
	}{
		{"1234567", 1234567.0},
		{"12.5", 12.5},
		{"-3", -3.0},
		{"na", "na"},
		{"pm", "pm"},
		{"NaN", "NaN"},
		{"inf", "inf"},
		{"2021-01-01", "2021-01-01"},
		{"FP001", "FP001"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, CellValue(tt.in))
		})
	}
}
