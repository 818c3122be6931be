package model

// Project is one entry of the input list
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TableKind identifies one output table
type TableKind string

const (
	TableTimeline TableKind = "timeline" // Approval/implementation milestones
	TableFinance  TableKind = "finance"  // Financing figures
	TableMeta     TableKind = "meta"     // Categorical metadata (GCF only)
)

// SheetName returns the workbook sheet name for the table
func (k TableKind) SheetName() string {
	switch k {
	case TableTimeline:
		return "Timeline"
	case TableFinance:
		return "Finance"
	case TableMeta:
		return "Meta"
	default:
		return string(k)
	}
}

// Taxonomy is the fixed, ordered list of field labels for one table.
// Order determines output column order.
type Taxonomy []string

// BaseHeader holds the identifying columns that precede every taxonomy
var BaseHeader = []string{"ID", "Project Name", "Project URL"}

// Header returns the full header row for a table with this taxonomy
func (t Taxonomy) Header() []string {
	header := make([]string, 0, len(BaseHeader)+len(t))
	header = append(header, BaseHeader...)
	return append(header, t...)
}
