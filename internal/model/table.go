package model

// Record is one output row: the project identity plus one outcome per
// taxonomy field
type Record struct {
	ID       string
	Name     string
	URL      string
	Outcomes []Outcome
}

// Row renders the record as output cells
func (r Record) Row() []string {
	row := make([]string, 0, len(BaseHeader)+len(r.Outcomes))
	row = append(row, r.ID, r.Name, r.URL)
	for _, o := range r.Outcomes {
		row = append(row, o.String())
	}
	return row
}

// Table is an append-only sequence of records for one taxonomy
type Table struct {
	Kind     TableKind
	Taxonomy Taxonomy
	Records  []Record
}

// NewTable creates an empty table
func NewTable(kind TableKind, taxonomy Taxonomy) *Table {
	return &Table{Kind: kind, Taxonomy: taxonomy}
}

// Append adds a record to the end of the table
func (t *Table) Append(r Record) {
	t.Records = append(t.Records, r)
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.Records)
}

// Header returns the header row
func (t *Table) Header() []string {
	return t.Taxonomy.Header()
}

// Rows renders every record in order
func (t *Table) Rows() [][]string {
	rows := make([][]string, len(t.Records))
	for i, r := range t.Records {
		rows[i] = r.Row()
	}
	return rows
}

// Clone returns a copy that shares no record slice with t
func (t *Table) Clone() *Table {
	records := make([]Record, len(t.Records))
	copy(records, t.Records)
	return &Table{Kind: t.Kind, Taxonomy: t.Taxonomy, Records: records}
}
