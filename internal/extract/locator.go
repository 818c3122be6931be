package extract

import (
	"log/slog"

	"github.com/ppiankov/fundscrape/internal/model"
	"golang.org/x/net/html"
)

// Locate classifies every taxonomy field of t in doc. The second return is
// false when the table's primary container is missing, in which case the
// project is structurally invalid for this table and no outcomes are
// produced. Otherwise exactly len(t.Taxonomy) outcomes are returned.
func Locate(doc *html.Node, t *Table) ([]model.Outcome, bool) {
	container := t.Container(doc)
	if container == nil {
		return nil, false
	}

	outcomes := make([]model.Outcome, len(t.Taxonomy))
	for i, field := range t.Taxonomy {
		outcomes[i] = t.resolve(container, field)
	}
	return outcomes, true
}

func (t *Table) resolve(container *html.Node, field string) model.Outcome {
	item := t.Match(t.Items(container), t.Label, field)
	if item == nil {
		return model.LabelAbsent()
	}

	text, strategy, ok := t.Chain.Resolve(item)
	if !ok {
		return model.PresentButEmpty()
	}
	slog.Debug("field resolved", "table", t.Kind, "field", field, "strategy", strategy)

	if t.Normalize != nil {
		text = t.Normalize(text)
		if text == "" {
			return model.PresentButEmpty()
		}
	}
	return model.Value(text)
}

// Absent returns n LabelAbsent outcomes
func Absent(n int) []model.Outcome {
	outcomes := make([]model.Outcome, n)
	for i := range outcomes {
		outcomes[i] = model.LabelAbsent()
	}
	return outcomes
}
