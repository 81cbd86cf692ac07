package export

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/debimpact/pkg/resolve"
)

// document is the JSON export layout: the report plus the flattened rows a
// spreadsheet would hold, keyed by package for scripting.
type document struct {
	*resolve.Report
	Packages map[string]Row `json:"packages"`
}

// WriteJSON encodes report as indented JSON.
func WriteJSON(w io.Writer, report *resolve.Report) error {
	doc := document{Report: report, Packages: make(map[string]Row, len(report.Entries))}
	for _, row := range Rows(report) {
		doc.Packages[row.Package] = row
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// ReadJSON decodes a report written by [WriteJSON].
func ReadJSON(r io.Reader) (*resolve.Report, error) {
	var report resolve.Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, err
	}
	return &report, nil
}
