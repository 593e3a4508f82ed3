package export

import (
	"fmt"
	"strings"
	"time"
)

// Report is a fixed tabular dataset offered for download as delimited text.
type Report struct {
	ID            int
	Name          string
	Description   string
	Type          string
	LastGenerated string
	Data          [][]string
}

// ToDelimitedText joins rows into a newline-delimited, comma-separated
// blob. Embedded delimiters are not escaped, a known limitation of this
// boundary; the built-in report datasets contain none.
func ToDelimitedText(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}

// Filename derives the report download name: lower-cased report name with
// whitespace runs collapsed to underscores, plus the export date.
func (r Report) Filename(day time.Time) string {
	name := strings.Join(strings.Fields(strings.ToLower(r.Name)), "_")
	return fmt.Sprintf("%s_%s.csv", name, day.Format("2006-01-02"))
}

// Reports returns the built-in report catalog.
func Reports() []Report {
	return []Report{
		{
			ID:            1,
			Name:          "Monthly Certificates Report",
			Description:   "Summary of certificates issued in the last month",
			Type:          "Excel",
			LastGenerated: "2024-03-08",
			Data: [][]string{
				{"Certificate ID", "Student Name", "Issue Date", "Status"},
				{"CERT001", "John Doe", "2024-03-01", "Issued"},
				{"CERT002", "Jane Smith", "2024-03-02", "Pending"},
				{"CERT003", "Mike Johnson", "2024-03-03", "Issued"},
			},
		},
		{
			ID:            2,
			Name:          "User Activity Report",
			Description:   "Details of user interactions and downloads",
			Type:          "Excel",
			LastGenerated: "2024-03-07",
			Data: [][]string{
				{"User ID", "Name", "Action", "Date"},
				{"USR001", "John Doe", "Download Certificate", "2024-03-01"},
				{"USR002", "Jane Smith", "View Certificate", "2024-03-02"},
				{"USR003", "Mike Johnson", "Request Certificate", "2024-03-03"},
			},
		},
		{
			ID:            3,
			Name:          "Certificate Analytics",
			Description:   "Analytics and trends of certificate issuance",
			Type:          "Excel",
			LastGenerated: "2024-03-06",
			Data: [][]string{
				{"Month", "Certificates Issued", "Downloads", "Active Users"},
				{"January", "150", "300", "450"},
				{"February", "180", "360", "520"},
				{"March", "210", "420", "600"},
			},
		},
	}
}
