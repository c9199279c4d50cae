// internal/report/report.go
package report

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"advocacy-workers/internal/eligibility"
)

const (
	StatusDraft = "draft"
	StatusError = "error"

	dateLayout = "2006-01-02"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc":             func(i int) int { return i + 1 },
	"housingLabel":    eligibility.HousingLabel,
	"employmentLabel": eligibility.EmploymentLabel,
	"circumstanceLabels": func(tags []string) string {
		labels := make([]string, 0, len(tags))
		for _, t := range tags {
			labels = append(labels, eligibility.CircumstanceLabel(t))
		}
		return strings.Join(labels, ", ")
	},
}).ParseFS(templateFS, "templates/*.tmpl"))

// ProfileSummary is a stored eligibility profile together with the
// identifiers a report is addressed to.
type ProfileSummary struct {
	ID            string `json:"id"`
	UserEmail     string `json:"userEmail"`
	MatchingScore int    `json:"matchingScore"`
	eligibility.Profile
}

// RunResult is the outcome of matching one profile in a batch run.
type RunResult struct {
	ProfileID  string `json:"profileId"`
	UserEmail  string `json:"userEmail"`
	MatchCount int    `json:"matchCount"`
	AvgScore   int    `json:"avgScore"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// BenefitsReport renders the markdown report sent to a user for review.
func BenefitsReport(profile ProfileSummary, matches []eligibility.Match, generated time.Time) (string, error) {
	return render("benefits_report.md.tmpl", map[string]interface{}{
		"Date":    generated.UTC().Format(dateLayout),
		"Profile": profile,
		"Matches": matches,
	})
}

// DailySummary renders the overview of a batch matching run.
func DailySummary(runID string, results []RunResult, date time.Time) (string, error) {
	var ok, failed []RunResult
	for _, r := range results {
		if r.Status == StatusError {
			failed = append(failed, r)
		} else {
			ok = append(ok, r)
		}
	}
	return render("daily_summary.md.tmpl", map[string]interface{}{
		"Date":       date.UTC().Format(dateLayout),
		"RunID":      runID,
		"Results":    results,
		"Successful": ok,
		"Failed":     failed,
	})
}

// FileName is the conventional name for a stored profile report.
func FileName(profileID string, generated time.Time) string {
	return fmt.Sprintf("profile-%s-%s.md", profileID, generated.UTC().Format(dateLayout))
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
