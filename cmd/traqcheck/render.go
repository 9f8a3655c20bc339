package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/traqcheck/intake-client/internal/batch"
	"github.com/traqcheck/intake-client/internal/domain"
	"github.com/traqcheck/intake-client/internal/events"
)

const timeLayout = "2006-01-02 15:04:05"

// progressRenderer prints status transitions as a view changes.
type progressRenderer struct {
	out io.Writer

	mu   sync.Mutex
	last map[string]string
}

func newProgressRenderer(out io.Writer) *progressRenderer {
	return &progressRenderer{out: out, last: make(map[string]string)}
}

// HandleEvent implements events.EventHandler.
func (r *progressRenderer) HandleEvent(_ context.Context, event *events.ViewEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Kind {
	case events.KindSnapshotReplaced:
		if r.last[event.CandidateID] == event.Status {
			return nil
		}
		r.last[event.CandidateID] = event.Status
		_, err := fmt.Fprintf(r.out, "%s  status: %s\n", event.CandidateID, event.Status)
		return err
	case events.KindPreviewChanged:
		_, err := fmt.Fprintf(r.out, "%s  preview updated\n", event.CandidateID)
		return err
	case events.KindPollEnded:
		var ended events.PollEnded
		if err := event.UnmarshalPayload(&ended); err != nil {
			return err
		}
		if ended.Error != "" {
			_, err := fmt.Fprintf(r.out, "%s  polling stopped: %s\n", event.CandidateID, ended.Error)
			return err
		}
		_, err := fmt.Fprintf(r.out, "%s  polling %s\n", event.CandidateID, ended.Outcome)
		return err
	}
	return nil
}

func printSnapshot(w io.Writer, s *domain.Snapshot, preview *domain.Preview) {
	if s == nil {
		fmt.Fprintln(w, "no snapshot")
		return
	}

	fmt.Fprintf(w, "Candidate  %s\n", s.ID)
	fmt.Fprintf(w, "Status     %s\n", s.Status)

	fields := []struct {
		field domain.Field
		value string
	}{
		{domain.FieldName, s.Extracted.Name},
		{domain.FieldEmail, s.Extracted.Email},
		{domain.FieldPhone, s.Extracted.Phone},
		{domain.FieldCompany, s.Extracted.Company},
		{domain.FieldDesignation, s.Extracted.Designation},
		{domain.FieldSkills, strings.Join(s.Extracted.Skills, ", ")},
	}

	table := newTable(w, "Field", "Value", "Confidence")
	for _, f := range fields {
		table.Append([]string{string(f.field), dash(f.value), confidence(s.Confidence, f.field)})
	}
	table.Render()

	if len(s.Documents) > 0 {
		fmt.Fprintln(w, "\nDocuments")
		docs := newTable(w, "Type", "File", "Uploaded", "Verified")
		for _, d := range s.Documents {
			docs.Append([]string{
				string(d.Type),
				d.Filename,
				d.UploadedAt.Format(timeLayout),
				fmt.Sprintf("%t", d.Verified),
			})
		}
		docs.Render()
	}

	if preview != nil {
		fmt.Fprintln(w)
		printPreview(w, preview)
	}
}

func printPreview(w io.Writer, p *domain.Preview) {
	fmt.Fprintf(w, "Subject: %s\n\n%s\n\nSMS: %s\n", p.Subject, strings.TrimRight(p.EmailBody, "\n"), p.SMSBody)
	switch {
	case p.Error != "":
		fmt.Fprintf(w, "Delivery failed: %s\n", p.Error)
	case p.Delivered():
		if at, ok := p.SentTime(); ok {
			fmt.Fprintf(w, "Sent at %s\n", at.Format(timeLayout))
		} else {
			fmt.Fprintln(w, "Sent")
		}
	}
}

func printSummaries(w io.Writer, summaries []domain.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "no candidates")
		return
	}
	table := newTable(w, "ID", "Name", "Email", "Company", "Status", "Updated")
	for _, s := range summaries {
		table.Append([]string{
			string(s.ID),
			dash(s.Name),
			dash(s.Email),
			dash(s.Company),
			string(s.Status),
			s.UpdatedAt.Format(timeLayout),
		})
	}
	table.Render()
}

func printSaved(w io.Writer, saved []domain.SavedDocument) {
	table := newTable(w, "ID", "Type", "File")
	for _, d := range saved {
		table.Append([]string{d.ID, string(d.Type), d.Filename})
	}
	table.Render()
}

func printBatchResults(w io.Writer, results []batch.Result) {
	sorted := append([]batch.Result(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	table := newTable(w, "File", "Candidate", "Status", "Result")
	for _, r := range sorted {
		status := "-"
		if r.Snapshot != nil {
			status = string(r.Snapshot.Status)
		}
		outcome := r.Outcome.String()
		if r.Err != nil {
			outcome = r.Err.Error()
		}
		table.Append([]string{r.Name, dash(string(r.CandidateID)), status, outcome})
	}
	table.Render()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	return table
}

func confidence(c domain.Confidence, f domain.Field) string {
	score, ok := c.Score(f)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", score*100)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
