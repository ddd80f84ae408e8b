// Package export builds the admin console's spreadsheet downloads: comments
// with their moderation status and survey feedback, written as dated xlsx
// files.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/reelhouse/reelhouse/internal/api"
)

const filenamePrefix = "REELHOUSE"

// Filename returns the download name for an export generated on the given
// day, e.g. REELHOUSE_20260829.xlsx.
func Filename(now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", filenamePrefix, now.Format("20060102"))
}

var commentHeader = []string{"ID", "Video", "User", "Comment", "Status", "Created"}

// Comments writes one sheet of comment rows to w in xlsx format.
func Comments(w io.Writer, comments []api.Comment) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Comments"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, title := range commentHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, c := range comments {
		user := c.UserName
		if user == "" {
			user = c.UserID
		}
		video := c.VideoTitle
		if video == "" {
			video = c.VideoID
		}
		row := []any{c.ID, video, user, c.Text, c.Status, c.CreatedAt.Format(time.RFC3339)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

var feedbackHeader = []string{"Video", "User", "Ratings", "Text", "Submitted"}

// Feedback writes one sheet of survey submissions to w in xlsx format.
// Rating maps are flattened to "key=value" pairs in key order, since the
// film and general surveys carry different rating sets.
func Feedback(w io.Writer, subs []api.FeedbackSubmission) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Feedback"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, title := range feedbackHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, sub := range subs {
		submitted := ""
		if sub.SubmittedAt != nil {
			submitted = sub.SubmittedAt.Format(time.RFC3339)
		}
		row := []any{sub.VideoID, sub.UserID, flattenRatings(sub.Ratings), sub.Text, submitted}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func flattenRatings(ratings map[string]int) string {
	keys := make([]string, 0, len(ratings))
	for k := range ratings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, ratings[k])
	}
	return strings.Join(parts, ", ")
}
