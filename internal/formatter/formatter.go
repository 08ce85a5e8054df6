// package formatter renders split results and cache listings as terminal tables and exports reports as text, Markdown or JSON
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/shared"
	"github.com/desertthunder/plsplit/internal/tasks"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const (
	statusCreated  = "created"
	statusExisting = "existing"
	statusPlanned  = "planned"
	statusDropped  = "dropped"
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// BucketLabel names a bucket for display: its pool name, "pool N" or "unmatched".
func BucketLabel(b tasks.BucketResult) string {
	switch {
	case b.Overflow:
		return "unmatched"
	case b.Pool != "":
		return b.Pool
	default:
		return fmt.Sprintf("pool %d", b.Index+1)
	}
}

// BucketStatus describes what happened to a bucket's destination.
func BucketStatus(result *tasks.SplitResult, b tasks.BucketResult) string {
	switch {
	case b.Overflow && len(result.Dropped) > 0 && b.PlaylistID == "":
		return statusDropped
	case result.DryRun && b.PlaylistID == "":
		return statusPlanned
	case b.Created:
		return statusCreated
	default:
		return statusExisting
	}
}

func playlistCell(b tasks.BucketResult) string {
	if b.PlaylistID == "" {
		return "-"
	}
	return b.PlaylistID
}

// RenderTable renders one row per bucket of result.
func RenderTable(result *tasks.SplitResult) string {
	rows := make([][]string, 0, len(result.Buckets))
	for _, b := range result.Buckets {
		rows = append(rows, []string{
			strconv.Itoa(b.Index + 1),
			BucketLabel(b),
			playlistCell(b),
			strconv.Itoa(len(b.TrackIDs)),
			BucketStatus(result, b),
		})
	}

	return renderTable(
		[]string{"#", "Pool", "Playlist", "Tracks", "Status"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

// RenderLabels renders the label cache summary.
func RenderLabels(counts []models.LabelCount) string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		label := c.Label
		if label == "" {
			label = "(none)"
		}
		rows = append(rows, []string{label, strconv.Itoa(c.Albums)})
	}
	return renderTable([]string{"Label", "Albums"}, rows, []columnAlignment{alignLeft, alignRight})
}

// RenderPlaylists renders a playlist listing.
func RenderPlaylists(playlists []models.Playlist) string {
	rows := make([][]string, 0, len(playlists))
	for _, p := range playlists {
		rows = append(rows, []string{p.ID, p.Name, strconv.Itoa(p.TrackCount), visibility(p.Public)})
	}
	return renderTable(
		[]string{"ID", "Name", "Tracks", "Visibility"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func visibility(public bool) string {
	if public {
		return "public"
	}
	return "private"
}

func summaryLine(result *tasks.SplitResult) string {
	if result.DryRun {
		n := len(result.Buckets)
		if len(result.Dropped) > 0 {
			n--
		}
		return fmt.Sprintf("%d tracks from %s split by %s, would write %d playlists",
			result.TotalTracks, result.Origin, result.Mode, n)
	}
	return fmt.Sprintf("%d tracks from %s split by %s, wrote %d playlists",
		result.TotalTracks, result.Origin, result.Mode, result.Written())
}

// ExportToText converts a SplitResult to plain text
func ExportToText(result *tasks.SplitResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Run: %s\n", result.RunID)
	fmt.Fprintf(&buf, "%s\n\n", summaryLine(result))

	for _, b := range result.Buckets {
		fmt.Fprintf(&buf, "%d. %s -> %s (%d tracks, %s)\n",
			b.Index+1, BucketLabel(b), playlistCell(b), len(b.TrackIDs), BucketStatus(result, b))
	}

	if len(result.Dropped) > 0 {
		fmt.Fprintf(&buf, "\nDropped: %s\n", strings.Join(result.Dropped, ", "))
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a SplitResult to Markdown with one section per bucket listing its track ids
func ExportToMarkdown(result *tasks.SplitResult) ([]byte, error) {
	var buf bytes.Buffer

	title := "Split"
	if result.DryRun {
		title = "Split plan"
	}
	fmt.Fprintf(&buf, "# %s %s\n\n", title, result.RunID)
	fmt.Fprintf(&buf, "**Origin**: %s\n", result.Origin)
	fmt.Fprintf(&buf, "**Mode**: %s\n", result.Mode)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", result.TotalTracks)

	for _, b := range result.Buckets {
		fmt.Fprintf(&buf, "## %d. %s\n\n", b.Index+1, BucketLabel(b))
		fmt.Fprintf(&buf, "**Playlist**: %s (%s)\n\n", playlistCell(b), BucketStatus(result, b))
		if len(b.TrackIDs) == 0 {
			buf.WriteString("_empty_\n\n")
			continue
		}
		for i, id := range b.TrackIDs {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, id)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// Export renders result in the format matching the extension of path: .md, .json or plain text.
func Export(result *tasks.SplitResult, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return ExportToMarkdown(result)
	case ".json":
		return shared.MarshalJSON(result, true)
	default:
		return ExportToText(result)
	}
}

// WriteReport exports result to path and returns the path written.
//
// Defaults to {run_id}.txt in the working directory; missing parent directories are created.
func WriteReport(result *tasks.SplitResult, path string) (string, error) {
	if path == "" {
		path = result.RunID + ".txt"
	}

	data, err := Export(result, path)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
