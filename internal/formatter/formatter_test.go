package formatter

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/tasks"
	th "github.com/desertthunder/plsplit/internal/testing"
)

func splitResult() *tasks.SplitResult {
	return &tasks.SplitResult{
		RunID:       "run-1",
		Origin:      "origin",
		Mode:        models.SplitByArtist,
		TotalTracks: 3,
		Buckets: []tasks.BucketResult{
			{Index: 0, Pool: "Rock", PlaylistID: "created-1", Created: true, TrackIDs: []string{"t1", "t3"}},
			{Index: 1, PlaylistID: "p2", TrackIDs: []string{}},
			{Index: 2, PlaylistID: "created-2", Created: true, Overflow: true, TrackIDs: []string{"t2"}},
		},
	}
}

func TestRenderTable(t *testing.T) {
	t.Run("split", func(t *testing.T) {
		output := RenderTable(splitResult())

		for _, want := range []string{"Pool", "Playlist", "Status", "Rock", "pool 2", "unmatched", "created-1", "p2", "created", "existing"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("dropped overflow", func(t *testing.T) {
		result := splitResult()
		result.Buckets[2].PlaylistID = ""
		result.Buckets[2].Created = false
		result.Dropped = []string{"t2"}

		output := RenderTable(result)
		if !strings.Contains(output, "dropped") {
			t.Errorf("expected dropped status, got:\n%s", output)
		}
	})

	t.Run("plan", func(t *testing.T) {
		result := splitResult()
		result.DryRun = true
		for i := range result.Buckets {
			result.Buckets[i].PlaylistID = ""
			result.Buckets[i].Created = false
		}

		output := RenderTable(result)
		if strings.Count(output, "planned") != 3 {
			t.Errorf("expected 3 planned rows, got:\n%s", output)
		}
	})

	t.Run("no headers", func(t *testing.T) {
		if got := renderTable(nil, [][]string{{"a"}}, nil); got != "" {
			t.Errorf("expected empty output, got %q", got)
		}
	})

	t.Run("headers keep their case", func(t *testing.T) {
		output := renderTable([]string{"Pool", "Tracks"}, [][]string{{"Rock", "2"}}, nil)
		if !strings.Contains(output, "Pool") || strings.Contains(output, "POOL") {
			t.Errorf("expected title case headers, got:\n%s", output)
		}
	})

	t.Run("short rows are padded", func(t *testing.T) {
		output := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
		if !strings.Contains(output, "only") {
			t.Errorf("expected row value, got:\n%s", output)
		}
	})
}

func TestRenderLabels(t *testing.T) {
	output := RenderLabels([]models.LabelCount{{Label: "Sub Pop", Albums: 3}, {Label: "", Albums: 1}})

	for _, want := range []string{"Label", "Albums", "Sub Pop", "3", "(none)"} {
		if !strings.Contains(output, want) {
			t.Errorf("table missing %q, got:\n%s", want, output)
		}
	}
}

func TestRenderPlaylists(t *testing.T) {
	output := RenderPlaylists([]models.Playlist{
		{ID: "p1", Name: "Mix", TrackCount: 12, Public: true},
		{ID: "p2", Name: "Private Mix", TrackCount: 0},
	})

	for _, want := range []string{"p1", "Mix", "12", "public", "private"} {
		if !strings.Contains(output, want) {
			t.Errorf("table missing %q, got:\n%s", want, output)
		}
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(splitResult())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Run: run-1") {
			t.Errorf("text missing run id, got: %s", output)
		}
		if !strings.Contains(output, "3 tracks from origin split by artist, wrote 3 playlists") {
			t.Errorf("text missing summary, got: %s", output)
		}
		if !strings.Contains(output, "1. Rock -> created-1 (2 tracks, created)") {
			t.Errorf("text missing first bucket, got: %s", output)
		}
		if strings.Contains(output, "Dropped") {
			t.Errorf("text should not list dropped tracks")
		}
	})

	t.Run("ExportToText with dropped tracks", func(t *testing.T) {
		result := splitResult()
		result.Buckets[2].PlaylistID = ""
		result.Dropped = []string{"t2"}

		data, err := ExportToText(result)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if !strings.Contains(string(data), "Dropped: t2") {
			t.Errorf("text missing dropped tracks, got: %s", data)
		}
	})

	t.Run("ExportToText plan", func(t *testing.T) {
		result := splitResult()
		result.DryRun = true

		data, err := ExportToText(result)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if !strings.Contains(string(data), "would write 3 playlists") {
			t.Errorf("text missing plan summary, got: %s", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(splitResult())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"# Split run-1", "**Origin**: origin", "**Mode**: artist", "## 1. Rock", "1. t1", "2. t3", "## 2. pool 2", "_empty_"} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown missing %q, got:\n%s", want, output)
			}
		}
	})
}

func TestWriteReport(t *testing.T) {
	t.Run("WithDefaultPath", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteReport(splitResult(), "")
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if path != "run-1.txt" {
			t.Errorf("expected run-1.txt, got %s", path)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Run: run-1") {
			t.Errorf("report missing run id")
		}
	})

	t.Run("Markdown in nested directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "split.md")

		written, err := WriteReport(splitResult(), path)
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}

		th.AssertDirExists(t, filepath.Dir(written))
		if content := th.MustReadFile(t, written); !strings.HasPrefix(content, "# Split run-1") {
			t.Errorf("expected markdown report, got: %s", content)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "split.json")

		if _, err := WriteReport(splitResult(), path); err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}

		var decoded tasks.SplitResult
		if err := json.Unmarshal([]byte(th.MustReadFile(t, path)), &decoded); err != nil {
			t.Fatalf("invalid JSON report: %v", err)
		}
		if decoded.RunID != "run-1" || len(decoded.Buckets) != 3 {
			t.Errorf("unexpected decoded report: %+v", decoded)
		}
	})

	t.Run("unwritable path", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := WriteReport(splitResult(), dir); err == nil {
			t.Error("expected error writing to a directory path")
		}
	})
}
