package merger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ginjaninja78/txtmerge/internal/config"
	"github.com/ginjaninja78/txtmerge/internal/types"
)

func newMerger(t *testing.T) *Merger {
	t.Helper()
	m, err := New(config.Default(), zap.NewNop())
	require.NoError(t, err)
	return m
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// =============================================================================
// CONCATENATION
// =============================================================================

func TestAppendLines(t *testing.T) {
	target := []string{"x\n"}
	source := []string{"y\n", "z\n"}

	got := AppendLines(target, source)

	assert.Equal(t, []string{"x\n", "y\n", "z\n"}, got)
	assert.Equal(t, []string{"x\n"}, target, "inputs are not modified")
}

func TestJoinText(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		sources []string
		want    string
	}{
		{"trims and single newline", "a\n", []string{"  b  \n"}, "a\nb"},
		{"collapses blank boundaries", "a\n\n\n", []string{"\n\nb\n\n", "\nc"}, "a\nb\nc"},
		{"keeps interior blank lines", "a", []string{"b\n\nc\n"}, "a\nb\n\nc"},
		{"empty target", "  \n", []string{" b "}, "b"},
		{"empty source still separates", "a", []string{"", "b"}, "a\n\nb"},
		{"target leading whitespace kept", "  a\n", []string{"b"}, "  a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinText(tt.target, tt.sources...))
		})
	}
}

func TestDocument_StringTerminatesInnerLines(t *testing.T) {
	doc := NewLineDocument(AppendLines([]string{"a\n", "b"}, []string{"c\n", "d"}))

	assert.Equal(t, "a\nb\nc\nd", doc.String())
	assert.Equal(t, 4, doc.LineCount())
}

func TestDocument_TextLines(t *testing.T) {
	doc := NewTextDocument("a\nb")
	assert.Equal(t, []string{"a\n", "b"}, doc.Lines())
	assert.Equal(t, types.ModeJoin, doc.Mode())
}

// =============================================================================
// MERGE
// =============================================================================

func TestMerge_ListAppend(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt",
		`"15","20231215","A","100"`+"\n"+
			`"15","20240110","B","200"`+"\n")
	src1 := writeFile(t, dir, "jan.txt",
		`"15","20240110","B","250"`+"\n"+
			"trailer line\n")
	src2 := writeFile(t, dir, "feb.txt", `"15","20240201","C","300"`+"\n")

	res, err := newMerger(t).Merge(Request{
		TargetPath:  target,
		SourcePaths: []string{src1, src2},
		Mode:        types.ModeAppend,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusMerged, res.Status)
	assert.Equal(t, []string{"12-2023", "01-2024"}, res.Months)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, []int{2, 3}, res.Duplicates[0].Positions)
	assert.Equal(t, `"15","20240110","B"`, res.Duplicates[0].Key)

	want := `"15","20231215","A","100"` + "\n" +
		`"15","20240110","B","200"` + "\n" +
		`"15","20240110","B","250"` + "\n" +
		"trailer line\n" +
		`"15","20240201","C","300"` + "\n"
	assert.Equal(t, want, readFile(t, target))
	assert.Equal(t, 5, res.LinesWritten)
	assert.Equal(t, len(want), res.BytesWritten)
	require.Len(t, res.Files, 3)
	assert.Equal(t, []FileInfo{
		{Path: src1, Encoding: "UTF-8", Lines: 2},
		{Path: src2, Encoding: "UTF-8", Lines: 1},
	}, res.Sources())
	assert.NotEmpty(t, res.RunID)
}

func TestMerge_StringJoin(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", "a\n")
	src := writeFile(t, dir, "src.txt", "  b  \n")

	res, err := newMerger(t).Merge(Request{
		TargetPath:  target,
		SourcePaths: []string{src},
		Mode:        types.ModeJoin,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusMerged, res.Status)
	assert.Equal(t, "a\nb", readFile(t, target))
	assert.Nil(t, res.Duplicates, "string-join does not run duplicate detection")
	assert.Contains(t, res.Notes, "No months found in the target file.")
}

func TestMerge_FallbackEncodingWrittenAsUTF8(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", "\"15\",\"20240101\",\"K\xf8be\",\"1\"\n")
	src := writeFile(t, dir, "src.txt", "\"15\",\"20240102\",\"Salg\",\"2\"\n")

	res, err := newMerger(t).Merge(Request{TargetPath: target, SourcePaths: []string{src}})
	require.NoError(t, err)

	assert.True(t, res.Files[0].FellBack)
	assert.Equal(t, "\"15\",\"20240101\",\"Købe\",\"1\"\n\"15\",\"20240102\",\"Salg\",\"2\"\n", readFile(t, target))
}

func TestMerge_DateRangeFiltersMonths(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt",
		`"15","20240131","x","1"`+"\n"+
			`"15","20240201","y","1"`+"\n"+
			`"15","20240301","z","1"`+"\n")
	src := writeFile(t, dir, "src.txt", "")

	rng := types.NewDateRange(
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	res, err := newMerger(t).Merge(Request{
		TargetPath:  target,
		SourcePaths: []string{src},
		DateRange:   &rng,
		DryRun:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"02-2024", "03-2024"}, res.Months)
}

func TestMerge_SourceReadFailureLeavesTargetUntouched(t *testing.T) {
	dir := t.TempDir()
	original := "\"15\",\"20240101\",\"A\",\"1\"\n"
	target := writeFile(t, dir, "target.txt", original)
	good := writeFile(t, dir, "good.txt", "\"15\",\"20240102\",\"B\",\"1\"\n")
	missing := filepath.Join(dir, "missing.txt")

	writes := 0
	m := newMerger(t)
	m.replace = func(string, []byte) error { writes++; return nil }

	res, err := m.Merge(Request{TargetPath: target, SourcePaths: []string{good, missing}})

	require.Error(t, err)
	assert.Nil(t, res)
	var ioErr *types.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, missing, ioErr.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Zero(t, writes)
	assert.Equal(t, original, readFile(t, target))
}

func TestMerge_MissingTarget(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "src.txt", "x\n")

	_, err := newMerger(t).Merge(Request{
		TargetPath:  filepath.Join(dir, "missing.txt"),
		SourcePaths: []string{src},
	})

	var ioErr *types.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Op)
}

func TestMerge_WriteFailureIsIOError(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", "a\n")
	src := writeFile(t, dir, "src.txt", "b\n")

	m := newMerger(t)
	m.replace = func(path string, _ []byte) error {
		return &types.IOError{Op: "write", Path: path, Err: fs.ErrPermission}
	}

	_, err := m.Merge(Request{TargetPath: target, SourcePaths: []string{src}})

	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Equal(t, "a\n", readFile(t, target))
}

func TestMerge_NoSelection(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", "keep\n")

	tests := []struct {
		name string
		req  Request
		msg  string
	}{
		{"no sources", Request{TargetPath: target}, "No files selected."},
		{"blank sources", Request{TargetPath: target, SourcePaths: []string{"", "  "}}, "No files selected."},
		{"no target", Request{SourcePaths: []string{target}}, "No target file selected."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newMerger(t).Merge(tt.req)
			require.NoError(t, err)
			assert.Equal(t, StatusNoSelection, res.Status)
			assert.Equal(t, tt.msg, res.Message)
			assert.Equal(t, "keep\n", readFile(t, target))
		})
	}
}

func TestMerge_DryRunDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", "a\n")
	src := writeFile(t, dir, "src.txt", "b\n")

	res, err := newMerger(t).Merge(Request{TargetPath: target, SourcePaths: []string{src}, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, StatusDryRun, res.Status)
	assert.Equal(t, "a\nb\n", res.Document.String())
	assert.Zero(t, res.LinesWritten)
	assert.Equal(t, "a\n", readFile(t, target))
}

func TestMerge_ConfirmGate(t *testing.T) {
	dir := t.TempDir()
	dup := `"15","20240101","A","1"` + "\n"
	target := writeFile(t, dir, "target.txt", dup)
	src := writeFile(t, dir, "src.txt", dup)

	var seen []types.DuplicateGroup
	res, err := newMerger(t).Merge(Request{
		TargetPath:  target,
		SourcePaths: []string{src},
		Confirm: func(r *Result) bool {
			seen = r.Duplicates
			return len(r.Duplicates) == 0
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, res.Status)
	require.Len(t, seen, 1)
	assert.Equal(t, []int{1, 2}, seen[0].Positions)
	assert.Equal(t, dup, readFile(t, target))
}

func TestMerge_DuplicatesAreAdvisory(t *testing.T) {
	dir := t.TempDir()
	dup := `"15","20240101","A","1"` + "\n"
	target := writeFile(t, dir, "target.txt", dup)
	src := writeFile(t, dir, "src.txt", dup)

	res, err := newMerger(t).Merge(Request{TargetPath: target, SourcePaths: []string{src}})
	require.NoError(t, err)

	assert.Equal(t, StatusMerged, res.Status)
	assert.Len(t, res.Duplicates, 1)
	assert.Equal(t, dup+dup, readFile(t, target))
}

func TestMerge_UnterminatedTargetKeepsPositions(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", `"15","20240101","A","1"`)
	src := writeFile(t, dir, "src.txt", `"15","20240101","A","2"`+"\n")

	res, err := newMerger(t).Merge(Request{TargetPath: target, SourcePaths: []string{src}})
	require.NoError(t, err)

	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, []int{1, 2}, res.Duplicates[0].Positions)
	assert.Equal(t, `"15","20240101","A","1"`+"\n"+`"15","20240101","A","2"`+"\n", readFile(t, target))
}

func TestMerge_TargetAlsoSourceNoted(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", "a\n")

	res, err := newMerger(t).Merge(Request{TargetPath: target, SourcePaths: []string{target}, DryRun: true})
	require.NoError(t, err)

	assert.Contains(t, res.Notes, "The target file "+target+" is also selected as a source.")
}

func TestScanMonthsAndFindDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", `"15","20240601","A","1"`+"\n"+`"15","20231101","B","1"`+"\n")
	b := writeFile(t, dir, "b.txt", `"15","20240601","A","9"`+"\n")
	m := newMerger(t)

	months, err := m.ScanMonths(a, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"11-2023", "06-2024"}, months)

	groups, err := m.FindDuplicates([]string{a, b})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{1, 3}, groups[0].Positions)

	_, err = m.ScanMonths(filepath.Join(dir, "missing.txt"), nil)
	assert.Error(t, err)
}

func TestNew_RejectsUnknownEncoding(t *testing.T) {
	cfg := config.Default()
	cfg.FallbackEncoding = "EBCDIC"
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestMerge_ManySourcesKeepSelectionOrder(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", "t\n")

	var sources []string
	want := "t\n"
	for i := 0; i < 12; i++ {
		line := fmt.Sprintf("%02d\n", i)
		sources = append(sources, writeFile(t, dir, fmt.Sprintf("src%02d.txt", i), line))
		want += line
	}

	res, err := newMerger(t).Merge(Request{TargetPath: target, SourcePaths: sources})
	require.NoError(t, err)
	assert.Equal(t, StatusMerged, res.Status)
	assert.Equal(t, want, readFile(t, target))

	require.Len(t, res.Sources(), 12)
	for i, f := range res.Sources() {
		assert.Equal(t, sources[i], f.Path)
	}
}

func TestMerge_StopsAtFirstUnreadableSource(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", "keep\n")
	first := filepath.Join(dir, "first-missing.txt")
	good := writeFile(t, dir, "good.txt", "x\n")
	second := filepath.Join(dir, "second-missing.txt")

	res, err := newMerger(t).Merge(Request{
		TargetPath:  target,
		SourcePaths: []string{first, good, second},
	})
	require.Error(t, err)
	assert.Nil(t, res)

	var ioErr *types.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, first, ioErr.Path)
	assert.Equal(t, "read", ioErr.Op)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, "keep\n", readFile(t, target))
}
