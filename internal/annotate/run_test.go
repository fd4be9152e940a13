package annotate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestRun_EndToEnd(t *testing.T) {
	source := workbookBytes(t, buildTimetable(t))
	target := workbookBytes(t, buildTargetGrid(t, "9:05am-9:40am", "1A1 Alice\n4C2 Dan"))

	annotated, report, res, err := Run(source, target, DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.CellsChanged != 1 {
		t.Fatalf("CellsChanged=%d, want 1", res.CellsChanged)
	}
	if res.MappingSize != 4 {
		t.Fatalf("MappingSize=%d, want 4", res.MappingSize)
	}
	if len(res.Unmatched) != 1 {
		t.Fatalf("len(Unmatched)=%d, want 1", len(res.Unmatched))
	}

	out, err := excelize.OpenReader(bytes.NewReader(annotated))
	if err != nil {
		t.Fatalf("reopen annotated workbook failed: %v", err)
	}
	defer out.Close()
	want := "1A1 Alice (Math Ms. X)\n4C2 Dan"
	if got := cellValue(t, out, "Sheet1", "B3"); got != want {
		t.Fatalf("B3=%q, want %q", got, want)
	}

	lines := strings.Split(strings.TrimSpace(string(report)), "\n")
	if len(lines) != 2 {
		t.Fatalf("report lines=%d, want header + 1 record:\n%s", len(lines), report)
	}
	if lines[0] != "sheet,cell,day,slot,class,line" {
		t.Fatalf("report header=%q", lines[0])
	}
	if !strings.Contains(lines[1], "4C") || !strings.Contains(lines[1], "09:05") {
		t.Fatalf("report record=%q", lines[1])
	}
}

func TestRun_BadTargetBytes(t *testing.T) {
	source := workbookBytes(t, buildTimetable(t))
	if _, _, _, err := Run(source, []byte("not a workbook"), DefaultOptions()); err == nil {
		t.Fatalf("expected error for bad target bytes")
	}
}

func TestRun_BadSourceBytes(t *testing.T) {
	if _, _, _, err := Run([]byte("junk"), nil, DefaultOptions()); err == nil {
		t.Fatalf("expected error for bad source bytes")
	}
}

func TestUnmatchedCSV_Empty(t *testing.T) {
	t.Parallel()

	out, err := UnmatchedCSV(nil)
	if err != nil {
		t.Fatalf("UnmatchedCSV failed: %v", err)
	}
	if strings.TrimSpace(string(out)) != "sheet,cell,day,slot,class,line" {
		t.Fatalf("empty report=%q, want header only", out)
	}
}

func TestUnmatchedCSV_QuotesEmbeddedNewline(t *testing.T) {
	t.Parallel()

	out, err := UnmatchedCSV([]UnmatchedRecord{{
		Sheet: "九月", Cell: "B3", Day: "星期一", Slot: "09:05", Class: "1A",
		Line: "1A1, Alice",
	}})
	if err != nil {
		t.Fatalf("UnmatchedCSV failed: %v", err)
	}
	if !strings.Contains(string(out), `"1A1, Alice"`) {
		t.Fatalf("comma field not quoted:\n%s", out)
	}
}
