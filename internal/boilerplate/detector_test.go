package boilerplate

import (
	"fmt"
	"strings"
	"testing"
)

// annualReport numbers its pages "Page N of 3". Bare "Page N" markers carry a
// single digit run and are kept, see TestDetect_SingleNumberPageMarkersKept.
func annualReport() string {
	pages := []string{
		"Annual Report 2023. Revenue grew across every region. Page 1 of 3.",
		"Annual Report 2023. The board approved a new logistics strategy for the northern warehouses. Page 2 of 3.",
		"Annual Report 2023. Costs were held flat for the full year. Page 3 of 3.",
	}
	return strings.Join(pages, PageBreak)
}

func TestDetect_AnnualReport(t *testing.T) {
	res := New().Detect(annualReport())

	if res.Fallback {
		t.Fatal("expected cross-page detection, got fallback")
	}
	if len(res.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d: %q", len(res.Pages), res.Pages)
	}

	for i, page := range res.Pages {
		if strings.Contains(page, "Annual Report 2023") {
			t.Errorf("page %d still has the repeated header: %q", i, page)
		}
		if strings.Contains(page, "Page ") {
			t.Errorf("page %d still has its page marker: %q", i, page)
		}
	}

	want := "The board approved a new logistics strategy for the northern warehouses."
	if res.Pages[1] != want {
		t.Errorf("page 2 = %q, want %q", res.Pages[1], want)
	}

	if len(res.Duplicates) != 1 || res.Duplicates[0] != "Annual Report 2023." {
		t.Errorf("unexpected duplicates: %q", res.Duplicates)
	}
	if res.Removed != 6 {
		t.Errorf("Removed = %d, want 6", res.Removed)
	}
	if got := strings.Count(res.Text, PageBreak); got != 2 {
		t.Errorf("expected 2 page breaks in output, got %d", got)
	}
}

func TestDetect_MaskedStructure(t *testing.T) {
	// No shared meaningful words, only the shape "§ N.N" repeats
	pages := []string{
		"Intro text here. § 1.1",
		"Body goes on. § 2.4",
		"Closing words now. § 3.9",
	}
	res := New().Detect(strings.Join(pages, PageBreak))

	for _, p := range res.Patterns {
		if !strings.HasPrefix(p, "§") {
			t.Errorf("unexpected pattern %q", p)
		}
	}
	if len(res.Patterns) != 3 {
		t.Fatalf("expected 3 masked patterns, got %q", res.Patterns)
	}
	if res.Pages[0] != "Intro text here." {
		t.Errorf("page 1 = %q", res.Pages[0])
	}
}

func TestDetect_MaskedStructureNeedsTwoOthers(t *testing.T) {
	pages := []string{
		"Alpha section opens. Item 1 of 2.",
		"Beta section follows. Item 2 of 2.",
	}
	res := New().Detect(strings.Join(pages, PageBreak))

	// Only one other sentence shares the masked form, and one shared-word hit is not enough
	if len(res.Patterns) != 0 {
		t.Errorf("expected no patterns with only two pages, got %q", res.Patterns)
	}
}

func TestDetect_EmptyPagesDropped(t *testing.T) {
	pages := []string{
		"Repeated banner text.",
		"Repeated banner text. Real content survives.",
		"Repeated banner text.",
	}
	res := New().Detect(strings.Join(pages, PageBreak))

	if len(res.Pages) != 1 || res.Pages[0] != "Real content survives." {
		t.Errorf("unexpected pages: %q", res.Pages)
	}
	if res.Text != "Real content survives." {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestDetect_DuplicateOnSamePageOnly(t *testing.T) {
	pages := []string{
		"Echo. Echo. First page body.",
		"Second page body.",
	}
	res := New().Detect(strings.Join(pages, PageBreak))

	if len(res.Duplicates) != 0 {
		t.Errorf("repeats within one page are not cross-page duplicates: %q", res.Duplicates)
	}
	if res.Pages[0] != "Echo. Echo. First page body." {
		t.Errorf("page 1 = %q", res.Pages[0])
	}
}

func TestRemoveBoilerplate_Empty(t *testing.T) {
	if got := New().RemoveBoilerplate(""); got != "" {
		t.Errorf("RemoveBoilerplate(\"\") = %q", got)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		runs int
	}{
		{"Page 12 of 340", 2},
		{"no digits", 0},
		{"2023", 1},
		{"v1.2.3", 3},
	}

	for _, tt := range tests {
		m, runs := mask(tt.in)
		if runs != tt.runs {
			t.Errorf("mask(%q) runs = %d, want %d", tt.in, runs, tt.runs)
		}
		if containsDigit(m) {
			t.Errorf("mask(%q) = %q still has digits", tt.in, m)
		}
	}

	a, _ := mask("Page 1 of 3")
	b, _ := mask("Page 22 of 30")
	if a != b {
		t.Errorf("expected equal masks, got %q and %q", a, b)
	}
}

func TestMeaningfulWords(t *testing.T) {
	words := meaningfulWords("Page 3 of the report, for 2023")
	for _, w := range []string{"Page", "3", "report", "2023"} {
		if _, ok := words[w]; !ok {
			t.Errorf("expected %q in %v", w, words)
		}
	}
	for _, w := range []string{"of", "the", "for"} {
		if _, ok := words[w]; ok {
			t.Errorf("stop word %q should be filtered", w)
		}
	}
}

func TestDetect_NumericCoOccurrence(t *testing.T) {
	// One digit run each, so the masked-structure rule cannot apply, and the
	// years differ, so none of them is an exact duplicate
	pages := []string{
		"Quarterly revenue outlook 2021. Staff numbers rose sharply.",
		"Quarterly revenue outlook 2022. Warehouses moved north.",
		"Quarterly revenue outlook 2023. Shipping costs fell.",
	}
	res := New().Detect(strings.Join(pages, PageBreak))

	if len(res.Duplicates) != 0 {
		t.Errorf("unexpected duplicates: %q", res.Duplicates)
	}
	if len(res.Patterns) != 3 {
		t.Fatalf("expected 3 numeric patterns, got %q", res.Patterns)
	}
	want := []string{"Staff numbers rose sharply.", "Warehouses moved north.", "Shipping costs fell."}
	for i, page := range res.Pages {
		if page != want[i] {
			t.Errorf("page %d = %q, want %q", i, page, want[i])
		}
	}
	if res.Removed != 3 {
		t.Errorf("Removed = %d, want 3", res.Removed)
	}
}

func TestDetect_NumericCoOccurrenceNeedsTwoHits(t *testing.T) {
	pages := []string{
		"Quarterly revenue outlook 2021. Staff numbers rose sharply.",
		"Quarterly revenue outlook 2022. Warehouses moved north.",
		"Shipping costs fell.",
	}
	res := New().Detect(strings.Join(pages, PageBreak))

	// Each dated sentence has a single matching sentence
	if len(res.Patterns) != 0 {
		t.Errorf("expected no patterns, got %q", res.Patterns)
	}
	if res.Removed != 0 {
		t.Errorf("Removed = %d, want 0", res.Removed)
	}
}

func TestDetect_SingleNumberPageMarkersKept(t *testing.T) {
	// A bare "Page N" masks to one placeholder, below the two needed for a
	// structure match, and shares only one meaningful word with the others
	pages := []string{
		"Annual Report 2023. Revenue grew across every region. Page 1",
		"Annual Report 2023. The board approved a new logistics strategy. Page 2",
		"Annual Report 2023. Costs were held flat for the full year. Page 3",
	}
	res := New().Detect(strings.Join(pages, PageBreak))

	if len(res.Duplicates) != 1 || res.Duplicates[0] != "Annual Report 2023." {
		t.Errorf("unexpected duplicates: %q", res.Duplicates)
	}
	for _, p := range res.Patterns {
		if strings.HasPrefix(p, "Page") {
			t.Errorf("page marker flagged as a pattern: %q", p)
		}
	}
	if res.Removed != 3 {
		t.Errorf("Removed = %d, want 3", res.Removed)
	}
	for i, page := range res.Pages {
		if !strings.HasSuffix(page, fmt.Sprintf("Page %d", i+1)) {
			t.Errorf("page %d lost its marker: %q", i, page)
		}
	}
}
