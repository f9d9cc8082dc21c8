package source_test

import (
	"testing"

	"flintc/internal/source"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    source.Span
		wantErr bool
	}{
		{"empty", "", source.Span{File: 3}, false},
		{"single", "4:7", source.Span{File: 3, Start: source.Pos{Line: 4, Col: 7}, End: source.Pos{Line: 4, Col: 7}}, false},
		{"range", "4:7-5:1", source.Span{File: 3, Start: source.Pos{Line: 4, Col: 7}, End: source.Pos{Line: 5, Col: 1}}, false},
		{"reversed", "5:1-4:7", source.Span{}, true},
		{"no column", "12", source.Span{}, true},
		{"bad line", "x:1", source.Span{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := source.ParseRange(3, tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRange(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("ParseRange(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSpanCover(t *testing.T) {
	a := source.Span{File: 1, Start: source.Pos{Line: 2, Col: 5}, End: source.Pos{Line: 2, Col: 9}}
	b := source.Span{File: 1, Start: source.Pos{Line: 1, Col: 1}, End: source.Pos{Line: 2, Col: 6}}
	got := a.Cover(b)
	if got.Start != b.Start || got.End != a.End {
		t.Fatalf("Cover = %v", got)
	}
	other := source.Span{File: 2, Start: source.Pos{Line: 1, Col: 1}}
	if a.Cover(other) != a {
		t.Fatalf("spans from different files must not merge")
	}
	if source.Synthetic().Cover(a) != a {
		t.Fatalf("synthetic span should adopt the other span")
	}
}

func TestFileSetFormat(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("contracts/./Bank.flint")
	if again := fs.Add("contracts/Bank.flint"); again != id {
		t.Fatalf("same path registered twice: %d vs %d", id, again)
	}
	sp := source.Span{File: id, Start: source.Pos{Line: 10, Col: 3}}
	if got := fs.Format(sp); got != "contracts/Bank.flint:10:3" {
		t.Fatalf("Format = %q", got)
	}
	if got := fs.Format(source.Synthetic()); got != "<synthetic>" {
		t.Fatalf("Format(synthetic) = %q", got)
	}
}
