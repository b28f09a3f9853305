package vectorindex

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{DocumentId: "doc-b", Ordinal: 0, Text: "biology cells", Subject: "biology", Year: 2012, Vector: []float32{1, 0, 0}},
		{DocumentId: "doc-a", Ordinal: 1, Text: "algebra equations", Subject: "mathematics", Year: 2015, Vector: []float32{0, 1, 0}},
		{DocumentId: "doc-a", Ordinal: 0, Text: "geometry angles", Subject: "mathematics", Year: 2015, Vector: []float32{0, 0.9, 0.1}},
		{DocumentId: "doc-c", Ordinal: 0, Text: "photosynthesis", Subject: "biology", Year: 2018, Vector: []float32{0.9, 0.1, 0}},
	}
}

func TestBuild_SortsEntries(t *testing.T) {
	ix, err := Build(3, testEntries())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if ix.Len() != 4 {
		t.Fatalf("Len got %d, want 4", ix.Len())
	}

	wantOrder := []string{"doc-a#0", "doc-a#1", "doc-b#0", "doc-c#0"}
	for i, e := range ix.entries {
		got := e.DocumentId + "#" + string(rune('0'+e.Ordinal))
		if got != wantOrder[i] {
			t.Errorf("entry %d got %s, want %s", i, got, wantOrder[i])
		}
	}
}

func TestBuild_RejectsWrongDimension(t *testing.T) {
	entries := testEntries()
	entries[1].Vector = []float32{1, 0}

	_, err := Build(3, entries)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	ix, err := Build(3, testEntries())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	results, err := ix.Search([]float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("result count got %d, want 2", len(results))
	}
	if results[0].DocumentId != "doc-b" {
		t.Errorf("top result got %s, want doc-b", results[0].DocumentId)
	}
	if results[1].DocumentId != "doc-c" {
		t.Errorf("second result got %s, want doc-c", results[1].DocumentId)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("scores not descending: %f < %f", results[0].Score, results[1].Score)
	}
	if math.Abs(float64(results[0].Score)-1.0) > 1e-5 {
		t.Errorf("identical vector should score 1.0, got %f", results[0].Score)
	}
}

func TestSearch_TieBreaksByOrdinalThenDocument(t *testing.T) {
	entries := []Entry{
		{DocumentId: "doc-z", Ordinal: 2, Text: "z2", Vector: []float32{1, 0}},
		{DocumentId: "doc-a", Ordinal: 2, Text: "a2", Vector: []float32{1, 0}},
		{DocumentId: "doc-m", Ordinal: 1, Text: "m1", Vector: []float32{1, 0}},
	}
	ix, err := Build(2, entries)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	results, err := ix.Search([]float32{1, 0}, 3, nil)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	wantIds := []string{"doc-m#1", "doc-a#2", "doc-z#2"}
	for i, want := range wantIds {
		if results[i].ChunkId != want {
			t.Errorf("result %d got %s, want %s", i, results[i].ChunkId, want)
		}
	}
}

func TestSearch_FilterNarrowsCandidates(t *testing.T) {
	ix, err := Build(3, testEntries())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	results, err := ix.Search([]float32{1, 0, 0}, 10, func(e Entry) bool {
		return e.Subject == "mathematics"
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("result count got %d, want 2", len(results))
	}
	for _, r := range results {
		if r.DocumentId != "doc-a" {
			t.Errorf("filter leaked document %s", r.DocumentId)
		}
	}
}

func TestSearch_KLargerThanCorpus(t *testing.T) {
	ix, _ := Build(3, testEntries())
	results, err := ix.Search([]float32{1, 0, 0}, 100, nil)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 4 {
		t.Errorf("result count got %d, want all 4", len(results))
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	ix, _ := Build(3, testEntries())
	_, err := ix.Search([]float32{1, 0}, 5, nil)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artefacts", "index.gob")

	ix, err := Build(3, testEntries())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(path, 3)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Len() != ix.Len() {
		t.Fatalf("loaded Len got %d, want %d", loaded.Len(), ix.Len())
	}

	query := []float32{0.5, 0.5, 0}
	before, _ := ix.Search(query, 4, nil)
	after, err := loaded.Search(query, 4, nil)
	if err != nil {
		t.Fatalf("Search on loaded index returned error: %v", err)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("result %d differs after reload: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestLoad_DimensionMismatchFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")

	ix, _ := Build(3, testEntries())
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	_, err := Load(path, 768)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestLoad_MissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gob"), 3)
	if err == nil {
		t.Error("expected error for missing artifact")
	}
}
