package evaluation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGoldenQueries_ValidFile(t *testing.T) {
	content := `[
		{"id": "q1", "query": "khám tổng quát", "category": "exact_name", "expected_ids": ["svc-general-checkup"], "difficulty": "easy"},
		{"id": "q2", "query": "", "district": "Quận 1", "category": "location", "expected_ids": ["svc-blood-test"], "difficulty": "medium"}
	]`
	path := writeTempFile(t, content)

	queries, err := LoadGoldenQueries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(queries))
	}
	if queries[0].Category != CategoryExactName {
		t.Errorf("expected category exact_name, got %s", queries[0].Category)
	}
	if len(queries[0].ExpectedIDs) != 1 {
		t.Errorf("expected 1 expected id, got %d", len(queries[0].ExpectedIDs))
	}
	if queries[1].District != "Quận 1" {
		t.Errorf("expected district 'Quận 1', got %s", queries[1].District)
	}
}

func TestLoadGoldenQueries_Errors(t *testing.T) {
	if _, err := LoadGoldenQueries("/nonexistent/path.json"); err == nil {
		t.Error("expected error for nonexistent file")
	}
	if _, err := LoadGoldenQueries(writeTempFile(t, `not valid json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestCategory_IsValid(t *testing.T) {
	for _, c := range ValidCategories() {
		if !c.IsValid() {
			t.Errorf("Category(%q).IsValid() = false", c)
		}
	}
	if Category("intent").IsValid() || Category("").IsValid() {
		t.Error("unknown categories must be invalid")
	}
}

func TestValidateGoldenQueries(t *testing.T) {
	valid := GoldenQuery{ID: "q1", Query: "xet nghiem", Category: CategoryAccentFree, ExpectedIDs: []string{"i1"}, Difficulty: "easy"}

	tests := []struct {
		name    string
		mutate  func(q *GoldenQuery)
		wantErr bool
	}{
		{"valid", func(q *GoldenQuery) {}, false},
		{"missing id", func(q *GoldenQuery) { q.ID = "" }, true},
		{"missing query", func(q *GoldenQuery) { q.Query = "  " }, true},
		{"location without query", func(q *GoldenQuery) { q.Query = ""; q.Category = CategoryLocation; q.City = "Hà Nội" }, false},
		{"invalid category", func(q *GoldenQuery) { q.Category = "bad" }, true},
		{"no expected ids", func(q *GoldenQuery) { q.ExpectedIDs = nil }, true},
		{"invalid difficulty", func(q *GoldenQuery) { q.Difficulty = "impossible" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			err := ValidateGoldenQueries([]GoldenQuery{q})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGoldenQueries() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateGoldenQueries_DuplicateIDs(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "mau", Category: CategoryKeyword, ExpectedIDs: []string{"i1"}, Difficulty: "easy"},
		{ID: "q1", Query: "kham", Category: CategoryKeyword, ExpectedIDs: []string{"i2"}, Difficulty: "easy"},
	}
	if err := ValidateGoldenQueries(queries); err == nil {
		t.Error("expected validation error for duplicate IDs")
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "golden.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
