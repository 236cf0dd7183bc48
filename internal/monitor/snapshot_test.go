package monitor

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSnapshotNormalize(t *testing.T) {
	snapshot := Snapshot{
		"POLLING": &CategoryResult{
			Count: 99, // producer lied; Normalize fixes it
			Records: []*FailureRecord{
				{ID: 1, Exception: "RuntimeException"},
				{ID: 2, Exception: "RuntimeException"},
			},
		},
		"EMPTY": nil,
	}
	snapshot.Normalize()

	if snapshot["POLLING"].Count != 2 {
		t.Errorf("count not reconciled: %d", snapshot["POLLING"].Count)
	}
	for _, rec := range snapshot["POLLING"].Records {
		if rec.Category != "POLLING" {
			t.Errorf("record %d missing category stamp", rec.ID)
		}
	}
	if snapshot["EMPTY"] == nil {
		t.Errorf("nil category block should be replaced with an empty one")
	}
}

func TestSnapshotNamesSorted(t *testing.T) {
	snapshot := Snapshot{
		"ZULU": &CategoryResult{}, "ALPHA": &CategoryResult{}, "MIKE": &CategoryResult{},
	}
	want := []string{"ALPHA", "MIKE", "ZULU"}
	if got := snapshot.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestFailureRecordDecode(t *testing.T) {
	raw := `{
		"id": 7,
		"last_run": "2026-01-10T08:00:00Z",
		"exception": "RuntimeException",
		"error_message": "poll failed",
		"seller_id": 42,
		"data": "{\"seller_id\": \"42\", \"order\": 991}"
	}`

	var rec FailureRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if rec.ID != 7 || rec.Exception != "RuntimeException" {
		t.Errorf("basic fields lost: %+v", rec)
	}
	if rec.SellerID != "42" {
		t.Errorf("numeric seller id should normalize to string, got %q", rec.SellerID)
	}
	if got, ok := rec.Context.FieldString("order"); !ok || got != "991" {
		t.Errorf("nested payload field lost: %q,%v", got, ok)
	}
}

func TestDefaultCategories(t *testing.T) {
	categories, err := DefaultCategories()
	if err != nil {
		t.Fatalf("DefaultCategories() error: %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("embedded registry must not be empty")
	}

	seen := make(map[string]bool)
	for _, c := range categories {
		if c.Name == "" || c.Description == "" {
			t.Errorf("category with empty name or description: %+v", c)
		}
		if seen[c.Name] {
			t.Errorf("duplicate category %q", c.Name)
		}
		seen[c.Name] = true
	}

	for _, name := range []string{"POLLING", "CREATION", "WMS", "LIVERPOOL_CONFIRM", "TOKEN", "ODOO"} {
		if !seen[name] {
			t.Errorf("registry missing %q", name)
		}
	}
}

func TestDescribe(t *testing.T) {
	categories := []Category{{Name: "POLLING", Description: "polling tasks"}}

	if got := Describe(categories, "POLLING"); got != "polling tasks" {
		t.Errorf("Describe() = %q", got)
	}
	// Unknown categories fall back to their own name.
	if got := Describe(categories, "MYSTERY"); got != "MYSTERY" {
		t.Errorf("Describe() fallback = %q", got)
	}
}

func TestLoadCategoriesFromFileValidation(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"wrong extension", "categories.txt"},
		{"path traversal", "../../../etc/categories.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCategoriesFromFile(tt.path); err == nil {
				t.Errorf("expected error for %q", tt.path)
			}
		})
	}
}
