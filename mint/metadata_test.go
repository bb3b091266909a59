package mint

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestBuildMetadata(t *testing.T) {
	doc := BuildMetadata("Summer Solstice Cup", "June", 2024, "Thunderbolts", "https://x/img.png", "42")

	if doc.Name != "Summer Solstice Cup Champion - June 2024" {
		t.Errorf("Name = %q, want %q", doc.Name, "Summer Solstice Cup Champion - June 2024")
	}
	if doc.Symbol != "CHAMP" {
		t.Errorf("Symbol = %q, want CHAMP", doc.Symbol)
	}
	if doc.Description != "Champion Badge for Thunderbolts in Summer Solstice Cup (June 2024)" {
		t.Errorf("unexpected Description: %q", doc.Description)
	}
	if doc.Image != "https://x/img.png" {
		t.Errorf("Image = %q, want input URL unchanged", doc.Image)
	}

	if len(doc.Attributes) != 5 {
		t.Fatalf("len(Attributes) = %d, want 5", len(doc.Attributes))
	}
	wantAttrs := []Attribute{
		{TraitType: "Tournament", Value: "Summer Solstice Cup"},
		{TraitType: "Month", Value: "June"},
		{TraitType: "Year", Value: 2024},
		{TraitType: "Team", Value: "Thunderbolts"},
		{TraitType: "Badge Serial ID", Value: "42"},
	}
	for i, want := range wantAttrs {
		got := doc.Attributes[i]
		if got.TraitType != want.TraitType || got.Value != want.Value {
			t.Errorf("Attributes[%d] = %+v, want %+v", i, got, want)
		}
	}

	if doc.Properties.Category != "image" {
		t.Errorf("Properties.Category = %q, want image", doc.Properties.Category)
	}
	if len(doc.Properties.Files) != 1 || doc.Properties.Files[0].URI != "https://x/img.png" {
		t.Errorf("unexpected Properties.Files: %+v", doc.Properties.Files)
	}
}

func TestBuildMetadata_ByteStable(t *testing.T) {
	first, err := json.Marshal(BuildMetadata("Summer Solstice Cup", "June", 2024, "Thunderbolts", "https://x/img.png", "42"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(BuildMetadata("Summer Solstice Cup", "June", 2024, "Thunderbolts", "https://x/img.png", "42"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("same inputs produced different documents:\n%s\n%s", first, second)
	}
}

func TestBuildMetadata_EmptyInputsPassThrough(t *testing.T) {
	// Валидация — забота вызывающего; билдёр не падает на пустых входах.
	doc := BuildMetadata("", "", 0, "", "", "")
	if doc.Name != " Champion -  0" {
		t.Errorf("Name = %q", doc.Name)
	}
	if doc.Image != "" {
		t.Errorf("Image = %q, want empty", doc.Image)
	}
}
