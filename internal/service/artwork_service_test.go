package service

import (
	"errors"
	"testing"

	"github.com/portfolio/internal/db"
)

func seedArtwork(t *testing.T, svc *ArtworkService, title, category, subcategory string) *db.Artwork {
	t.Helper()
	item, err := svc.Create(ArtworkInput{
		Title:       title,
		ImageURL:    "https://cdn.example.com/" + title + ".jpg",
		Category:    category,
		Subcategory: subcategory,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", title, err)
	}
	return item
}

func TestArtworkCreateValidatesCategory(t *testing.T) {
	svc := NewArtworkService(setupServiceTestDB(t))

	tests := []struct {
		name  string
		input ArtworkInput
		want  error
	}{
		{name: "missing title", input: ArtworkInput{ImageURL: "x", Category: "2d"}, want: ErrArtworkTitleRequired},
		{name: "missing image", input: ArtworkInput{Title: "x", Category: "2d"}, want: ErrArtworkImageMissing},
		{name: "unknown category", input: ArtworkInput{Title: "x", ImageURL: "x", Category: "sculpture"}, want: ErrArtworkCategoryInvalid},
		{name: "empty category", input: ArtworkInput{Title: "x", ImageURL: "x"}, want: ErrArtworkCategoryInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	item, err := svc.Create(ArtworkInput{Title: "Robot", ImageURL: "x", Category: " 3D "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.Category != db.ArtworkCategory3D {
		t.Fatalf("expected normalized category, got %q", item.Category)
	}
	if item.Subcategory != "" {
		t.Fatalf("expected empty subcategory, got %q", item.Subcategory)
	}
}

func TestArtworkGalleriesDoNotLeak(t *testing.T) {
	svc := NewArtworkService(setupServiceTestDB(t))

	illustration := seedArtwork(t, svc, "fox", "2d", "Illustration")
	seedArtwork(t, svc, "mech", "3d", "Hard Surface")
	seedArtwork(t, svc, "harbor", "photography", "")

	for _, category := range db.ArtworkCategories {
		items, err := svc.ListByCategory(category)
		if err != nil {
			t.Fatalf("list %s: %v", category, err)
		}
		for _, item := range items {
			if item.Category != category {
				t.Fatalf("gallery %s leaked %s item %d", category, item.Category, item.ID)
			}
		}
		containsIllustration := false
		for _, item := range items {
			if item.ID == illustration.ID {
				containsIllustration = true
			}
		}
		if containsIllustration != (category == "2d") {
			t.Fatalf("illustration presence in %s gallery = %v", category, containsIllustration)
		}
	}

	if _, err := svc.ListByCategory("video"); !errors.Is(err, ErrArtworkCategoryInvalid) {
		t.Fatalf("expected ErrArtworkCategoryInvalid, got %v", err)
	}
}

func TestArtworkListFiltersBySubcategory(t *testing.T) {
	svc := NewArtworkService(setupServiceTestDB(t))

	seedArtwork(t, svc, "a", "2d", "Illustration")
	seedArtwork(t, svc, "b", "2d", "Concept")
	seedArtwork(t, svc, "c", "2d", "")
	seedArtwork(t, svc, "d", "3d", "Illustration")

	result, err := svc.List(ArtworkFilter{Category: "2d", Subcategory: "Illustration"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 1 || result.Items[0].Title != "a" {
		t.Fatalf("expected only item a, got %+v", result.Items)
	}

	subs, err := svc.Subcategories("2d")
	if err != nil {
		t.Fatalf("subcategories: %v", err)
	}
	if len(subs) != 2 || subs[0] != "Concept" || subs[1] != "Illustration" {
		t.Fatalf("unexpected subcategories %v", subs)
	}

	counts, err := svc.CountByCategory()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts["2d"] != 3 || counts["3d"] != 1 || counts["photography"] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestArtworkUpdateAndDelete(t *testing.T) {
	svc := NewArtworkService(setupServiceTestDB(t))
	item := seedArtwork(t, svc, "draft", "2d", "Sketch")

	year := 2023
	updated, err := svc.Update(item.ID, ArtworkInput{
		Title:    "final",
		ImageURL: "https://cdn.example.com/final.jpg",
		Category: "photography",
		Camera:   "Fujifilm X-T4",
		Year:     &year,
		Featured: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != "photography" || updated.Subcategory != "" || *updated.Year != 2023 {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if _, err := svc.Update(item.ID, ArtworkInput{Title: "x", ImageURL: "x", Category: "nope"}); !errors.Is(err, ErrArtworkCategoryInvalid) {
		t.Fatalf("expected category validation on update, got %v", err)
	}

	if err := svc.Delete(item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := svc.Get(item.ID)
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil) after delete, got (%v, %v)", got, err)
	}
	if err := svc.Delete(item.ID); !errors.Is(err, ErrArtworkNotFound) {
		t.Fatalf("expected ErrArtworkNotFound, got %v", err)
	}
}

func TestArtworkCounters(t *testing.T) {
	svc := NewArtworkService(setupServiceTestDB(t))
	item := seedArtwork(t, svc, "count", "3d", "")

	svc.IncrementViews(item.ID)
	if likes, err := svc.Like(item.ID); err != nil || likes != 1 {
		t.Fatalf("expected 1 like, got %d (%v)", likes, err)
	}

	got, err := svc.Get(item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ViewCount != 1 {
		t.Fatalf("expected 1 view, got %d", got.ViewCount)
	}
}
