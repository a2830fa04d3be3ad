package lbldraw

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// newTestProject builds a project folder with a category list and PNG images.
func newTestProject(t *testing.T, categories string, imageNames ...string) string {
	t.Helper()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, LabelFileName), []byte(categories), 0644); err != nil {
		t.Fatal(err)
	}

	imageDir := filepath.Join(root, ImageDirName)
	if err := os.MkdirAll(imageDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range imageNames {
		f, err := os.Create(filepath.Join(imageDir, name))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 48))); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
	}

	return root
}

func TestOpenDataset(t *testing.T) {
	root := newTestProject(t, "cat\n\ndog\n", "b.png", "a.png")

	// A stray non-image file must be skipped.
	if err := os.WriteFile(filepath.Join(root, ImageDirName, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ds, err := OpenDataset(root)
	if err != nil {
		t.Fatalf("OpenDataset() error: %v", err)
	}

	if got, want := len(ds.Categories), 2; got != want {
		t.Errorf("len(Categories) = %d, want %d", got, want)
	}
	if ds.Categories[0] != "cat" || ds.Categories[1] != "dog" {
		t.Errorf("Categories = %v", ds.Categories)
	}
	if ds.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ds.Len())
	}
	// The image list is sorted.
	if base := filepath.Base(ds.Current()); base != "a.png" {
		t.Errorf("Current() = %q, want a.png first", base)
	}
	if _, err := os.Stat(ds.RecordDir()); err != nil {
		t.Errorf("record directory was not created: %v", err)
	}
}

func TestOpenDatasetErrors(t *testing.T) {
	// Missing category list.
	root := t.TempDir()
	if _, err := OpenDataset(root); err == nil {
		t.Error("OpenDataset() accepted a folder without label.txt")
	}

	// Blank category list.
	root = newTestProject(t, "\n\n", "a.png")
	if _, err := OpenDataset(root); err == nil {
		t.Error("OpenDataset() accepted an empty category list")
	}

	// No images.
	root = newTestProject(t, "cat\n")
	if _, err := OpenDataset(root); err == nil {
		t.Error("OpenDataset() accepted a folder without images")
	}
}

func TestDatasetNavigation(t *testing.T) {
	root := newTestProject(t, "cat\n", "a.png", "b.png", "c.png")
	ds, err := OpenDataset(root)
	if err != nil {
		t.Fatal(err)
	}

	if !ds.IsFirst() || ds.Index() != 0 {
		t.Error("cursor does not start at the first image")
	}
	if ds.Prev() {
		t.Error("Prev() moved past the first image")
	}
	if !ds.Next() || ds.Index() != 1 {
		t.Error("Next() did not advance")
	}
	if !ds.Next() || !ds.IsLast() {
		t.Error("cursor did not reach the last image")
	}
	if ds.Next() {
		t.Error("Next() moved past the last image")
	}
	if !ds.Prev() || ds.Index() != 1 {
		t.Error("Prev() did not move back")
	}
}

func TestSaveLoadAnnotations(t *testing.T) {
	root := newTestProject(t, "cat\ndog\n", "a.png")
	ds, err := OpenDataset(root)
	if err != nil {
		t.Fatal(err)
	}
	imagePath := ds.Current()

	annotations := []Annotation{
		{Label: "cat", Coords: [4]float64{1, 2, 30, 40}},
		{Label: "dog", Coords: [4]float64{5, 6, 20, 25}},
	}
	if err := ds.SaveAnnotations(imagePath, annotations); err != nil {
		t.Fatalf("SaveAnnotations() error: %v", err)
	}

	recordPath, err := ds.RecordPath(imagePath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(recordPath); err != nil {
		t.Fatalf("record file missing: %v", err)
	}

	loaded, err := ds.LoadAnnotations(imagePath)
	if err != nil {
		t.Fatalf("LoadAnnotations() error: %v", err)
	}
	if len(loaded) != len(annotations) {
		t.Fatalf("len(loaded) = %d, want %d", len(loaded), len(annotations))
	}
	for i := range annotations {
		if loaded[i] != annotations[i] {
			t.Errorf("annotation %d = %+v, want %+v", i, loaded[i], annotations[i])
		}
	}
}

func TestSaveAnnotationsEmpty(t *testing.T) {
	root := newTestProject(t, "cat\n", "a.png")
	ds, err := OpenDataset(root)
	if err != nil {
		t.Fatal(err)
	}
	imagePath := ds.Current()

	// Clearing all boxes still writes a record, with no objects.
	if err := ds.SaveAnnotations(imagePath, nil); err != nil {
		t.Fatalf("SaveAnnotations() error: %v", err)
	}

	recordPath, err := ds.RecordPath(imagePath)
	if err != nil {
		t.Fatal(err)
	}
	record, err := ReadVOCFile(recordPath)
	if err != nil {
		t.Fatalf("ReadVOCFile() error: %v", err)
	}
	if len(record.Objects) != 0 {
		t.Errorf("len(Objects) = %d, want 0", len(record.Objects))
	}
	if record.Size != (VOCSize{Width: 64, Height: 48, Depth: 3}) {
		t.Errorf("Size = %+v", record.Size)
	}
}

func TestLoadAnnotationsMissingRecord(t *testing.T) {
	root := newTestProject(t, "cat\n", "a.png")
	ds, err := OpenDataset(root)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := ds.LoadAnnotations(ds.Current())
	if err != nil {
		t.Fatalf("LoadAnnotations() error: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("len(loaded) = %d, want 0 for an unvisited image", len(loaded))
	}
}

func TestDatasetExport(t *testing.T) {
	root := newTestProject(t, "cat\n", "a.png", "b.png")
	ds, err := OpenDataset(root)
	if err != nil {
		t.Fatal(err)
	}

	// Only a.png gets a record; b.png stays unvisited.
	if err := ds.SaveAnnotations(ds.Current(), []Annotation{
		{Label: "cat", Coords: [4]float64{1, 2, 3, 4}},
	}); err != nil {
		t.Fatal(err)
	}

	data, err := ds.Export()
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("len(data) = %d, want 1", len(data))
	}
	if filepath.Base(data[0].FilePath) != "a.png" {
		t.Errorf("FilePath = %q", data[0].FilePath)
	}
}
