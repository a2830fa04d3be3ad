package lbldraw

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestToVOC(t *testing.T) {
	fileData := AnnotatedFile{
		FilePath: filepath.Join("img", "frame_001.jpg"),
		Annotations: []Annotation{
			{Label: "car", Coords: [4]float64{10.4, 20.6, 110.2, 220.8}},
			{Label: "", Coords: [4]float64{1, 1, 50, 50}}, // unlabeled, must be dropped
			{Label: "bike", Coords: [4]float64{90, 80, 30, 40}},
		},
	}

	vocData := ToVOC(fileData, 640, 480)

	if vocData.Filename != "frame_001.jpg" {
		t.Errorf("Filename = %q, want frame_001.jpg", vocData.Filename)
	}
	if vocData.Size != (VOCSize{Width: 640, Height: 480, Depth: 3}) {
		t.Errorf("Size = %+v", vocData.Size)
	}
	if len(vocData.Objects) != 2 {
		t.Fatalf("len(Objects) = %d, want 2 (unlabeled dropped)", len(vocData.Objects))
	}

	car := vocData.Objects[0]
	if car.BndBox != (VOCBndBox{XMin: 10, YMin: 21, XMax: 110, YMax: 221}) {
		t.Errorf("car bndbox = %+v", car.BndBox)
	}

	// Inverted drag coordinates come out normalized.
	bike := vocData.Objects[1]
	if bike.BndBox != (VOCBndBox{XMin: 30, YMin: 40, XMax: 90, YMax: 80}) {
		t.Errorf("bike bndbox = %+v", bike.BndBox)
	}
}

func TestVOCFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame_001.xml")

	in := VOCAnnotatedFile{
		Filename: "frame_001.jpg",
		Size:     VOCSize{Width: 640, Height: 480, Depth: 3},
		Objects: []VOCObject{
			{Name: "car", BndBox: VOCBndBox{XMin: 10, YMin: 21, XMax: 110, YMax: 221}},
		},
	}
	if err := WriteVOCFile(path, in); err != nil {
		t.Fatalf("WriteVOCFile() error: %v", err)
	}

	// The record is pretty-printed with an XML header.
	enc, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(enc), "<?xml") {
		t.Error("record is missing the XML header")
	}
	if !strings.Contains(string(enc), "\n  <filename>") {
		t.Error("record is not indented")
	}

	out, err := ReadVOCFile(path)
	if err != nil {
		t.Fatalf("ReadVOCFile() error: %v", err)
	}
	if out.Filename != in.Filename || out.Size != in.Size {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if len(out.Objects) != 1 || out.Objects[0] != in.Objects[0] {
		t.Errorf("round trip objects = %+v", out.Objects)
	}
}

func TestReadVOCFileMissing(t *testing.T) {
	_, err := ReadVOCFile(filepath.Join(t.TempDir(), "nope.xml"))
	if !os.IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestReadVOCFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xml")
	if err := os.WriteFile(path, []byte("<annotation><object>"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadVOCFile(path); err == nil {
		t.Error("ReadVOCFile() accepted a corrupt record")
	}
}

func TestFromVOC(t *testing.T) {
	dir := t.TempDir()
	labelDir := filepath.Join(dir, "xml")
	imageDir := filepath.Join(dir, "img")
	for _, d := range []string{labelDir, imageDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}

	// One record with an image, one orphan record without.
	record := VOCAnnotatedFile{
		Filename: "a.jpg",
		Size:     VOCSize{Width: 100, Height: 100, Depth: 3},
		Objects:  []VOCObject{{Name: "cat", BndBox: VOCBndBox{XMin: 1, YMin: 2, XMax: 3, YMax: 4}}},
	}
	if err := WriteVOCFile(filepath.Join(labelDir, "a.xml"), record); err != nil {
		t.Fatal(err)
	}
	if err := WriteVOCFile(filepath.Join(labelDir, "orphan.xml"), record); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(imageDir, "a.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := FromVOC(labelDir, imageDir)
	if err != nil {
		t.Fatalf("FromVOC() error: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("len(data) = %d, want 1 (orphan skipped)", len(data))
	}
	if data[0].FilePath != filepath.Join(imageDir, "a.jpg") {
		t.Errorf("FilePath = %q", data[0].FilePath)
	}
	if len(data[0].Annotations) != 1 || data[0].Annotations[0].Label != "cat" {
		t.Errorf("Annotations = %+v", data[0].Annotations)
	}
	if data[0].Annotations[0].Coords != [4]float64{1, 2, 3, 4} {
		t.Errorf("Coords = %v", data[0].Annotations[0].Coords)
	}
}
