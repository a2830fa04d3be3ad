package lbldraw

import "testing"

func TestAnnotationNormalized(t *testing.T) {
	a := Annotation{Coords: [4]float64{30, 40, 10, 20}}
	n := a.Normalized()

	want := [4]float64{10, 20, 30, 40}
	if n.Coords != want {
		t.Errorf("Normalized() = %v, want %v", n.Coords, want)
	}
	if a.Coords[0] != 30 {
		t.Error("Normalized() modified the receiver")
	}
}

func TestAnnotationClampTo(t *testing.T) {
	a := Annotation{Coords: [4]float64{-5, 10, 120, 90}}
	c := a.ClampTo(100, 80)

	want := [4]float64{0, 10, 100, 80}
	if c.Coords != want {
		t.Errorf("ClampTo() = %v, want %v", c.Coords, want)
	}
}

func TestAnnotationDimensions(t *testing.T) {
	a := Annotation{Coords: [4]float64{10, 20, 40, 80}}
	if a.Width() != 30 {
		t.Errorf("Width() = %v, want 30", a.Width())
	}
	if a.Height() != 60 {
		t.Errorf("Height() = %v, want 60", a.Height())
	}
}

func TestMapLabels(t *testing.T) {
	data := AnnotatedFiles{
		{
			FilePath: "a.jpg",
			Annotations: []Annotation{
				{Label: "cat"},
				{Label: "dog"},
			},
		},
	}

	if err := data.MapLabels([]string{"cat=feline"}); err != nil {
		t.Fatalf("MapLabels() error: %v", err)
	}
	if got := data[0].Annotations[0].Label; got != "feline" {
		t.Errorf("label = %q, want %q", got, "feline")
	}
	if got := data[0].Annotations[1].Label; got != "dog" {
		t.Errorf("label = %q, want %q", got, "dog")
	}

	if err := data.MapLabels([]string{"broken"}); err == nil {
		t.Error("MapLabels() accepted a mapping without '='")
	}
}

func TestFilter(t *testing.T) {
	data := AnnotatedFiles{
		{
			FilePath: "a.jpg",
			Annotations: []Annotation{
				{Label: "cat", Coords: [4]float64{0, 0, 50, 50}},
				{Label: "dog", Coords: [4]float64{0, 0, 50, 50}},
				{Label: "cat", Coords: [4]float64{0, 0, 5, 5}}, // too small
			},
		},
		{
			FilePath: "b.jpg",
			Annotations: []Annotation{
				{Label: "dog", Coords: [4]float64{0, 0, 50, 50}},
			},
		},
	}

	data.Filter([]string{"cat"}, true, 10, 10)

	if len(data) != 1 {
		t.Fatalf("len(data) = %d, want 1", len(data))
	}
	if data[0].FilePath != "a.jpg" {
		t.Errorf("kept file = %q, want a.jpg", data[0].FilePath)
	}
	if len(data[0].Annotations) != 1 || data[0].Annotations[0].Label != "cat" {
		t.Errorf("kept annotations = %v, want a single large cat box", data[0].Annotations)
	}
}

func TestSplit(t *testing.T) {
	data := make(AnnotatedFiles, 100)
	for i := range data {
		data[i] = AnnotatedFile{FilePath: "x.jpg"}
	}

	datasets, err := data.Split([]int{70, 100})
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	if len(datasets) != 2 {
		t.Fatalf("len(datasets) = %d, want 2", len(datasets))
	}
	if n := len(datasets[0]) + len(datasets[1]); n != len(data) {
		t.Errorf("split lost files: %d != %d", n, len(data))
	}

	if _, err := data.Split([]int{50, 90}); err == nil {
		t.Error("Split() accepted percentages that do not add up to 100")
	}
}
