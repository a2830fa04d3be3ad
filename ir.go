package lbldraw

// The intermediate annotation representation shared by the editor and the exporters.

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Annotation is a single object bounding box with its category label.
type Annotation struct {
	Coords [4]float64 // Absolute x1, y1, x2, y2 offsets from the top-left corner.
	Label  string
}

// Width is the object width from a.Coords.
func (a Annotation) Width() float64 {
	return a.Coords[2] - a.Coords[0]
}

// Height is the object height from a.Coords.
func (a Annotation) Height() float64 {
	return a.Coords[3] - a.Coords[1]
}

// Normalized returns a copy of a with the coordinates ordered so that
// x1 <= x2 and y1 <= y2.
func (a Annotation) Normalized() Annotation {
	if a.Coords[0] > a.Coords[2] {
		a.Coords[0], a.Coords[2] = a.Coords[2], a.Coords[0]
	}
	if a.Coords[1] > a.Coords[3] {
		a.Coords[1], a.Coords[3] = a.Coords[3], a.Coords[1]
	}
	return a
}

// ClampTo returns a copy of a with the bounding box intersected with the
// image area [0, width] x [0, height].
func (a Annotation) ClampTo(width, height float64) Annotation {
	a = a.Normalized()
	a.Coords[0] = math.Min(math.Max(a.Coords[0], 0), width)
	a.Coords[1] = math.Min(math.Max(a.Coords[1], 0), height)
	a.Coords[2] = math.Min(math.Max(a.Coords[2], 0), width)
	a.Coords[3] = math.Min(math.Max(a.Coords[3], 0), height)
	return a
}

// AnnotatedFile is the annotation metadata for a single image.
type AnnotatedFile struct {
	Annotations []Annotation // The annotations.
	FilePath    string       // The annotated image.
}

// AnnotatedFiles is the annotation metadata for a list of images.
type AnnotatedFiles []AnnotatedFile

// MapLabels replaces label (sub-)strings with substitution values, as specified in mappings.
//
// The format of mappings is old=new.
func (data *AnnotatedFiles) MapLabels(mappings []string) error {
	if len(mappings) == 0 {
		return nil
	}

	// Extract the individual old and new strings to map between.
	replacements := make([]struct{ old, new string }, len(mappings))
	for i, v := range mappings {
		a := strings.Split(v, "=")
		if len(a) != 2 {
			return fmt.Errorf("invalid mapping: %v", v)
		}

		replacements[i].old = a[0]
		replacements[i].new = a[1]
	}

	// Apply the replacements, in order, to all labels.
	count := 0
	for _, f := range *data {
		for i := range f.Annotations {
			a := &f.Annotations[i]

			oldLabel := a.Label
			for _, r := range replacements {
				a.Label = strings.Replace(a.Label, r.old, r.new, -1)
			}

			if a.Label != oldLabel {
				count++
			}
		}
	}

	log.Printf("The label mappings changed %d labels", count)
	return nil
}

// Filter filters out annotations which do not match any of the given labelNames or have a
// bounding box with less than minBboxWidth or minBboxHeight.
//
// An empty labelNames keeps all labels. If requireLabel is true, files that end up with no
// annotations are dropped from data.
func (data *AnnotatedFiles) Filter(labelNames []string, requireLabel bool,
		minBboxWidth, minBboxHeight float64) {

	// Deletes the annotation at index i.
	deleteAnnotation := func(annotations []Annotation, i int) []Annotation {
		l := len(annotations)
		annotations[i] = annotations[l-1]
		return annotations[:l-1]
	}

	// Look for string in list.
	inList := func(v string, l []string) bool {
		for _, val := range l {
			if val == v {
				return true
			}
		}
		return false
	}

	numFiles := len(*data)
	numLabelsBeforeFilter := 0
	numLabelsAfterFilter := 0

	// Apply filters.
	for dataIdx, dataLen := 0, len(*data); dataIdx < dataLen; dataIdx++ {
		d := &(*data)[dataIdx]
		numLabelsBeforeFilter += len(d.Annotations)

		for i, aLen := 0, len(d.Annotations); i < aLen; i++ {
			a := &d.Annotations[i]

			// Filter by bbox size.
			if minBboxWidth > a.Width() || minBboxHeight > a.Height() {
				d.Annotations = deleteAnnotation(d.Annotations, i)
				aLen--
				i--
				continue
			}

			// Filter by labels.
			if len(labelNames) > 0 && !inList(a.Label, labelNames) {
				d.Annotations = deleteAnnotation(d.Annotations, i)
				aLen--
				i--
				continue
			}
		}

		numLabelsAfterFilter += len(d.Annotations)

		// Delete the file annotation if files with no labels are filtered out.
		if requireLabel && len(d.Annotations) == 0 {
			dataLen--
			(*data)[dataIdx] = (*data)[dataLen]
			*data = (*data)[0:dataLen]
			dataIdx--
		}
	}

	log.Printf("Filtered out %d labels and %d files",
		numLabelsBeforeFilter-numLabelsAfterFilter, numFiles-len(*data))
}

// Split randomly splits the data into multiple datasets.
//
// The cumulativeSplits specify the cumulative distribution according to which the data is split
// into the returned datasets. Its values must add up to 100!
func (data *AnnotatedFiles) Split(cumulativeSplits []int) ([]AnnotatedFiles, error) {
	datasets := make([]AnnotatedFiles, len(cumulativeSplits))

	// Allocate slightly more than the expected size for each dataset.
	var sum int
	for i, s := range cumulativeSplits {
		percent := s - sum
		datasets[i] = make(AnnotatedFiles, 0, int(1.05*float64(percent)/100*float64(len(*data))))
		sum = s
	}
	if sum != 100 {
		return nil, fmt.Errorf("the split percentages do not add up to 100")
	}

	// Split the data.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

outer:
	for _, d := range *data {
		r := rng.Intn(100)
		for i, s := range cumulativeSplits {
			if r < s {
				datasets[i] = append(datasets[i], d)
				continue outer
			}
		}
	}

	return datasets, nil
}
