package lbldraw

// Project folder handling: the fixed category list, the ordered image list and the
// navigation cursor with auto-save on every step.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// The expected layout of a project folder.
const (
	LabelFileName = "label.txt" // One category per line.
	ImageDirName  = "img"       // The images to annotate.
	RecordDirName = "xml"       // One VOC record per annotated image.
)

// imageFileExtensions are the file types picked up when scanning the image directory.
var imageFileExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".webp"}

func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, v := range imageFileExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// Dataset is an open project folder. The cursor starts at the first image.
type Dataset struct {
	Root       string
	Categories []string

	images    []string
	recordDir string
	cursor    int
}

// OpenDataset validates the layout of the project folder at root, reads the category
// list and scans the image directory. The record directory is created if necessary.
func OpenDataset(root string) (*Dataset, error) {
	labelPath := filepath.Join(root, LabelFileName)
	imageDir := filepath.Join(root, ImageDirName)

	// Read the categories, skipping blank lines.
	lines, err := readLines(labelPath)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(lines))
	for _, line := range lines {
		if v := strings.TrimSpace(line); v != "" {
			categories = append(categories, v)
		}
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories in %q", labelPath)
	}

	// Scan the image directory. Non-image files are skipped.
	files, err := filesByExtInDir(imageDir, "")
	if err != nil {
		return nil, err
	}
	images := make([]string, 0, len(files))
	for _, path := range files {
		if isImageFile(path) {
			images = append(images, path)
		}
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no image files in %q", imageDir)
	}
	sort.Strings(images)

	recordDir := filepath.Join(root, RecordDirName)
	if err := os.MkdirAll(recordDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create the record directory %q: %v", recordDir, err)
	}

	return &Dataset{
		Root:       root,
		Categories: categories,
		images:     images,
		recordDir:  recordDir,
	}, nil
}

// Len is the number of images in the dataset.
func (d *Dataset) Len() int { return len(d.images) }

// Index is the zero-based cursor position.
func (d *Dataset) Index() int { return d.cursor }

// Current is the image path at the cursor.
func (d *Dataset) Current() string { return d.images[d.cursor] }

// IsFirst reports whether the cursor is at the first image.
func (d *Dataset) IsFirst() bool { return d.cursor == 0 }

// IsLast reports whether the cursor is at the last image.
func (d *Dataset) IsLast() bool { return d.cursor == len(d.images)-1 }

// Next advances the cursor. It reports whether the cursor moved.
func (d *Dataset) Next() bool {
	if d.IsLast() {
		return false
	}
	d.cursor++
	return true
}

// Prev moves the cursor back. It reports whether the cursor moved.
func (d *Dataset) Prev() bool {
	if d.IsFirst() {
		return false
	}
	d.cursor--
	return true
}

// RecordDir is the directory holding the per-image VOC records.
func (d *Dataset) RecordDir() string { return d.recordDir }

// ImageDir is the directory holding the images.
func (d *Dataset) ImageDir() string { return filepath.Join(d.Root, ImageDirName) }

// RecordPath is the VOC record path for imagePath.
func (d *Dataset) RecordPath(imagePath string) (string, error) {
	_, baseNoExt, _, err := splitPath(imagePath)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.recordDir, baseNoExt+".xml"), nil
}

// SaveAnnotations persists the annotations for imagePath as a VOC record. The image
// dimensions for the record come from the image file itself, not from any scaled
// display copy. Saving an empty annotation list writes a record with no objects.
func (d *Dataset) SaveAnnotations(imagePath string, annotations []Annotation) error {
	recordPath, err := d.RecordPath(imagePath)
	if err != nil {
		return err
	}

	cfg, _, err := DecodeImageConfig(imagePath)
	if err != nil {
		return fmt.Errorf("failed to decode the image metadata for %q: %v", imagePath, err)
	}

	fileData := AnnotatedFile{Annotations: annotations, FilePath: imagePath}
	return WriteVOCFile(recordPath, ToVOC(fileData, cfg.Width, cfg.Height))
}

// LoadAnnotations reads the annotations previously saved for imagePath. A missing
// record yields an empty annotation list.
func (d *Dataset) LoadAnnotations(imagePath string) ([]Annotation, error) {
	recordPath, err := d.RecordPath(imagePath)
	if err != nil {
		return nil, err
	}

	vocData, err := ReadVOCFile(recordPath)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return fromVOC(vocData, imagePath).Annotations, nil
}

// Export converts all saved records to the intermediate representation, ready for the
// training-format writers.
func (d *Dataset) Export() (AnnotatedFiles, error) {
	data, err := FromVOC(d.recordDir, d.ImageDir())
	if err != nil {
		return nil, err
	}
	return AnnotatedFiles(data), nil
}
