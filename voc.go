package lbldraw

// Pascal VOC specific functionality. The editor persists one VOC XML record per image.

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// VOCBndBox is the bounding box of a VOC object in absolute pixel coordinates.
type VOCBndBox struct {
	XMin int `xml:"xmin"`
	YMin int `xml:"ymin"`
	XMax int `xml:"xmax"`
	YMax int `xml:"ymax"`
}

// VOCObject is a single object annotation within a VOC record.
type VOCObject struct {
	Name   string    `xml:"name"`
	BndBox VOCBndBox `xml:"bndbox"`
}

// VOCSize is the pixel size of the annotated image.
type VOCSize struct {
	Width  int `xml:"width"`
	Height int `xml:"height"`
	Depth  int `xml:"depth"`
}

// VOCAnnotatedFile defines the VOC annotation structure for a single image.
type VOCAnnotatedFile struct {
	XMLName  xml.Name    `xml:"annotation"`
	Filename string      `xml:"filename"`
	Size     VOCSize     `xml:"size"`
	Objects  []VOCObject `xml:"object"`
}

// ToVOC converts the intermediate representation for a single image to a VOC record.
//
// Annotations without a label are dropped; coordinates are rounded to whole pixels.
func ToVOC(fileData AnnotatedFile, imageWidth, imageHeight int) VOCAnnotatedFile {
	vocData := VOCAnnotatedFile{
		Filename: filepath.Base(fileData.FilePath),
		Size:     VOCSize{Width: imageWidth, Height: imageHeight, Depth: 3},
		Objects:  make([]VOCObject, 0, len(fileData.Annotations)),
	}

	for _, a := range fileData.Annotations {
		if a.Label == "" {
			continue
		}
		a = a.Normalized()
		vocData.Objects = append(vocData.Objects, VOCObject{
			Name: a.Label,
			BndBox: VOCBndBox{
				XMin: int(math.Round(a.Coords[0])),
				YMin: int(math.Round(a.Coords[1])),
				XMax: int(math.Round(a.Coords[2])),
				YMax: int(math.Round(a.Coords[3])),
			},
		})
	}

	return vocData
}

// fromVOC converts a VOC record back to the intermediate representation for imagePath.
func fromVOC(vocData VOCAnnotatedFile, imagePath string) AnnotatedFile {
	fileData := AnnotatedFile{
		Annotations: make([]Annotation, len(vocData.Objects)),
		FilePath:    imagePath,
	}
	for i, obj := range vocData.Objects {
		a := Annotation{Label: obj.Name}
		a.Coords[0] = float64(obj.BndBox.XMin)
		a.Coords[1] = float64(obj.BndBox.YMin)
		a.Coords[2] = float64(obj.BndBox.XMax)
		a.Coords[3] = float64(obj.BndBox.YMax)
		fileData.Annotations[i] = a.Normalized()
	}
	return fileData
}

// WriteVOCFile writes a single pretty-printed VOC record to path.
func WriteVOCFile(path string, data VOCAnnotatedFile) error {
	enc, err := xml.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	enc = append([]byte(xml.Header), enc...)
	enc = append(enc, '\n')
	if err := os.WriteFile(path, enc, 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %v", path, err)
	}
	return nil
}

// ReadVOCFile reads and parses a single VOC record from path.
func ReadVOCFile(path string) (VOCAnnotatedFile, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return VOCAnnotatedFile{}, err
	}

	var vocData VOCAnnotatedFile
	if err := xml.Unmarshal(enc, &vocData); err != nil {
		return VOCAnnotatedFile{}, fmt.Errorf("failed to parse VOC input from %q: %v", path, err)
	}
	return vocData, nil
}

// FromVOC reads all VOC records in labelDir and matches them by base name to the images in
// imageDir.
func FromVOC(labelDir, imageDir string) ([]AnnotatedFile, error) {
	return parseLabelsWithOneToOneImages(labelDir, ".xml", imageDir,
		func(labelPath, imagePath string) (AnnotatedFile, error) {
			vocData, err := ReadVOCFile(labelPath)
			if err != nil {
				return AnnotatedFile{}, err
			}
			return fromVOC(vocData, imagePath), nil
		})
}
