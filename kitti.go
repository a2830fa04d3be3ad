package lbldraw

// KITTI export functionality.

import (
	"fmt"
	"os"
)

// KITTIAnnotation is a single annotation within a KITTI label file.
type KITTIAnnotation struct {
	Coords [4]float64 // x1, y1, x2, y2
	Label  string
}

// KITTIAnnotatedFile defines the KITTI annotation structure for a single file.
type KITTIAnnotatedFile struct {
	Annotations []KITTIAnnotation
	FilePath    string
}

// ToKitti converts the intermediate representation to KITTI format.
func ToKitti(data []AnnotatedFile) []KITTIAnnotatedFile {
	kittiData := make([]KITTIAnnotatedFile, 0, len(data))
	for _, fileData := range data {
		// Per file data.
		kittiFileData := KITTIAnnotatedFile{
			Annotations: make([]KITTIAnnotation, len(fileData.Annotations)),
			FilePath:    fileData.FilePath,
		}
		// Convert all annotations.
		for i, a := range fileData.Annotations {
			kittiFileData.Annotations[i] = KITTIAnnotation{Coords: a.Coords, Label: a.Label}
		}
		kittiData = append(kittiData, kittiFileData)
	}

	return kittiData
}

// WriteKitti writes data to dirPath, one label file per element.
func WriteKitti(dirPath string, data []KITTIAnnotatedFile) error {
	dirInfo, err := os.Stat(dirPath)
	if err != nil || !dirInfo.IsDir() {
		return fmt.Errorf("cannot access directory %q: %v", dirPath, err)
	}

	for _, fileData := range data {
		// Use the image file name with .txt extension as label file name.
		_, baseNoExt, _, err := splitPath(fileData.FilePath)
		if err != nil {
			return err
		}
		filePath := dirPath + string(os.PathSeparator) + baseNoExt + ".txt"
		file, err := os.Create(filePath)
		if err != nil {
			return err
		}

		// Write annotations to file.
		for _, a := range fileData.Annotations {
			_, err = fmt.Fprintf(file,
				"%s 0.0 0 0.0 %.2f %.2f %.2f %.2f 0.0 0.0 0.0 0.0 0.0 0.0 0.0\n",
				a.Label, a.Coords[0], a.Coords[1], a.Coords[2], a.Coords[3])
			if err != nil {
				return err
			}
		}

		if err := file.Close(); err != nil {
			return err
		}
	}

	return nil
}
