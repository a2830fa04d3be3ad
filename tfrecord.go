package lbldraw

// TFRecord object detection export functionality.

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
)

// TFFeatureMap maps feature names to their values. Values must be convertible to
// tensorflow.Feature.
type TFFeatureMap map[string]interface{}

// tfLabelMap assigns the integer class IDs used in the records.
type tfLabelMap struct {
	ids    map[string]int32
	nextID int32
}

// newTFLabelMap seeds the label map from the category list, in order, starting at ID 1.
func newTFLabelMap(categories []string) *tfLabelMap {
	m := &tfLabelMap{ids: make(map[string]int32, len(categories)), nextID: 1}
	for _, c := range categories {
		if _, ok := m.ids[c]; ok {
			continue
		}
		m.ids[c] = m.nextID
		m.nextID++
	}
	return m
}

// idFor returns the class ID for label, assigning the next free ID to labels outside the
// seeded category list.
func (m *tfLabelMap) idFor(label string) int64 {
	id, ok := m.ids[label]
	if !ok {
		id = m.nextID
		m.ids[label] = id
		m.nextID++
	}
	return int64(id)
}

// toTFRecord converts the intermediate representation for a single file to the TFRecord format.
func toTFRecord(fileData AnnotatedFile, labelMap *tfLabelMap) (TFFeatureMap, error) {
	// Get the image width and height.
	img, format, err := DecodeImageConfig(fileData.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode the image metadata: %v", err)
	}

	// Read the image data.
	imgData, err := os.ReadFile(fileData.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read the image: %v", err)
	}

	// Prepare the feature map for the per file data.
	f := make(TFFeatureMap, 16)
	f["image/height"] = img.Height
	f["image/width"] = img.Width
	f["image/filename"] = fileData.FilePath
	f["image/source_id"] = fileData.FilePath
	f["image/encoded"] = imgData
	f["image/format"] = format

	// Prepare the per label data.
	numLabels := len(fileData.Annotations)
	xmins := make([]float32, numLabels)
	ymins := make([]float32, numLabels)
	xmaxs := make([]float32, numLabels)
	ymaxs := make([]float32, numLabels)
	classes := make([]string, numLabels)
	classIDs := make([]int64, numLabels)
	for i, a := range fileData.Annotations {
		xmins[i] = float32(a.Coords[0]) / float32(img.Width)
		ymins[i] = float32(a.Coords[1]) / float32(img.Height)
		xmaxs[i] = float32(a.Coords[2]) / float32(img.Width)
		ymaxs[i] = float32(a.Coords[3]) / float32(img.Height)
		classes[i] = a.Label
		classIDs[i] = labelMap.idFor(a.Label)
	}
	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/text"] = classes
	f["image/object/class/label"] = classIDs

	return f, nil
}

// WriteTFRecord does a streaming conversion, serialisation and file write for the annotation data
// to one or more TFRecord files stored under recordFilePath (with suffixes added when numShards>1).
//
// The label map is seeded from categories in order and written to labelMapPath in prototxt form.
func WriteTFRecord(recordFilePath, labelMapPath string, categories []string,
		data []AnnotatedFile, numShards int) (err error) {

	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", e)
		}
	}()

	if numShards <= 0 {
		numShards = 1
	}

	labelMap := newTFLabelMap(categories)

	fmtShardSuffix := func(idx int) string {
		return fmt.Sprintf("-%05d-of-%05d", idx, numShards)
	}

	var shardFile *os.File
	shardSize := int(math.Ceil(float64(len(data)) / float64(numShards)))
	shardIdx := -1

	// Convert and serialise one data element at a time.
	for i, fileData := range data {
		// Check if a new shard file needs to be opened for writing.
		if i%shardSize == 0 {
			shardIdx++

			// Close the previous shard file.
			if shardFile != nil {
				_ = shardFile.Close()
				shardFile = nil
			}

			// Create the new shard file.
			shardPath := recordFilePath
			if numShards > 1 {
				shardPath += fmtShardSuffix(shardIdx)
			}
			f, err := os.Create(shardPath)
			if err != nil {
				return fmt.Errorf("failed to create shard at %q: %v", shardPath, err)
			}
			shardFile = f
		}

		// Convert the file data to an example.
		features, err := toTFRecord(fileData, labelMap)
		if err != nil {
			log.Printf("Failed to convert %q: %v", fileData.FilePath, err)
			continue
		}
		tfExample := example.New(features)

		// Write the example.
		if err := writeTFRecordExample(shardFile, tfExample); err != nil {
			log.Print("Failed to write example: ", err)
			break
		}
	}

	if shardFile != nil {
		shardFile.Close()
	}

	return writeTFRecordLabelMap(labelMapPath, labelMap.ids)
}

// writeTFRecordExample serialises the example and writes it as a TFRecord to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}

// writeTFRecordLabelMap writes the label map to path in prototxt form
// (string_int_label_map, as consumed by the TensorFlow object detection API), ordered
// by ID.
func writeTFRecordLabelMap(path string, labelMap map[string]int32) (err error) {
	names := make([]string, 0, len(labelMap))
	for k := range labelMap {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return labelMap[names[i]] < labelMap[names[j]] })

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create the label map file %q: %v", path, err)
	}
	defer closeWithErrCheck(file, &err)

	for _, name := range names {
		if _, err := fmt.Fprintf(file, "item {\n  name: %q\n  id: %d\n}\n", name, labelMap[name]); err != nil {
			return err
		}
	}

	return nil
}
