// Manual bounding-box annotation over a project folder, with export of the
// collected records to KITTI and TFRecord training formats.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sensorable/lbldraw"
	"github.com/sensorable/lbldraw/internal/config"
	"github.com/sensorable/lbldraw/internal/ui"
)

var (
	projectDir string // The project folder (label.txt, img/, xml/).
	configPath string // The optional YAML configuration.

	exportFormat           string   // Empty opens the UI; "kitti" or "tfrecord" exports.
	labelOutFileOrDirPaths []string // The output label dir or file path(s), depending on the format.
	labelOutSplits         []int    // The cumulative split percentages for the output datasets.
	tfRecordLabelMapPath   string   // The TFRecord label map file.
	numShardFiles          int      // The number of shard files to create.

	labelMappings       string  // A comma-separated string of label mappings.
	filterLabels        string  // A comma-separated string of labels to keep (empty keeps all).
	filterRequireLabel  bool    // Filter out files with no labels (after other filters).
	filterMinBboxWidth  float64 // The minimum bounding box width.
	filterMinBboxHeight float64 // The minimum bounding box height.
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  annotate:\t\t-dir <folder>")
		_, _ = fmt.Fprintln(os.Stderr, "  kitti export:\t\t-dir <folder> -export kitti -labels-out <dir>")
		_, _ = fmt.Fprintln(os.Stderr, "  tfrecord export:\t-dir <folder> -export tfrecord -labels-out <file>"+
				" -tfrecord-label-map-file <file> [-num-shards] [-split]")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		_, _ = fmt.Fprintln(os.Stderr, msg...)
		flag.Usage()
		os.Exit(1)
	}

	flag.StringVar(&projectDir, "dir", "",
		"The `path` to the project folder containing label.txt and img/")
	flag.StringVar(&configPath, "config", filepath.Join("configs", "lbldraw.yaml"),
		"The `path` to the optional configuration file")

	flag.StringVar(&exportFormat, "export", "",
		"Export the saved records instead of opening the UI {kitti, tfrecord}")
	outPaths := flag.String("labels-out", "",
		"The comma-separated paths (`path[,...]`) to the label output files (tfrecord)"+
				" or directories (kitti); must be one path per value in flag -split")
	outSplits := flag.String("split", "100",
		"The comma-separated output split percentages (`percent[,...]`) to divide labels into"+
				" (tfrecord only); must add up to 100%")
	flag.StringVar(&tfRecordLabelMapPath, "tfrecord-label-map-file", "",
		"The TFRecord label map file `path`")
	flag.IntVar(&numShardFiles, "num-shards", 0,
		"The number of shard files to create (tfrecord only; 0 takes the configured value)")

	flag.StringVar(&labelMappings, "map-labels", "",
		"Comma-separated list of old=new label (sub-)string replacements (export only)")
	flag.StringVar(&filterLabels, "filter-labels", "",
		"Comma-separated list of labels to keep (after map-labels; empty string keeps all)")
	flag.BoolVar(&filterRequireLabel, "require-label", false,
		"Require at least one label (after filters) to keep the file")
	flag.Float64Var(&filterMinBboxWidth, "min-bbox-width", 0,
		"The min. required width in `pixels` for object bounding boxes")
	flag.Float64Var(&filterMinBboxHeight, "min-bbox-height", 0,
		"The min. required height in `pixels` for object bounding boxes")

	flag.Parse()

	if projectDir == "" {
		printUsageAndExit("Missing project folder argument")
	}
	projectDir = filepath.Clean(projectDir)

	if exportFormat == "" {
		return
	}
	if exportFormat != "kitti" && exportFormat != "tfrecord" {
		printUsageAndExit("Unsupported export format ", exportFormat)
	}
	if *outPaths == "" {
		printUsageAndExit("Missing label output path argument")
	}
	if exportFormat == "tfrecord" && tfRecordLabelMapPath == "" {
		printUsageAndExit("Missing label map path argument")
	}

	// Parse the output splits as cumulative int percentages.
	labelOutFileOrDirPaths = strings.Split(*outPaths, ",")
	splits := strings.Split(*outSplits, ",")
	if len(splits) != len(labelOutFileOrDirPaths) {
		printUsageAndExit("The number of output datasets defined by -split and the number of" +
				" paths in -labels-out must match")
	}
	if exportFormat == "kitti" && len(splits) > 1 {
		printUsageAndExit("Argument -split is not supported with export format \"kitti\"")
	}
	var splitSum int
	for _, v := range splits {
		if i, err := strconv.Atoi(v); err != nil || i < 0 || i > 100 {
			printUsageAndExit("Invalid value in -split: ", v)
		} else {
			splitSum += i
			labelOutSplits = append(labelOutSplits, splitSum)
		}
	}
	if splitSum != 100 {
		printUsageAndExit("The values in -split must add up to 100%")
	}

	for i, v := range labelOutFileOrDirPaths {
		labelOutFileOrDirPaths[i] = filepath.Clean(v)
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.InitConfig(configPath)
	if err != nil {
		logger.Fatal("failed to load the configuration", zap.Error(err))
	}
	if numShardFiles <= 0 {
		numShardFiles = cfg.Export.NumShards
	}

	ds, err := lbldraw.OpenDataset(projectDir)
	if err != nil {
		logger.Fatal("failed to open the project folder", zap.Error(err))
	}
	logger.Info("project folder opened",
		zap.String("dir", projectDir),
		zap.Int("images", ds.Len()),
		zap.Int("categories", len(ds.Categories)))

	if exportFormat == "" {
		ui.New(ds, cfg, logger).Run()
		return
	}

	export(ds, logger)
}

// export converts the saved records to the requested training format.
func export(ds *lbldraw.Dataset, logger *zap.Logger) {
	data, err := ds.Export()
	if err != nil {
		logger.Fatal("failed to read the saved records", zap.Error(err))
	}

	if labelMappings != "" {
		if err := data.MapLabels(strings.Split(labelMappings, ",")); err != nil {
			logger.Fatal("failed to map labels", zap.Error(err))
		}
	}

	var labelNames []string
	if filterLabels != "" {
		labelNames = strings.Split(filterLabels, ",")
	}
	if len(labelNames) > 0 || filterRequireLabel ||
			filterMinBboxWidth > 0 || filterMinBboxHeight > 0 {
		data.Filter(labelNames, filterRequireLabel, filterMinBboxWidth, filterMinBboxHeight)
	}

	var datasets []lbldraw.AnnotatedFiles
	if len(labelOutSplits) == 1 {
		datasets = []lbldraw.AnnotatedFiles{data}
	} else {
		if datasets, err = data.Split(labelOutSplits); err != nil {
			logger.Fatal("failed to split the dataset", zap.Error(err))
		}
	}

	for i, split := range datasets {
		outPath := labelOutFileOrDirPaths[i]
		switch exportFormat {
		case "kitti":
			err = lbldraw.WriteKitti(outPath, lbldraw.ToKitti(split))
		case "tfrecord":
			err = lbldraw.WriteTFRecord(outPath, tfRecordLabelMapPath, ds.Categories,
				split, numShardFiles)
		}
		if err != nil {
			logger.Fatal("export failed", zap.Error(err))
		}
		logger.Info("labels written", zap.Int("files", len(split)), zap.String("path", outPath))
	}
}
