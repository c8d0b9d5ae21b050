package processor

import (
	"io"

	"github.com/nci/raster2json/metrics"
	"github.com/nci/raster2json/raster"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// OpenFunc opens the raster at path.
type OpenFunc func(path string) (raster.Dataset, error)

// JSONPipeline converts one raster and the metadata on Stdin into a
// Document on Stdout. Stages run in order on the calling goroutine.
type JSONPipeline struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Open     OpenFunc
	Progress Progress
	Log      logrus.FieldLogger
	Metrics  *metrics.Collector
}

func InitJSONPipeline(stdin io.Reader, stdout io.Writer, open OpenFunc, progress Progress, log logrus.FieldLogger, collector *metrics.Collector) *JSONPipeline {
	return &JSONPipeline{
		Stdin:    stdin,
		Stdout:   stdout,
		Open:     open,
		Progress: progress,
		Log:      log,
		Metrics:  collector,
	}
}

// Process runs the whole conversion for path. Stdout is written only
// once every stage has succeeded.
func (dp *JSONPipeline) Process(path string) (err error) {
	m := dp.Metrics
	if m == nil {
		m = metrics.NewCollector(nil)
	}
	m.Info.Path = path
	defer func() {
		m.Finish(err)
	}()

	dp.Log.Info("Reading additional metadata...")
	md, err := ReadMetadata(dp.Stdin)
	if err != nil {
		return errors.Wrap(err, "error parsing additional metadata from stdin")
	}
	m.Info.MetadataKeys = len(md)
	dp.Log.Infof("Read a JSON object with %d metadata keys from stdin.", len(md))

	if raster.IsCompressed(path) {
		dp.Log.Infof("Reading in (compressed) %s", path)
	} else {
		dp.Log.Infof("Reading in %s", path)
	}

	ds, err := dp.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening raster")
	}
	defer ds.Close()

	info, err := DescribeDataset(ds)
	if err != nil {
		return errors.Wrapf(err, "describing %s", path)
	}
	m.Info.Driver = info.Driver
	m.Info.Width = info.Width
	m.Info.Height = info.Height
	m.Info.BandCount = info.BandCount

	if err := md.Merge(info); err != nil {
		return err
	}
	dp.Log.WithFields(logrus.Fields{
		"driver":          info.Driver,
		"width":           info.Width,
		"height":          info.Height,
		"bands":           info.BandCount,
		"affineTransform": info.AffineTransform,
	}).Debug("Metadata merged")

	readDone := m.Stage()
	grid, err := ExtractColumns(ds, dp.Progress)
	m.Info.ReadDuration = readDone()
	if err != nil {
		return err
	}
	dp.Log.Infof("Reading data took %d ms", m.Info.ReadDuration.Milliseconds())

	dp.Log.Info("Writing data...")
	encodeDone := m.Stage()
	enc := NewJSONEncoder(dp.Stdout)
	err = enc.Encode(&Document{Metadata: md, Data: grid})
	m.Info.EncodeDuration = encodeDone()
	m.Info.BytesWritten = enc.BytesWritten
	if err != nil {
		return err
	}
	dp.Log.Infof("Data JSON building took %d ms", m.Info.EncodeDuration.Milliseconds())
	dp.Log.Infof("Done in %d ms.", m.Elapsed().Milliseconds())

	return nil
}
