package processor

import (
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/nci/raster2json/raster"
	"github.com/pkg/errors"
)

// Reserved metadata keys, always written from the raster.
const (
	KeyWidth           = "width"
	KeyHeight          = "height"
	KeyProjectionRef   = "projectionRef"
	KeyAffineTransform = "affineTransform"
)

var (
	ErrInvalidUTF8 = errors.New("metadata is not valid UTF-8")
	ErrNotAnObject = errors.New("metadata must be a JSON object")
)

// Metadata is the caller-supplied JSON object. Values are kept as raw JSON
// so keys the tool does not own pass through untouched.
type Metadata map[string]json.RawMessage

// RasterInfo is the geospatial description merged into Metadata.
type RasterInfo struct {
	Width           int
	Height          int
	BandCount       int
	Driver          string
	ProjectionRef   string
	AffineTransform raster.GeoTransform
}

// ReadMetadata reads all of r and parses it as a single JSON object.
func ReadMetadata(r io.Reader) (Metadata, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading metadata")
	}

	if !utf8.Valid(buf) {
		return nil, ErrInvalidUTF8
	}

	var md Metadata
	if err := json.Unmarshal(buf, &md); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errors.Wrapf(ErrNotAnObject, "got %s", typeErr.Value)
		}
		return nil, errors.Wrap(err, "parsing metadata")
	}

	// null decodes into a nil map without error
	if md == nil {
		return nil, errors.Wrap(ErrNotAnObject, "got null")
	}

	return md, nil
}

// DescribeDataset reads the dimensions, projection and geotransform of ds.
func DescribeDataset(ds raster.Dataset) (*RasterInfo, error) {
	geot, err := ds.GeoTransform()
	if err != nil {
		return nil, errors.Wrap(err, "reading geotransform")
	}

	width, height := ds.Size()
	return &RasterInfo{
		Width:           width,
		Height:          height,
		BandCount:       ds.BandCount(),
		Driver:          ds.Driver(),
		ProjectionRef:   ds.Projection(),
		AffineTransform: geot,
	}, nil
}

// Merge writes the reserved keys from info, replacing caller values.
func (md Metadata) Merge(info *RasterInfo) error {
	fields := []struct {
		key   string
		value interface{}
	}{
		{KeyWidth, info.Width},
		{KeyHeight, info.Height},
		{KeyProjectionRef, info.ProjectionRef},
		{KeyAffineTransform, info.AffineTransform},
	}

	for _, f := range fields {
		raw, err := json.Marshal(f.value)
		if err != nil {
			return errors.Wrapf(err, "encoding %s", f.key)
		}
		md[f.key] = raw
	}
	return nil
}
