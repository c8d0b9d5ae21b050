// Package raster describes the parts of a raster dataset that the JSON
// conversion needs. The GDAL-backed implementation lives in raster/gdal.
package raster

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoGeoTransform is returned by Dataset.GeoTransform when the dataset
// carries no affine transform.
var ErrNoGeoTransform = errors.New("dataset has no geotransform")

const gzipSuffix = ".gz"

// VSIGzipPrefix is the GDAL virtual file system prefix for gzip streams.
const VSIGzipPrefix = "/vsigzip/"

// DataType mirrors the numbering of GDALDataType.
type DataType int

const (
	Unknown DataType = iota
	Byte
	UInt16
	Int16
	UInt32
	Int32
	Float32
	Float64
	CInt16
	CInt32
	CFloat32
	CFloat64
	UInt64
	Int64
	Int8
)

var dataTypeNames = map[DataType]string{
	Unknown: "Unknown", Byte: "Byte", UInt16: "UInt16", Int16: "Int16",
	UInt32: "UInt32", Int32: "Int32", Float32: "Float32", Float64: "Float64",
	CInt16: "CInt16", CInt32: "CInt32", CFloat32: "CFloat32", CFloat64: "CFloat64",
	UInt64: "UInt64", Int64: "Int64", Int8: "Int8",
}

func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// Resampling selects the interpolation used when a read window and its
// buffer differ in size.
type Resampling int

const (
	NearestNeighbour Resampling = iota
	Bilinear
	Cubic
	CubicSpline
	Lanczos
	Average
	Mode
	Gauss
)

var resamplingNames = []string{"nearest", "bilinear", "cubic", "cubicspline", "lanczos", "average", "mode", "gauss"}

func (r Resampling) String() string {
	if r < 0 || int(r) >= len(resamplingNames) {
		return fmt.Sprintf("Resampling(%d)", int(r))
	}
	return resamplingNames[r]
}

// GeoTransform holds the six affine coefficients mapping pixel/line
// coordinates to georeferenced coordinates.
type GeoTransform [6]float64

// Apply maps a pixel/line position to georeferenced coordinates.
func (g GeoTransform) Apply(pixel, line float64) (x, y float64) {
	x = g[0] + pixel*g[1] + line*g[2]
	y = g[3] + pixel*g[4] + line*g[5]
	return
}

// Dataset is an opened raster.
type Dataset interface {
	Size() (width, height int)
	BandCount() int
	// Band returns the n-th band, counting from 1.
	Band(n int) (Band, error)
	Projection() string
	GeoTransform() (GeoTransform, error)
	Driver() string
	Close()
}

// Band is one channel of a Dataset.
type Band interface {
	DataType() DataType
	// Read reads the xSize×ySize window at (xOff, yOff) into buf as bytes,
	// resampled to bufXSize×bufYSize with alg.
	Read(xOff, yOff, xSize, ySize int, buf []byte, bufXSize, bufYSize int, alg Resampling) error
}

// IsCompressed reports whether path is read through VSIGzipPrefix.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, gzipSuffix)
}

// VSIPath returns the path GDAL should open for path.
func VSIPath(path string) string {
	if IsCompressed(path) && !strings.HasPrefix(path, VSIGzipPrefix) {
		return VSIGzipPrefix + path
	}
	return path
}
