package gdal

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/nci/raster2json/processor"
	"github.com/nci/raster2json/raster"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wgs84WKT = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]]`

var testGeot = raster.GeoTransform{19.0, 0.01, 0, 70.0, 0, -0.01}

// writeGTiff stores row-major rows as a single band Byte GeoTIFF.
func writeGTiff(t *testing.T, path string, rows [][]byte, withGeot bool) {
	height := len(rows)
	width := len(rows[0])

	ds, err := Create("GTiff", path, width, height, 1, raster.Byte)
	require.NoError(t, err)
	defer ds.Close()

	if withGeot {
		require.NoError(t, ds.SetGeoTransform(testGeot))
		require.NoError(t, ds.SetProjection(wgs84WKT))
	}

	band, err := ds.RasterBand(1)
	require.NoError(t, err)

	pixels := make([]byte, 0, width*height)
	for _, row := range rows {
		pixels = append(pixels, row...)
	}
	require.NoError(t, band.Write(0, 0, width, height, pixels))
}

func sequentialRows(width, height int) [][]byte {
	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = make([]byte, width)
		for x := range rows[y] {
			rows[y][x] = byte((7*y + 3*x) % 251)
		}
	}
	return rows
}

func TestOpenReadsMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fivan.tif")
	writeGTiff(t, path, sequentialRows(3, 2), true)

	ds, err := Open(path)
	require.NoError(t, err)
	defer ds.Close()

	width, height := ds.Size()
	assert.Equal(t, 3, width)
	assert.Equal(t, 2, height)
	assert.Equal(t, 1, ds.BandCount())
	assert.Equal(t, "GTiff", ds.Driver())
	assert.Equal(t, path, ds.Path())
	assert.Contains(t, ds.Projection(), "WGS 84")

	geot, err := ds.GeoTransform()
	require.NoError(t, err)
	assert.Equal(t, testGeot, geot)

	band, err := ds.Band(1)
	require.NoError(t, err)
	assert.Equal(t, raster.Byte, band.DataType())
}

func TestExtractTwoByTwoColumnMajor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.tif")
	writeGTiff(t, path, [][]byte{{10, 20}, {30, 40}}, true)

	ds, err := OpenDataset(path)
	require.NoError(t, err)
	defer ds.Close()

	grid, err := processor.ExtractColumns(ds, nil)
	require.NoError(t, err)
	assert.Equal(t, processor.Grid{{10, 30}, {20, 40}}, grid)
}

func TestBilinearColumnReadIsPassThrough(t *testing.T) {
	const width, height = 17, 11
	rows := sequentialRows(width, height)
	path := filepath.Join(t.TempDir(), "seq.tif")
	writeGTiff(t, path, rows, true)

	ds, err := Open(path)
	require.NoError(t, err)
	defer ds.Close()

	band, err := ds.RasterBand(1)
	require.NoError(t, err)

	column := make([]byte, height)
	for x := 0; x < width; x++ {
		require.NoError(t, band.Read(x, 0, 1, height, column, 1, height, raster.Bilinear))
		for y := 0; y < height; y++ {
			require.Equal(t, rows[y][x], column[y], "pixel (%d, %d)", x, y)
		}
	}
}

func TestReadRejectsShortBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.tif")
	writeGTiff(t, path, sequentialRows(2, 4), true)

	ds, err := Open(path)
	require.NoError(t, err)
	defer ds.Close()

	band, err := ds.RasterBand(1)
	require.NoError(t, err)
	assert.Error(t, band.Read(0, 0, 1, 4, make([]byte, 3), 1, 4, raster.Bilinear))
	assert.Error(t, band.Read(0, 0, 1, 4, make([]byte, 4), 1, 4, raster.Resampling(42)))
}

func TestReadOutsideRasterFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.tif")
	writeGTiff(t, path, sequentialRows(2, 2), true)

	ds, err := Open(path)
	require.NoError(t, err)
	defer ds.Close()

	band, err := ds.RasterBand(1)
	require.NoError(t, err)
	err = band.Read(5, 0, 1, 2, make([]byte, 2), 1, 2, raster.Bilinear)
	assert.Error(t, err)
}

func TestOpenGzip(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "fikor.tif")
	writeGTiff(t, plain, [][]byte{{10, 20}, {30, 40}}, true)

	compressed := plain + ".gz"
	src, err := os.Open(plain)
	require.NoError(t, err)
	defer src.Close()
	dst, err := os.Create(compressed)
	require.NoError(t, err)
	zw := gzip.NewWriter(dst)
	_, err = io.Copy(zw, src)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, dst.Close())

	ds, err := Open(compressed)
	require.NoError(t, err)
	defer ds.Close()

	assert.True(t, strings.HasPrefix(ds.Path(), raster.VSIGzipPrefix))
	grid, err := processor.ExtractColumns(ds, nil)
	require.NoError(t, err)
	assert.Equal(t, processor.Grid{{10, 30}, {20, 40}}, grid)
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.tif")
	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestOpenNotARaster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.tif")
	require.NoError(t, os.WriteFile(path, []byte("not a raster"), 0644))

	_, err := OpenDataset(path)
	assert.Error(t, err)
}

func TestNoGeoTransform(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.tif")
	writeGTiff(t, path, sequentialRows(2, 2), false)

	ds, err := Open(path)
	require.NoError(t, err)
	defer ds.Close()

	_, err = ds.GeoTransform()
	assert.True(t, errors.Is(err, raster.ErrNoGeoTransform))
	assert.Empty(t, ds.Projection())
}

func TestUnsupportedRasters(t *testing.T) {
	dir := t.TempDir()

	rgb := filepath.Join(dir, "rgb.tif")
	ds, err := Create("GTiff", rgb, 4, 4, 3, raster.Byte)
	require.NoError(t, err)
	ds.Close()

	wide := filepath.Join(dir, "uint16.tif")
	ds, err = Create("GTiff", wide, 4, 4, 1, raster.UInt16)
	require.NoError(t, err)
	ds.Close()

	for path, check := range map[string]func(*processor.UnsupportedRasterError){
		rgb:  func(e *processor.UnsupportedRasterError) { assert.Equal(t, 3, e.BandCount) },
		wide: func(e *processor.UnsupportedRasterError) { assert.Equal(t, raster.UInt16, e.DataType) },
	} {
		ds, err := Open(path)
		require.NoError(t, err)

		_, err = processor.ExtractColumns(ds, nil)
		var unsupported *processor.UnsupportedRasterError
		require.True(t, errors.As(err, &unsupported), path)
		check(unsupported)
		ds.Close()
	}
}

func TestBandOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.tif")
	writeGTiff(t, path, sequentialRows(2, 2), true)

	ds, err := Open(path)
	require.NoError(t, err)
	defer ds.Close()

	_, err = ds.Band(0)
	assert.Error(t, err)
	_, err = ds.Band(2)
	assert.Error(t, err)
}

func TestCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "close.tif")
	writeGTiff(t, path, sequentialRows(1, 1), true)

	ds, err := Open(path)
	require.NoError(t, err)
	ds.Close()
	ds.Close()
}

func TestCreateUnknownDriver(t *testing.T) {
	_, err := Create("NoSuchDriver", filepath.Join(t.TempDir(), "x"), 1, 1, 1, raster.Byte)
	assert.Error(t, err)
}

func TestInitAppliesOptions(t *testing.T) {
	Init(map[string]string{"RASTER2JSON_TEST_OPTION": "on"})
	assert.Equal(t, "on", ConfigOption("RASTER2JSON_TEST_OPTION"))
	assert.NotEmpty(t, ConfigOption("GDAL_PAM_ENABLED"))
}
