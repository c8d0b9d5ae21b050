package processor

import (
	"fmt"
	"strconv"

	"github.com/nci/raster2json/raster"
	"github.com/pkg/errors"
)

// ColumnResampling is requested for every column read. Window and buffer
// are the same size, so GDAL copies the pixels unchanged.
const ColumnResampling = raster.Bilinear

// UnsupportedRasterError reports a dataset that is not a single band of
// Byte pixels.
type UnsupportedRasterError struct {
	BandCount int
	DataType  raster.DataType
}

func (e *UnsupportedRasterError) Error() string {
	if e.BandCount != 1 {
		return fmt.Sprintf("more or less than one raster band: dataset has %d", e.BandCount)
	}
	return fmt.Sprintf("can only handle Byte data; got %s", e.DataType)
}

// Grid holds pixel values column-major: Grid[x][y].
type Grid [][]byte

func (g Grid) Width() int {
	return len(g)
}

func (g Grid) Height() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// MarshalJSON writes the grid as nested arrays of numbers. The default
// []byte encoding would produce base64 strings.
func (g Grid) MarshalJSON() ([]byte, error) {
	size := 2
	for _, col := range g {
		size += 3 + 4*len(col)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, '[')
	for x, col := range g {
		if x > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '[')
		for y, v := range col {
			if y > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendUint(buf, uint64(v), 10)
		}
		buf = append(buf, ']')
	}
	buf = append(buf, ']')
	return buf, nil
}

// ExtractColumns reads the single Byte band of ds one full-height column
// at a time.
func ExtractColumns(ds raster.Dataset, progress Progress) (Grid, error) {
	if n := ds.BandCount(); n != 1 {
		return nil, &UnsupportedRasterError{BandCount: n}
	}

	band, err := ds.Band(1)
	if err != nil {
		return nil, errors.Wrap(err, "getting band 1")
	}

	if dt := band.DataType(); dt != raster.Byte {
		return nil, &UnsupportedRasterError{BandCount: 1, DataType: dt}
	}

	if progress == nil {
		progress = NoProgress{}
	}

	width, height := ds.Size()
	pixels := make([]byte, width*height)
	grid := make(Grid, 0, width)

	progress.Start(width)
	defer progress.Finish()

	for x := 0; x < width; x++ {
		column := pixels[x*height : (x+1)*height : (x+1)*height]
		if err := band.Read(x, 0, 1, height, column, 1, height, ColumnResampling); err != nil {
			return nil, errors.Wrapf(err, "reading column %d", x)
		}
		grid = append(grid, column)
		progress.Advance(x + 1)
	}

	return grid, nil
}
