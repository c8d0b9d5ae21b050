package processor

import (
	"github.com/nci/raster2json/raster"
	"github.com/pkg/errors"
)

type readCall struct {
	xOff, yOff, xSize, ySize int
	bufXSize, bufYSize       int
	alg                      raster.Resampling
}

// fakeBand serves pixels from row-major rows.
type fakeBand struct {
	dt      raster.DataType
	rows    [][]byte
	failCol int
	reads   []readCall
}

func (b *fakeBand) DataType() raster.DataType {
	return b.dt
}

func (b *fakeBand) Read(xOff, yOff, xSize, ySize int, buf []byte, bufXSize, bufYSize int, alg raster.Resampling) error {
	b.reads = append(b.reads, readCall{xOff, yOff, xSize, ySize, bufXSize, bufYSize, alg})
	if xOff == b.failCol {
		return errors.New("short read")
	}
	for y := 0; y < ySize; y++ {
		for x := 0; x < xSize; x++ {
			buf[y*xSize+x] = b.rows[yOff+y][xOff+x]
		}
	}
	return nil
}

type fakeDataset struct {
	width, height int
	bands         []*fakeBand
	proj          string
	geot          raster.GeoTransform
	noGeot        bool
	closed        bool
}

// newFakeDataset builds a single Byte band dataset from row-major rows.
func newFakeDataset(rows [][]byte) *fakeDataset {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	return &fakeDataset{
		width:  width,
		height: len(rows),
		bands:  []*fakeBand{{dt: raster.Byte, rows: rows, failCol: -1}},
		proj:   `PROJCS["ETRS89 / TM35FIN(E,N)"]`,
		geot:   raster.GeoTransform{-118331.366, 1000, 0, 7907751.537, 0, -1000},
	}
}

func (d *fakeDataset) Size() (int, int) {
	return d.width, d.height
}

func (d *fakeDataset) BandCount() int {
	return len(d.bands)
}

func (d *fakeDataset) Band(n int) (raster.Band, error) {
	if n < 1 || n > len(d.bands) {
		return nil, errors.Errorf("band %d out of range", n)
	}
	return d.bands[n-1], nil
}

func (d *fakeDataset) Projection() string {
	return d.proj
}

func (d *fakeDataset) GeoTransform() (raster.GeoTransform, error) {
	if d.noGeot {
		return raster.GeoTransform{}, raster.ErrNoGeoTransform
	}
	return d.geot, nil
}

func (d *fakeDataset) Driver() string {
	return "FAKE"
}

func (d *fakeDataset) Close() {
	d.closed = true
}

func sequentialRows(width, height int) [][]byte {
	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = make([]byte, width)
		for x := range rows[y] {
			rows[y][x] = byte((y*width + x) % 256)
		}
	}
	return rows
}

type recordingProgress struct {
	total    int
	advances []int
	finished bool
}

func (p *recordingProgress) Start(total int) { p.total = total }
func (p *recordingProgress) Advance(done int) { p.advances = append(p.advances, done) }
func (p *recordingProgress) Finish()          { p.finished = true }
