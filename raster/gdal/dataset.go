package gdal

// #include <stdlib.h>
// #include "gdal.h"
// #include "cpl_error.h"
// #cgo pkg-config: gdal
//
// static CPLErr read_byte_window(GDALRasterBandH hBand, int xOff, int yOff, int xSize, int ySize,
//                                void *pData, int bufXSize, int bufYSize, GDALRIOResampleAlg alg)
// {
//        GDALRasterIOExtraArg sExtraArg;
//
//        INIT_RASTERIO_EXTRA_ARG(sExtraArg);
//        sExtraArg.eResampleAlg = alg;
//
//        return GDALRasterIOEx(hBand, GF_Read, xOff, yOff, xSize, ySize, pData,
//                              bufXSize, bufYSize, GDT_Byte, 0, 0, &sExtraArg);
// }
import "C"

import (
	"unsafe"

	"github.com/nci/raster2json/raster"
	"github.com/pkg/errors"
)

// Dataset is a GDAL dataset handle. It is not safe for concurrent use.
type Dataset struct {
	h    C.GDALDatasetH
	path string
}

// Open opens path read-only. Paths ending in .gz are read through
// /vsigzip/.
func Open(path string) (*Dataset, error) {
	register()

	vsiPath := raster.VSIPath(path)
	cPath := C.CString(vsiPath)
	defer C.free(unsafe.Pointer(cPath))

	C.CPLErrorReset()
	h := C.GDALOpenEx(cPath, C.GDAL_OF_RASTER|C.GDAL_OF_READONLY|C.GDAL_OF_VERBOSE_ERROR, nil, nil, nil)
	if h == nil {
		return nil, errors.Errorf("GDAL could not open dataset %s: %s", vsiPath, lastErrorMsg())
	}

	return &Dataset{h: h, path: vsiPath}, nil
}

// OpenDataset is Open returning the raster.Dataset interface.
func OpenDataset(path string) (raster.Dataset, error) {
	ds, err := Open(path)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// Path is the name the dataset was opened with, including any /vsigzip/
// prefix.
func (d *Dataset) Path() string {
	return d.path
}

func (d *Dataset) Size() (width, height int) {
	return int(C.GDALGetRasterXSize(d.h)), int(C.GDALGetRasterYSize(d.h))
}

func (d *Dataset) BandCount() int {
	return int(C.GDALGetRasterCount(d.h))
}

func (d *Dataset) Band(n int) (raster.Band, error) {
	b, err := d.RasterBand(n)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// RasterBand returns the n-th band, counting from 1.
func (d *Dataset) RasterBand(n int) (*Band, error) {
	count := d.BandCount()
	if n < 1 || n > count {
		return nil, errors.Errorf("band %d out of range, dataset has %d band(s)", n, count)
	}

	hBand := C.GDALGetRasterBand(d.h, C.int(n))
	if hBand == nil {
		return nil, errors.Errorf("GDAL could not get band %d: %s", n, lastErrorMsg())
	}
	return &Band{h: hBand}, nil
}

func (d *Dataset) Projection() string {
	return C.GoString(C.GDALGetProjectionRef(d.h))
}

func (d *Dataset) GeoTransform() (raster.GeoTransform, error) {
	var dArr [6]C.double
	if C.GDALGetGeoTransform(d.h, &dArr[0]) != C.CE_None {
		return raster.GeoTransform{}, raster.ErrNoGeoTransform
	}

	var geot raster.GeoTransform
	for i := range dArr {
		geot[i] = float64(dArr[i])
	}
	return geot, nil
}

func (d *Dataset) Driver() string {
	hDriver := C.GDALGetDatasetDriver(d.h)
	if hDriver == nil {
		return ""
	}
	return C.GoString(C.GDALGetDriverShortName(hDriver))
}

// Close releases the handle and flushes pending writes. Calling Close more
// than once is a no-op.
func (d *Dataset) Close() {
	if d.h == nil {
		return
	}
	C.GDALClose(d.h)
	d.h = nil
}

// Band is a GDAL raster band handle owned by its Dataset.
type Band struct {
	h C.GDALRasterBandH
}

func (b *Band) DataType() raster.DataType {
	return raster.DataType(C.GDALGetRasterDataType(b.h))
}

func (b *Band) Read(xOff, yOff, xSize, ySize int, buf []byte, bufXSize, bufYSize int, alg raster.Resampling) error {
	need := bufXSize * bufYSize
	if len(buf) < need {
		return errors.Errorf("buffer holds %d bytes, %dx%d window needs %d", len(buf), bufXSize, bufYSize, need)
	}
	if need == 0 {
		return nil
	}

	cAlg, err := resampleAlg(alg)
	if err != nil {
		return err
	}

	C.CPLErrorReset()
	gerr := C.read_byte_window(b.h, C.int(xOff), C.int(yOff), C.int(xSize), C.int(ySize),
		unsafe.Pointer(&buf[0]), C.int(bufXSize), C.int(bufYSize), cAlg)
	if gerr != C.CE_None {
		return errors.Errorf("GDAL read of %dx%d window at (%d, %d) failed: %s", xSize, ySize, xOff, yOff, lastErrorMsg())
	}
	return nil
}

func resampleAlg(alg raster.Resampling) (C.GDALRIOResampleAlg, error) {
	switch alg {
	case raster.NearestNeighbour:
		return C.GRIORA_NearestNeighbour, nil
	case raster.Bilinear:
		return C.GRIORA_Bilinear, nil
	case raster.Cubic:
		return C.GRIORA_Cubic, nil
	case raster.CubicSpline:
		return C.GRIORA_CubicSpline, nil
	case raster.Lanczos:
		return C.GRIORA_Lanczos, nil
	case raster.Average:
		return C.GRIORA_Average, nil
	case raster.Mode:
		return C.GRIORA_Mode, nil
	case raster.Gauss:
		return C.GRIORA_Gauss, nil
	}
	return C.GRIORA_NearestNeighbour, errors.Errorf("%s resampling not supported for IO", alg)
}

func lastErrorMsg() string {
	msg := C.GoString(C.CPLGetLastErrorMsg())
	if msg == "" {
		return "unknown GDAL error"
	}
	return msg
}
