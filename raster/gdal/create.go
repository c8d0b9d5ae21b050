package gdal

// #include <stdlib.h>
// #include "gdal.h"
// #include "cpl_error.h"
// #cgo pkg-config: gdal
import "C"

import (
	"unsafe"

	"github.com/nci/raster2json/raster"
	"github.com/pkg/errors"
)

// Create makes a new dataset with the named driver. The result must be
// closed for the file to be flushed.
func Create(driverName, path string, width, height, bands int, dt raster.DataType) (*Dataset, error) {
	register()

	cDriverName := C.CString(driverName)
	defer C.free(unsafe.Pointer(cDriverName))
	hDriver := C.GDALGetDriverByName(cDriverName)
	if hDriver == nil {
		return nil, errors.Errorf("GDAL driver %s is not available", driverName)
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	C.CPLErrorReset()
	h := C.GDALCreate(hDriver, cPath, C.int(width), C.int(height), C.int(bands), C.GDALDataType(dt), nil)
	if h == nil {
		return nil, errors.Errorf("GDAL could not create %s dataset %s: %s", driverName, path, lastErrorMsg())
	}

	return &Dataset{h: h, path: path}, nil
}

func (d *Dataset) SetGeoTransform(geot raster.GeoTransform) error {
	var dArr [6]C.double
	for i, v := range geot {
		dArr[i] = C.double(v)
	}

	if C.GDALSetGeoTransform(d.h, &dArr[0]) != C.CE_None {
		return errors.Errorf("GDAL could not set geotransform: %s", lastErrorMsg())
	}
	return nil
}

func (d *Dataset) SetProjection(wkt string) error {
	cWKT := C.CString(wkt)
	defer C.free(unsafe.Pointer(cWKT))

	if C.GDALSetProjection(d.h, cWKT) != C.CE_None {
		return errors.Errorf("GDAL could not set projection: %s", lastErrorMsg())
	}
	return nil
}

// Write stores an xSize×ySize block of bytes, row-major, at (xOff, yOff).
func (b *Band) Write(xOff, yOff, xSize, ySize int, buf []byte) error {
	if len(buf) < xSize*ySize {
		return errors.Errorf("buffer holds %d bytes, %dx%d block needs %d", len(buf), xSize, ySize, xSize*ySize)
	}
	if xSize*ySize == 0 {
		return nil
	}

	C.CPLErrorReset()
	gerr := C.GDALRasterIO(b.h, C.GF_Write, C.int(xOff), C.int(yOff), C.int(xSize), C.int(ySize),
		unsafe.Pointer(&buf[0]), C.int(xSize), C.int(ySize), C.GDT_Byte, 0, 0)
	if gerr != C.CE_None {
		return errors.Errorf("GDAL write of %dx%d block at (%d, %d) failed: %s", xSize, ySize, xOff, yOff, lastErrorMsg())
	}
	return nil
}
