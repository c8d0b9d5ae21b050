// Package gdal implements raster.Dataset on top of the GDAL C library.
package gdal

// #include <stdlib.h>
// #include "gdal.h"
// #include "cpl_conv.h"
// #cgo pkg-config: gdal
import "C"

import (
	"os"
	"sort"
	"sync"
	"unsafe"
)

var registerOnce sync.Once

// Init sets GDAL environment defaults, registers the drivers and applies
// the given GDAL configuration options. Options override the defaults.
func Init(options map[string]string) {
	// Reading must never leave .aux.xml or .gz.properties files next to
	// the input.
	setDefaultEnv("GDAL_PAM_ENABLED", "NO")
	setDefaultEnv("CPL_VSIL_GZIP_WRITE_PROPERTIES", "NO")

	register()

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		SetConfigOption(k, options[k])
	}
}

// SetConfigOption sets a GDAL configuration option for the process.
func SetConfigOption(key, value string) {
	cKey := C.CString(key)
	defer C.free(unsafe.Pointer(cKey))
	cValue := C.CString(value)
	defer C.free(unsafe.Pointer(cValue))
	C.CPLSetConfigOption(cKey, cValue)
}

// ConfigOption returns the current value of a GDAL configuration option,
// falling back to the environment the way GDAL does.
func ConfigOption(key string) string {
	cKey := C.CString(key)
	defer C.free(unsafe.Pointer(cKey))
	return C.GoString(C.CPLGetConfigOption(cKey, nil))
}

func register() {
	registerOnce.Do(func() {
		C.GDALAllRegister()
	})
}

func setDefaultEnv(envVar string, defaultVal string) {
	if _, ok := os.LookupEnv(envVar); !ok {
		os.Setenv(envVar, defaultVal)
	}
}
