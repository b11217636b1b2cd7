// This file is part of cpr2bin.
//
// cpr2bin is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cpr2bin is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cpr2bin.  If not, see <https://www.gnu.org/licenses/>.

// Package cartridgeloader reads cartridge files into memory, ready for the
// cpr and cartridge packages to work on. The whole file is read before any
// conversion begins.
//
// In addition to plain files, a cartridge file can be loaded from inside a
// zip archive or from a gzip compressed file. Compression applies to input
// only; the tool always writes plain output files.
package cartridgeloader

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/cpr2bin/curated"
	"github.com/jetsetilly/cpr2bin/logger"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// sentinel error for all failures in this package.
const LoaderError = "cartridgeloader: %v"

// FileExtensions is the list of file extensions that are recognised when
// searching a zip archive for a cartridge file.
var FileExtensions = [...]string{".CPR", ".BIN", ".ROM"}

// Loader is the result of loading a cartridge file into memory.
type Loader struct {
	// filename as given to the Load() function
	Filename string

	// the loaded data
	Data []byte

	// SHA1 of the loaded data. for data loaded from an archive or from a
	// compressed file, this is the hash of the contained data and not of the
	// file on disk
	Hash string
}

// Load reads the named file into memory. Files with a .zip or .gz extension
// are unpacked; anything else is read as is.
func Load(filename string) (Loader, error) {
	var data []byte
	var err error

	switch strings.ToUpper(filepath.Ext(filename)) {
	case ".ZIP":
		data, err = loadZip(filename)
	case ".GZ":
		data, err = loadGzip(filename)
	default:
		data, err = os.ReadFile(filename)
	}

	if err != nil {
		return Loader{}, curated.Errorf(LoaderError, err)
	}

	return Loader{
		Filename: filename,
		Data:     data,
		Hash:     fmt.Sprintf("%x", sha1.Sum(data)),
	}, nil
}

// loadZip returns the contents of the first recognised cartridge file in the
// archive. If no filename in the archive has a recognised extension then the
// first file in the archive is used.
func loadZip(filename string) ([]byte, error) {
	zf, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zf.Close()

	var selected *zip.File
	var recognised bool

	for _, f := range zf.File {
		if f.FileInfo().IsDir() || recognised {
			continue
		}

		if selected == nil {
			selected = f
		}

		ext := strings.ToUpper(filepath.Ext(f.Name))
		for _, e := range FileExtensions {
			if ext == e {
				selected = f
				recognised = true
				break
			}
		}
	}

	if selected == nil {
		return nil, fmt.Errorf("no files in archive: %s", filename)
	}

	logger.Logf("cartridgeloader", "using %s from archive %s", selected.Name, filename)

	f, err := selected.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// loadGzip decompresses the named file into memory.
func loadGzip(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	return io.ReadAll(gz)
}
