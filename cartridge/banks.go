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

// Package cartridge describes the memory of a CPC cartridge as a collection
// of numbered 16KB banks, and converts between that collection and the flat
// binary image burned to a ROM.
//
// Bank data arrives from one of two places: the cpr package, which decodes a
// banks collection from a CPR container, or the Split() function, which
// slices a flat image into banks ready for encoding. The Assemble() function
// works in the opposite direction to Split(), concatenating a collection
// into a flat image.
package cartridge

import (
	"fmt"
	"sort"

	"github.com/jetsetilly/cpr2bin/curated"
)

// BankSize is the number of bytes in a single cartridge bank. Data decoded
// from a CPR container may be shorter but is never longer.
const BankSize = 16384

// MaxBanks is the maximum number of banks in a cartridge. The largest
// cartridge the format supports is 512KB, or 32 banks of 16KB.
const MaxBanks = 32

// MaxIndex is the largest bank index that can be written to a CPR container.
// Indices are stored as two decimal digits so anything above 99 cannot be
// represented. The MaxBanks limit keeps real cartridges well below this.
const MaxIndex = 99

// sentinel error returned by Split() when the image exceeds MaxBanks banks.
const ImageTooLarge = "cartridge: image too large: %v"

// Banks maps a bank index to the data stored for that bank. Insertion order
// is irrelevant. Whenever the collection is iterated for output the indices
// are visited in ascending numeric order.
type Banks map[int][]byte

// Indices returns the bank indices in the collection in ascending numeric
// order.
func (b Banks) Indices() []int {
	idx := make([]int, 0, len(b))
	for i := range b {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Assemble concatenates the collection into a flat binary image. Banks are
// written in ascending index order and any bank shorter than BankSize is
// zero padded to the full bank length.
//
// Note that gaps in the index sequence are not filled with empty banks. A
// collection containing indices 0 and 2 assembles to two banks back-to-back,
// not three. This matches the output of earlier versions of this tool.
func (b Banks) Assemble() []byte {
	img := make([]byte, 0, len(b)*BankSize)
	for _, i := range b.Indices() {
		img = append(img, b[i]...)
		if len(b[i]) < BankSize {
			img = append(img, make([]byte, BankSize-len(b[i]))...)
		}
	}
	return img
}

// Split slices a flat binary image into a collection of banks. Slicing is
// consecutive from the start of the image with indices counting up from
// zero. The final bank may be shorter than BankSize. It is stored short, not
// padded: padding on the way back to a flat image is Assemble()'s job.
//
// Returns the ImageTooLarge sentinel error if the image requires more than
// MaxBanks banks.
func Split(image []byte) (Banks, error) {
	if len(image) > MaxBanks*BankSize {
		return nil, curated.Errorf(ImageTooLarge,
			fmt.Sprintf("%d bytes (maximum is %d)", len(image), MaxBanks*BankSize))
	}

	banks := make(Banks)
	for i := 0; i*BankSize < len(image); i++ {
		o := i * BankSize
		e := o + BankSize
		if e > len(image) {
			e = len(image)
		}
		banks[i] = image[o:e]
	}

	return banks, nil
}
