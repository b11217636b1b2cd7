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

package curated_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/cpr2bin/curated"
	"github.com/jetsetilly/cpr2bin/test"
)

const testError = "test error: %v"
const baseError = "base error: %v"

func TestIs(t *testing.T) {
	e := curated.Errorf(testError, 10)
	test.ExpectEquality(t, e.Error(), "test error: 10")

	test.ExpectSuccess(t, curated.IsAny(e))
	test.ExpectSuccess(t, curated.Is(e, testError))
	test.ExpectFailure(t, curated.Is(e, baseError))

	// plain errors are not curated errors
	p := errors.New("plain error")
	test.ExpectFailure(t, curated.IsAny(p))
	test.ExpectFailure(t, curated.Is(p, testError))
}

func TestHas(t *testing.T) {
	b := curated.Errorf(baseError, "inner detail")
	e := curated.Errorf(testError, b)

	test.ExpectSuccess(t, curated.Has(e, testError))
	test.ExpectSuccess(t, curated.Has(e, baseError))
	test.ExpectFailure(t, curated.Has(b, testError))
}

func TestDeduplication(t *testing.T) {
	// wrapping an error in the same pattern should not stutter the message
	b := curated.Errorf("error: %v", "detail")
	e := curated.Errorf("error: %v", b)
	test.ExpectEquality(t, e.Error(), "error: detail")
}
