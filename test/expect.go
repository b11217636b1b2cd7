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

package test

import (
	"bytes"
	"testing"
)

// ExpectEquality is used to test equality between one value and another.
//
// Both values must be of the same type. Because a literal number value is of
// type int, it is sometimes convenient to cast the expected value at the call
// site rather than fight the type system.
func ExpectEquality[T comparable](t *testing.T, value T, expectedValue T) {
	t.Helper()
	if value != expectedValue {
		t.Errorf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
	}
}

// ExpectEqualityBytes is like ExpectEquality but for byte slices, which
// cannot satisfy the comparable constraint.
func ExpectEqualityBytes(t *testing.T, value []byte, expectedValue []byte) {
	t.Helper()
	if !bytes.Equal(value, expectedValue) {
		if len(value) != len(expectedValue) {
			t.Errorf("equality test of []byte failed: lengths differ (%d and %d)", len(value), len(expectedValue))
			return
		}
		for i := range value {
			if value[i] != expectedValue[i] {
				t.Errorf("equality test of []byte failed: first difference at index %d (%#02x and %#02x)", i, value[i], expectedValue[i])
				return
			}
		}
	}
}

// ExpectSuccess tests argument v for a success condition suitable for its
// type. Supported types:
//
//	bool  -> bool == true
//	error -> error == nil
//
// If type is nil then the test will succeed.
func ExpectSuccess(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if !v {
			t.Errorf("expected success (bool)")
			return false
		}

	case error:
		if v != nil {
			t.Errorf("expected success (error: %v)", v)
			return false
		}

	case nil:
		return true

	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
		return false
	}

	return true
}

// ExpectFailure tests argument v for a failure condition suitable for its
// type. Supported types:
//
//	bool  -> bool == false
//	error -> error != nil
//
// If type is nil then the test will fail.
func ExpectFailure(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if v {
			t.Errorf("expected failure (bool)")
			return false
		}

	case error:
		if v == nil {
			t.Errorf("expected failure (error)")
			return false
		}

	case nil:
		t.Errorf("expected failure (nil)")
		return false

	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
		return false
	}

	return true
}

// DemandEquality is like ExpectEquality except that a failed test is a
// testing fatality.
//
// Useful if the value being tested is used in further tests and so must be
// correct. For example, testing that the lengths of two slices are equal
// before iterating over them in unison.
func DemandEquality[T comparable](t *testing.T, value T, expectedValue T) {
	t.Helper()
	if value != expectedValue {
		t.Fatalf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
	}
}

// DemandSuccess is like ExpectSuccess except that a failed test is a testing
// fatality.
func DemandSuccess(t *testing.T, v interface{}) {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if !v {
			t.Fatalf("success demanded (bool)")
		}

	case error:
		if v != nil {
			t.Fatalf("success demanded (error: %v)", v)
		}

	case nil:

	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
	}
}
