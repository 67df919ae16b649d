// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2020 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"errors"
	"io"
	"testing"
)

// TestErrorKindStringer tests the stringized output for the ErrorKind type.
func TestErrorKindStringer(t *testing.T) {
	tests := []struct {
		in   ErrorKind
		want string
	}{
		{ErrDbTypeRegistered, "ErrDbTypeRegistered"},
		{ErrDbUnknownType, "ErrDbUnknownType"},
		{ErrDbDoesNotExist, "ErrDbDoesNotExist"},
		{ErrDbExists, "ErrDbExists"},
		{ErrDbNotOpen, "ErrDbNotOpen"},
		{ErrInvalid, "ErrInvalid"},
		{ErrKeyRequired, "ErrKeyRequired"},
		{ErrValueNotFound, "ErrValueNotFound"},
		{ErrDriverSpecific, "ErrDriverSpecific"},
	}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("#%d: got: %s want: %s", i, result, test.want)
			continue
		}
	}
}

// TestError tests the error output for the Error type.
func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Error
		want string
	}{{
		Error{Description: "some error"},
		"some error",
	}, {
		Error{Description: "human-readable error"},
		"human-readable error",
	}, {
		Error{Description: "failed to open", RawErr: io.EOF},
		"failed to open: EOF",
	}}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("#%d: got: %s want: %s", i, result, test.want)
			continue
		}
	}
}

// TestErrorKindIsAs ensures both ErrorKind and Error can be identified as being
// a specific error kind via errors.Is and unwrapped via errors.As, including
// errors created by drivers that carry a backend error.
func TestErrorKindIsAs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
		wantAs    ErrorKind
	}{{
		name:      "ErrValueNotFound == ErrValueNotFound",
		err:       ErrValueNotFound,
		target:    ErrValueNotFound,
		wantMatch: true,
		wantAs:    ErrValueNotFound,
	}, {
		name:      "Error.ErrValueNotFound == ErrValueNotFound",
		err:       makeError(ErrValueNotFound, "key not found"),
		target:    ErrValueNotFound,
		wantMatch: true,
		wantAs:    ErrValueNotFound,
	}, {
		name:      "Error.ErrDbExists == Error.ErrDbExists",
		err:       MakeError(ErrDbExists, "", nil),
		target:    makeError(ErrDbExists, ""),
		wantMatch: true,
		wantAs:    ErrDbExists,
	}, {
		name:      "Error.ErrDbExists != ErrDbDoesNotExist",
		err:       MakeError(ErrDbExists, "database exists", nil),
		target:    ErrDbDoesNotExist,
		wantMatch: false,
		wantAs:    ErrDbExists,
	}, {
		name:      "ErrKeyRequired != Error.ErrValueNotFound",
		err:       ErrKeyRequired,
		target:    makeError(ErrValueNotFound, ""),
		wantMatch: false,
		wantAs:    ErrKeyRequired,
	}, {
		name:      "driver Error.ErrDbNotOpen == ErrDbNotOpen",
		err:       MakeError(ErrDbNotOpen, "closed", io.ErrClosedPipe),
		target:    ErrDbNotOpen,
		wantMatch: true,
		wantAs:    ErrDbNotOpen,
	}, {
		name:      "driver Error.ErrDriverSpecific != its raw error",
		err:       MakeError(ErrDriverSpecific, "failed to open", io.EOF),
		target:    io.EOF,
		wantMatch: false,
		wantAs:    ErrDriverSpecific,
	}}

	for _, test := range tests {
		// Ensure the error matches or not depending on the expected result.
		result := errors.Is(test.err, test.target)
		if result != test.wantMatch {
			t.Errorf("%s: incorrect error identification -- got %v, want %v",
				test.name, result, test.wantMatch)
			continue
		}

		// Ensure the underlying error kind can be unwrapped and is the
		// expected kind.
		var kind ErrorKind
		if !errors.As(test.err, &kind) {
			t.Errorf("%s: unable to unwrap to error kind", test.name)
			continue
		}
		if kind != test.wantAs {
			t.Errorf("%s: unexpected unwrapped error kind -- got %v, want %v",
				test.name, kind, test.wantAs)
			continue
		}
	}

	// The backend error stays available in RawErr.
	var dbErr Error
	err := error(MakeError(ErrDriverSpecific, "failed to open", io.EOF))
	if !errors.As(err, &dbErr) || dbErr.RawErr != io.EOF {
		t.Fatalf("raw error not retained -- got %v", err)
	}
}
