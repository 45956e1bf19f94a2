package main

import (
	stderrors "errors"
	"testing"
)

func TestErrBadArgumentsUnwrapsToCause(t *testing.T) {
	cause := stderrors.New("bad root")
	err := &errBadArguments{cause: cause}

	if err.Error() != "bad root" {
		t.Fatalf("got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected Is to find the wrapped cause")
	}

	var badArgs *errBadArguments
	if !stderrors.As(err, &badArgs) {
		t.Error("expected As to match errBadArguments")
	}
}

func TestErrBadArgumentsNotMatchedByPlainError(t *testing.T) {
	var badArgs *errBadArguments
	if stderrors.As(stderrors.New("some other failure"), &badArgs) {
		t.Error("did not expect a plain error to match errBadArguments")
	}
}
