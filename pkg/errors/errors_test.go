package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}
	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}
	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestWithMessageCopies(t *testing.T) {
	with := ErrParseIncomplete.WithMessage("line 14: bad tuple")

	if with == ErrParseIncomplete {
		t.Fatal("expected WithMessage to return a copy")
	}
	if with.Message != "line 14: bad tuple" {
		t.Fatalf("unexpected message: %s", with.Message)
	}
	if with.Code != ErrParseIncomplete.Code {
		t.Fatalf("expected code to be preserved, got %s", with.Code)
	}
	if ErrParseIncomplete.Message == with.Message {
		t.Fatal("expected sentinel message to remain unchanged")
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestFromErrorUnwrapsWrappedAppError(t *testing.T) {
	wrapped := ErrConstraintViolation.WithInternal(stdErrors.New("fk failure"))
	out := FromError(wrapped)
	if out.Code != ErrConstraintViolation.Code {
		t.Fatalf("expected constraint code, got %s", out.Code)
	}
}

func TestExchangeSentinelStatusCodes(t *testing.T) {
	cases := map[*AppError]int{
		ErrExchangeBusy:        http.StatusConflict,
		ErrConstraintViolation: http.StatusConflict,
		ErrMalformedDocument:   http.StatusBadRequest,
		ErrParseIncomplete:     http.StatusBadRequest,
	}
	for err, want := range cases {
		if err.StatusCode != want {
			t.Fatalf("%s: expected status %d, got %d", err.Code, want, err.StatusCode)
		}
	}
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("invalid payload")
	if err.Code != ErrBadRequest.Code {
		t.Fatalf("expected %s, got %s", ErrBadRequest.Code, err.Code)
	}
	if err.Message != "invalid payload" {
		t.Fatalf("unexpected message: %s", err.Message)
	}
}
