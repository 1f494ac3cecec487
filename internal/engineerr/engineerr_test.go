package engineerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(DownloadFailed, "fetch failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if CodeOf(err) != DownloadFailed {
		t.Errorf("expected code %v, got %v", DownloadFailed, CodeOf(err))
	}
}

func TestCodeOfPropagatesThroughFmtWrap(t *testing.T) {
	base := New(InsufficientSegments, "no segments")
	outer := fmt.Errorf("stage failed: %w", base)

	if CodeOf(outer) != InsufficientSegments {
		t.Errorf("expected code to propagate through fmt.Errorf wrapping, got %v", CodeOf(outer))
	}
	if !Is(outer, InsufficientSegments) {
		t.Error("expected Is to match through wrapping")
	}
}

func TestCodeOfNonEngineError(t *testing.T) {
	if CodeOf(errors.New("plain")) != "" {
		t.Error("expected empty code for a non-engineerr error")
	}
}
