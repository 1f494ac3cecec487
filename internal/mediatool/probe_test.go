package mediatool

import "testing"

func TestParseFrameRateFraction(t *testing.T) {
	fps, err := parseFrameRate("30000/1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 30000.0 / 1001.0
	if fps != want {
		t.Errorf("expected %v, got %v", want, fps)
	}
}

func TestParseFrameRatePlainNumber(t *testing.T) {
	fps, err := parseFrameRate("25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fps != 25 {
		t.Errorf("expected 25, got %v", fps)
	}
}

func TestParseFrameRateEmpty(t *testing.T) {
	fps, err := parseFrameRate("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fps != 0 {
		t.Errorf("expected 0 for empty rate, got %v", fps)
	}
}

func TestParseFrameRateZeroDenominator(t *testing.T) {
	fps, err := parseFrameRate("30/0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fps != 0 {
		t.Errorf("expected 0 for zero denominator, got %v", fps)
	}
}
