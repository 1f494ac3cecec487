package aiproc

import "testing"

func TestParseScoreListFencedJSON(t *testing.T) {
	raw := "Here you go:\n```json\n[0.1, 0.5, 1.5]\n```\nThanks."
	scores, err := parseScoreList(raw, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.1, 0.5, 1.0} // 1.5 clamped to 1.0
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("index %d: got %v, want %v", i, scores[i], want[i])
		}
	}
}

func TestParseScoreListBareJSON(t *testing.T) {
	raw := "The scores are [0.2, 0.8] for these two."
	scores, err := parseScoreList(raw, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[0] != 0.2 || scores[1] != 0.8 {
		t.Errorf("unexpected scores: %v", scores)
	}
}

func TestParseScoreListCommaSeparated(t *testing.T) {
	raw := "0.3, 0.6, 0.9"
	scores, err := parseScoreList(raw, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[0] != 0.3 || scores[1] != 0.6 || scores[2] != 0.9 {
		t.Errorf("unexpected scores: %v", scores)
	}
}

func TestParseScoreListFirstNNumbersFallback(t *testing.T) {
	raw := "I'd rate the first one 0.4 and the second one 0.7, roughly."
	scores, err := parseScoreList(raw, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[0] != 0.4 || scores[1] != 0.7 {
		t.Errorf("unexpected scores: %v", scores)
	}
}

func TestParseScoreListUnparseableReturnsError(t *testing.T) {
	if _, err := parseScoreList("no numbers at all here", 3); err == nil {
		t.Error("expected an error for unparseable response")
	}
}

func TestParseScoreListWrongLengthFallsThrough(t *testing.T) {
	// a 2-element array when 3 were requested should fail every JSON/comma
	// strategy and fall back to the first-N-numbers scan, which also fails
	// since only 2 numeric tokens exist.
	if _, err := parseScoreList("[0.1, 0.2]", 3); err == nil {
		t.Error("expected an error when the array length does not match n")
	}
}

func TestIsGeminiModel(t *testing.T) {
	cases := map[string]bool{
		"gemini-1.5-flash": true,
		"Gemini-2.0-pro":   true,
		"gpt-4o":           false,
		"":                 false,
	}
	for model, want := range cases {
		if got := isGeminiModel(model); got != want {
			t.Errorf("isGeminiModel(%q) = %v, want %v", model, got, want)
		}
	}
}

func TestIsRetryableAIError(t *testing.T) {
	retryable := []string{"request timeout", "429 too many requests", "connection reset by peer", "unexpected EOF"}
	nonRetryable := []string{"invalid api key", "400 bad request"}

	for _, msg := range retryable {
		if !isRetryableAIError(errString(msg)) {
			t.Errorf("expected %q to be retryable", msg)
		}
	}
	for _, msg := range nonRetryable {
		if isRetryableAIError(errString(msg)) {
			t.Errorf("expected %q to be non-retryable", msg)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestParseFaceCountBareInteger(t *testing.T) {
	n, err := parseFaceCount("3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("got %d, want 3", n)
	}
}

func TestParseFaceCountWithSurroundingProse(t *testing.T) {
	n, err := parseFaceCount("I count 2 faces in this frame.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d, want 2", n)
	}
}

func TestParseFaceCountZero(t *testing.T) {
	n, err := parseFaceCount("0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("got %d, want 0", n)
	}
}

func TestParseFaceCountUnparseableReturnsError(t *testing.T) {
	if _, err := parseFaceCount("I see no numbers here"); err == nil {
		t.Error("expected an error for a response with no integer")
	}
}
