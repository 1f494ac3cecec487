package text

import "testing"

func TestScoreEmptyTextIsZero(t *testing.T) {
	a := Default()
	if got := a.Score("   "); got != 0 {
		t.Errorf("expected empty text to score 0, got %v", got)
	}
}

func TestScoreIsWithinUnitRange(t *testing.T) {
	a := Default()
	samples := []string{
		"the secret nobody tells you is shocking and unbelievable!",
		"I went to the store and bought some bread.",
		"WHY does nobody talk about this?! WATCH what happens next!",
	}
	for _, s := range samples {
		got := a.Score(s)
		if got < 0 || got > 1 {
			t.Errorf("score for %q out of range: %v", s, got)
		}
	}
}

func TestScoreRewardsKeywordsAndQuestions(t *testing.T) {
	a := Default()
	plain := a.Score("I went to the store and bought some bread and milk today.")
	hooky := a.Score("Why is nobody talking about this shocking secret? You need to watch this now!")

	if hooky <= plain {
		t.Errorf("expected hook-laden text to score higher than plain text: hooky=%v plain=%v", hooky, plain)
	}
}

func TestCustomKeywordConfiguration(t *testing.T) {
	a := NewAnalyzer([]string{"widget"}, []string{"buy"})
	withKeyword := a.Score("This widget is the best widget you will ever buy.")
	without := a.Score("This gadget is the best gadget you will ever own.")

	if withKeyword <= without {
		t.Errorf("expected configured keyword to raise the score: with=%v without=%v", withKeyword, without)
	}
}
