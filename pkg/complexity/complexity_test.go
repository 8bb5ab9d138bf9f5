package complexity

import (
	"strings"
	"testing"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		password string
		criteria Criteria
		level    string
	}{
		{
			name:     "lowercase only",
			password: "abc",
			criteria: Criteria{Lowercase: true},
			level:    "Very Weak",
		},
		{
			name:     "all classes at minimum length",
			password: "Abcdef1!",
			criteria: Criteria{Length: true, Uppercase: true, Lowercase: true, Digits: true, SpecialCharacter: true},
			level:    "Very Strong",
		},
		{
			name:     "underscore is not special",
			password: "Abcdef1_",
			criteria: Criteria{Length: true, Uppercase: true, Lowercase: true, Digits: true},
			level:    "Strong",
		},
		{
			name:     "whitespace is special",
			password: "Abcdef1 ",
			criteria: Criteria{Length: true, Uppercase: true, Lowercase: true, Digits: true, SpecialCharacter: true},
			level:    "Very Strong",
		},
		{
			name:     "long lowercase with digits",
			password: "abcdefgh12",
			criteria: Criteria{Length: true, Lowercase: true, Digits: true},
			level:    "Moderate",
		},
		{
			name:     "digits only",
			password: "12345678",
			criteria: Criteria{Length: true, Digits: true},
			level:    "Weak",
		},
		{
			name:     "empty",
			password: "",
			criteria: Criteria{},
			level:    "Very Weak",
		},
		{
			name:     "non ascii letters are neither cased nor special",
			password: "ééééééé",
			criteria: Criteria{},
			level:    "Very Weak",
		},
		{
			name:     "length counts characters not bytes",
			password: "Ééééééé1",
			criteria: Criteria{Length: true, Digits: true, Uppercase: false},
			level:    "Weak",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Analyze(tt.password)

			if a.Criteria != tt.criteria {
				t.Errorf("criteria = %+v, want %+v", a.Criteria, tt.criteria)
			}
			if a.Score != tt.criteria.Passed() {
				t.Errorf("score = %d, want %d", a.Score, tt.criteria.Passed())
			}
			if a.StrengthLevel != tt.level {
				t.Errorf("strength level = %q, want %q", a.StrengthLevel, tt.level)
			}
			if a.MaxScore != MaxScore {
				t.Errorf("max score = %d, want %d", a.MaxScore, MaxScore)
			}
			if a.IsStrong != (a.Score == MaxScore) {
				t.Errorf("is_strong = %v with score %d", a.IsStrong, a.Score)
			}
			if len(a.Feedback) != MaxScore-a.Score {
				t.Errorf("got %d feedback messages for score %d", len(a.Feedback), a.Score)
			}
		})
	}
}

func TestAnalyzeFeedbackOrder(t *testing.T) {
	a := Analyze("")

	want := []string{MsgLength, MsgUppercase, MsgLowercase, MsgDigits, MsgSpecial}
	if len(a.Feedback) != len(want) {
		t.Fatalf("feedback = %v, want %v", a.Feedback, want)
	}
	for i := range want {
		if a.Feedback[i] != want[i] {
			t.Errorf("feedback[%d] = %q, want %q", i, a.Feedback[i], want[i])
		}
	}
}

func TestAnalyzeShortPasswordsFailLength(t *testing.T) {
	for _, pw := range []string{"a", "Ab1!", "Abc12!x", strings.Repeat("!", MinLength-1)} {
		a := Analyze(pw)
		if a.Criteria.Length {
			t.Errorf("%q: length criterion passed", pw)
		}
		if len(a.Feedback) == 0 || a.Feedback[0] != MsgLength {
			t.Errorf("%q: feedback %v does not start with the length message", pw, a.Feedback)
		}
	}
}

func TestAnalyzeStrongFeedbackIsEmptyList(t *testing.T) {
	a := Analyze("Correct-Horse-9")
	if !a.IsStrong {
		t.Fatalf("expected strong password, got %+v", a)
	}
	if a.Feedback == nil || len(a.Feedback) != 0 {
		t.Errorf("feedback = %#v, want empty non-nil slice", a.Feedback)
	}
}

func TestStrengthFor(t *testing.T) {
	tests := []struct {
		score int
		want  Strength
	}{
		{5, Strength{"Very Strong", "#00ff00"}},
		{4, Strength{"Strong", "#90ee90"}},
		{3, Strength{"Moderate", "#ffa500"}},
		{2, Strength{"Weak", "#ff6b6b"}},
		{1, Strength{"Very Weak", "#ff0000"}},
		{0, Strength{"Very Weak", "#ff0000"}},
	}

	for _, tt := range tests {
		if got := StrengthFor(tt.score); got != tt.want {
			t.Errorf("StrengthFor(%d) = %+v, want %+v", tt.score, got, tt.want)
		}
	}
}
