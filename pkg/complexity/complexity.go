package complexity

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	// MinLength is the minimum number of characters a strong password has.
	MinLength = 8
	// MaxScore is the number of criteria a password is scored against.
	MaxScore = 5
)

// Feedback messages, reported in criteria order.
var (
	MsgLength    = fmt.Sprintf("Password must be at least %d characters long", MinLength)
	MsgUppercase = "Password must contain at least 1 uppercase letter"
	MsgLowercase = "Password must contain at least 1 lowercase letter"
	MsgDigits    = "Password must contain at least 1 digit"
	MsgSpecial   = "Password must contain at least 1 special character"
)

// Criteria holds the outcome of every individual check.
type Criteria struct {
	Length           bool `json:"length"`
	Uppercase        bool `json:"uppercase"`
	Lowercase        bool `json:"lowercase"`
	Digits           bool `json:"digits"`
	SpecialCharacter bool `json:"special_character"`
}

// Passed returns the number of satisfied criteria.
func (c Criteria) Passed() int {
	passed := 0
	for _, ok := range []bool{c.Length, c.Uppercase, c.Lowercase, c.Digits, c.SpecialCharacter} {
		if ok {
			passed++
		}
	}
	return passed
}

// Strength is the display label and color for a score.
type Strength struct {
	Level string
	Color string
}

var strengths = map[int]Strength{
	5: {Level: "Very Strong", Color: "#00ff00"},
	4: {Level: "Strong", Color: "#90ee90"},
	3: {Level: "Moderate", Color: "#ffa500"},
	2: {Level: "Weak", Color: "#ff6b6b"},
}

var veryWeak = Strength{Level: "Very Weak", Color: "#ff0000"}

// StrengthFor maps a score to its strength; anything at or below 1 is very weak.
func StrengthFor(score int) Strength {
	if s, ok := strengths[score]; ok {
		return s
	}
	return veryWeak
}

// Analysis is the result of scoring a single password.
type Analysis struct {
	IsStrong      bool     `json:"is_strong"`
	Score         int      `json:"score"`
	MaxScore      int      `json:"max_score"`
	Feedback      []string `json:"feedback"`
	Criteria      Criteria `json:"criteria"`
	StrengthLevel string   `json:"strength_level"`
	StrengthColor string   `json:"strength_color"`
}

// Analyze scores password against the composition rules.
// A special character is anything that is not a letter, a number or an underscore,
// so whitespace counts and '_' does not.
func Analyze(password string) Analysis {
	var c Criteria

	c.Length = utf8.RuneCountInString(password) >= MinLength

	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			c.Uppercase = true
		case r >= 'a' && r <= 'z':
			c.Lowercase = true
		case r >= '0' && r <= '9':
			c.Digits = true
		case !isWordRune(r):
			c.SpecialCharacter = true
		}
	}

	feedback := make([]string, 0, MaxScore)
	if !c.Length {
		feedback = append(feedback, MsgLength)
	}
	if !c.Uppercase {
		feedback = append(feedback, MsgUppercase)
	}
	if !c.Lowercase {
		feedback = append(feedback, MsgLowercase)
	}
	if !c.Digits {
		feedback = append(feedback, MsgDigits)
	}
	if !c.SpecialCharacter {
		feedback = append(feedback, MsgSpecial)
	}

	score := c.Passed()
	strength := StrengthFor(score)

	return Analysis{
		IsStrong:      score == MaxScore,
		Score:         score,
		MaxScore:      MaxScore,
		Feedback:      feedback,
		Criteria:      c,
		StrengthLevel: strength.Level,
		StrengthColor: strength.Color,
	}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
