// Package wordlist looks passwords up in a local line-oriented wordlist such as rockyou.txt.
package wordlist

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hazcod/pwcheck/pkg/apierr"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	DefaultFileName = "rockyou.txt"

	MsgPasswordMissing = "Password not provided."
	MsgUnavailable     = "Local password database not available. Please use the HIBP API option for breach checking."
	SuggestionHIBP     = "Get a free API key from Have I Been Pwned to check against their comprehensive database."

	// how often the scan looks at the request context
	cancelCheckInterval = 1024
)

// Result is the outcome of a wordlist scan. LineNumber is 1-based and only set when Found.
type Result struct {
	Found      bool
	LineNumber int
}

// Scanner performs exact-match lookups against a wordlist file.
type Scanner struct {
	logger *logrus.Logger
	path   string
}

func NewScanner(logger *logrus.Logger, path string) *Scanner {
	return &Scanner{logger: logger, path: path}
}

// DefaultPath returns the wordlist location next to the running executable.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}

// Lookup scans the wordlist from the start and returns the first line equal to password.
// A missing wordlist is reported as apierr.KindUnavailable, never as a miss.
func (s *Scanner) Lookup(ctx context.Context, password string) (*Result, error) {
	if password == "" {
		return nil, apierr.Validation(MsgPasswordMissing)
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("wordlist not found")
		return nil, &apierr.Error{
			Kind:       apierr.KindUnavailable,
			Status:     http.StatusNotFound,
			Message:    MsgUnavailable,
			Suggestion: SuggestionHIBP,
			Err:        err,
		}
	}
	if err != nil {
		return nil, readError(err)
	}
	defer f.Close()

	line, err := scan(ctx, f, password)
	if err != nil {
		return nil, readError(err)
	}

	if line == 0 {
		return &Result{}, nil
	}

	s.logger.WithField("line", line).Debug("password found in wordlist")
	return &Result{Found: true, LineNumber: line}, nil
}

// scan returns the 1-based line number of the first match, or 0.
// Ill-formed UTF-8 is dropped rather than aborting the scan.
func scan(ctx context.Context, r io.Reader, password string) (int, error) {
	dropInvalid := runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError }))
	reader := bufio.NewReader(transform.NewReader(r, dropInvalid))

	for lineNum := 1; ; lineNum++ {
		if lineNum%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}

		line, err := reader.ReadString('\n')
		if line != "" && strings.TrimRightFunc(line, unicode.IsSpace) == password {
			return lineNum, nil
		}
		if err == io.EOF {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func readError(err error) *apierr.Error {
	return apierr.New(apierr.KindIO, 0, "Error reading local database: "+apierr.Detail(err), err)
}
