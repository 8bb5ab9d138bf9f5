package password

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/hazcod/pwcheck/pkg/apierr"
	"github.com/hazcod/pwcheck/pkg/complexity"
	"github.com/hazcod/pwcheck/pkg/service/hibp"
	"github.com/hazcod/pwcheck/pkg/service/wordlist"
	"github.com/sirupsen/logrus"
)

const (
	MsgInvalidBody      = "Invalid request body"
	MsgPasswordRequired = "Password is required"
)

// BreachChecker looks a password up in a remote breach database.
type BreachChecker interface {
	CheckPassword(ctx context.Context, password, apiKey string) (*hibp.Result, error)
}

// WordlistChecker looks a password up in a local wordlist.
type WordlistChecker interface {
	Lookup(ctx context.Context, password string) (*wordlist.Result, error)
}

type complexityRequest struct {
	Password string `json:"password" valid:"required"`
}

type breachRequest struct {
	Password string `json:"password" valid:"required"`
	APIKey   string `json:"api_key" valid:"required"`
}

type wordlistRequest struct {
	Password string `json:"password" valid:"required"`
}

type breachResponse struct {
	Breached bool `json:"breached"`
	Count    *int `json:"count,omitempty"`
}

type wordlistResponse struct {
	Found      bool `json:"found"`
	LineNumber *int `json:"line_number,omitempty"`
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.Validation(MsgInvalidBody)
	}
	return nil
}

// CheckComplexity scores the submitted password against the composition rules.
func CheckComplexity(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data complexityRequest
		if err := decode(r, &data); err != nil {
			apierr.Write(logger, w, r, err)
			return
		}

		if valid, err := govalidator.ValidateStruct(data); !valid || err != nil {
			apierr.Write(logger, w, r, apierr.Validation(MsgPasswordRequired))
			return
		}

		analysis := complexity.Analyze(data.Password)

		logger.WithFields(logrus.Fields{
			"score":    analysis.Score,
			"strength": analysis.StrengthLevel,
		}).Debug("scored password")

		apierr.WriteJSON(logger, w, http.StatusOK, analysis)
	}
}

// CheckBreach checks the submitted password against the remote breach API using the caller's key.
func CheckBreach(logger *logrus.Logger, checker BreachChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data breachRequest
		if err := decode(r, &data); err != nil {
			apierr.Write(logger, w, r, err)
			return
		}

		if valid, err := govalidator.ValidateStruct(data); !valid || err != nil {
			msg := hibp.MsgAPIKeyMissing
			if data.Password == "" {
				msg = hibp.MsgPasswordMissing
			}
			apierr.Write(logger, w, r, apierr.Validation(msg))
			return
		}

		res, err := checker.CheckPassword(r.Context(), data.Password, data.APIKey)
		if err != nil {
			apierr.Write(logger, w, r, err)
			return
		}

		resp := breachResponse{Breached: res.Breached}
		if res.Breached {
			resp.Count = &res.Count
		}
		apierr.WriteJSON(logger, w, http.StatusOK, resp)
	}
}

// CheckWordlist checks the submitted password against the local wordlist.
func CheckWordlist(logger *logrus.Logger, checker WordlistChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data wordlistRequest
		if err := decode(r, &data); err != nil {
			apierr.Write(logger, w, r, err)
			return
		}

		if valid, err := govalidator.ValidateStruct(data); !valid || err != nil {
			apierr.Write(logger, w, r, apierr.Validation(wordlist.MsgPasswordMissing))
			return
		}

		res, err := checker.Lookup(r.Context(), data.Password)
		if err != nil {
			apierr.Write(logger, w, r, err)
			return
		}

		resp := wordlistResponse{Found: res.Found}
		if res.Found {
			resp.LineNumber = &res.LineNumber
		}
		apierr.WriteJSON(logger, w, http.StatusOK, resp)
	}
}
