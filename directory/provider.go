// Package directory supplies the known set of user identities.
// A remote fetch is attempted once at startup; on any failure the built-in
// fallback list keeps the system usable offline. Load never fails.
package directory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"rtchat/domain"
)

const DefaultURL = "https://hr2.sibers.com/test/frontend/users.json"

var validate = validator.New()

// record is the wire shape of one directory entry. Some sources publish
// numeric ids and some publish strings; flexID accepts both.
type record struct {
	ID   flexID `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f = flexID(s)
	return nil
}

type Provider struct {
	url    string
	client *http.Client
	log    *slog.Logger
}

func NewProvider(url string, timeout time.Duration, log *slog.Logger) Provider {
	return Provider{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Load fetches the canonical identity list. Any transport, status, parse or
// validation failure falls back to Fallback(). Idempotent, safe to call
// once per process start.
func (p Provider) Load() []domain.UserIdentity {
	users, err := p.fetch()
	if err != nil {
		p.log.Warn("Directory fetch failed, using fallback list", "url", p.url, "error", err)
		return Fallback()
	}
	return users
}

func (p Provider) fetch() ([]domain.UserIdentity, error) {
	res, err := p.client.Get(p.url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &statusError{code: res.StatusCode}
	}

	var records []record
	if err = json.NewDecoder(res.Body).Decode(&records); err != nil {
		return nil, err
	}
	for _, r := range records {
		if err = validate.Struct(r); err != nil {
			return nil, err
		}
	}

	return lo.Map(records, func(r record, _ int) domain.UserIdentity {
		return domain.UserIdentity{ID: domain.UserKey(r.ID), Name: r.Name}
	}), nil
}

// Fallback is the fixed offline directory.
func Fallback() []domain.UserIdentity {
	return []domain.UserIdentity{
		{ID: "u1", Name: "Alice Cooper"},
		{ID: "u2", Name: "Bob Marley"},
		{ID: "u3", Name: "Carl Sagan"},
		{ID: "u4", Name: "Diana Prince"},
	}
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}
