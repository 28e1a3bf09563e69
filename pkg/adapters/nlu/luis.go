package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/parleybot/parley/pkg/domain"
	"github.com/parleybot/parley/pkg/ports"
)

// rawIntentLimit caps how many ranked intents are taken from a response.
const rawIntentLimit = 10

// entityTranslations maps provider entity types onto the names bots declare.
var entityTranslations = map[string]string{
	"geographyV2":         "address",
	"builtin.personName":  "fullname",
	"builtin.email":       "email",
	"builtin.phonenumber": "phonenumber",
}

// LUIS is a recognizer backed by a LUIS-style prediction endpoint.
type LUIS struct {
	endpoint string
	key      string
	client   *http.Client
}

// LUISOption customizes the client.
type LUISOption func(*LUIS)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) LUISOption {
	return func(l *LUIS) { l.client = c }
}

// NewLUIS creates a prediction client. The endpoint is the full prediction
// URL for a published app; the key is the subscription key.
func NewLUIS(endpoint, key string, opts ...LUISOption) *LUIS {
	l := &LUIS{
		endpoint: endpoint,
		key:      key,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type luisResponse struct {
	Query   string `json:"query"`
	Intents []struct {
		Intent string  `json:"intent"`
		Score  float64 `json:"score"`
	} `json:"intents"`
	Entities []struct {
		Entity     string  `json:"entity"`
		Type       string  `json:"type"`
		Score      float64 `json:"score"`
		Resolution struct {
			Value  string   `json:"value"`
			Values []string `json:"values"`
		} `json:"resolution"`
	} `json:"entities"`
}

// Recognize queries the prediction endpoint. The caller's context bounds the
// request; a deadline surfaces as an error which the engine treats as a
// no-match.
func (l *LUIS) Recognize(ctx context.Context, utterance string, _ ports.SessionContext) (*domain.NLUResult, error) {
	q := url.Values{}
	q.Set("q", utterance)
	q.Set("verbose", "true")
	q.Set("subscription-key", l.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build luis request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("luis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("luis returned status %d", resp.StatusCode)
	}

	var raw luisResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode luis response: %w", err)
	}

	return translate(&raw), nil
}

func translate(raw *luisResponse) *domain.NLUResult {
	res := &domain.NLUResult{Query: raw.Query}

	for i, in := range raw.Intents {
		if i >= rawIntentLimit {
			break
		}
		res.Intents = append(res.Intents, domain.IntentScore{Name: in.Intent, Confidence: in.Score})
	}
	res.Sort()

	for _, en := range raw.Entities {
		typ := en.Type
		if t, ok := entityTranslations[typ]; ok {
			typ = t
		}
		value := en.Entity
		switch {
		case len(en.Resolution.Values) > 0:
			value = en.Resolution.Values[0]
		case en.Resolution.Value != "":
			value = en.Resolution.Value
		}
		// Person-name models misfire on email addresses.
		if typ == "fullname" && strings.Contains(value, "@") {
			continue
		}
		score := en.Score
		if score == 0 {
			// Prebuilt entities come back unscored; treat them as certain.
			score = 1.0
		}
		res.Entities = append(res.Entities, domain.EntityMatch{Type: typ, Value: value, Confidence: score})
	}

	return res
}
