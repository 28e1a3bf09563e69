package nlu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleybot/parley/pkg/ports"
)

const luisPayload = `{
	"query": "deliver to 12345 for john@example.com",
	"intents": [
		{"intent": "OrderPizza", "score": 0.92},
		{"intent": "None", "score": 0.11}
	],
	"entities": [
		{"entity": "12345", "type": "number", "score": 0.88, "resolution": {"value": "12345"}},
		{"entity": "john@example.com", "type": "builtin.email"},
		{"entity": "john@example.com", "type": "builtin.personName"},
		{"entity": "downtown", "type": "geographyV2", "score": 0.7}
	]
}`

func TestLUIS_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "deliver to 12345 for john@example.com", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.URL.Query().Get("subscription-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(luisPayload))
	}))
	defer srv.Close()

	client := NewLUIS(srv.URL, "secret")
	res, err := client.Recognize(context.Background(), "deliver to 12345 for john@example.com", ports.SessionContext{})
	require.NoError(t, err)

	require.Len(t, res.Intents, 2)
	assert.Equal(t, "OrderPizza", res.Intents[0].Name, "sorted by confidence")

	types := map[string]bool{}
	for _, e := range res.Entities {
		types[e.Type] = true
	}
	assert.True(t, types["email"], "builtin.email translated")
	assert.True(t, types["address"], "geographyV2 translated")
	assert.False(t, types["fullname"], "personName with @ dropped")

	for _, e := range res.Entities {
		if e.Type == "email" {
			assert.Equal(t, 1.0, e.Confidence, "unscored prebuilt entity treated as certain")
		}
	}
}

func TestLUIS_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewLUIS(srv.URL, "wrong-key")
	_, err := client.Recognize(context.Background(), "hello", ports.SessionContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestLUIS_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewLUIS(srv.URL, "secret")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Recognize(ctx, "hello", ports.SessionContext{})
	assert.Error(t, err)
}
