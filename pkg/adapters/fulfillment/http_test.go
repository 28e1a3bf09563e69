package fulfillment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleybot/parley/pkg/domain"
)

func sampleRequest() domain.FulfillmentRequest {
	return domain.FulfillmentRequest{
		SessionID: "s1",
		TurnID:    "t1",
		Intent:    "OrderPizza",
		Slots:     map[string]string{"zipcode": "12345"},
	}
}

func TestHTTPInvoker_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req domain.FulfillmentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "OrderPizza", req.Intent)
		assert.Equal(t, "12345", req.Slots["zipcode"])

		_, _ = w.Write([]byte(`{"status": "success", "message": "Your order is placed."}`))
	}))
	defer srv.Close()

	inv := NewHTTPInvoker()
	res, err := inv.Invoke(context.Background(), srv.URL, sampleRequest())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Your order is placed.", res.Message)
}

func TestHTTPInvoker_DeclaredFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error", "status_reason": "store closed"}`))
	}))
	defer srv.Close()

	inv := NewHTTPInvoker()
	res, err := inv.Invoke(context.Background(), srv.URL, sampleRequest())
	require.NoError(t, err, "a declared failure is not a transport error")
	assert.False(t, res.Success)
	assert.Equal(t, "store closed", res.Reason)
}

func TestHTTPInvoker_ResponseAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "action": "end_conversation"}`))
	}))
	defer srv.Close()

	inv := NewHTTPInvoker()
	res, err := inv.Invoke(context.Background(), srv.URL, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.ActionEndConversation, res.Action)
}

func TestHTTPInvoker_BadStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	inv := NewHTTPInvoker()
	res, err := inv.Invoke(context.Background(), srv.URL, sampleRequest())
	assert.Error(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "502")
}

func TestHTTPInvoker_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	inv := NewHTTPInvoker()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := inv.Invoke(ctx, srv.URL, sampleRequest())
	assert.Error(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Reason)
}

func TestHTTPInvoker_BadAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "action": "launch_rockets"}`))
	}))
	defer srv.Close()

	inv := NewHTTPInvoker()
	_, err := inv.Invoke(context.Background(), srv.URL, sampleRequest())
	assert.Error(t, err)
}
