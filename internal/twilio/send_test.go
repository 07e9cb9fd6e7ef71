package twilio_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatwire/chatwire/internal/events"
	"github.com/chatwire/chatwire/internal/twilio"
	"github.com/chatwire/chatwire/internal/twilio/mocks"
)

func testCredentials() twilio.Credentials {
	return twilio.Credentials{
		AccountSID: "AC0000000000000000000000000000000a",
		AuthToken:  "secret-token",
		FromNumber: "+14155238886",
	}
}

func TestSendSuccess(t *testing.T) {
	var gotPath, gotBody, gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotUser, gotPass, _ = r.BasicAuth()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		// num_media as a number, num_segments as a string: both shapes
		// occur in the wild and both must decode.
		io.WriteString(w, `{
			"sid": "SM123",
			"status": "queued",
			"to": "whatsapp:+15005550006",
			"from": "whatsapp:+14155238886",
			"body": "hello",
			"account_sid": "AC0000000000000000000000000000000a",
			"api_version": "2010-04-01",
			"num_media": 0,
			"num_segments": "1",
			"error_code": null
		}`)
	}))
	defer server.Close()

	client, err := twilio.NewClient(testCredentials(), twilio.WithBaseURL(server.URL))
	require.NoError(t, err)

	result, err := client.SendText(context.Background(), "+15005550006", "hello")
	require.NoError(t, err)

	assert.Equal(t, "/Accounts/AC0000000000000000000000000000000a/Messages.json", gotPath)
	assert.Equal(t, "AC0000000000000000000000000000000a", gotUser)
	assert.Equal(t, "secret-token", gotPass)
	// Field order is part of the contract: To, From, Body.
	assert.Equal(t, "To=whatsapp%3A%2B15005550006&From=whatsapp%3A%2B14155238886&Body=hello", gotBody)

	assert.Equal(t, "SM123", result.SID)
	assert.Equal(t, "queued", result.Status)
	assert.Equal(t, "whatsapp:+15005550006", result.To)
	assert.Equal(t, "0", result.NumMedia.String())
	assert.Equal(t, "1", result.NumSegments.String())
	assert.Equal(t, "", result.ErrorCode.String())
}

func TestSendProviderError(t *testing.T) {
	const rejection = `{"code": 63016, "message": "Failed to send freeform message", "status": 400}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, rejection)
	}))
	defer server.Close()

	client, err := twilio.NewClient(testCredentials(), twilio.WithBaseURL(server.URL))
	require.NoError(t, err)

	result, err := client.SendText(context.Background(), "+15005550006", "hello")
	assert.Nil(t, result, "a rejected send must never yield a partial result")

	var perr *twilio.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.Equal(t, rejection, perr.Body, "provider body must be carried verbatim")
	assert.Equal(t, 63016, perr.Code)
	assert.Equal(t, "Failed to send freeform message", perr.Message)
	assert.False(t, twilio.Retryable(err))
}

func TestSendTransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	doer := mocks.NewMockHTTPDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused"))

	client, err := twilio.NewClient(testCredentials(), twilio.WithHTTPClient(doer))
	require.NoError(t, err)

	_, err = client.SendText(context.Background(), "+15005550006", "hello")
	var terr *twilio.TransportError
	require.ErrorAs(t, err, &terr)
	assert.True(t, twilio.Retryable(err))
}

func TestSendMalformedAcknowledgment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `not json`)
	}))
	defer server.Close()

	client, err := twilio.NewClient(testCredentials(), twilio.WithBaseURL(server.URL))
	require.NoError(t, err)

	result, err := client.SendText(context.Background(), "+15005550006", "hello")
	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestSendValidationFailsBeforeNetwork(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No Do expectation: an invalid payload must never reach the transport.
	doer := mocks.NewMockHTTPDoer(ctrl)

	client, err := twilio.NewClient(testCredentials(), twilio.WithHTTPClient(doer))
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), "+15005550006", twilio.InteractiveButtons{
		Header: "H",
		Body:   "B",
		Buttons: []twilio.Button{
			{ID: "1", Title: "A"}, {ID: "2", Title: "B"},
			{ID: "3", Title: "C"}, {ID: "4", Title: "D"},
		},
	})

	var verr *twilio.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, twilio.Retryable(err))
}

func TestSendPublishesSentEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"sid": "SM777", "status": "queued"}`)
	}))
	defer server.Close()

	hub := events.NewHub(16)
	client, err := twilio.NewClient(testCredentials(),
		twilio.WithBaseURL(server.URL), twilio.WithEventHub(hub))
	require.NoError(t, err)

	_, err = client.SendText(context.Background(), "+15005550006", "hello")
	require.NoError(t, err)

	snapshot := hub.SnapshotSince(0)
	require.Len(t, snapshot, 1)
	assert.Equal(t, events.TypeMessageSent, snapshot[0].Type)

	var traffic events.Traffic
	require.NoError(t, json.Unmarshal(snapshot[0].Data, &traffic))
	assert.Equal(t, "SM777", traffic.MessageSID)
	assert.Equal(t, "whatsapp:+15005550006", traffic.To)
	assert.Equal(t, "queued", traffic.Status)
}

func TestSendRejectedPublishesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"code": 63016, "message": "rejected", "status": 400}`)
	}))
	defer server.Close()

	hub := events.NewHub(16)
	client, err := twilio.NewClient(testCredentials(),
		twilio.WithBaseURL(server.URL), twilio.WithEventHub(hub))
	require.NoError(t, err)

	_, err = client.SendText(context.Background(), "+15005550006", "hello")
	require.Error(t, err)
	assert.Empty(t, hub.SnapshotSince(0))
}

func TestNewClientValidatesCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds twilio.Credentials
	}{
		{name: "missing sid", creds: twilio.Credentials{AuthToken: "t", FromNumber: "+1"}},
		{name: "missing token", creds: twilio.Credentials{AccountSID: "AC", FromNumber: "+1"}},
		{name: "missing from", creds: twilio.Credentials{AccountSID: "AC", AuthToken: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := twilio.NewClient(tt.creds)
			assert.Error(t, err)
		})
	}
}
