package recognition

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"checkin-kiosk/internal/api"
	"checkin-kiosk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(api.NewAPIClient(srv.URL, "", 0))
}

func TestProcessFrame_Detected(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, models.PathProcessFrame, r.URL.Path)

		var req models.ProcessFrameRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "data:image/jpeg;base64,AAAA", req.Image)
		assert.Equal(t, "OFF-7", req.OfficerID)

		_, _ = w.Write([]byte(`{"success":true,"detected":true,"confidence":0.83,
			"voter":{"unique_id":"U1","nic":"901234567V","full_name":"Nimal Perera","electoral_division":"Colombo"}}`))
	})

	resp, err := svc.ProcessFrame(context.Background(), "data:image/jpeg;base64,AAAA", "OFF-7")
	require.NoError(t, err)
	require.True(t, resp.IsMatch())
	assert.InDelta(t, 0.83, resp.Confidence, 1e-9)
	assert.Equal(t, "U1", resp.Voter.UniqueID)
	assert.Equal(t, "Colombo", resp.Voter.ElectoralDivision)
	assert.Empty(t, resp.Voter.Address)
}

func TestProcessFrame_NotDetected(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"detected":false,"confidence":0.0}`))
	})

	resp, err := svc.ProcessFrame(context.Background(), "x", "o")
	require.NoError(t, err)
	assert.False(t, resp.IsMatch())
}

func TestProcessFrame_ServerErrorWithoutJSON(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := svc.ProcessFrame(context.Background(), "x", "o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestProcessFrame_UnparseableSuccessBody(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := svc.ProcessFrame(context.Background(), "x", "o")
	require.Error(t, err)
}

func TestConfirmAuth(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, models.PathConfirmAuth, r.URL.Path)

		var req models.ConfirmRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.ConfirmRequest{
			UniqueID: "U1", NIC: "N1", FullName: "A B", OfficerID: "O1", Confidence: 0.8123,
		}, req)

		_, _ = w.Write([]byte(`{"success":true,"message":"Authentication approved for A B"}`))
	})

	resp, err := svc.ConfirmAuth(context.Background(), models.ConfirmRequest{
		UniqueID: "U1", NIC: "N1", FullName: "A B", OfficerID: "O1", Confidence: 0.8123,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Authentication approved for A B", resp.Message)
}

func TestConfirmAuth_BusinessFailureOnErrorStatus(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"already voted"}`))
	})

	resp, err := svc.ConfirmAuth(context.Background(), models.ConfirmRequest{UniqueID: "U1"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "already voted", resp.Error)
}

func TestStats(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, models.PathAuthStats, r.URL.Path)
		_, _ = w.Write([]byte(`{"total":10,"approved":7}`))
	})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 10, stats["total"])
	assert.EqualValues(t, 7, stats["approved"])
}

func TestStats_ErrorStatus(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
}
