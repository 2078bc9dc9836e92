package prediction

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	logger, _ := test.NewNullLogger()
	return NewClient(server.URL, time.Second, logger)
}

func TestPredictForwardsImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "leaf.png", header.Filename)
		assert.Equal(t, []byte("image-bytes"), data)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"disease":"Late Blight","confidence":0.87,"status":"success"}`))
	})

	result, err := client.Predict(context.Background(), "leaf.png", []byte("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "Late Blight", result.Disease)
	assert.InDelta(t, 0.87, result.Confidence, 0.0001)
	assert.Equal(t, "success", result.Status)
}

func TestPredictDefaultFilename(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("image")
		if assert.NoError(t, err) {
			assert.Equal(t, "plant.jpg", header.Filename)
		}
		w.Write([]byte(`{"disease":"Healthy","confidence":0.99,"status":"success"}`))
	})

	_, err := client.Predict(context.Background(), "", []byte("x"))
	assert.NoError(t, err)
}

func TestPredictUpstreamFailures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"No image provided"}`, http.StatusBadRequest)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			_, err := client.Predict(context.Background(), "leaf.jpg", []byte("x"))
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestPredictUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	logger, _ := test.NewNullLogger()
	_, err := NewClient(url, time.Second, logger).Predict(context.Background(), "leaf.jpg", []byte("x"))
	assert.ErrorIs(t, err, ErrUpstream)
}
