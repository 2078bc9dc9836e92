package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecipesWritten.WithLabelValues("created").Inc()
	before := testutil.ToFloat64(RecipesWritten.WithLabelValues("created"))
	RecipesWritten.WithLabelValues("created").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RecipesWritten.WithLabelValues("created")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recipes_written_total")
}
