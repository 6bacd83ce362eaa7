package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "deliverydash/internal/errors"
	"deliverydash/internal/shared/testutil"
	"deliverydash/pkg/contracts/domain"
)

func newTestValidator(t *testing.T) *QueryParamValidator {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidateFilter(t *testing.T) {
	defaults := domain.Filter{
		Before:  time.Date(2022, 4, 13, 0, 0, 0, 0, time.UTC),
		Traffic: []string{domain.TrafficLow, domain.TrafficMedium, domain.TrafficHigh, domain.TrafficJam},
	}

	tests := []struct {
		name        string
		query       string
		wantOK      bool
		wantBefore  time.Time
		wantTraffic []string
	}{
		{
			name:        "defaults",
			query:       "",
			wantOK:      true,
			wantBefore:  defaults.Before,
			wantTraffic: defaults.Traffic,
		},
		{
			name:        "date and subset",
			query:       "before=2022-03-01&traffic=Low&traffic=Jam",
			wantOK:      true,
			wantBefore:  time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
			wantTraffic: []string{domain.TrafficLow, domain.TrafficJam},
		},
		{
			name:        "explicit empty selection",
			query:       "traffic=",
			wantOK:      true,
			wantBefore:  defaults.Before,
			wantTraffic: []string{},
		},
		{name: "bad date", query: "before=13-04-2022"},
		{name: "unknown traffic", query: "traffic=Gridlock"},
		{name: "lowercase traffic", query: "traffic=high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(t)
			req := httptest.NewRequest(http.MethodGet, "/api/views/company?"+tt.query, nil)
			rec := httptest.NewRecorder()

			got, ok := v.ValidateFilter(rec, req, defaults)

			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, rec.Code)

				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, apierrors.TypeValidation, body["type"])
				assert.Contains(t, body, "details")
				return
			}

			assert.True(t, tt.wantBefore.Equal(got.Before))
			assert.Equal(t, tt.wantTraffic, got.Traffic)
		})
	}

	t.Run("defaults are not aliased", func(t *testing.T) {
		v := newTestValidator(t)
		got, ok := v.ValidateFilter(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), defaults)
		require.True(t, ok)

		got.Traffic[0] = "changed"
		assert.Equal(t, domain.TrafficLow, defaults.Traffic[0])
	})
}

func TestValidateInt(t *testing.T) {
	tests := []struct {
		query  string
		want   int
		wantOK bool
	}{
		{query: "", want: 10, wantOK: true},
		{query: "top=5", want: 5, wantOK: true},
		{query: "top=0"},
		{query: "top=51"},
		{query: "top=ten"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			v := newTestValidator(t)
			rec := httptest.NewRecorder()

			got, ok := v.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil), "top", 1, 50, 10)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestValidateEnum(t *testing.T) {
	v := newTestValidator(t)
	allowed := []string{"svg", "png"}

	got, ok := v.ValidateEnum(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "format", allowed, "svg")
	assert.True(t, ok)
	assert.Equal(t, "svg", got)

	got, ok = v.ValidateEnum(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?format=png", nil), "format", allowed, "svg")
	assert.True(t, ok)
	assert.Equal(t, "png", got)

	rec := httptest.NewRecorder()
	_, ok = v.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?format=gif", nil), "format", allowed, "svg")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
