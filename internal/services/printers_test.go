package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
)

func TestDiscover(t *testing.T) {
	hosts := make([]string, 0, 254)
	for i := 1; i <= 254; i++ {
		hosts = append(hosts, fmt.Sprintf("10.0.0.%d", i))
	}

	found := Discover(context.Background(), hosts, func(_ context.Context, host string) bool {
		return host == "10.0.0.251" || host == "10.0.0.12"
	})

	assert.Equal(t, []string{"10.0.0.12", "10.0.0.251"}, found)
}

func TestDiscover_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	found := Discover(ctx, []string{"10.0.0.1", "10.0.0.2"}, func(context.Context, string) bool { return true })
	assert.LessOrEqual(t, len(found), 2)
}

func TestProbeEPOS(t *testing.T) {
	epson := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cgi-bin/epos/service.cgi" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer epson.Close()

	other := httptest.NewServer(http.NotFoundHandler())
	defer other.Close()

	assert.True(t, probeEPOS(context.Background(), epson.Client(), strings.TrimPrefix(epson.URL, "http://")))
	assert.False(t, probeEPOS(context.Background(), other.Client(), strings.TrimPrefix(other.URL, "http://")))
}

func TestRegisterPrinterOnServer(t *testing.T) {
	var got model.PrinterConfig
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/printers", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"data":{"agent_key":"agent-123"}}`))
	}))
	defer srv.Close()

	p := model.DefaultPrinterConfig()
	p.Name = "Caja"
	p.Host = "192.168.2.251"

	require.NoError(t, RegisterPrinterOnServer(context.Background(), srv.URL+"/", "secret", &p))
	assert.Equal(t, "agent-123", p.AgentKey)
	assert.Equal(t, "192.168.2.251", got.Host)
	assert.Equal(t, "Caja", got.Name)
}

func TestRegisterPrinterOnServer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusUnauthorized, body: "bad key", wantErr: "API Error 401: bad key"},
		{name: "no key", status: http.StatusOK, body: `{"data":{}}`, wantErr: "no agent_key"},
		{name: "garbage", status: http.StatusOK, body: `<html>`, wantErr: "decoding registration response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := model.DefaultPrinterConfig()
			err := RegisterPrinterOnServer(context.Background(), srv.URL, "secret", &p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, p.AgentKey)
		})
	}
}
