package epos

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEndpointURL(t *testing.T) {
	assert.Equal(t,
		"http://192.168.2.251/cgi-bin/epos/service.cgi?devid=local_printer&timeout=60000",
		BuildEndpointURL("192.168.2.251", "local_printer", 60000),
	)
	assert.Equal(t,
		"http://10.0.0.5:8080/cgi-bin/epos/service.cgi?devid=kitchen%20printer%2F2&timeout=1500",
		BuildEndpointURL("10.0.0.5:8080", "kitchen printer/2", 1500),
	)
}

func TestQueryEscape(t *testing.T) {
	assert.Equal(t, "%3Cp%3Ea%20b%3C%2Fp%3E", QueryEscape("<p>a b</p>"))
	assert.Equal(t, "kitchen%20printer%2F2", QueryEscape("kitchen printer/2"))
}

func TestClient_Send(t *testing.T) {
	var gotBody, gotContentType, gotQuery, gotPath, gotMethod string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		gotMethod = r.Method
		_, _ = w.Write([]byte(`<response success="true" code="" status="0"/>`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client())
	doc := BuildBasicDocument("hola")

	resp, err := client.Send(context.Background(), hostOf(srv), "local_printer", 60000, doc)
	require.NoError(t, err)

	assert.True(t, resp.Succeeded)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, ServicePath, gotPath)
	assert.Equal(t, "devid=local_printer&timeout=60000", gotQuery)
	assert.Equal(t, "text/xml; charset=utf-8", gotContentType)
	assert.Equal(t, doc, gotBody)
}

func TestClient_Send_DeviceRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<response success="false" code="ERR_COVER_OPEN"/>`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.Client()).Send(context.Background(), hostOf(srv), "local_printer", 60000, "<x/>")
	require.NoError(t, err)

	assert.False(t, resp.Succeeded)
	assert.Equal(t, "ERR_COVER_OPEN", resp.ResultCode)

	checkErr := CheckResponse(resp)
	var rejectErr *DeviceRejectionError
	require.ErrorAs(t, checkErr, &rejectErr)
	assert.Equal(t, KindDeviceRejection, KindOf(checkErr))
}

func TestClient_Send_ErrorStatusIsParsedNotFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.Client()).Send(context.Background(), hostOf(srv), "local_printer", 60000, "<x/>")
	require.NoError(t, err)

	assert.False(t, resp.Succeeded)
	assert.Contains(t, resp.RawBody, "internal error")
}

func TestClient_Send_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := hostOf(srv)
	srv.Close()

	_, err := NewClient(nil).Send(context.Background(), host, "local_printer", 60000, "<x/>")
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, transportErr.URL, host)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestClient_Send_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<response success="true"/>`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.Client()).Send(ctx, hostOf(srv), "local_printer", 60000, "<x/>")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestValidateTarget(t *testing.T) {
	assert.NoError(t, ValidateTarget("192.168.2.251", "local_printer", 60000))

	for _, err := range []error{
		ValidateTarget("", "local_printer", 60000),
		ValidateTarget("192.168.2.251", "", 60000),
		ValidateTarget("192.168.2.251", "local_printer", 0),
	} {
		assert.Equal(t, KindConfiguration, KindOf(err))
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.NotEqual(t, UserMessage(KindTransport), UserMessage(KindDeviceRejection))
}

func hostOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}
