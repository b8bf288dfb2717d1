package ethrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilypad-dao/lilypad/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

const dao = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params []interface{}   `json:"params"`
}

// node answers every call with result, echoing the request id.
func node(t *testing.T, result string, got *rpcRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if got != nil {
			*got = req
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
	}))
}

func newClient(t *testing.T, url string) *Client {
	c, err := NewClient(context.Background(), url, time.Second, nopLogger{})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestClient_BalanceAt(t *testing.T) {
	var got rpcRequest
	srv := node(t, `"0x1bc16d674ec80000"`, &got)
	defer srv.Close()

	c := newClient(t, srv.URL)
	wei, err := c.BalanceAt(context.Background(), dao)
	require.NoError(t, err)
	assert.Equal(t, "2000000000000000000", wei.String())

	assert.Equal(t, "eth_getBalance", got.Method)
	assert.Equal(t, []interface{}{strings.ToLower(dao), "latest"}, got.Params)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "rpc error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var req rpcRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32602,"message":"invalid argument"}}`, req.ID)
			},
		},
		{
			name:    "bad status",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
		},
		{
			name:    "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{`)) },
		},
		{
			name: "bad quantity",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var req rpcRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"12"}`, req.ID)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := newClient(t, srv.URL)
			wei, err := c.BalanceAt(context.Background(), dao)
			assert.Error(t, err)
			assert.Nil(t, wei)
		})
	}
}

func TestClient_InvalidAddress(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.BalanceAt(context.Background(), "0xnope")
	assert.True(t, core.IsArgumentError(err))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestClient_BreakerOpens(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	for i := 0; i < failureThreshold; i++ {
		_, err := c.BalanceAt(context.Background(), dao)
		require.Error(t, err)
	}
	_, err := c.BalanceAt(context.Background(), dao)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(failureThreshold), atomic.LoadInt32(&calls))
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "ftp://node", time.Second, nopLogger{})
	assert.Error(t, err)
}
