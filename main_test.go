package main

import (
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeDrainsInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /slow", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("done"))
		finished.Store(true)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &http.Server{Handler: mux, ReadHeaderTimeout: time.Second}
	stop := make(chan os.Signal, 1)
	served := make(chan error, 1)
	go func() { served <- serve(server, ln, stop) }()

	status := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the handler")
	}
	stop <- os.Interrupt

	select {
	case err := <-served:
		require.NoError(t, err)
		assert.True(t, finished.Load(), "serve returned before the in-flight request finished")
	case <-time.After(shutdownTimeout):
		t.Fatal("serve did not return after shutdown")
	}

	assert.Equal(t, http.StatusOK, <-status)
}

func TestServeReturnsListenerErrors(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln.Close()

	err = serve(&http.Server{ReadHeaderTimeout: time.Second}, ln, make(chan os.Signal))
	assert.Error(t, err)
}
