package raster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/vincent-petithory/dataurl"
)

func TestDataURLRejectsOversizedDimensions(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, maxImageSide+904, 1))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	ref := dataurl.New(buf.Bytes(), "image/png").String()

	_, err := NewHTTPImageLoader().Load(context.Background(), ref)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("err = %v, want ErrImageTooLarge", err)
	}
}

func TestLoaderRefusesLoopbackHosts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write(pngBytes(t, image.Black.C))
	}))
	defer srv.Close()

	_, err := NewHTTPImageLoader().Load(context.Background(), srv.URL+"/me.png")
	if !errors.Is(err, ErrNonPublicAddress) {
		t.Fatalf("err = %v, want ErrNonPublicAddress", err)
	}
	if hits.Load() != 0 {
		t.Errorf("handler was reached %d times", hits.Load())
	}
}

func TestPublicIP(t *testing.T) {
	cases := map[string]bool{
		"8.8.8.8":         true,
		"2606:4700::1111": true,
		"127.0.0.1":       false,
		"10.1.2.3":        false,
		"192.168.0.10":    false,
		"169.254.169.254": false,
		"100.64.0.1":      false,
		"0.0.0.0":         false,
		"::1":             false,
		"fe80::1":         false,
		"224.0.0.1":       false,
	}
	for addr, want := range cases {
		if got := PublicIP(net.ParseIP(addr)); got != want {
			t.Errorf("PublicIP(%s) = %v, want %v", addr, got, want)
		}
	}
}
