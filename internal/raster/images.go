package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // decoders for profile images
	_ "image/png"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/vincent-petithory/dataurl"
	_ "golang.org/x/image/webp"
)

const (
	maxImageBytes = 10 << 20
	maxImageSide  = 4096
	maxRedirects  = 3
)

var (
	ErrNonPublicAddress = errors.New("raster: image host resolves to a non-public address")
	ErrImageTooLarge    = errors.New("raster: image dimensions exceed the limit")
)

// ImageLoader resolves an image reference found in style settings.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// HTTPImageLoader understands data: URLs and http(s) URLs.
type HTTPImageLoader struct {
	Client *http.Client
}

// NewHTTPImageLoader returns a loader whose client only dials public
// addresses, redirects included.
func NewHTTPImageLoader() *HTTPImageLoader {
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: publicOnly,
	}
	transport := &http.Transport{
		Proxy:               nil,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
	}
	return &HTTPImageLoader{Client: &http.Client{
		Timeout:   10 * time.Second,
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}}
}

// publicOnly runs after name resolution, so it sees the address actually
// dialled.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !PublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrNonPublicAddress, host)
	}
	return nil
}

var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// PublicIP reports whether ip is a globally routable unicast address.
func PublicIP(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	case sharedAddressSpace.Contains(ip):
		return false
	}
	return ip.IsGlobalUnicast()
}

func (l *HTTPImageLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetch(ctx, ref)
	}
	return nil, fmt.Errorf("unsupported image reference scheme")
}

func decodeDataURL(ref string) (image.Image, error) {
	du, err := dataurl.DecodeString(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data url: %w", err)
	}
	if du.Type != "image" {
		return nil, fmt.Errorf("data url holds %s, not an image", du.ContentType())
	}
	img, err := decodeBounded(du.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded image: %w", err)
	}
	return img, nil
}

func (l *HTTPImageLoader) fetch(ctx context.Context, url string) (image.Image, error) {
	client := l.Client
	if client == nil {
		client = NewHTTPImageLoader().Client
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read fetched image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("fetched image is larger than %d bytes", maxImageBytes)
	}
	img, err := decodeBounded(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fetched image: %w", err)
	}
	return img, nil
}

// decodeBounded checks the declared dimensions before allocating pixels.
func decodeBounded(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxImageSide || cfg.Height > maxImageSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}
