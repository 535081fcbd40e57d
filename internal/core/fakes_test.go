package core

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"carouselcraft.io/carousel-studio/internal/config"
	"carouselcraft.io/carousel-studio/internal/export"
	"carouselcraft.io/carousel-studio/internal/payment"
	"carouselcraft.io/carousel-studio/internal/raster"
	"carouselcraft.io/carousel-studio/internal/storage"
	"carouselcraft.io/carousel-studio/internal/store"
)

type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
}

func (f *fakeLLM) GenerateText(_ context.Context, _ string, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

type noImages struct{}

func (noImages) Load(context.Context, string) (image.Image, error) {
	return nil, errors.New("image loading disabled in tests")
}

type fakeGateway struct {
	checkouts  []payment.CheckoutRequest
	completion *payment.Completion
	err        error
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (*payment.Checkout, error) {
	g.checkouts = append(g.checkouts, req)
	return &payment.Checkout{SessionID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (g *fakeGateway) ParseWebhook([]byte, string) (*payment.Completion, error) {
	return g.completion, g.err
}

type testServices struct {
	db            *store.SQLiteStore
	llm           *fakeLLM
	gateway       *fakeGateway
	users         *UserService
	settings      *SettingsService
	subscriptions *SubscriptionService
	carousels     *CarouselService
	outputDir     string
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	config.AppConfig.JWTSecret = "core-test-secret"

	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rasterizer, err := raster.NewRasterizer(noImages{})
	if err != nil {
		t.Fatalf("NewRasterizer: %v", err)
	}

	ts := &testServices{
		db:        db,
		llm:       &fakeLLM{},
		gateway:   &fakeGateway{},
		outputDir: t.TempDir(),
	}
	ts.users = NewUserService(db)
	ts.settings = NewSettingsService(db)
	ts.subscriptions = NewSubscriptionService(db, ts.gateway, "https://app.example", 2900)
	ts.carousels = NewCarouselService(db, NewGenerator(ts.llm), ts.settings, ts.subscriptions,
		rasterizer, export.NewExporter(), storage.NewLocalFileStorer(ts.outputDir))
	return ts
}

func (ts *testServices) user(t *testing.T, name string) *store.User {
	t.Helper()
	u, err := ts.users.Signup(name, "correct-horse")
	if err != nil {
		t.Fatalf("Signup(%s): %v", name, err)
	}
	return u
}

func strPtr(s string) *string { return &s }
