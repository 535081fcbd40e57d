package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"carouselcraft.io/carousel-studio/internal/config"
	"carouselcraft.io/carousel-studio/internal/core"
	"carouselcraft.io/carousel-studio/internal/export"
	"carouselcraft.io/carousel-studio/internal/payment"
	"carouselcraft.io/carousel-studio/internal/raster"
	"carouselcraft.io/carousel-studio/internal/storage"
	"carouselcraft.io/carousel-studio/internal/store"
)

type noImages struct{}

func (noImages) Load(context.Context, string) (image.Image, error) {
	return nil, errors.New("image loading disabled in tests")
}

type stubGateway struct {
	completion *payment.Completion
}

func (g *stubGateway) CreateCheckout(context.Context, payment.CheckoutRequest) (*payment.Checkout, error) {
	return &payment.Checkout{SessionID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (g *stubGateway) ParseWebhook(_ []byte, signature string) (*payment.Completion, error) {
	if signature != "valid" {
		return nil, payment.ErrInvalidSignature
	}
	return g.completion, nil
}

type testServer struct {
	handler http.Handler
	gateway *stubGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	config.AppConfig.JWTSecret = "api-test-secret"

	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	rasterizer, err := raster.NewRasterizer(noImages{})
	if err != nil {
		t.Fatalf("NewRasterizer: %v", err)
	}

	gateway := &stubGateway{}
	users := core.NewUserService(db)
	settings := core.NewSettingsService(db)
	subscriptions := core.NewSubscriptionService(db, gateway, "https://app.example", 2900)
	carousels := core.NewCarouselService(db, core.NewGenerator(nil), settings, subscriptions,
		rasterizer, export.NewExporter(), storage.NewLocalFileStorer(t.TempDir()))

	return &testServer{
		handler: NewRouter(NewAPIHandler(users, carousels, settings, subscriptions)),
		gateway: gateway,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// login signs a user up and returns the token and user id.
func (ts *testServer) login(t *testing.T, name string) (string, int64) {
	t.Helper()
	creds := map[string]string{"user_id": name, "password": "correct-horse"}
	rec := ts.do(t, http.MethodPost, "/api/signup", "", creds)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d: %s", rec.Code, rec.Body)
	}
	var user store.User
	json.NewDecoder(rec.Body).Decode(&user)

	rec = ts.do(t, http.MethodPost, "/api/login", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	return resp["token"], user.ID
}

func (ts *testServer) createCarousel(t *testing.T, token string) store.Carousel {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/carousels", token, map[string]any{"subject": "Linear", "slide_count": 5})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var c store.Carousel
	if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
		t.Fatalf("decode carousel: %v", err)
	}
	return c
}

func TestHealthAndAuth(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.do(t, http.MethodGet, "/api/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health = %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/api/carousels", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/api/carousels", "not-a-jwt", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d", rec.Code)
	}

	ts.login(t, "alice")
	if rec := ts.do(t, http.MethodPost, "/api/signup", "", map[string]string{"user_id": "alice", "password": "correct-horse"}); rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup = %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodPost, "/api/login", "", map[string]string{"user_id": "alice", "password": "nope-nope"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password = %d", rec.Code)
	}
}

func TestCarouselRoutes(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.login(t, "alice")
	other, _ := ts.login(t, "bob")

	if rec := ts.do(t, http.MethodPost, "/api/carousels", token, map[string]any{"subject": "ab"}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("short subject = %d", rec.Code)
	}

	c := ts.createCarousel(t, token)
	if len(c.Slides) == 0 || c.Slides[len(c.Slides)-1].Type != store.SlideSubscribe {
		t.Fatalf("slides = %+v", c.Slides)
	}

	rec := ts.do(t, http.MethodGet, "/api/carousels", token, nil)
	var list []store.Carousel
	json.NewDecoder(rec.Body).Decode(&list)
	if rec.Code != http.StatusOK || len(list) != 1 {
		t.Errorf("list = %d, %d items", rec.Code, len(list))
	}

	if rec := ts.do(t, http.MethodGet, "/api/carousels/"+c.ID, other, nil); rec.Code != http.StatusNotFound {
		t.Errorf("other user get = %d", rec.Code)
	}

	slideURL := "/api/carousels/" + c.ID + "/slides/" + c.Slides[1].ID
	if rec := ts.do(t, http.MethodPut, slideURL, token, map[string]any{"title": ""}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid edit = %d", rec.Code)
	}
	rec = ts.do(t, http.MethodPut, slideURL, token, map[string]any{"title": "Ship weekly", "content": "Small **bets** compound."})
	var edited store.Slide
	json.NewDecoder(rec.Body).Decode(&edited)
	if rec.Code != http.StatusOK || !edited.IsEdited || edited.Title != "Ship weekly" {
		t.Errorf("edit = %d %+v", rec.Code, edited)
	}

	if rec := ts.do(t, http.MethodPost, slideURL+"/regenerate", token, map[string]string{"guidance": "punchier"}); rec.Code != http.StatusInternalServerError {
		t.Errorf("regenerate without a model = %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/carousels/"+c.ID+"/slides/1/preview.png", token, nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("preview = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec := ts.do(t, http.MethodGet, "/api/carousels/"+c.ID+"/slides/zero/preview.png", token, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad preview number = %d", rec.Code)
	}

	if rec := ts.do(t, http.MethodDelete, "/api/carousels/"+c.ID, token, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/api/carousels/"+c.ID, token, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", rec.Code)
	}
}

func TestSettingsRoutes(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.login(t, "alice")

	rec := ts.do(t, http.MethodGet, "/api/settings", token, nil)
	var got store.UserSettings
	json.NewDecoder(rec.Body).Decode(&got)
	if rec.Code != http.StatusOK || got.PrimaryColor != store.DefaultPrimaryColor {
		t.Fatalf("get settings = %d %+v", rec.Code, got)
	}

	rec = ts.do(t, http.MethodPut, "/api/settings", token, map[string]any{"primary_color": "purple"})
	var errBody map[string]string
	json.NewDecoder(rec.Body).Decode(&errBody)
	if rec.Code != http.StatusUnprocessableEntity || errBody["field"] != "primary_color" {
		t.Errorf("invalid colour = %d %v", rec.Code, errBody)
	}

	rec = ts.do(t, http.MethodPut, "/api/settings", token, map[string]any{"primary_color": "#112233", "show_signature": true})
	json.NewDecoder(rec.Body).Decode(&got)
	if rec.Code != http.StatusOK || got.PrimaryColor != "#112233" || !got.ShowSignature {
		t.Errorf("update = %d %+v", rec.Code, got)
	}
}

func TestExportRequiresSubscription(t *testing.T) {
	ts := newTestServer(t)
	token, userID := ts.login(t, "alice")
	c := ts.createCarousel(t, token)
	exportURL := "/api/carousels/" + c.ID + "/export"

	if rec := ts.do(t, http.MethodPost, exportURL, token, nil); rec.Code != http.StatusPaymentRequired {
		t.Fatalf("export without subscription = %d", rec.Code)
	}

	rec := ts.do(t, http.MethodPost, "/api/checkout", token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "cs_test") {
		t.Errorf("checkout = %d %s", rec.Code, rec.Body)
	}

	// Unsigned webhooks are rejected.
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader("{}"))
	req.Header.Set("Stripe-Signature", "forged")
	wrec := httptest.NewRecorder()
	ts.handler.ServeHTTP(wrec, req)
	if wrec.Code != http.StatusBadRequest {
		t.Errorf("forged webhook = %d", wrec.Code)
	}

	ts.gateway.completion = &payment.Completion{UserID: strconv.FormatInt(userID, 10), SubscriptionType: payment.LifetimePlan, AmountPaid: 2900}
	req = httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader("{}"))
	req.Header.Set("Stripe-Signature", "valid")
	wrec = httptest.NewRecorder()
	ts.handler.ServeHTTP(wrec, req)
	if wrec.Code != http.StatusOK {
		t.Fatalf("webhook = %d %s", wrec.Code, wrec.Body)
	}

	rec = ts.do(t, http.MethodGet, "/api/subscription", token, nil)
	var sub struct {
		Active bool `json:"active"`
	}
	json.NewDecoder(rec.Body).Decode(&sub)
	if !sub.Active {
		t.Errorf("subscription not active: %s", rec.Body)
	}

	rec = ts.do(t, http.MethodPost, exportURL, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("Content-Type") != "application/pdf" || !strings.Contains(rec.Header().Get("Content-Disposition"), "carousel-linear-") {
		t.Errorf("headers = %v", rec.Header())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}
