package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/storefront/internal/services/admin/auth"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
	"github.com/louisbranch/storefront/internal/services/shop/storage/sqlite"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func newAdmin(t *testing.T) (http.Handler, *auth.Verifier) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.SeedDemo(context.Background(), "https://pay.example.test/start"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	verifier, err := auth.NewVerifier(auth.Config{Secret: []byte("admin-test-secret-admin-test-sec"), Issuer: "storefront-admin"})
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	handler, err := NewHandler(Config{
		Orders:   store.Orders(),
		Locales:  locale.NewResolver(store),
		Verifier: verifier,
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, verifier
}

func TestNewHandlerRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Config{}); err == nil {
		t.Fatal("expected missing verifier error")
	}
	verifier, err := auth.NewVerifier(auth.Config{Secret: []byte("x"), Issuer: "i"})
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	if _, err := NewHandler(Config{Verifier: verifier}); err == nil {
		t.Fatal("expected missing order manager error")
	}
	if _, err := NewServer(Config{Verifier: verifier}); err == nil {
		t.Fatal("expected missing address error")
	}
}

func TestSaveItemsOverJSONRPC(t *testing.T) {
	t.Parallel()
	handler, verifier := newAdmin(t)
	token, err := verifier.NewToken("ops")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"Order_Base.saveItems","params":{"site":"default","items":[{"order.base.comment":"one"},{"order.base.comment":"two"}]}}`
	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var response structpb.Struct
	if err := protojson.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	result := response.GetFields()["result"].GetStructValue().GetFields()
	if !result["success"].GetBoolValue() {
		t.Fatalf("response = %s", rec.Body.String())
	}
	if got := len(result["items"].GetListValue().GetValues()); got != 2 {
		t.Fatalf("items = %d, want 2", got)
	}
}

func TestJSONRPCRequiresToken(t *testing.T) {
	t.Parallel()
	handler, _ := newAdmin(t)

	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"Order_Base.saveItems"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}
