package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/cosmetics-storefront/session"
)

const testBase = "http://api.test/api/v1"

func newTestApp(t *testing.T) (*app, *httpmock.MockTransport, *session.MemoryStore) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	store := session.NewMemoryStore()
	return &app{transport: transport, store: store}, transport, store
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	root := a.rootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args,
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
		"--base-url", testBase,
		"--timeout", "1s",
	))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func productsResponder(current, totalPages, totalResults int, names ...string) httpmock.Responder {
	products := make([]map[string]any, 0, len(names))
	for _, name := range names {
		products = append(products, map[string]any{
			"_id":        strings.ToLower(name),
			"name":       name,
			"price":      "150",
			"categoryId": "c1",
		})
	}
	return httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
		"success":      true,
		"products":     products,
		"currentPage":  current,
		"totalPages":   totalPages,
		"totalResults": totalResults,
	})
}

func registerCategories(transport *httpmock.MockTransport) {
	transport.RegisterResponder(http.MethodGet, testBase+"/category",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"success": true,
			"data":    []map[string]any{{"_id": "c1", "categoryname": "Lips"}},
		}))
}

func TestCatalogCommandShowsRequestedPage(t *testing.T) {
	a, transport, _ := newTestApp(t)
	registerCategories(transport)
	transport.RegisterResponder(http.MethodGet, testBase+"/product?page=1", productsResponder(1, 3, 30, "Lipstick", "Lip Balm", "Kajal"))
	transport.RegisterResponder(http.MethodGet, testBase+"/product?page=2", productsResponder(2, 3, 30, "Serum", "Toner"))

	out, err := run(t, a, "catalog", "--page", "2")
	if err != nil {
		t.Fatalf("catalog: %v\n%s", err, out)
	}
	for _, want := range []string{"Loading products...", "Showing 2 of 30 products", "Serum", "Lips", "Page 2 of 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Lipstick") {
		t.Errorf("page 1 items leaked into page 2 output:\n%s", out)
	}
}

func TestCatalogCommandEmptyFilter(t *testing.T) {
	a, transport, _ := newTestApp(t)
	registerCategories(transport)
	transport.RegisterResponder(http.MethodGet, testBase+"/product?page=1", productsResponder(1, 1, 3, "Lipstick", "Lip Balm", "Kajal"))

	out, err := run(t, a, "catalog", "--search", "shampoo")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if !strings.Contains(out, "Showing 0 of 3 products") || !strings.Contains(out, "Try clearing the search or category filter.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if got := transport.GetCallCountInfo()["GET "+testBase+"/product?page=1"]; got != 1 {
		t.Fatalf("page 1 fetched %d times, want 1", got)
	}
}

func TestCatalogCommandReportsFailure(t *testing.T) {
	a, transport, _ := newTestApp(t)
	registerCategories(transport)
	transport.RegisterResponder(http.MethodGet, testBase+"/product?page=1",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	out, err := run(t, a, "catalog", "--max-retries", "0")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(out, "Failed to load products") || !strings.Contains(out, "retry") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestEnquiryListRequiresLogin(t *testing.T) {
	a, transport, _ := newTestApp(t)

	out, err := run(t, a, "enquiry", "list")
	if err == nil {
		t.Fatalf("expected auth error")
	}
	if !strings.Contains(out, "Please log in") {
		t.Fatalf("missing login prompt:\n%s", out)
	}
	if n := transport.GetTotalCallCount(); n != 0 {
		t.Fatalf("network calls = %d, want 0", n)
	}
}

func TestLoginStoresSession(t *testing.T) {
	a, transport, store := newTestApp(t)
	transport.RegisterResponder(http.MethodPost, testBase+"/user/login",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"success": true,
			"token":   "tok",
			"userId":  "u1",
			"user":    map[string]any{"_id": "u1", "name": "Asha"},
		}))

	out, err := run(t, a, "login", "--email", "asha@example.test", "--password", "secret")
	if err != nil {
		t.Fatalf("login: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Welcome, Asha") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if v, err := store.Get(context.Background(), session.KeyToken); err != nil || v != "tok" {
		t.Fatalf("stored token = %q, %v", v, err)
	}
	if v, _ := store.Get(context.Background(), session.KeyUserID); v != "u1" {
		t.Fatalf("stored user id = %q", v)
	}
}

func TestLoginValidationSkipsNetwork(t *testing.T) {
	a, transport, _ := newTestApp(t)
	out, err := run(t, a, "login", "--email", "asha@example.test")
	if err == nil || !strings.Contains(out, "Please fill in all required fields") {
		t.Fatalf("err = %v, output:\n%s", err, out)
	}
	if transport.GetTotalCallCount() != 0 {
		t.Fatalf("validation failure reached the network")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	a, _, store := newTestApp(t)
	_ = session.New(store).Set(context.Background(), "tok", "u1")

	if _, err := run(t, a, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := store.Get(context.Background(), session.KeyToken); err == nil {
		t.Fatalf("token survived logout")
	}
}

func TestProductCommandHidesPriceForGuests(t *testing.T) {
	a, transport, _ := newTestApp(t)
	transport.RegisterResponder(http.MethodGet, testBase+"/product/single/p1",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"success": true,
			"product": map[string]any{
				"_id": "p1", "name": "Matte Lipstick", "price": 249, "categoryId": "c1",
				"images": []string{"a.jpg", "b.jpg"},
			},
		}))
	transport.RegisterResponder(http.MethodGet, testBase+"/product/similar?id=c1&pageno=1",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"status": "success",
			"data": []map[string]any{
				{"_id": "p1", "name": "Matte Lipstick", "price": 249, "categoryId": "c1"},
				{"_id": "p2", "name": "Gloss", "price": 199, "categoryId": "c1"},
			},
			"pages": 1,
		}))

	out, err := run(t, a, "product", "p1", "--image", "1")
	if err != nil {
		t.Fatalf("product: %v\n%s", err, out)
	}
	for _, want := range []string{"Matte Lipstick [p1]", "Price:    Login to view price", "b.jpg (2 of 2)", "https://wa.me/", "Gloss"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "₹") {
		t.Errorf("price disclosed to a guest:\n%s", out)
	}
}

func TestProductCommandMarksOnlySelectedOption(t *testing.T) {
	a, transport, _ := newTestApp(t)
	transport.RegisterResponder(http.MethodGet, testBase+"/product/single/p1",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"success": true,
			"product": map[string]any{
				"_id": "p1", "name": "Kajal", "categoryId": "c1",
				"variants": []map[string]any{
					{"price": "40", "quantity": "12 pcs"},
					{"price": "38", "quantity": "12 pcs"},
				},
			},
		}))
	transport.RegisterResponder(http.MethodGet, testBase+"/product/similar?id=c1&pageno=1",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"status": "success", "data": []any{}, "pages": 1}))

	out, err := run(t, a, "product", "p1", "--option", "1")
	if err != nil {
		t.Fatalf("product: %v\n%s", err, out)
	}
	var marks []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "12 pcs (min 1)") {
			marks = append(marks, strings.Fields(line)[0])
		}
	}
	if strings.Join(marks, ",") != "12,>" {
		t.Fatalf("option markers = %v, want only the second marked:\n%s", marks, out)
	}
}

func TestAdminApproveUsesAdminToken(t *testing.T) {
	a, transport, store := newTestApp(t)
	_ = session.New(store).Set(context.Background(), "customer-tok", "u1")
	_ = session.NewAdmin(store).Set(context.Background(), "admin-tok", "a1")

	var gotAuth string
	transport.RegisterResponder(http.MethodPut, testBase+"/admin/approve/u9",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"success": true})
		})

	out, err := run(t, a, "admin", "approve", "u9")
	if err != nil {
		t.Fatalf("approve: %v\n%s", err, out)
	}
	if gotAuth != "Bearer admin-tok" {
		t.Fatalf("authorization = %q, want admin token", gotAuth)
	}
	if !strings.Contains(out, "User u9 approved.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestExportCommandWritesCSV(t *testing.T) {
	a, transport, _ := newTestApp(t)
	registerCategories(transport)
	transport.RegisterResponder(http.MethodGet, testBase+"/product?page=1", productsResponder(1, 2, 3, "Lipstick", "Kajal"))
	transport.RegisterResponder(http.MethodGet, testBase+"/product?page=2", productsResponder(2, 2, 3, "Serum"))

	path := filepath.Join(t.TempDir(), "catalog.csv")
	out, err := run(t, a, "export", "--output", path, "--format", "csv")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Export complete") || !strings.Contains(out, "Written:       3") {
		t.Fatalf("unexpected summary:\n%s", out)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("records = %d, want header plus 3", len(records))
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_TIMEOUT", "3s")
	t.Setenv("STOREFRONT_MAX_RETRIES", "4")

	a, transport, _ := newTestApp(t)
	registerCategories(transport)
	if _, err := run(t, a, "categories", "--max-retries", "1"); err != nil {
		t.Fatalf("categories: %v", err)
	}
	if a.cfg.MaxRetries != 1 {
		t.Fatalf("max retries = %d, want flag value 1", a.cfg.MaxRetries)
	}
	if a.cfg.Timeout != time.Second {
		t.Fatalf("timeout = %v, want flag value 1s", a.cfg.Timeout)
	}

	b, transport, _ := newTestApp(t)
	registerCategories(transport)
	root := b.rootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"categories", "--env-file", filepath.Join(t.TempDir(), "none"), "--base-url", testBase})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("categories: %v", err)
	}
	if b.cfg.Timeout != 3*time.Second || b.cfg.MaxRetries != 4 {
		t.Fatalf("env not applied: timeout=%v retries=%d", b.cfg.Timeout, b.cfg.MaxRetries)
	}
}

func TestCreateWriterRejectsUnknownFormat(t *testing.T) {
	if _, err := createWriter("xml", filepath.Join(t.TempDir(), "out.xml")); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
