//go:build integration

package showroom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/arawak/showroom/internal/auth"
	"github.com/arawak/showroom/internal/config"
	"github.com/arawak/showroom/internal/httpapi"
	"github.com/arawak/showroom/internal/media"
	"github.com/arawak/showroom/internal/publish"
	"github.com/arawak/showroom/internal/store"
	"github.com/arawak/showroom/migrations"
)

func startMaria(t *testing.T, ctx context.Context) (testcontainers.Container, string) {
	req := testcontainers.ContainerRequest{
		Image:        "mariadb:11.4",
		Env:          map[string]string{"MARIADB_ROOT_PASSWORD": "root"},
		ExposedPorts: []string{"3306/tcp"},
		WaitingFor:   wait.ForListeningPort("3306/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("start mariadb: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	// the database does not exist yet; Open creates it
	return container, fmt.Sprintf("mysql://root:root@%s:%s/showroom_it", host, port.Port())
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()

	container, url := startMaria(t, ctx)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	target, err := config.ResolveDatabase(func(k string) string {
		if k == "DATABASE_URL" {
			return url
		}
		return ""
	}, false)
	if err != nil {
		t.Fatalf("resolve database: %v", err)
	}

	var db *sqlx.DB
	deadline := time.Now().Add(30 * time.Second)
	for {
		db, err = store.Open(ctx, target)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("open database: %v", err)
		}
		time.Sleep(time.Second)
	}
	t.Cleanup(func() { db.Close() })

	runScenario(t, ctx, target, store.New(db))
}

func runScenario(t *testing.T, ctx context.Context, target config.Database, st *store.Store) {
	if err := migrations.Up(target.DSN); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if v, dirty, err := migrations.Version(target.DSN); err != nil || dirty || v == 0 {
		t.Fatalf("unexpected migration state v=%d dirty=%t err=%v", v, dirty, err)
	}

	hash, err := auth.HashPassword("admin123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := st.EnsureAdmin(ctx, "admin", hash); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	root := t.TempDir()
	cfg := &config.Config{
		Env:            "test",
		JWTSecret:      "integration-secret",
		TokenTTL:       time.Hour,
		MaxImageBytes:  config.DefaultMaxImageBytes,
		MaxVideoBytes:  config.DefaultMaxVideoBytes,
		PublishTimeout: 5 * time.Second,
		SwaggerUIPath:  "/api/docs",
		OpenAPIPath:    "/api/openapi.yaml",
	}
	assets := media.NewStore(root, config.APIPrefix+"/uploads")
	if err := assets.EnsureDirs(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(httpapi.NewRouter(cfg, st, assets, publish.Disabled{}, logger))
	t.Cleanup(ts.Close)

	health(t, ts.URL+"/api/health")
	token := login(t, ts.URL+"/api/admin/login")

	id := createDesign(t, ts.URL+"/api/designs", token)
	first := getDesign(t, ts.URL, id)
	if first["title"] != "Modern Loft" {
		t.Fatalf("unexpected design %+v", first)
	}
	fetch(t, ts.URL+first["image_url"].(string), http.StatusOK)

	updateDesign(t, fmt.Sprintf("%s/api/designs/%d", ts.URL, id), token)
	second := getDesign(t, ts.URL, id)
	if second["image"] == first["image"] || second["title"] != "Loft" {
		t.Fatalf("update not applied: %+v", second)
	}
	if _, err := os.Stat(filepath.Join(root, first["image"].(string))); !os.IsNotExist(err) {
		t.Fatalf("old image still on disk: %v", err)
	}

	videoID := createVideo(t, ts.URL+"/api/videos", token)
	del(t, fmt.Sprintf("%s/api/videos/%d", ts.URL, videoID), token, http.StatusOK)
	del(t, fmt.Sprintf("%s/api/videos/%d", ts.URL, videoID), token, http.StatusNotFound)

	del(t, fmt.Sprintf("%s/api/designs/%d", ts.URL, id), token, http.StatusOK)
	fetch(t, fmt.Sprintf("%s/api/designs/%d", ts.URL, id), http.StatusNotFound)
	fetch(t, ts.URL+second["image_url"].(string), http.StatusNotFound)
}

func pngBytes(t *testing.T, c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func formBody(t *testing.T, fields map[string]string, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	hdr.Set("Content-Type", contentType)
	w, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = w.Write(data)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func send(t *testing.T, req *http.Request, want int) map[string]any {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status %d, want %d, body %s", req.Method, req.URL, resp.StatusCode, want, string(body))
	}
	var out map[string]any
	_ = json.Unmarshal(body, &out)
	return out
}

func health(t *testing.T, url string) {
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	body := send(t, req, http.StatusOK)
	if body["database"] != "connected" {
		t.Fatalf("database not connected: %+v", body)
	}
}

func login(t *testing.T, url string) string {
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(`{"username":"admin","password":"admin123"}`)))
	req.Header.Set("Content-Type", "application/json")
	body := send(t, req, http.StatusOK)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("missing token: %+v", body)
	}
	return token
}

func createDesign(t *testing.T, url, token string) int64 {
	buf, ct := formBody(t, map[string]string{"title": "Modern Loft", "description": "Open-plan"},
		"image", "loft.png", "image/png", pngBytes(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}))
	req, _ := http.NewRequest(http.MethodPost, url, buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	body := send(t, req, http.StatusCreated)
	id, ok := body["id"].(float64)
	if !ok || id == 0 {
		t.Fatalf("missing design id: %+v", body)
	}
	return int64(id)
}

func getDesign(t *testing.T, base string, id int64) map[string]any {
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/designs/%d", base, id), nil)
	body := send(t, req, http.StatusOK)
	design, ok := body["design"].(map[string]any)
	if !ok {
		t.Fatalf("missing design: %+v", body)
	}
	return design
}

func updateDesign(t *testing.T, url, token string) {
	buf, ct := formBody(t, map[string]string{"title": "Loft", "description": "Closed-plan"},
		"image", "loft2.png", "image/png", pngBytes(t, color.RGBA{B: 255, A: 255}))
	req, _ := http.NewRequest(http.MethodPut, url, buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	send(t, req, http.StatusOK)
}

func createVideo(t *testing.T, url, token string) int64 {
	buf, ct := formBody(t, map[string]string{"title": "Tour", "description": "Walkthrough", "publishToExternal": "true"},
		"video", "tour.mp4", "video/mp4", []byte("not really an mp4"))
	req, _ := http.NewRequest(http.MethodPost, url, buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	body := send(t, req, http.StatusCreated)
	if _, ok := body["externalUrl"]; ok {
		t.Fatalf("disabled publisher produced an external url: %+v", body)
	}
	return int64(body["id"].(float64))
}

func del(t *testing.T, url, token string, want int) {
	req, _ := http.NewRequest(http.MethodDelete, url, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	send(t, req, want)
}

func fetch(t *testing.T, url string, want int) {
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	send(t, req, want)
}
