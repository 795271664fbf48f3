package handler

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/portfolio/internal/service"
)

func TestPublicBlogHidesDrafts(t *testing.T) {
	api := setupHandlerTestAPI(t)
	r := newTestEngine()
	r.GET("/blog", api.ListBlog)
	r.GET("/blog/:slug", api.ShowPost)

	if _, err := api.posts.Create(service.PostInput{Title: "Live Post", Content: "# Hello\n\nworld", Published: true}); err != nil {
		t.Fatalf("create published: %v", err)
	}
	if _, err := api.posts.Create(service.PostInput{Title: "Hidden Draft", Content: "secret"}); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	list := decodeBody(t, doJSON(r, http.MethodGet, "/blog", nil, nil))
	if list["total"].(float64) != 1 {
		t.Fatalf("expected only the published post, got %v", list)
	}

	rec := doJSON(r, http.MethodGet, "/blog/live-post", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if html, _ := body["html"].(string); !bytes.Contains([]byte(html), []byte("<h1")) {
		t.Fatalf("expected rendered html, got %v", body["html"])
	}

	if rec := doJSON(r, http.MethodGet, "/blog/hidden-draft", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for draft, got %d", rec.Code)
	}
	if rec := doJSON(r, http.MethodGet, "/blog/missing", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing slug, got %d", rec.Code)
	}

	post, err := api.posts.GetBySlug("live-post")
	if err != nil || post == nil || post.ViewCount != 1 {
		t.Fatalf("expected one recorded view, got %+v (%v)", post, err)
	}
}

func TestAdminPostErrors(t *testing.T) {
	api := setupHandlerTestAPI(t)
	r := newTestEngine()
	r.POST("/posts", api.CreatePost)
	r.DELETE("/posts/:id", api.DeletePost)

	if rec := doJSON(r, http.MethodPost, "/posts", map[string]any{"content": "x"}, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing title, got %d", rec.Code)
	}
	if rec := doJSON(r, http.MethodPost, "/posts", map[string]any{"title": "A", "slug": "same", "content": "x"}, nil); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := doJSON(r, http.MethodPost, "/posts", map[string]any{"title": "B", "slug": "same", "content": "x"}, nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate slug, got %d", rec.Code)
	}
	if rec := doJSON(r, http.MethodDelete, "/posts/999", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := doJSON(r, http.MethodDelete, "/posts/abc", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWorkGalleryByCategory(t *testing.T) {
	api := setupHandlerTestAPI(t)
	r := newTestEngine()
	r.GET("/work/:category", api.ListWork)
	r.GET("/artworks/:id", api.ShowArtwork)

	illustration, err := api.artworks.Create(service.ArtworkInput{Title: "Fox", ImageURL: "/fox.png", Category: "2d", Subcategory: "Illustration"})
	if err != nil {
		t.Fatalf("create 2d: %v", err)
	}
	model, err := api.artworks.Create(service.ArtworkInput{Title: "Robot", ImageURL: "/robot.png", Category: "3d", ModelID: "0123456789abcdef0123456789abcdef"})
	if err != nil {
		t.Fatalf("create 3d: %v", err)
	}

	for category, want := range map[string]float64{"2d": 1, "3d": 1, "photography": 0} {
		body := decodeBody(t, doJSON(r, http.MethodGet, "/work/"+category, nil, nil))
		if body["total"].(float64) != want {
			t.Fatalf("%s: expected %v items, got %v", category, want, body["total"])
		}
	}
	if rec := doJSON(r, http.MethodGet, "/work/sculpture", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown gallery, got %d", rec.Code)
	}

	detail := decodeBody(t, doJSON(r, http.MethodGet, fmt.Sprintf("/artworks/%d", model.ID), nil, nil))
	if detail["embed_url"] != "https://sketchfab.com/models/0123456789abcdef0123456789abcdef/embed" {
		t.Fatalf("expected embed url, got %v", detail["embed_url"])
	}
	detail = decodeBody(t, doJSON(r, http.MethodGet, fmt.Sprintf("/artworks/%d", illustration.ID), nil, nil))
	if _, ok := detail["embed_url"]; ok {
		t.Fatal("2d artwork should not carry an embed url")
	}
}

func TestSubmitContact(t *testing.T) {
	api := setupHandlerTestAPI(t)
	r := newTestEngine()
	r.POST("/contact", api.SubmitContact)

	rec := doJSON(r, http.MethodPost, "/contact", map[string]string{
		"name": "Jane", "email": "jane@x.com", "subject": "Hi", "message": "Hello",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["status"] != "new" {
		t.Fatalf("expected status new, got %s", rec.Body.String())
	}

	rec = doJSON(r, http.MethodPost, "/contact", map[string]string{"name": "Jane", "email": "bad"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if fields, _ := decodeBody(t, rec)["fields"].([]any); len(fields) == 0 {
		t.Fatalf("expected field list, got %s", rec.Body.String())
	}
}

func multipartUpload(t *testing.T, folder, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("folder", folder); err != nil {
		t.Fatalf("write folder: %v", err)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="shot.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(data)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(apiKeyHeader, testServiceKey)
	return req
}

func TestUploadImageHandler(t *testing.T) {
	api := setupHandlerTestAPI(t)
	r := newTestEngine()
	admin := r.Group("", api.AuthRequired())
	admin.POST("/uploads", api.UploadImage)
	admin.GET("/uploads/status", api.UploadStatus)

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartUpload(t, "photos", "image/png", img.Bytes()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := decodeBody(t, rec)["data"].(map[string]any)
	if url, _ := data["url"].(string); !bytes.HasPrefix([]byte(url), []byte("/static/uploads/images/photos/")) {
		t.Fatalf("unexpected url %v", data["url"])
	}
	if data["width"].(float64) != 8 || data["height"].(float64) != 6 {
		t.Fatalf("unexpected dimensions %v", data)
	}

	status := decodeBody(t, doJSON(r, http.MethodGet, "/uploads/status", nil, map[string]string{apiKeyHeader: testServiceKey}))
	if status["status"] != service.UploadStatusSuccess {
		t.Fatalf("expected success status, got %v", status)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, multipartUpload(t, "photos", "text/plain", []byte("hello")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-image, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, multipartUpload(t, "photos", "image/png", make([]byte, 6<<20)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversized upload, got %d", rec.Code)
	}
}
