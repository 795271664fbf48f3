package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu      sync.Mutex
	puts    map[string][]byte
	calls   int
	err     error
	block   chan struct{}
	started chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{puts: make(map[string][]byte)}
}

func (f *fakeStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.puts[key] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.puts, key)
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://cdn.example.com/images/" + key
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadStoresImage(t *testing.T) {
	store := newFakeStore()
	svc := NewUploadService(store, 5<<20)
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC) }

	data := pngBytes(t, 4, 3)
	result, err := svc.Upload(context.Background(), UploadRequest{
		Owner:       "1",
		Folder:      "artwork",
		Filename:    "Robot.PNG",
		ContentType: "image/png",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	keyPattern := regexp.MustCompile(`^artwork/20240309-[0-9a-f-]{36}\.png$`)
	if !keyPattern.MatchString(result.Key) {
		t.Fatalf("unexpected key %q", result.Key)
	}
	if result.URL != "https://cdn.example.com/images/"+result.Key {
		t.Fatalf("unexpected url %q", result.URL)
	}
	if result.Width != 4 || result.Height != 3 {
		t.Fatalf("expected 4x3, got %dx%d", result.Width, result.Height)
	}
	if !bytes.Equal(store.puts[result.Key], data) {
		t.Fatal("stored bytes differ from upload")
	}

	state := svc.Status("1")
	if state.Status != UploadStatusSuccess || state.URL != result.URL {
		t.Fatalf("unexpected state %+v", state)
	}
	if svc.Status("2").Status != UploadStatusIdle {
		t.Fatal("expected untouched owner to be idle")
	}
}

func TestUploadRejectsOversizedBeforeStorage(t *testing.T) {
	store := newFakeStore()
	svc := NewUploadService(store, 5<<20)

	_, err := svc.Upload(context.Background(), UploadRequest{
		Owner:       "1",
		Folder:      "blog",
		Filename:    "huge.jpg",
		ContentType: "image/jpeg",
		Size:        10 << 20,
		Body:        bytes.NewReader(make([]byte, 16)),
	})
	if !errors.Is(err, ErrUploadTooLarge) {
		t.Fatalf("expected ErrUploadTooLarge, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no storage calls, got %d", store.calls)
	}
	if state := svc.Status("1"); state.Status != UploadStatusError || !strings.Contains(state.Error, "size limit") {
		t.Fatalf("unexpected state %+v", state)
	}

	// 声明大小可能是假的，实际读取仍受限。
	_, err = svc.Upload(context.Background(), UploadRequest{
		Owner:       "1",
		Folder:      "blog",
		ContentType: "image/jpeg",
		Size:        10,
		Body:        bytes.NewReader(make([]byte, 6<<20)),
	})
	if !errors.Is(err, ErrUploadTooLarge) {
		t.Fatalf("expected ErrUploadTooLarge for lying size, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no storage calls, got %d", store.calls)
	}
}

func TestUploadValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewUploadService(store, 5<<20)

	tests := []struct {
		name string
		req  UploadRequest
		want error
	}{
		{name: "folder", req: UploadRequest{Folder: "docs", ContentType: "image/png", Body: strings.NewReader("x")}, want: ErrUploadFolderInvalid},
		{name: "type", req: UploadRequest{Folder: "photos", ContentType: "application/pdf", Body: strings.NewReader("x")}, want: ErrUploadTypeInvalid},
		{name: "empty", req: UploadRequest{Folder: "photos", ContentType: "image/png", Body: strings.NewReader("")}, want: ErrUploadEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Upload(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if store.calls != 0 {
		t.Fatalf("expected no storage calls, got %d", store.calls)
	}
}

func TestUploadUndecodableImageStillStored(t *testing.T) {
	store := newFakeStore()
	svc := NewUploadService(store, 0)

	result, err := svc.Upload(context.Background(), UploadRequest{
		Owner:       "1",
		Folder:      "photos",
		ContentType: "image/webp",
		Body:        strings.NewReader("not really webp"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.Width != 0 || result.Height != 0 || !strings.HasSuffix(result.Key, ".webp") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestUploadStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("S3 upload failed: boom")
	svc := NewUploadService(store, 0)

	_, err := svc.Upload(context.Background(), UploadRequest{
		Owner:       "1",
		Folder:      "blog",
		ContentType: "image/png",
		Body:        bytes.NewReader(pngBytes(t, 1, 1)),
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected storage error, got %v", err)
	}
	if state := svc.Status("1"); state.Status != UploadStatusError {
		t.Fatalf("expected error state, got %+v", state)
	}
}

func TestUploadOneInFlightPerOwner(t *testing.T) {
	store := newFakeStore()
	store.block = make(chan struct{})
	store.started = make(chan struct{})
	svc := NewUploadService(store, 0)

	data := pngBytes(t, 2, 2)
	done := make(chan error, 1)
	go func() {
		_, err := svc.Upload(context.Background(), UploadRequest{
			Owner: "1", Folder: "blog", ContentType: "image/png", Body: bytes.NewReader(data),
		})
		done <- err
	}()

	<-store.started
	if state := svc.Status("1"); state.Status != UploadStatusUploading {
		t.Fatalf("expected uploading state, got %+v", state)
	}
	if _, err := svc.Upload(context.Background(), UploadRequest{
		Owner: "1", Folder: "blog", ContentType: "image/png", Body: bytes.NewReader(data),
	}); !errors.Is(err, ErrUploadInProgress) {
		t.Fatalf("expected ErrUploadInProgress, got %v", err)
	}

	close(store.block)
	if err := <-done; err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if state := svc.Status("1"); state.Status != UploadStatusSuccess {
		t.Fatalf("expected success state, got %+v", state)
	}
}

func TestUploadKeyExtensionFollowsImageType(t *testing.T) {
	store := newFakeStore()
	svc := NewUploadService(store, 0)
	data := pngBytes(t, 2, 2)

	tests := []struct {
		name        string
		filename    string
		contentType string
		body        []byte
		wantExt     string
		wantType    string
	}{
		{name: "html named file labelled png", filename: "evil.html", contentType: "image/png", body: []byte("<b>x</b>"), wantExt: ".png", wantType: "image/png"},
		{name: "svg named file labelled webp", filename: "evil.svg", contentType: "image/webp", body: []byte("<svg/>"), wantExt: ".webp", wantType: "image/webp"},
		{name: "png labelled jpeg", filename: "photo.jpeg", contentType: "image/jpeg", body: data, wantExt: ".png", wantType: "image/png"},
		{name: "jpg alias with params", filename: "", contentType: "image/JPG; charset=binary", body: []byte("raw"), wantExt: ".jpg", wantType: "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Upload(context.Background(), UploadRequest{
				Owner:       tt.name,
				Folder:      "blog",
				Filename:    tt.filename,
				ContentType: tt.contentType,
				Body:        bytes.NewReader(tt.body),
			})
			if err != nil {
				t.Fatalf("upload: %v", err)
			}
			if !strings.HasSuffix(result.Key, tt.wantExt) {
				t.Fatalf("expected key ending in %s, got %q", tt.wantExt, result.Key)
			}
			if result.ContentType != tt.wantType {
				t.Fatalf("expected content type %s, got %s", tt.wantType, result.ContentType)
			}
		})
	}
}

func TestUploadRejectsScriptableImageTypes(t *testing.T) {
	store := newFakeStore()
	svc := NewUploadService(store, 0)

	for _, contentType := range []string{"image/svg+xml", "image/x-icon", "image/"} {
		_, err := svc.Upload(context.Background(), UploadRequest{
			Owner:       "1",
			Folder:      "blog",
			Filename:    "logo.svg",
			ContentType: contentType,
			Body:        strings.NewReader(`<svg onload="alert(1)"/>`),
		})
		if !errors.Is(err, ErrUploadTypeInvalid) {
			t.Fatalf("%s: expected ErrUploadTypeInvalid, got %v", contentType, err)
		}
	}
	if store.calls != 0 {
		t.Fatalf("expected no storage calls, got %d", store.calls)
	}
}

func TestUploadRemoveOnlyOwnObjects(t *testing.T) {
	store := newFakeStore()
	svc := NewUploadService(store, 0)

	data := pngBytes(t, 2, 2)
	result, err := svc.Upload(context.Background(), UploadRequest{
		Owner: "1", Folder: "artwork", ContentType: "image/png", Body: bytes.NewReader(data),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	for _, url := range []string{
		"https://picsum.photos/seed/fox/1200/900",
		"https://cdn.example.com/images/",
		"https://cdn.example.com/images/../secrets.txt",
		"https://cdn.example.com/images/docs/a.png",
	} {
		removed, err := svc.Remove(context.Background(), url)
		if err != nil || removed {
			t.Fatalf("%s: expected no removal, got %v %v", url, removed, err)
		}
	}
	if _, ok := store.puts[result.Key]; !ok {
		t.Fatal("expected object to survive foreign urls")
	}

	removed, err := svc.Remove(context.Background(), result.URL)
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
	if _, ok := store.puts[result.Key]; ok {
		t.Fatal("expected object to be deleted")
	}
}
