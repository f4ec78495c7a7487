package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/quickai/server/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestTransformer(t *testing.T, rt roundTripFunc) *Transformer {
	t.Helper()
	tr, err := NewTransformer(TransformerOptions{
		APIKey:     "test-key",
		BaseURL:    "https://media.example",
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("NewTransformer returned error: %v", err)
	}
	return tr
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestSingleToken(t *testing.T) {
	cases := []struct {
		label string
		want  bool
	}{
		{"watch", true},
		{"coffee-cup", true},
		{"", false},
		{"coffee cup", false},
		{"a\tb", false},
		{" leading", false},
	}
	for _, tc := range cases {
		if got := SingleToken(tc.label); got != tc.want {
			t.Errorf("SingleToken(%q) = %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestRemoveObjectRejectsMultiWordLabelBeforeNetwork(t *testing.T) {
	calls := 0
	tr := newTestTransformer(t, func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusOK, `{"secure_url":"https://media.example/out.png"}`), nil
	})
	_, err := tr.RemoveObject(context.Background(), []byte("img"), "coffee cup")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if calls != 0 {
		t.Fatalf("network calls = %d, want 0", calls)
	}
}

func TestRemoveObjectSendsGenRemoveTransform(t *testing.T) {
	var gotBody string
	tr := newTestTransformer(t, func(r *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		return jsonResponse(http.StatusOK, `{"secure_url":"https://media.example/out.png"}`), nil
	})
	uri, err := tr.RemoveObject(context.Background(), []byte("img"), "watch")
	if err != nil {
		t.Fatalf("RemoveObject returned error: %v", err)
	}
	if uri != "https://media.example/out.png" {
		t.Fatalf("uri = %q", uri)
	}
	if !strings.Contains(gotBody, "e_gen_remove:watch") {
		t.Fatalf("body missing transform, got %q", gotBody)
	}
}

func TestRemoveBackgroundSendsEffect(t *testing.T) {
	var gotBody string
	tr := newTestTransformer(t, func(r *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		return jsonResponse(http.StatusOK, `{"secure_url":"https://media.example/bg.png"}`), nil
	})
	uri, err := tr.RemoveBackground(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("RemoveBackground returned error: %v", err)
	}
	if uri != "https://media.example/bg.png" {
		t.Fatalf("uri = %q", uri)
	}
	if !strings.Contains(gotBody, "e_background_removal") {
		t.Fatalf("body missing effect, got %q", gotBody)
	}
}

func TestRemoveBackgroundRejectsEmptyImage(t *testing.T) {
	tr := newTestTransformer(t, func(r *http.Request) (*http.Response, error) {
		t.Fatal("no network call expected")
		return nil, nil
	})
	if _, err := tr.RemoveBackground(context.Background(), nil, "image/png"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUploadMapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusInternalServerError, domain.ErrProviderUnavailable},
		{http.StatusUnprocessableEntity, domain.ErrProviderRejected},
	}
	for _, tc := range cases {
		tr := newTestTransformer(t, func(r *http.Request) (*http.Response, error) {
			return jsonResponse(tc.status, `{}`), nil
		})
		if _, err := tr.RemoveBackground(context.Background(), []byte("img"), "image/png"); !errors.Is(err, tc.want) {
			t.Fatalf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestUploadMapsMissingURLToRejected(t *testing.T) {
	tr := newTestTransformer(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`), nil
	})
	if _, err := tr.RemoveBackground(context.Background(), []byte("img"), "image/png"); !errors.Is(err, domain.ErrProviderRejected) {
		t.Fatalf("err = %v, want ErrProviderRejected", err)
	}
}
