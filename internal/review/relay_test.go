package review

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dshills/codelens/internal/providers"
)

type fakeGenerator struct {
	calls   int
	prompts []string
	text    string
	err     error
	panic   bool
}

func (f *fakeGenerator) Generate(_ context.Context, req providers.GenerateRequest) (providers.GenerateResponse, error) {
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	if f.panic {
		panic("generator exploded")
	}
	if f.err != nil {
		return providers.GenerateResponse{}, f.err
	}
	return providers.GenerateResponse{Text: f.text}, nil
}

func (f *fakeGenerator) Model() string { return "fake-model" }

type mapCache map[string]string

func (m mapCache) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapCache) Put(key, value string) error {
	m[key] = value
	return nil
}

type blankRedactor struct{}

func (blankRedactor) Content(content, _ string) string { return "[REDACTED]" }

func TestRelay_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"missing code", Request{FileName: "a.py"}},
		{"missing fileName", Request{Code: "print(1)"}},
		{"both missing", Request{}},
		{"blank fileName", Request{Code: "x", FileName: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{text: "ok"}
			_, err := NewRelay(gen, Options{}).Review(context.Background(), tt.req)
			if KindOf(err) != KindInvalidInput {
				t.Errorf("KindOf(err) = %v, want InvalidInput (err=%v)", KindOf(err), err)
			}
			if gen.calls != 0 {
				t.Errorf("generator called %d times, want 0", gen.calls)
			}
		})
	}
}

func TestRelay_Success(t *testing.T) {
	gen := &fakeGenerator{text: "X"}
	relay := NewRelay(gen, Options{Categories: "security"})

	res, err := relay.Review(context.Background(), Request{Code: "print(1)", FileName: "a.py"})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if res.FileName != "a.py" || res.Text() != "X" {
		t.Errorf("Result = %+v", res)
	}
	if !strings.Contains(gen.prompts[0], "print(1)") || !strings.Contains(gen.prompts[0], "security") {
		t.Error("prompt should carry the code and categories")
	}
	if relay.Model() != "fake-model" {
		t.Errorf("Model() = %q", relay.Model())
	}
}

func TestRelay_UpstreamError(t *testing.T) {
	gen := &fakeGenerator{err: &providers.StatusError{StatusCode: 500, Body: "boom"}}
	_, err := NewRelay(gen, Options{}).Review(context.Background(), Request{Code: "x", FileName: "a.go"})

	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if re.Kind != KindUpstream || re.StatusCode != 500 || re.Body != "boom" {
		t.Errorf("Error = %+v", re)
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", gen.calls)
	}
}

func TestRelay_PanicIsInternal(t *testing.T) {
	gen := &fakeGenerator{panic: true}
	_, err := NewRelay(gen, Options{}).Review(context.Background(), Request{Code: "x", FileName: "a.go"})

	var re *Error
	if !errors.As(err, &re) || re.Kind != KindInternal {
		t.Fatalf("err = %v, want InternalError", err)
	}
	if re.Stack == "" {
		t.Error("InternalError should carry a stack trace")
	}
}

func TestRelay_Cache(t *testing.T) {
	gen := &fakeGenerator{text: "first"}
	c := mapCache{}
	relay := NewRelay(gen, Options{Cache: c})
	req := Request{Code: "x", FileName: "a.go"}

	if _, err := relay.Review(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	gen.text = "second"
	res, err := relay.Review(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text() != "first" {
		t.Errorf("Text = %q, want cached %q", res.Text(), "first")
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
}

func TestRelay_Redactor(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	relay := NewRelay(gen, Options{Redactor: blankRedactor{}})
	if _, err := relay.Review(context.Background(), Request{Code: "password = 'hunter2'", FileName: ".env"}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(gen.prompts[0], "hunter2") {
		t.Error("redacted content leaked into the prompt")
	}
}

// The tests below run the relay against a real Ollama client and a fake
// generation service.

func TestRelay_OverHTTP_ExactShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"X"}`))
	}))
	defer server.Close()

	gen := providers.NewOllama(server.URL, "llama3.2:latest", providers.WithHTTPClient(server.Client()))
	res, err := NewRelay(gen, Options{}).Review(context.Background(), Request{Code: "print(1)", FileName: "a.py"})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}

	got, _ := json.Marshal(res)
	want := `{"fileName":"a.py","reviewResults":{"comprehensive_review":"X"}}`
	if string(got) != want {
		t.Errorf("JSON = %s, want %s", got, want)
	}
}

func TestRelay_OverHTTP_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status 500", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(500)
			w.Write([]byte("boom"))
		}},
		{"malformed JSON", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{"))
		}},
		{"missing response field", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"done":true}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				tt.handler(w, r)
			}))
			defer server.Close()

			gen := providers.NewOllama(server.URL, "m", providers.WithHTTPClient(server.Client()))
			_, err := NewRelay(gen, Options{}).Review(context.Background(), Request{Code: "x", FileName: "a.py"})
			if KindOf(err) != KindUpstream {
				t.Errorf("KindOf(err) = %v, want Upstream (err=%v)", KindOf(err), err)
			}
			if hits.Load() != 1 {
				t.Errorf("hits = %d, want 1", hits.Load())
			}
		})
	}
}
