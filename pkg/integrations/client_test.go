package integrations

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muchdogesec/location2stix/pkg/errors"
	"github.com/muchdogesec/location2stix/pkg/stix"
)

const identityJSON = `{
    "type": "identity",
    "spec_version": "2.1",
    "id": "identity--d2916708-57b9-5636-8689-62f049e9f727",
    "name": "location2stix",
    "identity_class": "system"
}`

func TestNewClient(t *testing.T) {
	headers := map[string]string{"User-Agent": "location2stix"}
	client := NewClient(time.Second, headers)

	if client.http == nil {
		t.Fatal("NewClient() http client is nil")
	}
	if client.http.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", client.http.Timeout)
	}
	if client.headers["User-Agent"] != "location2stix" {
		t.Error("NewClient() headers not set correctly")
	}

	if NewClient(0, nil).http.Timeout != DefaultTimeout {
		t.Error("zero timeout should fall back to DefaultTimeout")
	}
}

func TestFetchObject(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(identityJSON))
	}))
	defer server.Close()

	client := NewClient(time.Second, map[string]string{"User-Agent": "location2stix"})
	client.http = server.Client()

	obj, err := client.FetchObject(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchObject() error: %v", err)
	}
	if obj.Type != stix.TypeIdentity {
		t.Errorf("Type = %q, want identity", obj.Type)
	}
	if obj.ID != "identity--d2916708-57b9-5636-8689-62f049e9f727" {
		t.Errorf("ID = %q", obj.ID)
	}
	if gotUA != "location2stix" {
		t.Errorf("User-Agent = %q, want location2stix", gotUA)
	}
}

func TestFetchTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(identityJSON))
	}))
	defer server.Close()

	client := NewClient(time.Second, nil)
	client.http = server.Client()

	if _, err := client.FetchTyped(context.Background(), server.URL, stix.TypeIdentity); err != nil {
		t.Errorf("FetchTyped(identity) error: %v", err)
	}
	_, err := client.FetchTyped(context.Background(), server.URL, stix.TypeMarkingDefinition)
	if !errors.Is(err, errors.ErrCodeInvalidObject) {
		t.Errorf("FetchTyped(marking-definition) error = %v, want INVALID_OBJECT", err)
	}
}

func TestFetchObject404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(time.Second, nil)
	client.http = server.Client()

	_, err := client.FetchObject(context.Background(), server.URL)
	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("FetchObject() error = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("FetchObject() code = %v, want NOT_FOUND", errors.GetCode(err))
	}
}

func TestFetchObject500NoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(time.Second, nil)
	client.http = server.Client()

	_, err := client.FetchObject(context.Background(), server.URL)
	if !stderrors.Is(err, ErrNetwork) {
		t.Errorf("FetchObject() error = %v, want ErrNetwork", err)
	}
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("FetchObject() code = %v, want NETWORK_ERROR", errors.GetCode(err))
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want exactly 1", n)
	}
}

func TestFetchObjectMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>rate limited</html>`))
	}))
	defer server.Close()

	client := NewClient(time.Second, nil)
	client.http = server.Client()

	_, err := client.FetchObject(context.Background(), server.URL)
	if !errors.Is(err, errors.ErrCodeInvalidObject) {
		t.Errorf("FetchObject() error = %v, want INVALID_OBJECT", err)
	}
}

func TestFetchObjectUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(time.Second, nil)
	_, err := client.FetchObject(context.Background(), url)
	if !stderrors.Is(err, ErrNetwork) {
		t.Errorf("FetchObject() error = %v, want ErrNetwork", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code    int
		wantErr error
	}{
		{200, nil},
		{204, nil},
		{301, ErrNetwork},
		{403, ErrNetwork},
		{404, ErrNotFound},
		{503, ErrNetwork},
	}
	for _, tt := range tests {
		err := checkStatus(tt.code)
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("checkStatus(%d) = %v, want nil", tt.code, err)
			}
			continue
		}
		if !stderrors.Is(err, tt.wantErr) {
			t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.wantErr)
		}
	}
}
