package hunyuan

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientGenerate(t *testing.T) {
	artifact := []byte("glTF-binary-bytes")
	image := []byte{0x89, 0x50, 0x4e, 0x47}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		var payload generateRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if !payload.Options.WaitForModel {
			t.Fatalf("expected wait_for_model to be set")
		}
		if len(payload.Data) != 3 {
			t.Fatalf("unexpected data length: %d", len(payload.Data))
		}
		imgB64, ok := payload.Data[0].(string)
		if !ok {
			t.Fatalf("image slot is not a string: %T", payload.Data[0])
		}
		decoded, err := base64.StdEncoding.DecodeString(imgB64)
		if err != nil || string(decoded) != string(image) {
			t.Fatalf("image bytes mismatch: %v %q", err, decoded)
		}
		params, ok := payload.Data[1].(map[string]any)
		if !ok {
			t.Fatalf("parameters slot is not an object: %T", payload.Data[1])
		}
		if got := params["steps"].(float64); got != 20 {
			t.Fatalf("steps = %v, want 20", got)
		}
		if got := params["octree_resolution"].(float64); got != 128 {
			t.Fatalf("octree_resolution = %v, want 128", got)
		}
		if got := params["randomize_seed"].(bool); !got {
			t.Fatalf("expected randomize_seed when no seed supplied")
		}
		if outputType := payload.Data[2].(string); outputType != "glb" {
			t.Fatalf("output type = %q, want glb", outputType)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(artifact)
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", Endpoint: ts.URL})
	got, err := client.Generate(context.Background(), image, Params{
		OctreeResolution: 128,
		InferenceSteps:   20,
		GuidanceScale:    5.0,
		MCAlgo:           "mc",
		OutputType:       "glb",
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if string(got) != string(artifact) {
		t.Fatalf("artifact mismatch: %q", got)
	}
}

func TestClientGenerateForwardsSeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload generateRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		params := payload.Data[1].(map[string]any)
		if got := params["seed"].(float64); got != 42 {
			t.Fatalf("seed = %v, want 42", got)
		}
		if got := params["randomize_seed"].(bool); got {
			t.Fatalf("randomize_seed should be false when seed supplied")
		}
		_, _ = w.Write([]byte("model"))
	}))
	defer ts.Close()

	seed := int64(42)
	client := NewClient(Options{APIKey: "test-key", Endpoint: ts.URL})
	if _, err := client.Generate(context.Background(), []byte("img"), Params{
		Seed:             &seed,
		OctreeResolution: 128,
		InferenceSteps:   20,
		GuidanceScale:    5.0,
		MCAlgo:           "mc",
		OutputType:       "glb",
	}); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
}

func TestClientGenerateMissingKey(t *testing.T) {
	client := NewClient(Options{})
	if client.APIKeyConfigured() {
		t.Fatalf("expected APIKeyConfigured to be false")
	}
	if _, err := client.Generate(context.Background(), []byte("img"), Params{OutputType: "glb"}); err == nil {
		t.Fatalf("expected error when api key missing")
	}
}

func TestClientGenerateBackendError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "model is overloaded"})
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", Endpoint: ts.URL})
	_, err := client.Generate(context.Background(), []byte("img"), Params{OutputType: "glb"})
	if err == nil {
		t.Fatalf("expected error from backend failure")
	}
	want := "hunyuan: status 503: model is overloaded"
	if err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestClientGenerateEmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", Endpoint: ts.URL})
	if _, err := client.Generate(context.Background(), []byte("img"), Params{OutputType: "glb"}); err == nil {
		t.Fatalf("expected error on empty response body")
	}
}
