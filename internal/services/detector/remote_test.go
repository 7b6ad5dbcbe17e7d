package detector

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRemoteAPI_Raw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", auth)
		}
		if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "image/jpeg") {
			t.Errorf("Content-Type = %q, want image/jpeg", ct)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"score": 0.82, "label": "taiwan black bear", "box": {"xmin": 10, "ymin": 10, "xmax": 200, "ymax": 200}},
			{"score": 0.4, "label": "dog", "box": {"xmin": 1, "ymin": 2, "xmax": 3, "ymax": 4}}
		]`))
	}))
	defer server.Close()

	api := NewRemoteAPI(server.URL, "test-token", testLogger(t))

	detections, err := api.Raw(writeTestImage(t))
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}

	if len(detections) != 2 {
		t.Fatalf("len(detections) = %d, want 2", len(detections))
	}
	if detections[0].Label != "taiwan black bear" || detections[0].Score != 0.82 {
		t.Errorf("detections[0] = %+v, want taiwan black bear / 0.82", detections[0])
	}
	if detections[0].Box.XMin != 10 || detections[0].Box.YMax != 200 {
		t.Errorf("Box = %+v, want pixel corners 10..200", detections[0].Box)
	}
}

func TestRemoteAPI_Raw_Unconfigured(t *testing.T) {
	api := NewRemoteAPI("", "", testLogger(t))

	if _, err := api.Raw(writeTestImage(t)); err == nil {
		t.Error("Raw succeeded without URL/token, want error")
	}
}

func TestRemoteAPI_Raw_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	api := NewRemoteAPI(server.URL, "test-token", testLogger(t))

	_, err := api.Raw(writeTestImage(t))
	if err == nil {
		t.Fatal("Raw succeeded on 503, want error")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %v, want status code mentioned", err)
	}
}

func TestRemoteAPI_Raw_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	api := NewRemoteAPI(server.URL, "test-token", testLogger(t))

	if _, err := api.Raw(writeTestImage(t)); err == nil {
		t.Error("Raw succeeded on invalid JSON, want error")
	}
}

func TestRemoteAPI_Info(t *testing.T) {
	api := NewRemoteAPI("https://api.example/models/bear", "token", testLogger(t))

	info := api.Info()
	if info.ModelType != "Hugging Face Inference API" {
		t.Errorf("ModelType = %q", info.ModelType)
	}
	if info.ModelPath != "https://api.example/models/bear" {
		t.Errorf("ModelPath = %q, want api url", info.ModelPath)
	}
}
