package bypass

import (
	"net/http"
	"testing"
)

func TestDetectCloudflare(t *testing.T) {
	// Not blocked
	if detected, _ := detectCloudflare(200, http.Header{"Server": {"nginx"}}, []byte("OK")); detected {
		t.Errorf("expected not detected")
	}

	// CF server header
	if detected, src := detectCloudflare(403, http.Header{"Server": {"cloudflare"}}, []byte("Access Denied")); !detected || src != "Cloudflare" {
		t.Errorf("expected Cloudflare detection by header")
	}

	// CF body signature
	if detected, src := detectCloudflare(503, http.Header{}, []byte("<html>... cf-turnstile ...</html>")); !detected || src != "Cloudflare" {
		t.Errorf("expected Cloudflare detection by body")
	}

	// Signature present but status 200 means the page was actually served
	if detected, _ := detectCloudflare(200, http.Header{}, []byte("cf-turnstile")); detected {
		t.Errorf("expected no detection on 200")
	}
}

func TestDetectAkamai(t *testing.T) {
	if detected, src := detectAkamai(403, http.Header{"Server": {"AkamaiGHost"}}, nil); !detected || src != "Akamai" {
		t.Errorf("expected Akamai detection by header")
	}

	if detected, src := detectAkamai(403, http.Header{}, []byte("Access Denied... Reference #123.456")); !detected || src != "Akamai" {
		t.Errorf("expected Akamai detection by body")
	}

	// Reference # alone is not enough
	if detected, _ := detectAkamai(403, http.Header{}, []byte("Reference #123.456")); detected {
		t.Errorf("expected no detection without Access Denied text")
	}
}

func TestDetectDataDome(t *testing.T) {
	if detected, src := detectDataDome(403, http.Header{"X-Datadome": {"1"}}, nil); !detected || src != "DataDome" {
		t.Errorf("expected DataDome detection by header")
	}

	if detected, src := detectDataDome(403, http.Header{}, []byte("script src='https://geo.captcha-delivery.com/...'")); !detected || src != "DataDome" {
		t.Errorf("expected DataDome detection by body")
	}
}

func TestDetectPerimeterX(t *testing.T) {
	if detected, src := detectPerimeterX(403, http.Header{"X-Px-Captcha": {"required"}}, nil); !detected || src != "PerimeterX" {
		t.Errorf("expected PerimeterX detection by header")
	}

	if detected, src := detectPerimeterX(403, http.Header{}, []byte("window._pxBlock = true;")); !detected || src != "PerimeterX" {
		t.Errorf("expected PerimeterX detection by body")
	}
}

func TestAnalyze(t *testing.T) {
	detectors := DefaultDetectors()

	detected, src := Analyze(403, http.Header{"X-Datadome": {"1"}}, nil, detectors)
	if !detected || src != "DataDome" {
		t.Errorf("expected DataDome detection, got %v %q", detected, src)
	}

	detected, src = Analyze(200, http.Header{}, []byte("hello"), detectors)
	if detected || src != "" {
		t.Errorf("expected clean page to pass, got %v %q", detected, src)
	}
}

func TestAnalyze_NilHeaders(t *testing.T) {
	detected, src := Analyze(403, nil, []byte("Access Denied"), DefaultDetectors())
	if detected || src != "" {
		t.Errorf("expected no detection with nil headers, got %v %q", detected, src)
	}
}
