package http

import (
	"testing"
)

func TestParseRequest_Basic(t *testing.T) {
	req, err := ParseRequest([]byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	defer ReleaseRequest(req)

	if req.Method != "GET" {
		t.Errorf("expected method GET, got %s", req.Method)
	}
	if req.Path != "/index.html" {
		t.Errorf("expected path /index.html, got %s", req.Path)
	}
	if req.Version != "HTTP/1.1" {
		t.Errorf("expected version HTTP/1.1, got %s", req.Version)
	}
	if req.Header("host") != "example.com" {
		t.Errorf("expected host example.com, got %q", req.Header("host"))
	}
}

func TestParseRequest_HeaderNamesLowercased(t *testing.T) {
	req, err := ParseRequest([]byte("GET / HTTP/1.1\r\nHoSt: x\r\nX-CUSTOM-Header: Value\r\n\r\n"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	defer ReleaseRequest(req)

	if req.Header("host") != "x" {
		t.Errorf("expected lowercased host key, got headers %v", req.Headers)
	}
	if req.Header("x-custom-header") != "Value" {
		t.Errorf("expected value preserved with lowercased key, got %q", req.Header("x-custom-header"))
	}
	if _, ok := req.Headers["HoSt"]; ok {
		t.Error("original-case key should not be stored")
	}
}

func TestParseRequest_HeaderValueTrimmed(t *testing.T) {
	req, err := ParseRequest([]byte("GET / HTTP/1.1\r\nHost:\t  spaced.example \t\r\n\r\n"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	defer ReleaseRequest(req)

	if req.Header("host") != "spaced.example" {
		t.Errorf("expected trimmed value, got %q", req.Header("host"))
	}
}

func TestParseRequest_DuplicateHeaderLastWins(t *testing.T) {
	req, err := ParseRequest([]byte("GET / HTTP/1.1\r\nX-Tag: first\r\nX-Tag: second\r\n\r\n"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	defer ReleaseRequest(req)

	if req.Header("x-tag") != "second" {
		t.Errorf("expected last duplicate to win, got %q", req.Header("x-tag"))
	}
}

func TestParseRequest_KeepAlive(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"http11 default", "GET / HTTP/1.1\r\nHost: x\r\n\r\n", true},
		{"http11 close", "GET / HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n", false},
		{"http11 explicit keepalive", "GET / HTTP/1.1\r\nHost: x\r\nConnection: keep-alive\r\n\r\n", true},
		{"http11 mixed case value", "GET / HTTP/1.1\r\nHost: x\r\nConnection: Keep-Alive\r\n\r\n", true},
		{"http10 default", "GET / HTTP/1.0\r\nHost: x\r\n\r\n", false},
		{"http10 explicit keepalive", "GET / HTTP/1.0\r\nConnection: keep-alive\r\n\r\n", true},
		{"http10 close", "GET / HTTP/1.0\r\nConnection: close\r\n\r\n", false},
	}

	for _, tc := range cases {
		req, err := ParseRequest([]byte(tc.raw))
		if err != nil {
			t.Fatalf("%s: unexpected parse error: %v", tc.name, err)
		}
		if req.KeepAlive != tc.want {
			t.Errorf("%s: expected keep-alive %v, got %v", tc.name, tc.want, req.KeepAlive)
		}
		ReleaseRequest(req)
	}
}

func TestParseRequest_Malformed(t *testing.T) {
	cases := []string{
		"BROKEN REQUEST\r\n\r\n", // two request-line fields
		"GET\r\n\r\n",            // one field
		"",                       // no line at all
		"no newline whatsoever",  // missing LF
	}

	for _, raw := range cases {
		if _, err := ParseRequest([]byte(raw)); err == nil {
			t.Errorf("expected parse failure for %q", raw)
		}
	}
}

func TestParseRequest_HeaderLineWithoutColonSkipped(t *testing.T) {
	req, err := ParseRequest([]byte("GET / HTTP/1.1\r\ngarbage line\r\nHost: x\r\n\r\n"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	defer ReleaseRequest(req)

	if req.Header("host") != "x" {
		t.Errorf("header after garbage line lost, headers %v", req.Headers)
	}
}

// Round trip: a head assembled from known components survives decoding
// with method, path, version and lowercased header names intact.
func TestParseRequest_RoundTrip(t *testing.T) {
	raw := "POST /submit HTTP/1.1\r\n" +
		"Host: api.example.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"X-Dup: a\r\n" +
		"X-Dup: b\r\n" +
		"\r\n"

	req, err := ParseRequest([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	defer ReleaseRequest(req)

	if req.Method != "POST" || req.Path != "/submit" || req.Version != "HTTP/1.1" {
		t.Errorf("request line mangled: %s %s %s", req.Method, req.Path, req.Version)
	}

	want := map[string]string{
		"host":         "api.example.com",
		"content-type": "text/plain",
		"x-dup":        "b",
	}
	for k, v := range want {
		if req.Header(k) != v {
			t.Errorf("header %s: expected %q, got %q", k, v, req.Header(k))
		}
	}
	if len(req.Headers) != len(want) {
		t.Errorf("expected %d headers, got %v", len(want), req.Headers)
	}
}

func TestRequestReuse(t *testing.T) {
	req, err := ParseRequest([]byte("GET /a HTTP/1.1\r\nHost: one\r\n\r\n"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	ReleaseRequest(req)

	req2, err := ParseRequest([]byte("GET /b HTTP/1.0\r\n\r\n"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	defer ReleaseRequest(req2)

	if req2.Header("host") != "" {
		t.Errorf("stale header leaked through pool reuse: %v", req2.Headers)
	}
	if req2.KeepAlive {
		t.Error("stale keep-alive leaked through pool reuse")
	}
}

func BenchmarkParseRequest(b *testing.B) {
	raw := []byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\nUser-Agent: bench/1.0\r\nAccept: */*\r\nConnection: keep-alive\r\n\r\n")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req, err := ParseRequest(raw)
		if err != nil {
			b.Fatal(err)
		}
		ReleaseRequest(req)
	}
}
