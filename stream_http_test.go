package mdtty

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pkt.systems/mdtty/termcap"
)

func TestHTTPRenderResolvesLinksAgainstURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/docs/readme.md" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("# Hi\n\n[next](next.md)\n"))
	}))
	defer server.Close()

	var out bytes.Buffer
	_, err := HTTPRender(context.Background(), HTTPRenderRequest{
		URL:          server.URL + "/docs/readme.md",
		Client:       server.Client(),
		Writer:       &out,
		Capabilities: termcap.ForIdentity(termcap.ANSI, 40).WithHyperlinks(true),
	})
	if err != nil {
		t.Fatalf("http render: %v", err)
	}
	if !strings.Contains(out.String(), osc8Start+server.URL+"/docs/next.md"+osc8Terminator) {
		t.Fatalf("expected link resolved against the document URL: %q", out.String())
	}
	assertLines(t, out.String(), "# Hi", "", "next")
}

func TestHTTPRenderErrors(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	var out bytes.Buffer
	_, err := HTTPRender(context.Background(), HTTPRenderRequest{
		URL:    server.URL + "/missing.md",
		Writer: &out,
	})
	if err == nil || !strings.Contains(err.Error(), "status") {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, err := HTTPRender(context.Background(), HTTPRenderRequest{URL: "ftp://example.com/x.md", Writer: &out}); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	if _, err := HTTPRender(context.Background(), HTTPRenderRequest{Writer: &out}); err == nil {
		t.Fatalf("expected error for missing URL")
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}
}
