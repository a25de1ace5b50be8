package mdtty

import (
	"bytes"
	"context"
	"os"
	"regexp"
	"strings"
	"testing"

	"pkt.systems/mdtty/event"
	"pkt.systems/mdtty/termcap"
)

var (
	ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	osc8Regexp = regexp.MustCompile(`\x1b\]8;;[^\x1b]*\x1b\\`)
)

func stripANSI(s string) string {
	return ansiRegexp.ReplaceAllString(osc8Regexp.ReplaceAllString(s, ""), "")
}

func renderStream(t *testing.T, src []byte, width int) string {
	t.Helper()
	return renderStreamWithOptions(t, src, width)
}

func renderStreamWithOptions(t *testing.T, src []byte, width int, opts ...RenderOption) string {
	t.Helper()
	out, _ := renderCaps(t, src, termcap.ForIdentity(termcap.ANSI, width), opts...)
	return out
}

func renderCaps(t *testing.T, src []byte, caps termcap.Capabilities, opts ...RenderOption) (string, Result) {
	t.Helper()
	return renderRequest(t, RenderRequest{
		Reader:       bytes.NewReader(src),
		Capabilities: caps,
		Theme:        DefaultTheme(),
		Options:      opts,
	})
}

func renderRequest(t *testing.T, req RenderRequest) (string, Result) {
	t.Helper()
	var out bytes.Buffer
	req.Writer = &out
	res, err := Render(context.Background(), req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out.String(), res
}

func renderEvents(t *testing.T, caps termcap.Capabilities, evs ...event.Event) (string, error) {
	t.Helper()
	var out bytes.Buffer
	_, err := RenderEvents(context.Background(), RenderRequest{
		Writer:       &out,
		Capabilities: caps,
		Theme:        DefaultTheme(),
	}, event.NewSlice(evs...))
	return out.String(), err
}

func plainLines(s string) []string {
	return strings.Split(strings.TrimSuffix(stripANSI(s), "\n"), "\n")
}

func readSample(t testing.TB) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/sample.md")
	if err != nil {
		t.Fatalf("read sample.md: %v", err)
	}
	return data
}
