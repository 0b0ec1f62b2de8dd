package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const irPage = `<html><body>
<a href="/files/annual-2023.pdf">Annual report</a>
<a href="q3.PDF?dl=1">Q3</a>
<a href="https://cdn.example/esg.pdf#page=2">ESG</a>
<a href="/files/annual-2023.pdf">Duplicate</a>
<a href="/about">About</a>
<a href="mailto:ir@acme.example?subject=x.pdf">Mail</a>
</body></html>`

func TestFindPDFLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(irPage))
	}))
	defer server.Close()

	f := NewFetcher(Config{})
	links, err := f.FindPDFLinks(context.Background(), server.URL+"/investors/", 5)

	require.NoError(t, err)
	assert.Equal(t, []string{
		server.URL + "/files/annual-2023.pdf",
		server.URL + "/investors/q3.PDF?dl=1",
		"https://cdn.example/esg.pdf#page=2",
	}, links)
}

func TestFindPDFLinks_Max(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(irPage))
	}))
	defer server.Close()

	links, err := NewFetcher(Config{}).FindPDFLinks(context.Background(), server.URL, 1)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestFindPDFLinks_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewFetcher(Config{}).FindPDFLinks(context.Background(), server.URL, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

// fakeRenderer serves canned rendered HTML and counts calls.
type fakeRenderer struct {
	html  string
	err   error
	calls int
}

func (r *fakeRenderer) RenderHTML(_ context.Context, _ string) (string, error) {
	r.calls++
	return r.html, r.err
}

const scriptedPage = `<html><body><div id="reports"></div>
<script>document.getElementById("reports").innerHTML = "...";</script>
<a href="/files/annual-2023.pdf">Annual report</a>
</body></html>`

const renderedPage = `<html><body><div id="reports">
<a href="/files/annual-2023.pdf">Annual report</a>
<a href="/files/annual-2022.pdf">2022</a>
<a href="/files/annual-2021.pdf">2021</a>
<a href="/files/annual-2020.pdf">2020</a>
<a href="/files/annual-2019.pdf">2019</a>
</div></body></html>`

func TestFindPDFLinks_RendersScriptedPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(scriptedPage))
	}))
	defer server.Close()

	renderer := &fakeRenderer{html: renderedPage}
	f := NewFetcher(Config{Renderer: renderer})
	links, err := f.FindPDFLinks(context.Background(), server.URL, 5)

	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, []string{
		server.URL + "/files/annual-2023.pdf",
		server.URL + "/files/annual-2022.pdf",
		server.URL + "/files/annual-2021.pdf",
	}, links)
}

func TestFindPDFLinks_SkipsRenderWhenStaticSuffices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(irPage))
	}))
	defer server.Close()

	renderer := &fakeRenderer{html: renderedPage}
	links, err := NewFetcher(Config{Renderer: renderer}).FindPDFLinks(context.Background(), server.URL, 5)

	require.NoError(t, err)
	assert.Zero(t, renderer.calls)
	assert.Len(t, links, 3)
}

func TestFindPDFLinks_RenderFailureKeepsStaticLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(scriptedPage))
	}))
	defer server.Close()

	renderer := &fakeRenderer{err: errors.New("chrome not found")}
	links, err := NewFetcher(Config{Renderer: renderer}).FindPDFLinks(context.Background(), server.URL, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/files/annual-2023.pdf"}, links)
}

func TestFindPDFLinks_RendersWhenStaticFetchFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	renderer := &fakeRenderer{html: renderedPage}
	links, err := NewFetcher(Config{Renderer: renderer, RenderedLinks: 2}).FindPDFLinks(context.Background(), server.URL, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{
		server.URL + "/files/annual-2023.pdf",
		server.URL + "/files/annual-2022.pdf",
	}, links)
}

func TestNewChromeRenderer_Defaults(t *testing.T) {
	r := NewChromeRenderer(0, "")
	assert.Equal(t, DefaultRenderTimeout, r.timeout)
	assert.Empty(t, r.execPath)
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "acme", "doc_1.pdf")
	require.NoError(t, NewFetcher(Config{}).Download(context.Background(), server.URL, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))
}

func TestDownload_TooLargeLeavesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "doc_1.pdf")
	err := NewFetcher(Config{MaxDownloadBytes: 10}).Download(context.Background(), server.URL, dest)

	require.Error(t, err)
	assert.NoFileExists(t, dest)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
