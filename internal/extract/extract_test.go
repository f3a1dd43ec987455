package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/egysentiment/collector/internal/identity"
)

func testExtractor() *Extractor {
	return New(5*time.Second, identity.Static("test-agent"))
}

func TestFullTextArticle(t *testing.T) {
	page := `<html><head><title>EGX rallies | Site</title></head><body>
<article>
<h1>EGX rallies on foreign inflows</h1>
<p>` + strings.Repeat("Foreign investors returned to the Egyptian exchange in force this week. ", 5) + `</p>
<p>` + strings.Repeat("Brokers reported the heaviest volumes since the spring listing season. ", 5) + `</p>
<p>` + strings.Repeat("Analysts expect the momentum to continue into the next session. ", 5) + `</p>
</article></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	title, body := testExtractor().FullText(context.Background(), srv.URL)
	assert.NotEmpty(t, title)
	assert.Contains(t, body, "Foreign investors returned")
	assert.Greater(t, len(body), 100)
}

func TestFullTextHTTPErrorIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	title, body := testExtractor().FullText(context.Background(), srv.URL)
	assert.Empty(t, title)
	assert.Empty(t, body)
}

func TestFullTextUnreachableIsEmpty(t *testing.T) {
	title, body := testExtractor().FullText(context.Background(), "http://127.0.0.1:1/article")
	assert.Empty(t, title)
	assert.Empty(t, body)
}

func TestFallbackParagraphsPrefersSolidSelector(t *testing.T) {
	page := []byte(`<html><body>
<h1>Pound steadies</h1>
<div class="content">
<p>The pound held its ground against the dollar in interbank trading.</p>
<p>Dealers said demand for hard currency eased after the latest auction.</p>
<p>The central bank left its reference rate unchanged for a third session.</p>
</div>
</body></html>`)

	title, body := fallbackParagraphs(page)
	assert.Equal(t, "Pound steadies", title)
	assert.Contains(t, body, "held its ground")
	assert.Contains(t, body, "reference rate unchanged")
}

func TestFallbackParagraphsSingleParagraph(t *testing.T) {
	page := []byte(`<html><head><title>Short note</title></head><body>
<p>A single substantial paragraph about the Egyptian bond auction results.</p>
</body></html>`)

	title, body := fallbackParagraphs(page)
	assert.Equal(t, "Short note", title, "falls back to the document title without an h1")
	assert.Contains(t, body, "bond auction results")
}

func TestFallbackParagraphsNothingUsable(t *testing.T) {
	_, body := fallbackParagraphs([]byte(`<html><body><p>tiny</p></body></html>`))
	assert.Empty(t, body, "paragraphs under the length floor are ignored")
}

func TestClean(t *testing.T) {
	in := "  First   line \r\n\r\n\n  Second\tline  \n\n"
	assert.Equal(t, "First line\nSecond line", Clean(in))
}
