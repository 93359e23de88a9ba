package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<html>
<head><title> Breaking News </title><script>var x = 1;</script></head>
<body>
<nav>Home | About | Contact</nav>
<article><p>The actual story.</p><p>Second paragraph.</p></article>
<footer>Copyright boilerplate</footer>
</body>
</html>`

func TestExtractPrefersArticleContainer(t *testing.T) {
	t.Parallel()

	res, err := New().Extract(articlePage)
	require.NoError(t, err)

	assert.Equal(t, "Breaking News", res.Title)
	assert.Equal(t, "article", res.Strategy)
	assert.Equal(t, "The actual story.\nSecond paragraph.", res.Text)
	assert.NotContains(t, res.Text, "Home | About")
	assert.NotContains(t, res.Text, "Copyright")
}

func TestExtractStrategyOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		strategy string
		want     string
	}{
		{
			name:     "main when no article",
			html:     `<html><body><main>main text</main><div id="content">ignored</div></body></html>`,
			strategy: "main",
			want:     "main text",
		},
		{
			name:     "post-content class",
			html:     `<html><body><div class="post-content">post body</div></body></html>`,
			strategy: ".post-content",
			want:     "post body",
		},
		{
			name:     "article-body class",
			html:     `<html><body><div class="article-body">story here</div></body></html>`,
			strategy: ".article-body",
			want:     "story here",
		},
		{
			name:     "content id",
			html:     `<html><body><div id="content">id content</div></body></html>`,
			strategy: "#content",
			want:     "id content",
		},
		{
			name:     "fallback to full text",
			html:     `<html><body><div><p>plain page</p></div></body></html>`,
			strategy: "full_text",
			want:     "plain page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New().Extract(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, res.Strategy)
			assert.Equal(t, tt.want, res.Text)
		})
	}
}

func TestExtractEmptyMatchFallsThrough(t *testing.T) {
	t.Parallel()

	// An empty <article> must not win; the next matching strategy does.
	html := `<html><body><article></article><main>real content</main></body></html>`
	res, err := New().Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "main", res.Strategy)
	assert.Equal(t, "real content", res.Text)
}

func TestExtractEmptyDocument(t *testing.T) {
	t.Parallel()

	res, err := New().Extract("")
	require.NoError(t, err)
	assert.Equal(t, "No Title Found", res.Title)
	assert.Empty(t, res.Text)
}

func TestExtractSkipsScriptAndStyle(t *testing.T) {
	t.Parallel()

	html := `<html><body><article>visible<script>hidden()</script><style>.x{}</style></article></body></html>`
	res, err := New().Extract(html)
	require.NoError(t, err)
	assert.Equal(t, "visible", res.Text)
}

func TestSummarizeTruncatesAtFifteenLines(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 1; i <= 20; i++ {
		lines = append(lines, fmt.Sprintf("line%d", i))
	}
	got := Summarize(strings.Join(lines, "\n"), SummaryLines)

	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Contains(t, got, "line15")
	assert.NotContains(t, got, "line16")
	assert.Equal(t, strings.Join(lines[:15], " ")+"...", got)
}

func TestSummarizeShortText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "one two...", Summarize("one\ntwo", SummaryLines))
	assert.Empty(t, Summarize("", SummaryLines))
}
