package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		url  string
		want Kind
	}{
		{"https://antigravity.google/changelog", KindScriptEmbedded},
		{"https://cloud.google.com/feeds/cloud-run-release-notes.xml", KindFeed},
		{"https://github.com/google-gemini/gemini-cli/releases.atom", KindFeed},
		{"https://medium.com/feed/google-cloud/tagged/kubernetes", KindFeed},
		{"http://feeds.feedburner.com/GoogleAppsUpdates", KindFeed},
		{"https://cloud.google.com/blog/products/ai-machine-learning", KindBlogJSON},
		{"https://medium.com/google-cloud", KindBlogHeadless},
		{"https://developers.googleblog.com/", KindDocDevBlog},
		{"https://firebase.google.com/support/release-notes/android", KindDocFirebase},
		{"https://cloud.google.com/sdk/docs/release-notes", KindDocStructured},
		{"https://developers.google.com/apps-script/releases", KindDocStructured},
		{"https://example.com/changelog", KindDocGeneric},
	}
	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			assert.Equal(t, tc.want, Detect(tc.url))
		})
	}
}

func TestDetectOrdering(t *testing.T) {
	// Feed markers beat the blog substring rules: a medium feed URL must
	// not be classified as a headless blog.
	assert.Equal(t, KindFeed, Detect("https://medium.com/feed/google-cloud"))
	// cloud.google.com/feeds beats the generic cloud.google.com doc rule.
	assert.Equal(t, KindFeed, Detect("https://cloud.google.com/feeds/x.xml"))
}

func TestLookup(t *testing.T) {
	src, ok := Lookup("vertex-ai")
	require.True(t, ok)
	assert.Equal(t, KindFeed, src.Kind)
	assert.NotEmpty(t, src.FallbackURL)
	assert.False(t, src.TitleOnly)

	src, ok = Lookup("workspace-blog")
	require.True(t, ok)
	assert.True(t, src.TitleOnly, "feedburner feeds carry whole articles")

	_, ok = Lookup("no-such-service")
	assert.False(t, ok)
}

func TestGroups(t *testing.T) {
	groups := Groups()
	assert.Contains(t, groups, "ai")
	assert.Contains(t, groups, "gke")

	// Every group member must resolve.
	for _, name := range groups {
		sources, ok := Group(name)
		require.True(t, ok)
		assert.Len(t, sources, len(GroupMembers(name)), "group %s", name)
	}

	_, ok := Group("no-such-group")
	assert.False(t, ok)
}

func TestGroupOf(t *testing.T) {
	assert.Equal(t, "gke", GroupOf("gke-rapid"))
	assert.Equal(t, "", GroupOf("no-such-service"))
}

func TestEveryServiceHasAGroup(t *testing.T) {
	for _, id := range Services() {
		assert.NotEmpty(t, GroupOf(id), "service %s is not in any group", id)
	}
}

func TestBlogs(t *testing.T) {
	blogs := Blogs()
	require.NotEmpty(t, blogs)
	for _, b := range blogs {
		assert.NotEmpty(t, b.ID)
		assert.NotEmpty(t, b.PrimaryURL)
		assert.NotEqual(t, Kind(""), b.Kind)
	}
}

func TestFromURL(t *testing.T) {
	src := FromURL("custom", "https://medium.com/feed/google-cloud/tagged/serverless")
	assert.Equal(t, KindFeed, src.Kind)
	assert.True(t, src.TitleOnly)
}
