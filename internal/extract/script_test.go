package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/fetch"
)

// scriptStubClient serves the bundle body for any URL.
type scriptStubClient struct {
	body    []byte
	lastURL string
}

func (s *scriptStubClient) Fetch(_ context.Context, url string) (*fetch.Response, error) {
	s.lastURL = url
	return &fetch.Response{URL: url, StatusCode: 200, Body: s.body}, nil
}

const scriptPage = `<html><head><script src="main-A1b2C3.js"></script></head><body></body></html>`

const richBundle = `var x=1;var page={title:"Google Antigravity Changelog",sections:[{version:"1.5.0<br>Dec 10, 2025",description:"Agent workflows got a major upgrade",accordion:{changes:"Highlights below",items:[{title:"Improvements",accordion_items:[{text:"Faster startup"},{text:"Better tab completion"}]},{title:"Fixes",accordion_items:[{text:"Crash on empty workspace"}]}]}}]};var y=2`

func TestScriptExtractorRich(t *testing.T) {
	stub := &scriptStubClient{body: []byte(richBundle)}
	e := NewScriptExtractor(stub, testNormalizer(), zap.NewNop())

	groups, err := e.Extract(context.Background(), []byte(scriptPage), "https://antigravity.google/changelog")
	require.NoError(t, err)
	assert.Equal(t, "https://antigravity.google/main-A1b2C3.js", stub.lastURL)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC), g.Date.Time)
	require.Len(t, g.Fragments, 5)

	assert.Equal(t, "1.5.0: Agent workflows got a major upgrade", g.Fragments[0].Text)
	assert.Equal(t, "Highlights below", g.Fragments[1].Text)
	assert.Equal(t, "[Improvements] Faster startup", g.Fragments[2].Text)
	assert.Equal(t, "accordion:improvements", g.Fragments[2].Hint)
	assert.Equal(t, "[Fixes] Crash on empty workspace", g.Fragments[4].Text)
	assert.Equal(t, "accordion:fixes", g.Fragments[4].Hint)
}

const simpleBundle = `var page={title:"Google Antigravity Changelog",sections:[{version:"1.4.2<br>Nov 20, 2025",description:"Stability improvements across the board"}]}`

func TestScriptExtractorSimple(t *testing.T) {
	stub := &scriptStubClient{body: []byte(simpleBundle)}
	e := NewScriptExtractor(stub, testNormalizer(), zap.NewNop())

	groups, err := e.Extract(context.Background(), []byte(scriptPage), "https://antigravity.google/changelog")
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC), g.Date.Time)
	require.Len(t, g.Fragments, 1)
	assert.Equal(t, "1.4.2: Stability improvements across the board", g.Fragments[0].Text)
}

func TestScriptExtractorVersionScan(t *testing.T) {
	bundle := `noise "1.3.0<br>Oct 5, 2025" noise Google Antigravity Changelog noise`
	stub := &scriptStubClient{body: []byte(bundle)}
	e := NewScriptExtractor(stub, testNormalizer(), zap.NewNop())

	groups, err := e.Extract(context.Background(), []byte(scriptPage), "https://antigravity.google/changelog")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC), groups[0].Date.Time)
	assert.Equal(t, "Version 1.3.0", groups[0].Fragments[0].Text)
}

func TestScriptExtractorNoMatch(t *testing.T) {
	tests := []struct {
		name string
		page string
		body string
	}{
		{"no bundle reference", `<html><body>static page</body></html>`, ""},
		{"bundle without changelog", scriptPage, `var unrelated={sections:[1,2,3]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &scriptStubClient{body: []byte(tc.body)}
			e := NewScriptExtractor(stub, testNormalizer(), zap.NewNop())

			groups, err := e.Extract(context.Background(), []byte(tc.page), "https://antigravity.google/changelog")
			require.NoError(t, err)
			assert.Empty(t, groups)
		})
	}
}

func TestBalancedArray(t *testing.T) {
	assert.Equal(t, "[a,[b,c],d]", balancedArray("[a,[b,c],d] trailing"))
	assert.Equal(t, "", balancedArray("not an array"))
	assert.Equal(t, "", balancedArray("[unterminated"))
}
