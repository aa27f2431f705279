package linkedin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmpath/scout-cli/internal/core/ports/driven"
)

func newSearchServer(t *testing.T, feedStatus int, searchHTML string) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed/":
			w.WriteHeader(feedStatus)
		case "/search/results/people/":
			assert.Contains(t, r.Header.Get("Cookie"), "li_at=")
			queries = append(queries, r.URL.Query().Get("keywords"))
			_, _ = w.Write([]byte(searchHTML))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)
	return server, &queries
}

func TestProvider_NotConfigured(t *testing.T) {
	provider := New(Options{})
	assert.False(t, provider.IsConfigured())

	results, err := provider.Search(context.Background(), driven.SearchInput{TargetCompany: "Acme", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProvider_SearchParsesResults(t *testing.T) {
	server, queries := newSearchServer(t, http.StatusOK, sampleSearchHTML)
	provider := New(Options{Cookie: "cookie", BaseURL: server.URL, Pacer: NewPacer(0)})

	results, err := provider.Search(context.Background(), driven.SearchInput{
		TargetCompany:  "Acme",
		TargetFunction: "product",
		TargetTitle:    "Senior Product Manager",
		Limit:          10,
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Taylor Candidate", results[0].FullName)

	// Both query candidates ran: full phrase, then company alone.
	require.Len(t, *queries, 2)
	assert.Equal(t, "Acme product Senior Product Manager", (*queries)[0])
	assert.Equal(t, "Acme", (*queries)[1])
}

func TestProvider_StopsWhenLimitReached(t *testing.T) {
	server, queries := newSearchServer(t, http.StatusOK, sampleSearchHTML)
	provider := New(Options{Cookie: "cookie", BaseURL: server.URL, Pacer: NewPacer(0)})

	results, err := provider.Search(context.Background(), driven.SearchInput{
		TargetCompany:  "Acme",
		TargetFunction: "product",
		Limit:          2,
	})
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Len(t, *queries, 1, "the second query must not run once the limit is met")
}

func TestProvider_InvalidSessionReturnsEmpty(t *testing.T) {
	// A redirect from the feed endpoint means the cookie is stale.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/feed/", r.URL.Path)
		w.Header().Set("Location", "/login")
		w.WriteHeader(http.StatusSeeOther)
	}))
	t.Cleanup(server.Close)

	provider := New(Options{Cookie: "stale", BaseURL: server.URL, Pacer: NewPacer(0)})
	results, err := provider.Search(context.Background(), driven.SearchInput{TargetCompany: "Acme", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProvider_EmptyPageYieldsNoResults(t *testing.T) {
	server, _ := newSearchServer(t, http.StatusOK, "")
	provider := New(Options{Cookie: "cookie", BaseURL: server.URL, Pacer: NewPacer(0)})

	results, err := provider.Search(context.Background(), driven.SearchInput{TargetCompany: "Acme", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProvider_DedupesAcrossQueries(t *testing.T) {
	// Both queries return the same two people; they must appear once.
	server, queries := newSearchServer(t, http.StatusOK, sampleSearchHTML)
	provider := New(Options{Cookie: "cookie", BaseURL: server.URL, Pacer: NewPacer(0)})

	results, err := provider.Search(context.Background(), driven.SearchInput{
		TargetCompany:  "Acme",
		TargetFunction: "product",
		Limit:          10,
	})
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Len(t, *queries, 2)
}

func TestBuildQueryCandidates(t *testing.T) {
	tests := []struct {
		name  string
		input driven.SearchInput
		want  []string
	}{
		{
			name:  "all fields",
			input: driven.SearchInput{TargetCompany: "Acme", TargetFunction: "product", TargetTitle: "PM"},
			want:  []string{"Acme product PM", "Acme"},
		},
		{
			name:  "company only collapses to one",
			input: driven.SearchInput{TargetCompany: "Acme"},
			want:  []string{"Acme"},
		},
		{
			name:  "whitespace trimmed",
			input: driven.SearchInput{TargetCompany: "  Acme  ", TargetFunction: "  "},
			want:  []string{"Acme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildQueryCandidates(tt.input))
		})
	}
}

func TestPacer_NilAndDisabled(t *testing.T) {
	var p *Pacer
	require.NoError(t, p.Wait(context.Background()))
	require.NoError(t, NewPacer(0).Wait(context.Background()))
}
