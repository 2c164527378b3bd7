package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const volumeFixture = `{
	"items": [
		{
			"volumeInfo": {
				"title": "O Hobbit",
				"authors": ["J.R.R. Tolkien", "Tradutor Fulano"],
				"categories": ["Fiction", "Fantasy"],
				"publisher": "HarperCollins Brasil",
				"publishedDate": "2019-05-01",
				"pageCount": 336,
				"imageLinks": {"thumbnail": "http://books.google.com/thumb?id=abc"},
				"language": "pt-BR"
			}
		}
	]
}`

func TestLookupISBN_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isbn:9788595084742", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(volumeFixture))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	preview, found, err := client.LookupISBN(context.Background(), "9788595084742")
	require.NoError(t, err)
	assert.True(t, found)

	assert.Equal(t, "9788595084742", preview.ISBN)
	assert.Equal(t, "O Hobbit", preview.Title)
	assert.Equal(t, "J.R.R. Tolkien, Tradutor Fulano", preview.Authors)
	require.NotNil(t, preview.Genre)
	assert.Equal(t, "Fiction", *preview.Genre)
	require.NotNil(t, preview.Publisher)
	assert.Equal(t, "HarperCollins Brasil", *preview.Publisher)
	require.NotNil(t, preview.PublicationYear)
	assert.Equal(t, 2019, *preview.PublicationYear)
	require.NotNil(t, preview.PageCount)
	assert.Equal(t, 336, *preview.PageCount)
	require.NotNil(t, preview.CoverURL)
	assert.Equal(t, "http://books.google.com/thumb?id=abc", *preview.CoverURL)
	assert.Equal(t, "pt", preview.Language)
	assert.Nil(t, preview.OwnerID)
}

func TestLookupISBN_SparseVolume(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"volumeInfo":{"title":"Obscuro","publishedDate":"19??"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	preview, found, err := client.LookupISBN(context.Background(), "000")
	require.NoError(t, err)
	assert.True(t, found)

	assert.Equal(t, "Obscuro", preview.Title)
	assert.Equal(t, unknownAuthors, preview.Authors)
	require.NotNil(t, preview.Genre)
	assert.Equal(t, unknownGenre, *preview.Genre)
	require.NotNil(t, preview.Publisher)
	assert.Equal(t, unknownPublisher, *preview.Publisher)
	assert.Nil(t, preview.PublicationYear, "non-numeric year prefix yields no year")
	assert.Nil(t, preview.PageCount)
	assert.Nil(t, preview.CoverURL)
	assert.Equal(t, defaultLanguage, preview.Language)
}

func TestLookupISBN_NoMatchIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	preview, found, err := client.LookupISBN(context.Background(), "0000000000")
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, "0000000000", preview.ISBN)
	assert.Equal(t, unknownTitle, preview.Title)
	assert.Equal(t, unknownAuthors, preview.Authors)
	assert.Nil(t, preview.Genre)
	assert.Nil(t, preview.Publisher)
	assert.Equal(t, defaultLanguage, preview.Language)
}

func TestLookupISBN_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, _, err := client.LookupISBN(context.Background(), "123")
	assert.Error(t, err)
}

func TestLookupISBN_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	_, _, err := client.LookupISBN(context.Background(), "123")
	assert.Error(t, err)
}

func TestParseYear(t *testing.T) {
	cases := []struct {
		in   string
		want *int
	}{
		{"2019-05-01", intPtr(2019)},
		{"1899", intPtr(1899)},
		{"19??", nil},
		{"", nil},
		{"ab", nil},
	}
	for _, tc := range cases {
		got := parseYear(tc.in)
		if tc.want == nil {
			assert.Nil(t, got, "input %q", tc.in)
		} else {
			require.NotNil(t, got, "input %q", tc.in)
			assert.Equal(t, *tc.want, *got)
		}
	}
}

func intPtr(v int) *int { return &v }
