package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"

	"github.com/LJTian/DailyRelay/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	Method string
	Path   string
	Auth   string
	UA     string
	Body   createIssueRequest
}

func newGitHub(t *testing.T, status int, resp string) (*httptest.Server, chan captured) {
	t.Helper()
	ch := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			UA:     r.Header.Get("User-Agent"),
		}
		_ = json.NewDecoder(r.Body).Decode(&c.Body)
		ch <- c
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func TestTruncateTitle(t *testing.T) {
	short := "知乎日报 2024-01-01"
	assert.Equal(t, short, TruncateTitle(short))

	exact := strings.Repeat("a", 100)
	assert.Equal(t, exact, TruncateTitle(exact))

	long := strings.Repeat("a", 101)
	got := TruncateTitle(long)
	assert.Len(t, got, 100)
	assert.Equal(t, strings.Repeat("a", 97)+"...", got)

	// 按字符而不是字节计算
	cjk := strings.Repeat("知", 150)
	gotCJK := TruncateTitle(cjk)
	assert.Equal(t, 100, len([]rune(gotCJK)))
	assert.True(t, strings.HasSuffix(gotCJK, "..."))
}

func TestPublishCreatesIssue(t *testing.T) {
	srv, ch := newGitHub(t, http.StatusCreated, `{"number": 42, "html_url": "https://github.com/o/r/issues/42"}`)

	p := NewGitHubPublisher(srv.URL, "ghp_test", nil)
	res, err := p.Publish(context.Background(), Issue{Owner: "o", Repo: "r", Title: "知乎日报 2024-01-01", Body: "# body"})
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/o/r/issues/42", res.URL)
	assert.Equal(t, 42, res.Number)
	assert.Equal(t, float64(42), res.Raw["number"])

	c := <-ch
	assert.Equal(t, http.MethodPost, c.Method)
	assert.Equal(t, "/repos/o/r/issues", c.Path)
	assert.Equal(t, "Bearer ghp_test", c.Auth)
	assert.Equal(t, DefaultUserAgent, c.UA)
	assert.Equal(t, "知乎日报 2024-01-01", c.Body.Title)
	assert.Equal(t, "# body", c.Body.Body)
	assert.Equal(t, []string{"documentation"}, c.Body.Labels)
}

func TestPublishTruncatesLongTitleAndUsesConfiguredLabels(t *testing.T) {
	srv, ch := newGitHub(t, http.StatusCreated, `{"html_url": "u"}`)

	p := NewGitHubPublisher(srv.URL+"/", "tok", []string{"daily", "zhihu"})
	_, err := p.Publish(context.Background(), Issue{Owner: "o", Repo: "r", Title: strings.Repeat("x", 150)})
	require.NoError(t, err)

	c := <-ch
	assert.Equal(t, "/repos/o/r/issues", c.Path)
	assert.Len(t, c.Body.Title, 100)
	assert.Equal(t, []string{"daily", "zhihu"}, c.Body.Labels)
}

func TestPublishMissingTokenMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	for _, tok := range []string{"", "   "} {
		p := NewGitHubPublisher(srv.URL, tok, nil)
		_, err := p.Publish(context.Background(), Issue{Owner: "o", Repo: "r", Title: "t"})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindConfig))
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestPublishNon2xxCarriesStatusAndBody(t *testing.T) {
	srv, _ := newGitHub(t, http.StatusUnprocessableEntity, `{"message":"Validation Failed"}`)

	_, err := NewGitHubPublisher(srv.URL, "tok", nil).Publish(context.Background(), Issue{Owner: "o", Repo: "r", Title: "t"})

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindPublish, e.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, e.StatusCode)
	assert.Equal(t, `{"message":"Validation Failed"}`, e.Body)
	assert.Contains(t, err.Error(), "Validation Failed")
}

func TestPublishTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := NewGitHubPublisher(base, "tok", nil).Publish(context.Background(), Issue{Owner: "o", Repo: "r", Title: "t"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPublish))
}

func TestPublishUndecodableBody(t *testing.T) {
	srv, _ := newGitHub(t, http.StatusCreated, `not json`)

	_, err := NewGitHubPublisher(srv.URL, "tok", nil).Publish(context.Background(), Issue{Owner: "o", Repo: "r", Title: "t"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindPublish))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestPublishErrorBodyReadFailureIsReported(t *testing.T) {
	reset := errors.New("connection reset by peer")
	p := NewGitHubPublisher("https://api.github.test", "tok", nil)
	p.Client = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Header:     http.Header{},
			Body:       io.NopCloser(io.MultiReader(strings.NewReader(`{"mess`), iotest.ErrReader(reset))),
			Request:    r,
		}, nil
	})}

	_, err := p.Publish(context.Background(), Issue{Owner: "o", Repo: "r", Title: "t"})

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, http.StatusBadGateway, e.StatusCode)
	assert.Equal(t, `{"mess`, e.Body)
	assert.ErrorIs(t, err, reset)
	assert.Contains(t, err.Error(), "read response body")
}
