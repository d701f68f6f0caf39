package naver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/newsvec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNaver struct {
	mu       sync.Mutex
	pages    map[string]string
	status   map[string]int
	likes    string
	comments string
	agents   []string
	referers []string
}

func (f *fakeNaver) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mnews/article/138/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.agents = append(f.agents, r.Header.Get("User-Agent"))
		f.mu.Unlock()
		id := strings.TrimPrefix(r.URL.Path, "/mnews/article/138/")
		if status, ok := f.status[id]; ok {
			w.WriteHeader(status)
			return
		}
		html, ok := f.pages[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, html)
	})
	mux.HandleFunc("/likes", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "NEWS[ne_138_0002179100]" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, f.likes)
	})
	mux.HandleFunc("/comments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.referers = append(f.referers, r.Header.Get("Referer"))
		f.mu.Unlock()
		if r.URL.Query().Get("objectId") != "news138,0002179100" {
			http.Error(w, "bad object", http.StatusBadRequest)
			return
		}
		if f.comments == "" {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, f.comments)
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeNaver) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	client, err := NewClient(NewConfig(WithBaseURLs(srv.URL+"/mnews/article", srv.URL+"/likes", srv.URL+"/comments")))
	require.NoError(t, err)
	return client, srv
}

func TestFetch_FullArticle(t *testing.T) {
	f := &fakeNaver{
		pages:    map[string]string{"0002179100": articleHTML},
		likes:    `({"contents":[{"reactions":[{"count":5}]}]})`,
		comments: `_cb({"result":{"count":{"comment":12}}});`,
	}
	client, srv := newTestClient(t, f)

	record, err := client.Fetch(context.Background(), core.ArticleID(2179100, core.DefaultIDWidth))
	require.NoError(t, err)

	assert.Equal(t, "반도체 수출, 3개월 만에 반등", record.Title)
	assert.Equal(t, "홍길동 기자", record.Author)
	assert.Equal(t, srv.URL+"/mnews/article/138/0002179100", record.SourceURL)
	assert.Equal(t, 5, record.LikeCount)
	require.NotNil(t, record.CommentCount)
	assert.Equal(t, 12, *record.CommentCount)
	require.NotNil(t, record.PublishedAt)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []string{DefaultUserAgent}, f.agents)
	assert.Equal(t, []string{record.SourceURL}, f.referers)
}

func TestFetch_CountsUnavailable(t *testing.T) {
	f := &fakeNaver{
		pages: map[string]string{"0002179100": articleHTML},
		likes: `<html>blocked</html>`,
	}
	client, _ := newTestClient(t, f)

	record, err := client.Fetch(context.Background(), "0002179100")
	require.NoError(t, err)
	assert.Equal(t, 0, record.LikeCount)
	assert.Nil(t, record.CommentCount)
}

func TestFetch_NegativeCountsStillValid(t *testing.T) {
	f := &fakeNaver{
		pages:    map[string]string{"0002179100": articleHTML},
		likes:    `({"contents":[{"reactions":[{"count":-2}]}]})`,
		comments: `_cb({"result":{"count":{"comment":-5}}});`,
	}
	client, _ := newTestClient(t, f)

	record, err := client.Fetch(context.Background(), "0002179100")
	require.NoError(t, err)
	assert.Equal(t, 0, record.LikeCount)
	assert.Nil(t, record.CommentCount)
	assert.NoError(t, core.ValidateArticleRecord(record))
}

func TestFetch_NotFound(t *testing.T) {
	f := &fakeNaver{
		pages: map[string]string{"0002179101": `<html><body><p>삭제된 기사입니다</p></body></html>`},
	}
	client, _ := newTestClient(t, f)

	_, err := client.Fetch(context.Background(), "0002179999")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = client.Fetch(context.Background(), "0002179101")
	assert.ErrorIs(t, err, core.ErrNotFound, "a page with no title or body is a missing article")
	assert.Equal(t, core.ClassNotFound, core.ErrorClass(err))
}

func TestFetch_TransportError(t *testing.T) {
	f := &fakeNaver{status: map[string]int{"0002179100": http.StatusTooManyRequests}}
	client, _ := newTestClient(t, f)

	_, err := client.Fetch(context.Background(), "0002179100")
	var terr *core.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusTooManyRequests, terr.Status)
	assert.Equal(t, core.ClassTransientUpstream, core.ErrorClass(err))
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewClient(NewConfig(WithBaseURLs(srv.URL, srv.URL, srv.URL)))
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "0002179100")
	var terr *core.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 0, terr.Status)
	assert.ErrorIs(t, err, core.ErrTransientUpstream)
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(NewConfig(WithOfficeID("")))
	assert.Error(t, err)

	client, err := NewClient(nil)
	require.NoError(t, err)
	assert.Equal(t, "https://n.news.naver.com/mnews/article/138/0002179100", client.ArticleURL("0002179100"))
}
