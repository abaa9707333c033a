package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticFetcher struct {
	page  Page
	err   error
	calls int
}

func (s *staticFetcher) Fetch(context.Context, string) (Page, error) {
	s.calls++
	return s.page, s.err
}

type stubRenderer struct {
	page   Page
	err    error
	calls  int
	closed bool
}

func (s *stubRenderer) Render(context.Context, string) (Page, error) {
	s.calls++
	return s.page, s.err
}

func (s *stubRenderer) Close(context.Context) error {
	s.closed = true
	return nil
}

type stubDetector struct {
	needsJS bool
}

func (s *stubDetector) NeedsJS(context.Context, Page) bool { return s.needsJS }

func TestClientFetchPageStaticSufficient(t *testing.T) {
	fetcher := &staticFetcher{page: Page{Body: []byte("static")}}
	renderer := &stubRenderer{page: Page{Body: []byte("rendered"), Rendered: true}}
	client := NewClientWith(fetcher, renderer, &stubDetector{needsJS: false}, zap.NewNop())

	page, err := client.FetchPage(context.Background(), "https://example.gov/")
	require.NoError(t, err)
	require.Equal(t, []byte("static"), page.Body)
	require.Zero(t, renderer.calls)
}

func TestClientFetchPageEscalatesToRenderer(t *testing.T) {
	fetcher := &staticFetcher{page: Page{Body: []byte("static")}}
	renderer := &stubRenderer{page: Page{Body: []byte("rendered"), Rendered: true}}
	client := NewClientWith(fetcher, renderer, &stubDetector{needsJS: true}, zap.NewNop())

	page, err := client.FetchPage(context.Background(), "https://example.gov/")
	require.NoError(t, err)
	require.True(t, page.Rendered)
	require.Equal(t, []byte("rendered"), page.Body)
	require.Equal(t, 1, renderer.calls)
}

func TestClientFetchPageRenderFailureFallsBack(t *testing.T) {
	fetcher := &staticFetcher{page: Page{Body: []byte("static")}}
	renderer := &stubRenderer{err: errors.New("browser crashed")}
	client := NewClientWith(fetcher, renderer, &stubDetector{needsJS: true}, zap.NewNop())

	page, err := client.FetchPage(context.Background(), "https://example.gov/")
	require.NoError(t, err)
	require.Equal(t, []byte("static"), page.Body)
	require.False(t, page.Rendered)
}

func TestClientFetchPageWithoutRenderer(t *testing.T) {
	fetcher := &staticFetcher{page: Page{Body: []byte("static")}}
	client := NewClientWith(fetcher, nil, nil, zap.NewNop())

	page, err := client.FetchPage(context.Background(), "https://example.gov/")
	require.NoError(t, err)
	require.Equal(t, []byte("static"), page.Body)
}

func TestClientFetchPageStaticFailureDoesNotRender(t *testing.T) {
	fetcher := &staticFetcher{err: errors.New("status 500")}
	renderer := &stubRenderer{page: Page{Rendered: true}}
	client := NewClientWith(fetcher, renderer, &stubDetector{needsJS: true}, zap.NewNop())

	_, err := client.FetchPage(context.Background(), "https://example.gov/")
	require.Error(t, err)
	require.Zero(t, renderer.calls)
}

func TestClientFetchBypassesDetector(t *testing.T) {
	fetcher := &staticFetcher{page: Page{Body: []byte("%PDF-1.4")}}
	renderer := &stubRenderer{}
	client := NewClientWith(fetcher, renderer, &stubDetector{needsJS: true}, zap.NewNop())

	page, err := client.Fetch(context.Background(), "https://example.gov/doc.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4"), page.Body)
	require.Zero(t, renderer.calls)
}

func TestClientCloseReleasesRenderer(t *testing.T) {
	renderer := &stubRenderer{}
	client := NewClientWith(&staticFetcher{}, renderer, &stubDetector{}, zap.NewNop())

	require.NoError(t, client.Close(context.Background()))
	require.True(t, renderer.closed)

	bare := NewClientWith(&staticFetcher{}, nil, nil, zap.NewNop())
	require.NoError(t, bare.Close(context.Background()))
}
