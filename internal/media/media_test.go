package media

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/muratoffalex/manobot/internal/pending"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var videoProfile = VideoProfile(config.MediaProfile{
	Format:       "mp4",
	QualityField: "videoQuality",
	Qualities:    []string{"360", "240", "144"},
})

func sixResults() []Result {
	results := make([]Result, 0, 6)
	for _, title := range []string{"Despacito", "Despacito Remix", "Despacito Live", "Despacito Lyrics", "Despacito Cover", "Despacito 8D"} {
		results = append(results, Result{
			ID:       strings.ReplaceAll(title, " ", ""),
			Title:    title,
			URL:      "https://www.youtube.com/watch?v=" + strings.ReplaceAll(title, " ", ""),
			Author:   "Luis Fonsi",
			Duration: 4*time.Minute + 42*time.Second,
			Views:    8_300_000_000,
		})
	}
	return results
}

func TestResultTimestamp(t *testing.T) {
	assert.Equal(t, "4:42", Result{Duration: 4*time.Minute + 42*time.Second}.Timestamp())
	assert.Equal(t, "1:02:03", Result{Duration: time.Hour + 2*time.Minute + 3*time.Second}.Timestamp())
	assert.Equal(t, "", Result{}.Timestamp())
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1.2K", FormatCount(1234))
	assert.Equal(t, "560K", FormatCount(560_000))
	assert.Equal(t, "5.6M", FormatCount(5_600_000))
	assert.Equal(t, "8.3B", FormatCount(8_300_000_000))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_video__1_.mp4", SanitizeFilename("my video (1).mp4", "mp4"))
	generated := SanitizeFilename("", "mp3")
	assert.True(t, strings.HasSuffix(generated, ".mp3"))
	assert.Regexp(t, `^[a-zA-Z0-9._-]+$`, generated)
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Search", DisplayTitle("", "Search"))
	assert.Equal(t, "Search", DisplayTitle("YouTube Video", "Search"))
	assert.Equal(t, "Search", DisplayTitle("Unknown Title", "Search"))
	assert.Equal(t, "Real", DisplayTitle("Real", "Search"))
}

func TestParseSelection(t *testing.T) {
	index, err := ParseSelection(" 3 ", 6)
	require.NoError(t, err)
	assert.Equal(t, 3, index)

	for _, body := range []string{"0", "7", "9", "abc", "", "-1"} {
		_, err := ParseSelection(body, 6)
		assert.ErrorIs(t, err, ErrInvalidSelection, body)
	}
}

func TestProviderResolver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://youtu.be/x", body["link"])
		assert.Equal(t, "mp4", body["format"])

		if body["videoQuality"] == "144" {
			_, _ = w.Write([]byte(`{"success":false,"message":"unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"downloadUrl":"https://cdn/x.mp4","title":"X","filename":"x.mp4"}}`))
	}))
	defer server.Close()

	resolver := NewProviderResolver(server.URL, "key", server.Client(), logger.Nop())

	link, err := resolver.Resolve(context.Background(), "https://youtu.be/x", videoProfile, "360")
	require.NoError(t, err)
	assert.Equal(t, Link{URL: "https://cdn/x.mp4", Title: "X", Filename: "x.mp4", Quality: "360", Size: -1}, link)

	_, err = resolver.Resolve(context.Background(), "https://youtu.be/x", videoProfile, "144")
	assert.Error(t, err)

	_, err = NewProviderResolver(server.URL, "", server.Client(), logger.Nop()).
		Resolve(context.Background(), "https://youtu.be/x", videoProfile, "360")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolveTiers(t *testing.T) {
	ctx := context.Background()
	const maxSize = 40 << 20

	t.Run("skips oversized tier", func(t *testing.T) {
		resolver := &mockResolver{}
		prober := &mockProber{}
		resolver.On("Resolve", ctx, "src", videoProfile, "360").Return(Link{URL: "u360", Quality: "360"}, nil)
		resolver.On("Resolve", ctx, "src", videoProfile, "240").Return(Link{URL: "u240", Quality: "240"}, nil)
		prober.On("Size", ctx, "u360").Return(int64(maxSize+1), nil)
		prober.On("Size", ctx, "u240").Return(int64(10<<20), nil)

		link, err := ResolveTiers(ctx, resolver, prober, "src", videoProfile, maxSize, logger.Nop())
		require.NoError(t, err)
		assert.Equal(t, "240", link.Quality)
		assert.EqualValues(t, 10<<20, link.Size)
		resolver.AssertNotCalled(t, "Resolve", ctx, "src", videoProfile, "144")
	})

	t.Run("size check error accepts tier", func(t *testing.T) {
		resolver := &mockResolver{}
		prober := &mockProber{}
		resolver.On("Resolve", ctx, "src", videoProfile, "360").Return(Link{URL: "u360", Quality: "360"}, nil)
		prober.On("Size", ctx, "u360").Return(int64(-1), errors.New("head refused"))

		link, err := ResolveTiers(ctx, resolver, prober, "src", videoProfile, maxSize, logger.Nop())
		require.NoError(t, err)
		assert.Equal(t, "360", link.Quality)
	})

	t.Run("all tiers fail", func(t *testing.T) {
		resolver := &mockResolver{}
		prober := &mockProber{}
		resolver.On("Resolve", ctx, "src", videoProfile, "360").Return(Link{URL: "u360", Quality: "360"}, nil)
		resolver.On("Resolve", ctx, "src", videoProfile, "240").Return(Link{}, errors.New("api down"))
		resolver.On("Resolve", ctx, "src", videoProfile, "144").Return(Link{URL: "u144", Quality: "144"}, nil)
		prober.On("Size", ctx, "u360").Return(int64(maxSize*2), nil)
		prober.On("Size", ctx, "u144").Return(int64(maxSize+1), nil)

		_, err := ResolveTiers(ctx, resolver, prober, "src", videoProfile, maxSize, logger.Nop())
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, ErrTooLarge)
		assert.Contains(t, err.Error(), "api down")
	})

	t.Run("missing key stops immediately", func(t *testing.T) {
		resolver := &mockResolver{}
		resolver.On("Resolve", ctx, "src", videoProfile, "360").Return(Link{}, ErrNotConfigured).Once()

		_, err := ResolveTiers(ctx, resolver, &mockProber{}, "src", videoProfile, maxSize, logger.Nop())
		assert.ErrorIs(t, err, ErrNotConfigured)
		resolver.AssertNumberOfCalls(t, "Resolve", 1)
	})
}

func fileServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDownloader(t *testing.T) {
	ctx := context.Background()

	t.Run("writes file", func(t *testing.T) {
		server := fileServer(t, []byte("video-bytes"))
		dir := t.TempDir()
		path, err := NewDownloader(server.Client(), dir, 1024).Download(ctx, Link{URL: server.URL, Filename: "a b.mp4"}, "mp4")
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(path))
		assert.True(t, strings.HasSuffix(path, "-a_b.mp4"), path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "video-bytes", string(data))
	})

	t.Run("empty file is removed", func(t *testing.T) {
		server := fileServer(t, nil)
		dir := t.TempDir()
		_, err := NewDownloader(server.Client(), dir, 1024).Download(ctx, Link{URL: server.URL, Filename: "empty.mp4"}, "mp4")
		assert.ErrorIs(t, err, ErrEmptyFile)
		assertEmptyDir(t, dir)
	})

	t.Run("oversized file is removed", func(t *testing.T) {
		server := fileServer(t, []byte("0123456789"))
		dir := t.TempDir()
		_, err := NewDownloader(server.Client(), dir, 4).Download(ctx, Link{URL: server.URL, Filename: "big.mp4"}, "mp4")
		assert.ErrorIs(t, err, ErrTooLarge)
		assertEmptyDir(t, dir)
	})

	t.Run("same link gets separate files", func(t *testing.T) {
		server := fileServer(t, []byte("video-bytes"))
		dir := t.TempDir()
		d := NewDownloader(server.Client(), dir, 1024)
		link := Link{URL: server.URL, Filename: "Despacito.mp4"}

		first, err := d.Download(ctx, link, "mp4")
		require.NoError(t, err)
		second, err := d.Download(ctx, link, "mp4")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		require.NoError(t, os.Remove(second))
		assert.FileExists(t, first)
	})
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSenderFallsBackToSplitSend(t *testing.T) {
	client := messenger.NewMockClient(t)
	var combined, captionOnly, attachmentOnly int
	client.EXPECT().Send(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, o messenger.Outgoing) (string, error) {
		switch {
		case o.Attachment != nil && o.Text != "":
			combined++
			return "", errors.New("upload rejected")
		case o.Attachment == nil:
			captionOnly++
		default:
			attachmentOnly++
		}
		return "ok", nil
	})

	sender := NewSender(client, 3, time.Millisecond, logger.Nop())
	err := sender.Send(context.Background(), "t1", "caption", messenger.Attachment{Path: "/tmp/x.mp4", Kind: messenger.AttachmentVideo})
	require.NoError(t, err)
	assert.Equal(t, 3, combined)
	assert.Equal(t, 1, captionOnly)
	assert.Equal(t, 1, attachmentOnly)
}

func TestSenderRetriesUntilSuccess(t *testing.T) {
	client := messenger.NewMockClient(t)
	client.EXPECT().Send(mock.Anything, mock.Anything).Return("", errors.New("flaky")).Once()
	client.EXPECT().Send(mock.Anything, mock.Anything).Return("v1", nil).Once()

	sender := NewSender(client, 3, time.Millisecond, logger.Nop())
	require.NoError(t, sender.Send(context.Background(), "t1", "caption", messenger.Attachment{Path: "x"}))
}

type serviceFixture struct {
	svc       *Service
	client    *messenger.MockClient
	searcher  *mockSearcher
	resolver  *mockResolver
	replies   *pending.Correlator
	scheduler *immediateScheduler
	dir       string
}

func newServiceFixture(t *testing.T, prober Prober, httpClient *http.Client) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		client:    messenger.NewMockClient(t),
		searcher:  &mockSearcher{},
		resolver:  &mockResolver{},
		replies:   pending.NewCorrelator(),
		scheduler: &immediateScheduler{},
		dir:       t.TempDir(),
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg := config.MediaConfig{
		APIKey:        "key",
		MaxSize:       "40MiB",
		Results:       6,
		SendAttempts:  3,
		SendDelay:     time.Millisecond,
		SelectionTTL:  5 * time.Minute,
		SearchTimeout: time.Second,
		CleanupDelay:  time.Second,
	}
	svc, err := NewService(cfg, ServiceDeps{
		Searcher:   f.searcher,
		Resolver:   f.resolver,
		Prober:     prober,
		Downloader: NewDownloader(httpClient, f.dir, 40<<20),
		Client:     f.client,
		Replies:    f.replies,
		Scheduler:  f.scheduler,
		Localizer:  dataLocalizer{},
		Logger:     logger.Nop(),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func textPrefix(prefix string) any {
	return mock.MatchedBy(func(o messenger.Outgoing) bool { return strings.HasPrefix(o.Text, prefix) })
}

func TestOutOfRangeSelectionKeepsPendingList(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, &mockProber{}, nil)
	request := messenger.Event{ThreadID: "t1", SenderID: "u1", MessageID: "m1", Body: "/video despacito"}

	f.searcher.On("Search", mock.Anything, "despacito", 6).Return(sixResults(), nil)
	f.client.EXPECT().Send(mock.Anything, textPrefix("media.list.header")).Return("list-1", nil).Once()

	require.NoError(t, f.svc.Search(ctx, request, "video", "despacito", videoProfile))

	key := pending.Key("t1", "list-1")
	entry, ok := f.replies.Resolve(key)
	require.True(t, ok)
	assert.Equal(t, "u1", entry.AuthorID)
	assert.Len(t, entry.Data.(Selection).Results, 6)

	f.client.EXPECT().Send(mock.Anything, textPrefix("media.invalidSelection")).Return("m3", nil).Once()
	reply := messenger.Event{ThreadID: "t1", SenderID: "u1", MessageID: "m2", Body: "9", RepliedToMessageID: "list-1"}
	require.NoError(t, f.svc.Select(ctx, reply, key, entry))

	_, ok = f.replies.Resolve(key)
	assert.True(t, ok)
	f.client.AssertNotCalled(t, "Unsend", mock.Anything, mock.Anything, mock.Anything)
	f.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchEmptyQueryAndNoResults(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, &mockProber{}, nil)
	ev := messenger.Event{ThreadID: "t1", SenderID: "u1", MessageID: "m1"}

	f.client.EXPECT().Send(mock.Anything, textPrefix("media.emptyQuery")).Return("x", nil).Once()
	require.NoError(t, f.svc.Search(ctx, ev, "video", "  ", videoProfile))

	f.searcher.On("Search", mock.Anything, "zzzz", 6).Return(nil, ErrNoResults)
	f.client.EXPECT().Send(mock.Anything, textPrefix("media.noResults")).Return("y", nil).Once()
	require.NoError(t, f.svc.Search(ctx, ev, "video", "zzzz", videoProfile))

	assert.Equal(t, 0, f.replies.Len())
}

func TestSelectDeliversVideo(t *testing.T) {
	ctx := context.Background()
	server := fileServer(t, []byte("video-bytes"))
	f := newServiceFixture(t, NewHeadProber(server.Client()), server.Client())

	results := sixResults()
	key := pending.Key("t1", "list-1")
	entry := pending.Entry{
		Command:       "video",
		AuthorID:      "u1",
		RequireAuthor: true,
		Data:          Selection{Results: results, ListMessageID: "list-1", Profile: videoProfile},
	}
	f.replies.Register(key, entry, time.Minute)

	f.resolver.On("Resolve", mock.Anything, results[1].URL, videoProfile, "360").
		Return(Link{URL: server.URL + "/file.mp4", Title: "YouTube Video", Filename: "despacito remix.mp4", Quality: "360"}, nil)

	var mu sync.Mutex
	var sent []messenger.Outgoing
	f.client.EXPECT().Send(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, o messenger.Outgoing) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, o)
		return "s" + string(rune('0'+len(sent))), nil
	})
	f.client.EXPECT().Unsend(mock.Anything, "t1", mock.Anything).Return(nil)

	reply := messenger.Event{ThreadID: "t1", SenderID: "u1", MessageID: "m2", Body: "2", RepliedToMessageID: "list-1"}
	require.NoError(t, f.svc.Select(ctx, reply, key, entry))

	_, ok := f.replies.Resolve(key)
	assert.False(t, ok)
	f.client.AssertCalled(t, "Unsend", mock.Anything, "t1", "list-1")

	require.Len(t, sent, 3)
	assert.True(t, strings.HasPrefix(sent[0].Text, "media.processing"))
	assert.True(t, strings.HasPrefix(sent[1].Text, "media.downloading"))

	video := sent[2]
	require.NotNil(t, video.Attachment)
	assert.Equal(t, messenger.AttachmentVideo, video.Attachment.Kind)
	assert.True(t, strings.HasSuffix(filepath.Base(video.Attachment.Path), "-despacito_remix.mp4"))
	assert.Contains(t, video.Text, "media.caption.title map[Title:Despacito Remix]")
	assert.Contains(t, video.Text, "media.caption.quality map[Quality:360p]")
	assert.Contains(t, video.Text, "media.caption.views map[Views:8.3B]")

	assert.Len(t, f.scheduler.jobs, 1)
	assert.NoFileExists(t, video.Attachment.Path)
}

func TestSelectReportsUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, &mockProber{}, nil)
	results := sixResults()
	entry := pending.Entry{Command: "video", AuthorID: "u1", Data: Selection{Results: results, ListMessageID: "list-1", Profile: videoProfile}}
	key := pending.Key("t1", "list-1")
	f.replies.Register(key, entry, time.Minute)

	for _, q := range videoProfile.Qualities {
		f.resolver.On("Resolve", mock.Anything, results[0].URL, videoProfile, q).Return(Link{}, errors.New("down"))
	}
	f.client.EXPECT().Unsend(mock.Anything, "t1", mock.Anything).Return(nil)
	f.client.EXPECT().Send(mock.Anything, textPrefix("media.processing")).Return("p1", nil).Once()
	f.client.EXPECT().Send(mock.Anything, textPrefix("media.unavailable")).Return("e1", nil).Once()

	reply := messenger.Event{ThreadID: "t1", SenderID: "u1", MessageID: "m2", Body: "1"}
	require.NoError(t, f.svc.Select(ctx, reply, key, entry))
	assert.Empty(t, f.scheduler.jobs)
}

func TestConcurrentSelectionsDeliverOnce(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, &mockProber{}, nil)
	results := sixResults()
	entry := pending.Entry{Command: "video", AuthorID: "u1", Data: Selection{Results: results, ListMessageID: "list-1", Profile: videoProfile}}
	key := pending.Key("t1", "list-1")
	f.replies.Register(key, entry, time.Minute)

	for _, q := range videoProfile.Qualities {
		f.resolver.On("Resolve", mock.Anything, results[0].URL, videoProfile, q).Return(Link{}, errors.New("down"))
	}
	f.client.EXPECT().Unsend(mock.Anything, "t1", mock.Anything).Return(nil)
	f.client.EXPECT().Send(mock.Anything, textPrefix("media.processing")).Return("p1", nil).Once()
	f.client.EXPECT().Send(mock.Anything, textPrefix("media.unavailable")).Return("e1", nil).Once()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply := messenger.Event{ThreadID: "t1", SenderID: "u1", MessageID: "r" + string(rune('0'+i)), Body: "1"}
			assert.NoError(t, f.svc.Select(ctx, reply, key, entry))
		}()
	}
	wg.Wait()

	f.client.AssertNumberOfCalls(t, "Send", 2)
	assert.Equal(t, 0, f.replies.Len())
}

func TestThumbnailURL(t *testing.T) {
	cover := "https://img.example/cover.jpg"
	assert.Equal(t, cover, thumbnailURL(&ytdlp.ExtractedInfo{ID: "abc", Thumbnail: &cover}))

	listed := &ytdlp.ExtractedInfo{ID: "abc", Thumbnails: []*ytdlp.ExtractedThumbnail{
		{URL: "https://img.example/small.jpg"},
		{URL: "https://img.example/large.jpg"},
		nil,
	}}
	assert.Equal(t, "https://img.example/large.jpg", thumbnailURL(listed))

	assert.Equal(t, "https://i.ytimg.com/vi/abc/hqdefault.jpg", thumbnailURL(&ytdlp.ExtractedInfo{ID: "abc"}))
}

func TestSearchAttachesThumbnails(t *testing.T) {
	ctx := context.Background()
	server := fileServer(t, []byte("jpeg-bytes"))
	f := newServiceFixture(t, &mockProber{}, server.Client())
	f.svc.cfg.Thumbnails = true
	f.svc.cfg.ThumbnailCleanupDelay = time.Minute

	results := sixResults()[:3]
	results[0].ThumbnailURL = server.URL + "/a.jpg"
	results[1].ThumbnailURL = "http://127.0.0.1:1/unreachable.jpg"
	results[2].ThumbnailURL = server.URL + "/c.jpg"
	f.searcher.On("Search", mock.Anything, "despacito", 6).Return(results, nil)

	var album []messenger.Attachment
	f.client.EXPECT().Send(mock.Anything, textPrefix("media.list.header")).RunAndReturn(func(_ context.Context, o messenger.Outgoing) (string, error) {
		album = o.Album
		for _, a := range o.Album {
			assert.Equal(t, messenger.AttachmentPhoto, a.Kind)
			assert.FileExists(t, a.Path)
		}
		return "list-1", nil
	}).Once()

	ev := messenger.Event{ThreadID: "t1", SenderID: "u1", MessageID: "m1"}
	require.NoError(t, f.svc.Search(ctx, ev, "video", "despacito", videoProfile))

	require.Len(t, album, 2)
	assert.True(t, strings.HasSuffix(album[0].Path, "-"+results[0].ID+".jpg"), album[0].Path)
	assert.True(t, strings.HasSuffix(album[1].Path, "-"+results[2].ID+".jpg"), album[1].Path)

	require.Len(t, f.scheduler.jobs, 2)
	for _, job := range f.scheduler.jobs {
		assert.True(t, strings.HasPrefix(job, "media-thumbnail-"), job)
	}
	for _, a := range album {
		assert.NoFileExists(t, a.Path)
	}
	assert.Equal(t, 1, f.replies.Len())
}

func TestSearchWithoutThumbnails(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, &mockProber{}, nil)
	results := sixResults()
	results[0].ThumbnailURL = "http://127.0.0.1:1/never.jpg"
	f.searcher.On("Search", mock.Anything, "despacito", 6).Return(results, nil)
	f.client.EXPECT().Send(mock.Anything, mock.MatchedBy(func(o messenger.Outgoing) bool { return len(o.Album) == 0 })).Return("list-1", nil).Once()

	ev := messenger.Event{ThreadID: "t1", SenderID: "u1", MessageID: "m1"}
	require.NoError(t, f.svc.Search(ctx, ev, "video", "despacito", videoProfile))
	assert.Empty(t, f.scheduler.jobs)
}
