package gallery

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gogpu/oekaki"
)

// Option configures gallery stores, clients and servers.
// Options that do not apply to a type are ignored by it.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	remote     Remote
	baseURL    string
	limit      int
	feed       *Feed
	now        func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		limit: DefaultGalleryLimit,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// log returns the configured logger, or the package-wide oekaki logger.
func (o *options) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return oekaki.Logger()
}

// WithHTTPClient sets the HTTP client used by Client.
// Default: a client with a 30 second timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithLogger sets the logger. Default: oekaki.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRemote makes Hybrid save to r after the local store and read from it.
func WithRemote(r Remote) Option {
	return func(o *options) {
		o.remote = r
	}
}

// WithBaseURL sets the public URL prefix of the objects a Server stores.
// Without it the Server derives the prefix from each request's Host.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithGalleryLimit sets how many drawings Server lists on /gallery.
// Values below 1 keep the default of 30.
func WithGalleryLimit(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.limit = n
		}
	}
}

// WithFeed makes a Server publish saved drawings to f and serve it on
// /gallery/live. Default: a new Feed per Server.
func WithFeed(f *Feed) Option {
	return func(o *options) {
		o.feed = f
	}
}
