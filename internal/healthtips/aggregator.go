package healthtips

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/evansachie/lifeguard/internal/metrics"
)

const (
	// MaxTopics is how many topics are expanded into tips.
	MaxTopics = 21
	// DefaultCacheTTL is how long an aggregate payload is cached.
	DefaultCacheTTL = time.Hour
	// fetchConcurrency bounds concurrent topic detail requests.
	fetchConcurrency = 6

	aggregateKey = "aggregate"
)

// Cache stores the aggregated payload. Implemented by cache.Cache.
type Cache interface {
	GetHealthTips(ctx context.Context, name string) ([]byte, bool, error)
	SetHealthTips(ctx context.Context, name string, payload []byte, ttl time.Duration) error
}

// upstream is the subset of Client the aggregator needs.
type upstream interface {
	ItemList(ctx context.Context) ([]byte, error)
	TopicDetail(ctx context.Context, id string) (gjson.Result, error)
}

// Aggregator builds the health tips page from MyHealthfinder.
type Aggregator struct {
	client  upstream
	cache   Cache
	ttl     time.Duration
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewAggregator creates an aggregator. cache may be nil.
func NewAggregator(client upstream, cache Cache, ttl time.Duration, logger *slog.Logger, recorder metrics.Recorder) *Aggregator {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Aggregator{
		client:  client,
		cache:   cache,
		ttl:     ttl,
		logger:  logger.With("component", "healthtips"),
		metrics: recorder,
		now:     time.Now,
	}
}

// Tips returns the aggregated payload. Upstream failures yield the fallback
// payload, which is never cached.
func (a *Aggregator) Tips(ctx context.Context) Response {
	if resp, ok := a.cached(ctx); ok {
		a.metrics.IncHealthTipsCache("hit")
		return resp
	}
	a.metrics.IncHealthTipsCache("miss")

	resp, err := a.build(ctx)
	if err != nil {
		a.logger.Warn("health_tips_fallback", "error", err)
		a.metrics.IncHealthTipsCache("fallback")
		return Fallback(a.now())
	}

	a.store(ctx, resp)
	return resp
}

// Topics returns the raw MyHealthfinder topic list.
func (a *Aggregator) Topics(ctx context.Context) (json.RawMessage, error) {
	body, err := a.client.ItemList(ctx)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidResponse
	}
	return json.RawMessage(body), nil
}

// Topic returns one converted topic, or ErrTopicNotFound.
func (a *Aggregator) Topic(ctx context.Context, id string) (Tip, error) {
	detail, err := a.client.TopicDetail(ctx, id)
	if err != nil {
		return Tip{}, err
	}
	return ConvertDetail(detail, a.now()), nil
}

func (a *Aggregator) build(ctx context.Context) (Response, error) {
	body, err := a.client.ItemList(ctx)
	if err != nil {
		return Response{}, err
	}

	items := gjson.GetBytes(body, "Result.Items.Item")
	if !items.IsArray() {
		return Response{}, ErrInvalidResponse
	}

	var selected []gjson.Result
	items.ForEach(func(_, item gjson.Result) bool {
		if item.Get("Type").String() == "Topic" {
			selected = append(selected, item)
		}
		return len(selected) < MaxTopics
	})
	if len(selected) == 0 {
		return Response{}, errors.New("no topics in item list")
	}

	details := make([]gjson.Result, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, item := range selected {
		i, id := i, item.Get("Id").String()
		g.Go(func() error {
			detail, err := a.client.TopicDetail(gctx, id)
			if err != nil {
				a.logger.Debug("topic_detail_skipped", "topic_id", id, "error", err)
				return nil
			}
			details[i] = detail
			return nil
		})
	}
	_ = g.Wait()

	now := a.now()
	tips := make([]Tip, 0, len(selected))
	for _, d := range details {
		if d.Exists() {
			tips = append(tips, ConvertDetail(d, now))
		}
	}
	if len(tips) == 0 {
		a.logger.Warn("topic_details_unavailable", "topics", len(selected))
		for _, item := range selected {
			tips = append(tips, ConvertBasic(item, now))
		}
	}

	return Response{
		Featured: FeaturedFrom(tips[0]),
		Tips:     tips,
		Videos:   Videos(),
	}, nil
}

func (a *Aggregator) cached(ctx context.Context) (Response, bool) {
	if a.cache == nil {
		return Response{}, false
	}
	data, ok, err := a.cache.GetHealthTips(ctx, aggregateKey)
	if err != nil {
		a.logger.Warn("health_tips_cache_read_failed", "error", err)
		return Response{}, false
	}
	if !ok {
		return Response{}, false
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		a.logger.Warn("health_tips_cache_decode_failed", "error", err)
		return Response{}, false
	}
	return resp, true
}

func (a *Aggregator) store(ctx context.Context, resp Response) {
	if a.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		a.logger.Warn("health_tips_cache_encode_failed", "error", err)
		return
	}
	if err := a.cache.SetHealthTips(ctx, aggregateKey, data, a.ttl); err != nil {
		a.logger.Warn("health_tips_cache_write_failed", "error", err)
	}
}
