// Package kafka 提供基于 franz-go 的 feedback.Collector 实现：事件先缓冲，按批量或定时发送。
//
//	go get github.com/rushteam/filmtaste/ext/feedback/kafka
package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/feedback"
	"github.com/rushteam/filmtaste/pkg/logging"
	"github.com/rushteam/filmtaste/pkg/metrics"
)

// Config Kafka 采集器配置
type Config struct {
	Brokers []string
	Topic   string

	BatchSize     int           // 默认 100
	FlushInterval time.Duration // 默认 1s

	ClientID     string
	RequiredAcks int16  // 0=不等待, 1=leader, -1=all
	Compression  string // gzip, snappy, lz4, zstd
	Idempotent   bool
	MaxRetries   int
}

// producer 是 kgo.Client 的发送子集。
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// Collector 把反馈事件以 JSON 写入 Kafka，key 为 user id，保证同一用户事件有序。
type Collector struct {
	client        producer
	topic         string
	batchSize     int
	flushInterval time.Duration

	mu        sync.Mutex
	buffer    []*feedback.Event
	lastFlush time.Time
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
	stopCh    chan struct{}
}

func New(cfg Config) (*Collector, error) {
	client, err := kgo.NewClient(clientOpts(cfg)...)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleCollaborator, core.ErrorCodeUnavailable, "create kafka client", err)
	}
	return newCollector(client, cfg), nil
}

func clientOpts(cfg Config) []kgo.Opt {
	if cfg.ClientID == "" {
		cfg.ClientID = "filmtaste-feedback"
	}
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = 1
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RecordRetries(cfg.MaxRetries),
	}
	switch cfg.RequiredAcks {
	case -1:
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	default:
		opts = append(opts, kgo.RequiredAcks(kgo.LeaderAck()))
	}
	// 幂等写要求 acks=all
	if !cfg.Idempotent || cfg.RequiredAcks != -1 {
		opts = append(opts, kgo.DisableIdempotentWrite())
	}
	switch cfg.Compression {
	case "gzip":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.GzipCompression()))
	case "snappy":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.SnappyCompression()))
	case "lz4":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.Lz4Compression()))
	case "zstd":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.ZstdCompression()))
	}
	return opts
}

func newCollector(client producer, cfg Config) *Collector {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	c := &Collector{
		client:        client,
		topic:         cfg.Topic,
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		buffer:        make([]*feedback.Event, 0, cfg.BatchSize),
		lastFlush:     time.Now(),
		stopCh:        make(chan struct{}),
	}
	c.wg.Add(1)
	go c.flushLoop()
	return c
}

func (c *Collector) RecordImpression(_ context.Context, rctx *core.RecommendContext, recs []*core.Candidate) error {
	c.bufferEvents(feedback.ImpressionEvents(rctx, recs))
	return nil
}

func (c *Collector) RecordRated(_ context.Context, userID string, films []*core.Film) error {
	c.bufferEvents(feedback.RatedEvents(userID, films))
	return nil
}

func (c *Collector) bufferEvents(events []*feedback.Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.buffer = append(c.buffer, events...)
	full := len(c.buffer) >= c.batchSize
	if full {
		c.wg.Add(1)
	}
	c.mu.Unlock()

	if full {
		go func() {
			defer c.wg.Done()
			c.flush()
		}()
	}
}

func (c *Collector) flushLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			due := len(c.buffer) > 0 && time.Since(c.lastFlush) >= c.flushInterval
			c.mu.Unlock()
			if due {
				c.flush()
			}
		case <-c.stopCh:
			return
		}
	}
}

// flush 取出缓冲区并异步发送。
func (c *Collector) flush() {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	events := c.buffer
	c.buffer = make([]*feedback.Event, 0, c.batchSize)
	c.lastFlush = time.Now()
	c.mu.Unlock()

	log := logging.Component("feedback.kafka")
	for _, ev := range events {
		rec, err := record(c.topic, ev)
		if err != nil {
			log.Warn().Err(err).Str("slug", ev.Slug).Msg("encode feedback event failed")
			continue
		}
		c.client.Produce(context.Background(), rec, func(r *kgo.Record, err error) {
			if err != nil {
				metrics.RecordFallback("feedback")
				log.Warn().Err(err).Str("topic", r.Topic).Msg("produce feedback event failed")
			}
		})
	}
}

func record(topic string, ev *feedback.Event) (*kgo.Record, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return &kgo.Record{Topic: topic, Key: []byte(ev.UserID), Value: data}, nil
}

// Close 发送剩余缓冲并关闭客户端，可重复调用。
func (c *Collector) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		close(c.stopCh)
		c.wg.Wait()
		c.flush()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = c.client.Flush(ctx)
		cancel()
		c.client.Close()
	})
	return err
}

var _ feedback.Collector = (*Collector)(nil)
