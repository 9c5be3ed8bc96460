package dashboard

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"atelier/internal/pkg/logger"
	"atelier/internal/pkg/mq"
)

// Feed 把订单事件流持续灌入 Hub。
// 每个网关节点使用独立消费组，因此每个节点都能收到全量事件。
type Feed struct {
	reader *kafka.Reader
	hub    *Hub
	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewFeed(reader *kafka.Reader, hub *Hub) *Feed {
	return &Feed{reader: reader, hub: hub}
}

// Start 启动 Hub 广播循环与消费循环。
func (f *Feed) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.group, ctx = errgroup.WithContext(ctx)

	f.group.Go(func() error {
		f.hub.Run()
		return nil
	})
	f.group.Go(func() error {
		return f.consumeLoop(ctx)
	})
	logger.Logger.Info().Str("topic", f.reader.Config().Topic).Msg("Dashboard feed started.")
}

func (f *Feed) consumeLoop(ctx context.Context) error {
	for {
		msg, err := f.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Logger.Error().Err(err).Msg("failed to fetch order event")
			continue
		}

		f.forward(ctx, msg)

		if err := f.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Logger.Error().Err(err).Msg("failed to commit order event offset")
		}
	}
}

// forward 校验消息是合法 JSON 后原样广播。
// 畸形消息跳过并提交位移，不能让一条坏消息卡死整个看板。
func (f *Feed) forward(ctx context.Context, msg kafka.Message) {
	msgCtx := mq.ExtractTraceContext(ctx, msg)

	if !json.Valid(msg.Value) {
		logger.Ctx(msgCtx).Warn().
			Str("key", string(msg.Key)).
			Msg("skipping malformed order event")
		return
	}

	f.hub.Broadcast(msg.Value)
}

// Stop 停止消费并断开所有客户端。
func (f *Feed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.reader.Close()
	f.hub.Stop()
	if f.group != nil {
		f.group.Wait()
	}
}
