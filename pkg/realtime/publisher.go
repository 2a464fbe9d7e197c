package realtime

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 事件类型常量
const (
	EventNewAppeal        = "newAppeal"
	EventAppealUpdated    = "appealUpdated"
	EventScheduleAssigned = "scheduleAssigned"
)

// RoomAdmin 管理员公共频道
const RoomAdmin = "admin"

// Event 实时推送事件
type Event struct {
	Event   string      `json:"event"`
	Room    string      `json:"room"`
	Payload interface{} `json:"payload,omitempty"`
}

// Publisher 实时通知发布接口
// 投递语义为 fire-and-forget（至多一次），发布失败不得影响业务操作，
// 因此 Publish 不返回 error，实现内部自行记录失败日志。
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload interface{})
}

// ── Redis Pub/Sub 实现 ──

const channelPrefix = "realtime:"

type redisPublisher struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewRedisPublisher 基于 Redis Pub/Sub 的发布器
// 前端网关订阅 realtime:<room> 频道后向对应 WebSocket 房间转发
func NewRedisPublisher(rdb *goredis.Client, logger *zap.Logger) Publisher {
	return &redisPublisher{rdb: rdb, logger: logger}
}

func (p *redisPublisher) Publish(ctx context.Context, room, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Room: room, Payload: payload})
	if err != nil {
		p.logger.Warn("实时事件序列化失败", zap.String("event", event), zap.Error(err))
		return
	}

	// 独立超时：不让推送拖慢（或拖垮）调用方
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := p.rdb.Publish(pubCtx, channelPrefix+room, data).Err(); err != nil {
		p.logger.Warn("实时事件发布失败",
			zap.String("room", room),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

// ── 空实现（Redis 不可用时降级） ──

type nopPublisher struct{}

// NewNopPublisher 返回不做任何事的发布器
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, string, interface{}) {}
