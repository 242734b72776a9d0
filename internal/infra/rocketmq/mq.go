package rocketmq

import (
	"context"
	"strings"
	"sync"
	"time"

	rmq "github.com/apache/rocketmq-clients/golang/v5"
	"github.com/apache/rocketmq-clients/golang/v5/credentials"
	beego "github.com/beego/beego/v2/server/web"

	"loto-server/common/logger"
	"loto-server/internal/config"

	"go.uber.org/zap"
)

// Publisher 发消息的最小门面
type Publisher interface {
	Publish(topic string, body []byte) error
}

// SplitTopics 解析 topic 列表配置：逗号/分号均可作分隔符，去空白，点号替换为下划线
func SplitTopics(s string) []string {
	var out []string
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		t = strings.TrimSpace(strings.ReplaceAll(t, ".", "_"))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

var (
	initOnce sync.Once
	enabled  bool
	prod     rmq.Producer
	pub      Publisher
)

// Enabled 报告 MQ 是否已配置且 producer 启动成功
func Enabled() bool { initOnce.Do(initMQ); return enabled }

// PublisherInstance 返回活动的 publisher（未启用时为占位实现）
func PublisherInstance() Publisher {
	initOnce.Do(initMQ)
	if pub == nil {
		pub = &stubPublisher{}
	}
	return pub
}

// RocketMQ v5 客户端实现
type rmqPublisher struct{ p rmq.Producer }

func (r *rmqPublisher) Publish(topic string, body []byte) error {
	if r.p == nil {
		return nil
	}
	msg := &rmq.Message{Topic: topic, Body: body}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := r.p.Send(ctx, msg)
	return err
}

// MQ 未启用时的占位实现
type stubPublisher struct{}

func (s *stubPublisher) Publish(topic string, body []byte) error {
	logger.Warn("[mq disabled] drop message", zap.String("topic", topic))
	return nil
}

func initMQ() {
	// 用 SDK 的 ResetLogger 避免默认写 /logs 下的文件日志
	rmq.ResetLogger()

	// 配置中心优先，beego AppConfig 兜底
	var endpoint, ak, sk string
	var topics []string
	if c := config.GetCurrent(); c != nil {
		endpoint = c.RocketMQ.Endpoint
		ak = c.RocketMQ.AccessKey
		sk = c.RocketMQ.SecretKey
		for _, t := range []string{c.RocketMQ.TopicBet, c.RocketMQ.TopicDraw, c.RocketMQ.TopicSettle} {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}
	if endpoint == "" {
		endpoint, _ = beego.AppConfig.String("rocketmq_endpoint")
	}
	if endpoint == "" {
		endpoint, _ = beego.AppConfig.String("rocketmq_namesrv")
	}
	if endpoint == "" {
		enabled = false
		pub = &stubPublisher{}
		return
	}
	// 清洗 endpoint：去空白、剥离 scheme，含多个地址时取第一个
	endpoint = strings.TrimSpace(endpoint)
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
	if idx := strings.IndexAny(endpoint, ",;"); idx > 0 {
		endpoint = strings.TrimSpace(endpoint[:idx])
	}
	if ak == "" {
		ak, _ = beego.AppConfig.String("rocketmq_access_key")
	}
	if sk == "" {
		sk, _ = beego.AppConfig.String("rocketmq_secret_key")
	}
	if strings.TrimSpace(ak) == "" || strings.TrimSpace(sk) == "" {
		logger.Warn("[mq] producer not started: missing access/secret key")
		enabled = false
		pub = &stubPublisher{}
		return
	}

	cfg := &rmq.Config{Endpoint: endpoint}
	cfg.Credentials = &credentials.SessionCredentials{AccessKey: ak, AccessSecret: sk}

	if topicsStr, _ := beego.AppConfig.String("rocketmq_producer_topics"); topicsStr != "" {
		if parts := SplitTopics(topicsStr); len(parts) > 0 {
			topics = parts
		}
	}
	var opts []rmq.ProducerOption
	if len(topics) > 0 {
		opts = append(opts, rmq.WithTopics(topics...))
	}

	p, err := rmq.NewProducer(cfg, opts...)
	if err != nil {
		logger.Error("[mq] new producer failed", zap.Error(err))
		enabled = false
		pub = &stubPublisher{}
		return
	}
	if err := p.Start(); err != nil {
		logger.Error("[mq] start producer failed", zap.Error(err))
		enabled = false
		pub = &stubPublisher{}
		return
	}
	prod = p
	pub = &rmqPublisher{p: prod}
	enabled = true
	logger.Info("[mq] producer started", zap.String("endpoint", endpoint))
}
