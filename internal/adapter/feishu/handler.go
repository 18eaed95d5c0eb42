package feishu

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"songbird/config"
	"songbird/internal/core"
	"songbird/internal/model"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkevent "github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
	"go.uber.org/zap"
)

const replyTimeout = 10 * time.Second

type Adapter struct {
	Config     config.FeishuConfig
	Dispatcher *core.Dispatcher
	Logger     *zap.Logger
	Client     *lark.Client
}

func NewAdapter(cfg config.FeishuConfig, dispatcher *core.Dispatcher, logger *zap.Logger) *Adapter {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
	)

	return &Adapter{
		Config:     cfg,
		Dispatcher: dispatcher,
		Logger:     logger,
		Client:     client,
	}
}

// StartWS connects to Feishu over a long-lived WebSocket and blocks until ctx ends.
func (a *Adapter) StartWS(ctx context.Context) error {
	eventHandler := larkevent.NewEventDispatcher(a.Config.VerificationToken, a.Config.EncryptKey).
		OnP2MessageReceiveV1(a.handleMessage).
		OnP2MessageReadV1(func(ctx context.Context, event *larkim.P2MessageReadV1) error {
			return nil
		})

	cli := larkws.NewClient(a.Config.AppID, a.Config.AppSecret,
		larkws.WithEventHandler(eventHandler),
		larkws.WithLogLevel(larkcore.LogLevelInfo),
	)

	a.Logger.Info("Starting Feishu WebSocket client...")
	return cli.Start(ctx)
}

// ToInternalMessage normalizes a text message event. It returns false for
// events that carry no text.
func ToInternalMessage(event *larkim.P2MessageReceiveV1) (*model.InternalMessage, bool) {
	if event == nil || event.Event == nil || event.Event.Message == nil {
		return nil, false
	}
	m := event.Event.Message
	if m.Content == nil {
		return nil, false
	}

	var content struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(*m.Content), &content); err != nil {
		return nil, false
	}
	text := strings.TrimSpace(stripMentions(content.Text, m.Mentions))
	if text == "" {
		return nil, false
	}

	msg := &model.InternalMessage{
		Platform:    "feishu",
		ChatType:    deref(m.ChatType),
		ChatID:      deref(m.ChatId),
		Text:        text,
		IsMentioned: len(m.Mentions) > 0,
	}
	if msg.ChatType == "p2p" || msg.ChatType == "" {
		msg.ChatType = "private"
	}
	if s := event.Event.Sender; s != nil && s.SenderId != nil {
		msg.UserID = deref(s.SenderId.OpenId)
	}
	return msg, true
}

func (a *Adapter) handleMessage(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
	msg, ok := ToInternalMessage(event)
	if !ok {
		a.Logger.Debug("Ignoring non-text Feishu event")
		return nil
	}
	// group chats only get an answer when the bot is mentioned
	if msg.ChatType == "group" && !msg.IsMentioned {
		return nil
	}
	msg.Timestamp = time.Now().Unix()
	msgID := deref(event.Event.Message.MessageId)

	a.Logger.Info("Received message", zap.String("text", msg.Text), zap.String("sender", msg.UserID))

	// The event callback must return quickly; the agent loop can take a while.
	go func() {
		response, err := a.Dispatcher.Dispatch(context.Background(), msg)
		if err != nil {
			a.Logger.Error("Dispatch failed", zap.Error(err))
			return
		}
		if response != "" {
			a.Reply(msgID, response)
		}
	}()

	return nil
}

func (a *Adapter) Reply(messageID string, text string) {
	content, err := textContent(text)
	if err != nil {
		a.Logger.Error("Failed to marshal reply content", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	resp, err := a.Client.Im.Message.Reply(ctx, larkim.NewReplyMessageReqBuilder().
		MessageId(messageID).
		Body(larkim.NewReplyMessageReqBodyBuilder().
			MsgType(larkim.MsgTypeText).
			Content(content).
			Build()).
		Build())

	if err != nil {
		a.Logger.Error("Failed to reply message", zap.Error(err))
		return
	}

	if !resp.Success() {
		a.Logger.Error("Failed to reply message (API error)", zap.Int("code", resp.Code), zap.String("msg", resp.Msg))
	} else {
		a.Logger.Info("Reply sent to Feishu")
	}
}

func textContent(text string) (string, error) {
	b, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// stripMentions removes "@_user_1" style placeholders Feishu puts in the text.
func stripMentions(text string, mentions []*larkim.MentionEvent) string {
	for _, m := range mentions {
		if m != nil && m.Key != nil {
			text = strings.ReplaceAll(text, *m.Key, "")
		}
	}
	return text
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
