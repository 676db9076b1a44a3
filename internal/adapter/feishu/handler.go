package feishu

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"walletbot/config"
	"walletbot/internal/core"
	"walletbot/internal/model"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkevent "github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
	"go.uber.org/zap"
)

// failureReply is sent when the assistant could not produce an answer.
const failureReply = "Sorry, I could not look that up right now. Please try again in a moment."

// answerTimeout bounds one background answer, model rounds and reply included.
const answerTimeout = 2 * time.Minute

// Dispatcher is the part of core.Dispatcher the adapter needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *model.InternalMessage) (string, error)
}

// Replier sends a text reply to a message.
type Replier interface {
	Reply(ctx context.Context, messageID, text string) error
}

type Adapter struct {
	Config     config.FeishuConfig
	Dispatcher Dispatcher
	Replier    Replier
	Logger     *zap.Logger
	Timeout    time.Duration
}

var _ Dispatcher = (*core.Dispatcher)(nil)

func NewAdapter(cfg config.FeishuConfig, dispatcher Dispatcher, logger *zap.Logger) *Adapter {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
	)

	return &Adapter{
		Config:     cfg,
		Dispatcher: dispatcher,
		Replier:    &larkReplier{client: client},
		Logger:     logger,
		Timeout:    answerTimeout,
	}
}

// StartWS starts the WebSocket connection
func (a *Adapter) StartWS(ctx context.Context) error {
	eventHandler := larkevent.NewEventDispatcher(a.Config.VerificationToken, a.Config.EncryptKey).
		OnP2MessageReceiveV1(a.handleMessage)

	cli := larkws.NewClient(a.Config.AppID, a.Config.AppSecret,
		larkws.WithEventHandler(eventHandler),
		larkws.WithLogLevel(larkcore.LogLevelInfo),
	)

	a.Logger.Info("Starting Feishu WebSocket client...")
	return cli.Start(ctx)
}

func (a *Adapter) handleMessage(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
	if event == nil || event.Event == nil || event.Event.Message == nil {
		return nil
	}
	msg := event.Event.Message
	if deref(msg.MessageType) != larkim.MsgTypeText {
		a.Logger.Debug("Ignoring non-text message", zap.String("type", deref(msg.MessageType)))
		return nil
	}

	text, err := parseText(deref(msg.Content))
	if err != nil {
		a.Logger.Error("Failed to parse message content", zap.Error(err))
		return nil
	}

	var senderID string
	if event.Event.Sender != nil && event.Event.Sender.SenderId != nil {
		senderID = deref(event.Event.Sender.SenderId.OpenId)
	}

	internalMsg := &model.InternalMessage{
		Platform:  "feishu",
		ChatType:  deref(msg.ChatType),
		ChatID:    deref(msg.ChatId),
		UserID:    senderID,
		Text:      text,
		Timestamp: time.Now().Unix(),
	}

	a.Logger.Info("Received message", zap.Int("text_len", len(text)), zap.String("sender", senderID))

	// The event must be acknowledged quickly; answer in the background.
	go a.answer(deref(msg.MessageId), internalMsg)
	return nil
}

func (a *Adapter) answer(messageID string, msg *model.InternalMessage) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = answerTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	response, err := a.Dispatcher.Dispatch(ctx, msg)
	if err != nil {
		a.Logger.Error("Dispatch failed", zap.Error(err))
		response = failureReply
	}
	if response == "" {
		return
	}
	if err := a.Replier.Reply(ctx, messageID, response); err != nil {
		a.Logger.Error("Failed to reply message", zap.Error(err))
		return
	}
	a.Logger.Info("Reply sent to Feishu")
}

// parseText extracts the text of a {"text":"..."} message body, dropping @mention keys.
func parseText(content string) (string, error) {
	var contentMap map[string]string
	if err := json.Unmarshal([]byte(content), &contentMap); err != nil {
		return "", err
	}
	words := strings.Fields(contentMap["text"])
	kept := words[:0]
	for _, w := range words {
		if strings.HasPrefix(w, "@_user_") {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " "), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type larkReplier struct {
	client *lark.Client
}

func (r *larkReplier) Reply(ctx context.Context, messageID, text string) error {
	// Marshal so newlines and quotes are escaped.
	contentBytes, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	resp, err := r.client.Im.Message.Reply(ctx, larkim.NewReplyMessageReqBuilder().
		MessageId(messageID).
		Body(larkim.NewReplyMessageReqBodyBuilder().
			MsgType(larkim.MsgTypeText).
			Content(string(contentBytes)).
			Build()).
		Build())
	if err != nil {
		return err
	}
	if !resp.Success() {
		return errors.New("feishu reply failed: " + resp.Msg)
	}
	return nil
}
