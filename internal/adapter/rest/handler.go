package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"walletbot/internal/agent"
	"walletbot/internal/core"
	"walletbot/internal/metrics"
	"walletbot/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// VoiceProcessor turns an audio question into an audio answer.
type VoiceProcessor interface {
	Process(ctx context.Context, audio io.Reader, filename, accountID string) ([]byte, error)
}

type Adapter struct {
	Dispatcher *core.Dispatcher
	Voice      VoiceProcessor
	Logger     *zap.Logger
	Port       string
}

func NewAdapter(port string, dispatcher *core.Dispatcher, voice VoiceProcessor, logger *zap.Logger) *Adapter {
	return &Adapter{
		Dispatcher: dispatcher,
		Voice:      voice,
		Logger:     logger,
		Port:       port,
	}
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
	UserID   string `json:"user_id"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Router builds the gin engine with all routes and middleware.
func (a *Adapter) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), a.requestID(), a.accessLog())

	r.POST("/ask", a.handleAsk)
	r.POST("/api/v1/chat", a.handleAsk)
	r.POST("/voice", a.handleVoice)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (a *Adapter) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting REST API server", zap.String("port", a.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.Logger.Info("Shutting down REST API server")
	return srv.Shutdown(shutdownCtx)
}

func (a *Adapter) handleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	msg := &model.InternalMessage{
		Platform:  "api",
		ChatType:  "private",
		ChatID:    c.GetString(requestIDHeader),
		UserID:    req.UserID,
		Text:      req.Question,
		Timestamp: time.Now().Unix(),
	}

	answer, err := a.Dispatcher.Dispatch(c.Request.Context(), msg)
	if err != nil {
		a.fail(c, "ask", err)
		return
	}

	c.JSON(http.StatusOK, AskResponse{Answer: answer})
}

func (a *Adapter) handleVoice(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.String(http.StatusBadRequest, "no audio file sent (expected multipart field 'file')")
		return
	}
	if fh.Size == 0 {
		c.String(http.StatusBadRequest, "empty audio file")
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable audio file")
		return
	}
	defer f.Close()

	msg := &model.InternalMessage{
		Platform:  "api",
		ChatType:  "private",
		ChatID:    c.GetString(requestIDHeader),
		UserID:    c.PostForm("user_id"),
		Timestamp: time.Now().Unix(),
	}
	accountID, err := a.Dispatcher.AccountFor(c.Request.Context(), msg)
	if err != nil {
		a.fail(c, "voice", err)
		return
	}

	audio, err := a.Voice.Process(c.Request.Context(), f, fh.Filename, accountID)
	if err != nil {
		a.fail(c, "voice", err)
		return
	}

	c.Header("Content-Length", strconv.Itoa(len(audio)))
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// fail maps caller mistakes to 400 and everything else to 500.
func (a *Adapter) fail(c *gin.Context, route string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, agent.ErrBadInput) {
		status = http.StatusBadRequest
	}
	a.Logger.Error("Request failed",
		zap.String("route", route),
		zap.String("request_id", c.GetString(requestIDHeader)),
		zap.Int("status", status),
		zap.Error(err))
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func (a *Adapter) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (a *Adapter) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.HTTPRequestTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		a.Logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", c.GetString(requestIDHeader)))
	}
}
