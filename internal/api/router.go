package api

import (
	"context"
	"net/http"
	"time"

	"github.com/LJTian/DailyRelay/internal/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatusMessage 非触发路径统一返回的说明文字
const StatusMessage = "知乎日报自动发布服务运行中"

// Runner 执行一次完整的发布流程
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

type Server struct {
	runner Runner
	log    logrus.FieldLogger
}

func NewServer(runner Runner, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{runner: runner, log: log.WithField("component", "api")}
}

// NewEngine 构建带日志、恢复与 CORS 中间件的 gin 引擎
func (s *Server) NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.log), gin.Recovery(), corsMiddleware())
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.Match([]string{http.MethodGet, http.MethodPost}, "/trigger", s.trigger)
	// 其余任意路径、任意方法都返回状态说明
	r.NoRoute(s.status)
}

func (s *Server) status(c *gin.Context) {
	c.String(http.StatusOK, StatusMessage)
}

func (s *Server) trigger(c *gin.Context) {
	// 客户端断开也跑完整个流程，不做取消
	res, err := s.runner.Run(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		pipeline.LogFailure(s.log, "http", err)
		// 只暴露错误信息，不带堆栈
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "手动触发成功！",
		"issue_url": res.IssueURL,
	})
}

// corsMiddleware 为所有响应附加跨域头；OPTIONS 预检直接返回空响应
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("http request")
	}
}
