package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stationeye/internal/config"
	"stationeye/internal/console"
	"stationeye/internal/model"
	"stationeye/pkg/log"
)

type Server struct {
	conf       *config.Config
	console    *console.Console
	httpServer *http.Server
	logger     *logrus.Entry
}

func NewServer(ctx context.Context, conf *config.Config, console *console.Console) *Server {
	return &Server{
		conf:    conf,
		console: console,
		logger:  log.GetLogger(ctx).WithField(log.FieldComponent, "server"),
	}
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(log.HttpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Set(log.CtxRequestId, requestId)
		c.Request = c.Request.WithContext(log.WithRequestId(c.Request.Context(), requestId))
		c.Header(log.HttpXRequestId, requestId)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		logger := log.GetLogger(c)
		if operator := c.GetString(operatorKey); operator != "" {
			logger = logger.WithField(operatorKey, operator)
		}
		logger.Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
			c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	router := s.SetUpRouter()
	pprof.Register(router)
	s.httpServer = &http.Server{
		Addr:              s.conf.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.conf.Auth.JwtSecret == "" {
		s.logger.Warn("auth.jwtSecret is empty, control routes are not protected")
	}
	s.logger.Infof("start http server on %s", s.conf.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		log.GetLogger(c).WithError(err).Errorf("%s %s", c.Request.Method, c.Request.URL.Path)
	}
	c.JSON(code, ErrorResponse{
		Error: err.Error(),
	})
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("resolution", func(fl validator.FieldLevel) bool {
			return model.Resolution(fl.Field().String()).Valid()
		})
	}
}
