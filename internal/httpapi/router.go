package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pgease-sync/internal/export"
	"pgease-sync/internal/store"
)

// Result 与前端约定的统一响应封装
type Result struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func ok(data any) Result {
	return Result{Code: 0, Message: "ok", Data: data}
}

func fail(message string) Result {
	return Result{Code: -1, Message: message, Data: nil}
}

// Server 只读观察接口：快照查询、名册导出、健康检查、指标
// 写操作不经过这里——变更由嵌入方直接调用 store 的乐观变更方法
type Server struct {
	store  *store.Store
	logger *zap.Logger
}

// NewServer 创建观察接口
func NewServer(st *store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: st, logger: logger}
}

// Router 构建 echo 路由
func (s *Server) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(RequestIDMiddleware)

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")
	v1.GET("/tenants/:tenant_id/rooms", s.handleRooms)
	v1.GET("/tenants/:tenant_id/residents", s.handleResidents)
	v1.GET("/tenants/:tenant_id/members", s.handleMembers)
	v1.GET("/tenants/:tenant_id/roster.xlsx", s.handleRoster)

	return e
}

func (s *Server) handleHealth(c echo.Context) error {
	status := map[string]any{
		"status":       "ok",
		"refreshing":   s.store.RefreshInProgress(),
		"last_sync_at": s.store.Snapshot().LastSyncAt(),
	}
	return c.JSON(http.StatusOK, ok(status))
}

func (s *Server) handleRooms(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	snap := s.store.Snapshot()
	payload := map[string]any{
		"rooms":      snap.RoomsByTenant(tenantID),
		"loading":    snap.RoomsLoading(),
		"last_error": snap.RoomsError(),
	}
	return c.JSON(http.StatusOK, ok(payload))
}

func (s *Server) handleResidents(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	snap := s.store.Snapshot()
	payload := map[string]any{
		"residents":  snap.ResidentsByTenant(tenantID),
		"last_error": snap.ResidentsError(),
	}
	return c.JSON(http.StatusOK, ok(payload))
}

func (s *Server) handleMembers(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	snap := s.store.Snapshot()
	payload := map[string]any{
		"members":    snap.MembersByTenant(tenantID),
		"loading":    snap.MembersLoading(),
		"last_error": snap.MembersError(),
	}
	return c.JSON(http.StatusOK, ok(payload))
}

func (s *Server) handleRoster(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	blob, err := export.BuildRoster(s.store.Snapshot(), tenantID)
	if err != nil {
		s.logger.Error("roster export failed",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		return c.JSON(http.StatusInternalServerError, fail("failed to build roster"))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="roster.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", blob)
}
