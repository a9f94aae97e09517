package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/regionwatch/module/core/domain"
	"github.com/nandanugg/regionwatch/module/core/service"
)

type monitorService interface {
	Start(ctx context.Context) (*domain.Session, error)
	Status() service.Status
}

type sessionSource interface {
	Current() *domain.Session
	State() domain.SessionState
}

type permissionStore interface {
	Set(ctx context.Context, kind domain.PermissionKind, status domain.PermissionStatus) error
}

type regionResponse struct {
	Identifier    string  `json:"identifier"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Radius        float64 `json:"radius"`
	NotifyOnEnter bool    `json:"notify_on_enter"`
	NotifyOnExit  bool    `json:"notify_on_exit"`
	Dynamic       bool    `json:"dynamic"`
}

type sessionResponse struct {
	ID        string           `json:"id"`
	TaskName  string           `json:"task_name"`
	State     string           `json:"state"`
	StartedAt int64            `json:"started_at"`
	Regions   []regionResponse `json:"regions"`
}

type statusResponse struct {
	Location *locationResponse `json:"location"`
	Error    string            `json:"error,omitempty"`
	State    string            `json:"state"`
}

type locationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

type permissionRequest struct {
	Status string `json:"status" binding:"required"`
}

type MonitorHandler struct {
	monitor     monitorService
	sessions    sessionSource
	permissions permissionStore
}

func NewMonitorHandler(monitor monitorService, sessions sessionSource, permissions permissionStore) *MonitorHandler {
	return &MonitorHandler{
		monitor:     monitor,
		sessions:    sessions,
		permissions: permissions,
	}
}

func (h *MonitorHandler) Register(r *gin.RouterGroup) {
	r.GET("/status", h.GetStatus)
	r.GET("/session", h.GetSession)
	r.POST("/session/start", h.StartSession)
	r.PUT("/permissions/:kind", h.SetPermission)
}

func (h *MonitorHandler) GetStatus(c *gin.Context) {
	st := h.monitor.Status()
	resp := statusResponse{
		Error: st.ErrorMsg,
		State: string(h.sessions.State()),
	}
	if st.Location != nil {
		resp.Location = &locationResponse{
			Latitude:  st.Location.Lat,
			Longitude: st.Location.Lon,
			Accuracy:  st.Location.Accuracy,
			Timestamp: st.Location.Timestamp.Unix(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MonitorHandler) GetSession(c *gin.Context) {
	s := h.sessions.Current()
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(s))
}

// StartSession re-runs the startup sequence, e.g. after the user granted a
// permission that was denied at boot.
func (h *MonitorHandler) StartSession(c *gin.Context) {
	s, err := h.monitor.Start(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrSessionBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": "session start already in progress"})
			return
		}
		c.JSON(statusForStartup(err), gin.H{
			"error": h.monitor.Status().ErrorMsg,
			"kind":  domain.StartupErrorKindOf(err),
		})
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(s))
}

func (h *MonitorHandler) SetPermission(c *gin.Context) {
	kind := domain.PermissionKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown permission kind"})
		return
	}

	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	status := domain.PermissionStatus(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid permission status"})
		return
	}

	if err := h.permissions.Set(c.Request.Context(), kind, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store permission"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "status": status})
}

func statusForStartup(err error) int {
	switch domain.StartupErrorKindOf(err) {
	case domain.KindLocationPermissionDenied, domain.KindNotificationPermissionDenied:
		return http.StatusForbidden
	case domain.KindPositionUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func toSessionResponse(s *domain.Session) sessionResponse {
	regions := make([]regionResponse, len(s.Regions))
	for i, r := range s.Regions {
		regions[i] = regionResponse{
			Identifier:    r.Identifier,
			Latitude:      r.Lat,
			Longitude:     r.Lon,
			Radius:        r.Radius,
			NotifyOnEnter: r.NotifyOnEnter,
			NotifyOnExit:  r.NotifyOnExit,
			Dynamic:       r.Dynamic,
		}
	}
	return sessionResponse{
		ID:        s.ID.String(),
		TaskName:  s.TaskName,
		State:     string(s.State),
		StartedAt: s.StartedAt.Unix(),
		Regions:   regions,
	}
}
