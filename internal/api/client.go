package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"pgease-sync/internal/domain"
	"pgease-sync/internal/store"
)

// apiResponse 平台 API 的统一响应封装
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client PGease 平台 REST API 客户端，实现 store.Remote
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient 创建平台 API 客户端
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		httpClient.SetAuthToken(token)
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// call 执行一次请求并解开响应封装
// 传输错误 / 非 2xx / code != 0 => RemoteError；封装无法解析 => DecodeError
func (c *Client) call(ctx context.Context, method, path string, body any, query map[string]string) (json.RawMessage, error) {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, &store.RemoteError{Op: path, Err: err}
	}
	if resp.IsError() {
		return nil, &store.RemoteError{Op: path, Err: fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())}
	}

	var env apiResponse
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, &store.DecodeError{Op: path, Err: err}
	}
	if env.Code != 0 {
		return nil, &store.RemoteError{Op: path, Err: fmt.Errorf("api code %d: %s", env.Code, env.Message)}
	}
	return env.Data, nil
}

// FetchRooms 拉取租户的全部房间
func (c *Client) FetchRooms(ctx context.Context, tenantID string) ([]domain.Room, error) {
	path := fmt.Sprintf("/api/v1/tenants/%s/rooms", tenantID)
	data, err := c.call(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var dtos []RoomDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, &store.DecodeError{Op: path, Err: err}
	}
	rooms := make([]domain.Room, 0, len(dtos))
	for _, dto := range dtos {
		room, err := toRoom(path, dto)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// CreateRoom 创建房间
func (c *Client) CreateRoom(ctx context.Context, tenantID string, req store.CreateRoomRequest) (domain.Room, error) {
	path := fmt.Sprintf("/api/v1/tenants/%s/rooms", tenantID)
	body := map[string]any{
		"room_number": req.RoomNumber,
		"room_type":   string(req.RoomType),
		"total_beds":  req.TotalBeds,
		"details":     req.Details,
	}
	data, err := c.call(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return domain.Room{}, err
	}
	var dto RoomDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.Room{}, &store.DecodeError{Op: path, Err: err}
	}
	return toRoom(path, dto)
}

// UpdateRoom 按字段补丁更新房间
func (c *Client) UpdateRoom(ctx context.Context, tenantID, roomID string, patch store.RoomPatch) (domain.Room, error) {
	path := fmt.Sprintf("/api/v1/tenants/%s/rooms/%s", tenantID, roomID)
	body := map[string]any{}
	if patch.RoomNumber != nil {
		body["room_number"] = *patch.RoomNumber
	}
	if patch.RoomType != nil {
		body["room_type"] = string(*patch.RoomType)
	}
	if patch.TotalBeds != nil {
		body["total_beds"] = *patch.TotalBeds
	}
	if patch.Details != nil {
		body["details"] = *patch.Details
	}
	data, err := c.call(ctx, http.MethodPatch, path, body, nil)
	if err != nil {
		return domain.Room{}, err
	}
	var dto RoomDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.Room{}, &store.DecodeError{Op: path, Err: err}
	}
	return toRoom(path, dto)
}

// FetchMembers 拉取租户的成员（可按角色过滤）
func (c *Client) FetchMembers(ctx context.Context, tenantID, roleFilter string) ([]domain.Member, error) {
	path := fmt.Sprintf("/api/v1/tenants/%s/members", tenantID)
	var query map[string]string
	if roleFilter != "" {
		query = map[string]string{"role": roleFilter}
	}
	data, err := c.call(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return nil, err
	}
	var dtos []MemberDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, &store.DecodeError{Op: path, Err: err}
	}
	members := make([]domain.Member, 0, len(dtos))
	for _, dto := range dtos {
		member, err := toMember(path, dto)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

// CreateMember 创建成员，返回服务端分配的成员 ID
func (c *Client) CreateMember(ctx context.Context, tenantID string, req store.CreateMemberRequest) (string, error) {
	path := fmt.Sprintf("/api/v1/tenants/%s/members", tenantID)
	body := map[string]any{
		"name":       req.Name,
		"email":      req.Email,
		"phone":      req.Phone,
		"role":       string(req.Role),
		"created_by": req.CreatedBy,
	}
	data, err := c.call(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		MemberID string `json:"member_id"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &store.DecodeError{Op: path, Err: err}
	}
	if out.MemberID == "" {
		return "", &store.DecodeError{Op: path, Err: fmt.Errorf("response without member_id")}
	}
	return out.MemberID, nil
}

// UpdateResidentRoom 更新住户的房间绑定（roomID 为空表示解绑）
func (c *Client) UpdateResidentRoom(ctx context.Context, tenantID, residentID, roomID string) error {
	path := fmt.Sprintf("/api/v1/tenants/%s/residents/%s/room", tenantID, residentID)
	body := map[string]any{"room_id": roomID}
	_, err := c.call(ctx, http.MethodPut, path, body, nil)
	return err
}

// SwapResidentRooms 原子交换两名住户的房间（服务端单事务）
func (c *Client) SwapResidentRooms(ctx context.Context, tenantID, residentAID, residentBID string) error {
	path := fmt.Sprintf("/api/v1/tenants/%s/residents/swap", tenantID)
	body := map[string]any{
		"resident_a": residentAID,
		"resident_b": residentBID,
	}
	_, err := c.call(ctx, http.MethodPost, path, body, nil)
	return err
}
