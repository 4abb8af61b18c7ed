package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoleSuperAdmin 拥有提升权限的角色（大小写不敏感）
const RoleSuperAdmin = "super_admin"

// UserInfo 会话中存储的管理员身份信息
type UserInfo struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// HasElevatedPrivilege 判断角色是否允许执行受限操作（如置为 completed）
func (u UserInfo) HasElevatedPrivilege() bool {
	return strings.EqualFold(strings.TrimSpace(u.Role), RoleSuperAdmin)
}

// RoleProvider 提供当前调用者的提升权限标记
type RoleProvider interface {
	// HasElevatedPrivilege 会话缺失或数据损坏一律视为无权限，不报错
	HasElevatedPrivilege(ctx context.Context) bool
}

// Store 基于 Redis 的会话存储；键为会话ID，值为 UserInfo 的 JSON
type Store struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewStore 创建会话存储
func NewStore(cache *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{cache: cache, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Put 写入会话
func (s *Store) Put(ctx context.Context, sessionID string, info UserInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, sessionKey(sessionID), payload, s.ttl).Err()
}

// Get 读取会话；不存在或 JSON 损坏返回 (UserInfo{}, false)
func (s *Store) Get(ctx context.Context, sessionID string) (UserInfo, bool) {
	data, err := s.cache.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		return UserInfo{}, false
	}
	var info UserInfo
	if uErr := json.Unmarshal(data, &info); uErr != nil {
		// 损坏的会话数据按未登录处理
		return UserInfo{}, false
	}
	return info, true
}

// Delete 删除会话（登出）
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Del(ctx, sessionKey(sessionID)).Err()
}

type ctxKey struct{}

// WithUserInfo 将会话身份注入请求上下文
func WithUserInfo(ctx context.Context, info UserInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext 从上下文取出会话身份
func FromContext(ctx context.Context) (UserInfo, bool) {
	info, ok := ctx.Value(ctxKey{}).(UserInfo)
	return info, ok
}

// ContextRoleProvider 从请求上下文读取角色的 RoleProvider 实现
type ContextRoleProvider struct{}

func (ContextRoleProvider) HasElevatedPrivilege(ctx context.Context) bool {
	info, ok := FromContext(ctx)
	return ok && info.HasElevatedPrivilege()
}

// StaticRoleProvider 固定返回值的 RoleProvider（测试与单机工具用）
type StaticRoleProvider bool

func (p StaticRoleProvider) HasElevatedPrivilege(context.Context) bool { return bool(p) }
