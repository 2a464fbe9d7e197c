package dto

// ── 用户模块 DTO ──

// UpdateUserRoleRequest 修改用户角色请求
type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

// ActivityResponse 操作日志响应
type ActivityResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	UserID      *string `json:"user_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
