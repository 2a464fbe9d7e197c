package dto

// ── 院系模块 DTO ──

// CreateDepartmentRequest 新增院系请求
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
	Code string `json:"code" binding:"required,min=2,max=20"`
}

// DepartmentDetailResponse 院系详情响应
type DepartmentDetailResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}
