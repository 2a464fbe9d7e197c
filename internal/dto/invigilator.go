package dto

// ── 监考员模块 DTO ──

// CreateInvigilatorRequest 新增监考员请求
type CreateInvigilatorRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=100"`
	Type         string `json:"type"          binding:"required,oneof=professor staff"`
	DepartmentID string `json:"department_id" binding:"required,uuid"`
	Quota        *int   `json:"quota"         binding:"omitempty,min=0"` // 缺省取类型默认配额
}

// InvigilatorListRequest 监考员列表查询参数
type InvigilatorListRequest struct {
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Type         string `form:"type"          binding:"omitempty,oneof=professor staff"`
}

// InvigilatorResponse 监考员响应
type InvigilatorResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Type          string           `json:"type"`
	Department    *DepartmentBrief `json:"department,omitempty"`
	ProfessorID   *string          `json:"professor_id,omitempty"`
	Quota         int              `json:"quota"`
	AssignedQuota int              `json:"assigned_quota"`
	Remaining     int              `json:"remaining"` // quota - assigned_quota，下限 0
	CreatedAt     string           `json:"created_at"`
}

// MergeInvigilatorRequest 合并重复监考员请求
type MergeInvigilatorRequest struct {
	SourceID string `json:"source_id" binding:"required,uuid"`
	TargetID string `json:"target_id" binding:"required,uuid"`
}

// MergeInvigilatorResponse 合并结果响应
type MergeInvigilatorResponse struct {
	TargetID        string `json:"target_id"`
	TransferredSlot int64  `json:"transferred_slots"` // 转移的场次数
	AssignedQuota   int    `json:"assigned_quota"`    // 合并后目标的已分配配额
}
