package dto

// ── 配额模块 DTO ──

// RecomputeQuotaRequest 配额重算请求
// DepartmentID 为空时做全局重算，否则仅重算该院系
type RecomputeQuotaRequest struct {
	DepartmentID string `json:"department_id" binding:"omitempty,uuid"`
}

// QuotaPlanResponse 配额分配方案（预览与重算共用）
type QuotaPlanResponse struct {
	Scope          string           `json:"scope"` // GLOBAL | DEPARTMENT
	Department     *DepartmentBrief `json:"department,omitempty"`
	TotalSlots     int              `json:"total_slots"`
	ProfessorCount int              `json:"professor_count"`
	StaffCount     int              `json:"staff_count"`
	ProfessorQuota int              `json:"professor_quota"`
	StaffBaseQuota int              `json:"staff_base_quota"`
	Leftover       int              `json:"leftover"` // 轮转分给前 Leftover 名职工，每人 +1
}

// QuotaRecomputeRecordResponse 重算历史记录
type QuotaRecomputeRecordResponse struct {
	ID             string `json:"id"`
	Scope          string `json:"scope"`
	DepartmentID   string `json:"department_id,omitempty"`
	TotalSlots     int    `json:"total_slots"`
	ProfessorCount int    `json:"professor_count"`
	StaffCount     int    `json:"staff_count"`
	ProfessorQuota int    `json:"professor_quota"`
	StaffBaseQuota int    `json:"staff_base_quota"`
	Leftover       int    `json:"leftover"`
	RunBy          string `json:"run_by"`
	CreatedAt      string `json:"created_at"`
}
