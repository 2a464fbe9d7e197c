package dto

// ── 监考场次模块 DTO ──

// CreateScheduleRequest 新增场次请求
type CreateScheduleRequest struct {
	Date            string `json:"date"              binding:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time"        binding:"required"`
	EndTime         string `json:"end_time"          binding:"required"`
	TimeOption      string `json:"time_option"       binding:"required,oneof=MORNING AFTERNOON"`
	RoomID          string `json:"room_id"           binding:"required,uuid"`
	SubjectGroupID  string `json:"subject_group_id"  binding:"required,uuid"`
	DepartmentQuota int    `json:"department_quota"  binding:"min=0"`
	Priority        bool   `json:"priority"`
}

// AssignScheduleRequest 管理员指派/改派请求
// InvigilatorID 支持 "prof_<教师ID>" 前缀：此时自动为该教师物化监考员档案
type AssignScheduleRequest struct {
	InvigilatorID string `json:"invigilator_id" binding:"required"`
}

// BulkAssignRequest 批量指派请求
type BulkAssignRequest struct {
	Assignments []BulkAssignItem `json:"assignments" binding:"required,min=1,dive"`
}

// BulkAssignItem 批量指派条目
type BulkAssignItem struct {
	ScheduleID    string `json:"schedule_id"    binding:"required,uuid"`
	InvigilatorID string `json:"invigilator_id" binding:"required"`
}

// BulkAssignResponse 批量指派结果
type BulkAssignResponse struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"` // 逐条失败原因
}

// ScheduleListRequest 场次列表查询参数
type ScheduleListRequest struct {
	PaginationRequest
}

// ── 响应 ──

// ScheduleResponse 场次响应
type ScheduleResponse struct {
	ID              string             `json:"id"`
	Date            string             `json:"date"`
	StartTime       string             `json:"start_time"`
	EndTime         string             `json:"end_time"`
	TimeOption      string             `json:"time_option"`
	Room            *RoomBrief         `json:"room,omitempty"`
	Subject         *SubjectBrief      `json:"subject,omitempty"`
	GroupNumber     string             `json:"group_number,omitempty"`
	Invigilator     *InvigilatorBrief  `json:"invigilator,omitempty"`
	DepartmentQuota int                `json:"department_quota"`
	QuotaFilled     bool               `json:"quota_filled"`
	Priority        bool               `json:"priority"`
	IsGenEd         bool               `json:"is_gen_ed"`
	Note            *string            `json:"note,omitempty"`
	CreatedAt       string             `json:"created_at"`
}

// AvailableScheduleResponse 可认领的场次（同日同时段去重后）
type AvailableScheduleResponse struct {
	ScheduleResponse
	SameSlotCount int `json:"same_slot_count"` // 同日同时段的开放场次总数
}
