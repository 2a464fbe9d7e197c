package dto

// ── 申诉模块 DTO ──

// CreateAppealRequest 提交申诉请求
type CreateAppealRequest struct {
	ScheduleID     string   `json:"schedule_id"     binding:"required,uuid"`
	Type           string   `json:"type"            binding:"required,oneof=CHANGE_DATE FIND_REPLACEMENT"`
	Reason         string   `json:"reason"          binding:"required,min=5,max=1000"`
	PreferredDates []string `json:"preferred_dates" binding:"omitempty,dive,datetime=2006-01-02"`
}

// DecideAppealRequest 裁决申诉请求
// 驳回时 AdminResponse 必填，批准时可选
type DecideAppealRequest struct {
	Status        string  `json:"status"         binding:"required,oneof=APPROVED REJECTED"`
	AdminResponse *string `json:"admin_response" binding:"omitempty,max=1000"`
}

// AppealListRequest 申诉列表查询参数
type AppealListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	PaginationRequest
}

// AppealResponse 申诉响应
type AppealResponse struct {
	ID             string            `json:"id"`
	Schedule       *ScheduleResponse `json:"schedule,omitempty"`
	UserID         string            `json:"user_id"`
	UserName       string            `json:"user_name,omitempty"`
	Type           string            `json:"type"`
	Reason         string            `json:"reason"`
	PreferredDates []string          `json:"preferred_dates,omitempty"`
	Status         string            `json:"status"`
	AdminResponse  *string           `json:"admin_response,omitempty"`
	IsRead         bool              `json:"is_read"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}
