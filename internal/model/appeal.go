package model

// 申诉类型常量
const (
	AppealTypeChangeDate      = "CHANGE_DATE"      // 申请更换考试日期
	AppealTypeFindReplacement = "FIND_REPLACEMENT" // 申请寻找替补监考
)

// 申诉状态常量
const (
	AppealStatusPending  = "PENDING"
	AppealStatusApproved = "APPROVED"
	AppealStatusRejected = "REJECTED"
)

// Appeal 监考申诉表 — 对应 appeals
// 状态机：PENDING → APPROVED | REJECTED（两者均为终态，不可再变更）
type Appeal struct {
	AppealID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"appeal_id"`
	ScheduleID     string    `gorm:"type:uuid;not null"                             json:"schedule_id"`
	UserID         string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type           string    `gorm:"type:varchar(30);not null"                      json:"type"` // CHANGE_DATE | FIND_REPLACEMENT
	Reason         string    `gorm:"type:varchar(500);not null"                     json:"reason"`
	PreferredDates DateArray `gorm:"type:date[]"                                    json:"preferred_dates,omitempty"` // 仅 CHANGE_DATE 使用，按偏好排序
	Status         string    `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	AdminResponse  *string   `gorm:"type:varchar(500)"                              json:"admin_response,omitempty"` // REJECTED 时必填
	IsRead         bool      `gorm:"not null;default:false"                         json:"is_read"`
	VersionedModel

	// 关联
	Schedule *Schedule `gorm:"foreignKey:ScheduleID;references:ScheduleID" json:"schedule,omitempty"`
	User     *User     `gorm:"foreignKey:UserID;references:UserID"         json:"user,omitempty"`
}

// TableName 指定表名
func (Appeal) TableName() string { return "appeals" }

// IsTerminal 是否已处于终态
func (a *Appeal) IsTerminal() bool {
	return a.Status == AppealStatusApproved || a.Status == AppealStatusRejected
}
