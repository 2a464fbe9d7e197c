package model

import "time"

// 配额重算范围常量
const (
	QuotaScopeGlobal     = "global"
	QuotaScopeDepartment = "department"
)

// QuotaRecompute 配额重算版本记录 — 对应 quota_recomputes
// 每次全量重算写一行；重算对配额的全部写入与该行在同一事务内提交，
// 中途崩溃不会留下新旧混杂的配额
type QuotaRecompute struct {
	RecomputeID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"recompute_id"`
	Scope          string    `gorm:"type:varchar(20);not null;default:'global'"     json:"scope"` // global | department
	DepartmentID   *string   `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	TotalSlots     int       `gorm:"not null"                                       json:"total_slots"`
	ProfessorCount int       `gorm:"not null"                                       json:"professor_count"`
	StaffCount     int       `gorm:"not null"                                       json:"staff_count"`
	ProfessorQuota int       `gorm:"not null"                                       json:"professor_quota"`
	StaffBaseQuota int       `gorm:"not null"                                       json:"staff_base_quota"`
	Leftover       int       `gorm:"not null"                                       json:"leftover"` // staffCount=0 时未能分配的余量
	RunBy          *string   `gorm:"type:uuid"                                      json:"run_by,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (QuotaRecompute) TableName() string { return "quota_recomputes" }
