package model

import "time"

// 考试时段常量
const (
	TimeOptionMorning   = "MORNING"
	TimeOptionAfternoon = "AFTERNOON"
)

// Schedule 监考场次表 — 对应 schedules
//
// 不变式：InvigilatorID 非空 ⇔ 场次不再开放；QuotaFilled 是
// DepartmentQuota <= 0 的派生值，二者必须在同一事务内同步更新。
type Schedule struct {
	ScheduleID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	Date            time.Time `gorm:"type:date;not null"                             json:"date"`
	StartTime       time.Time `gorm:"not null"                                       json:"start_time"`
	EndTime         time.Time `gorm:"not null"                                       json:"end_time"`
	TimeOption      string    `gorm:"type:varchar(20);not null;default:'MORNING'"    json:"time_option"` // MORNING | AFTERNOON
	RoomID          string    `gorm:"type:uuid;not null"                             json:"room_id"`
	SubjectGroupID  string    `gorm:"type:uuid;not null"                             json:"subject_group_id"`
	InvigilatorID   *string   `gorm:"type:uuid;index"                                json:"invigilator_id,omitempty"`
	DepartmentQuota int       `gorm:"not null;default:0"                             json:"department_quota"`
	QuotaFilled     bool      `gorm:"not null;default:false"                         json:"quota_filled"`
	Priority        bool      `gorm:"not null;default:false"                         json:"priority"`  // 优先保留给归属院系
	IsGenEd         bool      `gorm:"not null;default:false"                         json:"is_gen_ed"` // 冗余快照（来自 Subject.IsGenEd）
	Note            *string   `gorm:"type:varchar(500)"                              json:"note,omitempty"` // 申诉批准后的批注
	VersionedModel

	// 关联
	Room         *Room         `gorm:"foreignKey:RoomID;references:RoomID"                     json:"room,omitempty"`
	SubjectGroup *SubjectGroup `gorm:"foreignKey:SubjectGroupID;references:SubjectGroupID"     json:"subject_group,omitempty"`
	Invigilator  *Invigilator  `gorm:"foreignKey:InvigilatorID;references:InvigilatorID"       json:"invigilator,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// IsOpen 场次是否开放认领
func (s *Schedule) IsOpen() bool {
	return s.InvigilatorID == nil
}

// TimeSlotKey 同日同时段去重用的键（日期 + 时段）
func (s *Schedule) TimeSlotKey() string {
	return s.Date.Format("2006-01-02") + "-" + s.TimeOption
}
