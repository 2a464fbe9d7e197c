package model

// 监考人员类型常量
const (
	InvigilatorTypeProfessor = "professor" // 教师（任课老师）
	InvigilatorTypeStaff     = "staff"     // 普通职工
)

// Invigilator 监考人员表 — 对应 invigilators
//
// 配额不变式：AssignedQuota >= 0 恒成立；AssignedQuota 超过 Quota
// 只允许出现在管理路径（合并、管理员直接指派、任课教师认领自己授课的场次），
// 自助认领永远不能越过 Quota。AssignedQuota 只能经 AssignmentService 变更。
type Invigilator struct {
	InvigilatorID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invigilator_id"`
	Name          string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Type          string  `gorm:"type:varchar(20);not null"                      json:"type"` // professor | staff
	DepartmentID  string  `gorm:"type:uuid;not null"                             json:"department_id"`
	ProfessorID   *string `gorm:"type:uuid;uniqueIndex"                          json:"professor_id,omitempty"`
	UserID        *string `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	Quota         int     `gorm:"not null;default:0"                             json:"quota"`
	AssignedQuota int     `gorm:"not null;default:0"                             json:"assigned_quota"`
	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	Professor  *Professor  `gorm:"foreignKey:ProfessorID;references:ProfessorID"   json:"professor,omitempty"`
}

// TableName 指定表名
func (Invigilator) TableName() string { return "invigilators" }

// HasRemainingQuota 是否还有剩余配额
func (i *Invigilator) HasRemainingQuota() bool {
	return i.AssignedQuota < i.Quota
}
