package model

// Subject 课程表 — 对应 subjects
type Subject struct {
	SubjectID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Code         string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	DepartmentID string `gorm:"type:uuid;not null"                             json:"department_id"`
	IsGenEd      bool   `gorm:"not null;default:false"                         json:"is_gen_ed"` // 通识课：任何院系均可监考
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// SubjectGroup 教学班表 — 对应 subject_groups
// 教学班决定监考场次的归属院系（经 Subject.DepartmentID）与任课教师
type SubjectGroup struct {
	SubjectGroupID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_group_id"`
	GroupNumber    string  `gorm:"type:varchar(10);not null"                      json:"group_number"`
	Year           int     `gorm:"not null"                                       json:"year"`
	StudentCount   int     `gorm:"not null;default:0"                             json:"student_count"`
	SubjectID      string  `gorm:"type:uuid;not null"                             json:"subject_id"`
	ProfessorID    *string `gorm:"type:uuid"                                      json:"professor_id,omitempty"`
	BaseModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	// 主讲教师
	Professor *Professor `gorm:"foreignKey:ProfessorID;references:ProfessorID" json:"professor,omitempty"`
	// 副讲教师
	AdditionalProfessors []Professor `gorm:"many2many:subject_group_professors;joinForeignKey:SubjectGroupID;joinReferences:ProfessorID" json:"additional_professors,omitempty"`
}

// TableName 指定表名
func (SubjectGroup) TableName() string { return "subject_groups" }

// TaughtBy 判断某教师是否任课（主讲或副讲）
func (g *SubjectGroup) TaughtBy(professorID string) bool {
	if g.ProfessorID != nil && *g.ProfessorID == professorID {
		return true
	}
	for _, p := range g.AdditionalProfessors {
		if p.ProfessorID == professorID {
			return true
		}
	}
	return false
}
