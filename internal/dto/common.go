package dto

// ── 通用分页 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── 简要信息 ──

// DepartmentBrief 院系简要信息
type DepartmentBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// RoomBrief 考场简要信息
type RoomBrief struct {
	ID         string `json:"id"`
	Building   string `json:"building"`
	RoomNumber string `json:"room_number"`
}

// SubjectBrief 课程简要信息
type SubjectBrief struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	IsGenEd bool   `json:"is_gen_ed"`
}

// InvigilatorBrief 监考员简要信息
type InvigilatorBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
