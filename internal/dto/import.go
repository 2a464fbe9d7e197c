package dto

// ── 名册导入 DTO ──

// ImportRosterResponse 名册导入结果
type ImportRosterResponse struct {
	Imported int      `json:"imported"` // 新建的监考员数
	Skipped  int      `json:"skipped"`  // 去重跳过的行数
	Errors   []string `json:"errors,omitempty"`
}
