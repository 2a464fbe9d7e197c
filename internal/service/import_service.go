package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/config"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/repository"
)

// ── 导入模块业务错误 ──

var (
	ErrImportInvalidFile = errors.New("名册文件无法解析，请使用 .xlsx 格式")
	ErrImportEmptyFile   = errors.New("名册文件没有任何数据行")
)

// ImportService 职工名册导入业务接口
//
// 名册格式（首行为表头，从第 2 行起为数据）：
//   - A 列：姓名（必填）
//   - B 列：院系代码（必填，须已建档）
//   - C 列：配额（可选，缺省取 quota.staff_default）
//
// 去重规则：同院系内姓名大小写不敏感匹配，已存在则跳过该行。
type ImportService interface {
	// ImportStaffRoster 导入职工名册，逐行建档并汇总结果
	ImportStaffRoster(ctx context.Context, r io.Reader, callerID string) (*dto.ImportRosterResponse, error)
}

type importService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ImportService {
	return &importService{cfg: cfg, repo: repo, logger: logger}
}

func (s *importService) ImportStaffRoster(ctx context.Context, r io.Reader, callerID string) (*dto.ImportRosterResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrImportInvalidFile
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrImportInvalidFile
	}
	if len(rows) <= 1 {
		return nil, ErrImportEmptyFile
	}

	resp := &dto.ImportRosterResponse{}

	// 院系代码 → ID 的行内缓存，避免逐行查库
	deptCache := make(map[string]string)

	for i, row := range rows[1:] {
		lineNo := i + 2 // Excel 行号（含表头）

		name := cellAt(row, 0)
		deptCode := cellAt(row, 1)
		if name == "" || deptCode == "" {
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行：姓名或院系代码为空", lineNo))
			continue
		}

		deptID, ok := deptCache[deptCode]
		if !ok {
			dept, err := s.repo.Department.GetByCode(ctx, deptCode)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行：院系代码 %s 不存在", lineNo, deptCode))
					continue
				}
				s.logger.Error("查询院系失败", zap.Error(err))
				return nil, err
			}
			deptID = dept.DepartmentID
			deptCache[deptCode] = deptID
		}

		// 同院系同名（大小写不敏感）去重
		exists, err := s.repo.Invigilator.ExistsByNameInDepartment(ctx, name, deptID, model.InvigilatorTypeStaff)
		if err != nil {
			s.logger.Error("查询重名失败", zap.Error(err))
			return nil, err
		}
		if exists {
			resp.Skipped++
			continue
		}

		quota := s.cfg.Quota.StaffDefault
		if raw := cellAt(row, 2); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行：配额 %q 不是有效数字", lineNo, raw))
				continue
			}
			quota = n
		}

		inv := &model.Invigilator{
			Name:         name,
			Type:         model.InvigilatorTypeStaff,
			DepartmentID: deptID,
			Quota:        quota,
		}
		inv.CreatedBy = &callerID

		if err := s.repo.Invigilator.Create(ctx, inv); err != nil {
			s.logger.Error("导入建档失败", zap.String("name", name), zap.Error(err))
			resp.Errors = append(resp.Errors, fmt.Sprintf("第 %d 行：建档失败", lineNo))
			continue
		}
		resp.Imported++
	}

	if err := s.repo.Activity.Create(ctx, &model.Activity{
		Type:        model.ActivityImport,
		Description: fmt.Sprintf("导入职工名册：新建 %d 人，跳过 %d 行", resp.Imported, resp.Skipped),
		UserID:      &callerID,
	}); err != nil {
		s.logger.Warn("写入导入日志失败", zap.Error(err))
	}

	s.logger.Info("名册导入完成",
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped),
		zap.Int("errors", len(resp.Errors)),
	)
	return resp, nil
}

// cellAt 安全取行内第 idx 列（行可能短于表头）
func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
