package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSchedules  = errors.New("没有可导出的监考场次")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportSchedulesXLSX 导出全部场次台账为 Excel（管理员）
	ExportSchedulesXLSX(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportMyScheduleICS 导出当前用户的监考安排为 iCalendar
	ExportMyScheduleICS(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSchedulesXLSX — 导出监考台账为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "监考台账"
//   - 列：日期 | 时段 | 时间 | 课程 | 教学班 | 考场 | 监考人 | 院系名额 | 备注
//   - 未认领的场次监考人显示 "未认领"

func (s *exportService) ExportSchedulesXLSX(ctx context.Context) (*bytes.Buffer, string, error) {
	schedules, _, err := s.repo.Schedule.List(ctx, 0, 10000)
	if err != nil {
		s.logger.Error("查询场次失败", zap.Error(err))
		return nil, "", err
	}
	if len(schedules) == 0 {
		return nil, "", ErrExportNoSchedules
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "监考台账"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	widths := []struct {
		col   string
		width float64
	}{
		{"A", 12}, {"B", 12}, {"C", 14}, {"D", 24}, {"E", 10},
		{"F", 14}, {"G", 18}, {"H", 10}, {"I", 30},
	}
	for _, w := range widths {
		f.SetColWidth(sheetName, w.col, w.col, w.width)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"日期", "时段", "时间", "课程", "教学班", "考场", "监考人", "院系名额", "备注"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	timeOptionNames := map[string]string{
		model.TimeOptionMorning:   "上午",
		model.TimeOptionAfternoon: "下午",
	}

	row := 2
	for i := range schedules {
		sched := &schedules[i]

		subjectText := "-"
		groupText := "-"
		if sched.SubjectGroup != nil {
			groupText = sched.SubjectGroup.GroupNumber
			if sched.SubjectGroup.Subject != nil {
				subjectText = fmt.Sprintf("%s %s", sched.SubjectGroup.Subject.Code, sched.SubjectGroup.Subject.Name)
			}
		}
		roomText := "-"
		if sched.Room != nil {
			roomText = fmt.Sprintf("%s %s", sched.Room.Building, sched.Room.RoomNumber)
		}
		invText := "未认领"
		if sched.Invigilator != nil {
			invText = sched.Invigilator.Name
		}
		noteText := ""
		if sched.Note != nil {
			noteText = *sched.Note
		}

		values := []interface{}{
			sched.Date.Format("2006-01-02"),
			timeOptionNames[sched.TimeOption],
			fmt.Sprintf("%s-%s", sched.StartTime.Format("15:04"), sched.EndTime.Format("15:04")),
			subjectText,
			groupText,
			roomText,
			invText,
			sched.DepartmentQuota,
			noteText,
		}
		for j, v := range values {
			f.SetCellValue(sheetName, cell(colName(j), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("监考台账_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportMyScheduleICS — 导出个人监考安排为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportMyScheduleICS(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	inv, err := s.repo.Invigilator.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNoInvigilatorRecord
		}
		s.logger.Error("查询监考档案失败", zap.Error(err))
		return nil, "", err
	}

	schedules, err := s.repo.Schedule.ListByInvigilator(ctx, inv.InvigilatorID)
	if err != nil {
		s.logger.Error("查询我的监考失败", zap.Error(err))
		return nil, "", err
	}
	if len(schedules) == 0 {
		return nil, "", ErrExportNoSchedules
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//exam-invigilator//schedule//CN")

	for i := range schedules {
		sched := &schedules[i]

		event := cal.AddEvent(fmt.Sprintf("%s@exam-invigilator", sched.ScheduleID))
		event.SetCreatedTime(sched.CreatedAt)
		event.SetDtStampTime(time.Now())
		event.SetStartAt(combineDateTime(sched.Date, sched.StartTime))
		event.SetEndAt(combineDateTime(sched.Date, sched.EndTime))

		summary := "监考"
		if sched.SubjectGroup != nil && sched.SubjectGroup.Subject != nil {
			summary = fmt.Sprintf("监考：%s", sched.SubjectGroup.Subject.Name)
		}
		event.SetSummary(summary)

		if sched.Room != nil {
			event.SetLocation(fmt.Sprintf("%s %s", sched.Room.Building, sched.Room.RoomNumber))
		}
		if sched.Note != nil {
			event.SetDescription(*sched.Note)
		}
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("写入 ICS 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("我的监考_%s.ics", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

// combineDateTime 把"日期 + 钟点"合成单个时间点
func combineDateTime(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, date.Location())
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
