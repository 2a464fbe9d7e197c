package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
)

// ── 测试辅助 ──

func setupTestInvigilatorService() (InvigilatorService, *testRepos) {
	repos := newTestRepos()
	svc := NewInvigilatorService(testConfig(), repos.toRepository(), zap.NewNop())
	return svc, repos
}

// seedMergeData 种子数据：同名重复建档的两个职工，source 名下 2 个已认领场次
func seedMergeData(repos *testRepos) {
	ctx := context.Background()
	repos.department.depts["dept-1"] = &model.Department{DepartmentID: "dept-1", Name: "计算机学院", Code: "CS", IsActive: true}

	_ = repos.invigilator.Create(ctx, &model.Invigilator{
		InvigilatorID: "inv-src", Name: "陈明", Type: model.InvigilatorTypeStaff,
		DepartmentID: "dept-1", Quota: 3, AssignedQuota: 2,
	})
	_ = repos.invigilator.Create(ctx, &model.Invigilator{
		InvigilatorID: "inv-dst", Name: "陈 明", Type: model.InvigilatorTypeStaff,
		DepartmentID: "dept-1", Quota: 3, AssignedQuota: 1,
	})

	src := "inv-src"
	dst := "inv-dst"
	for i, owner := range []*string{&src, &src, &dst} {
		_ = repos.schedule.Create(ctx, &model.Schedule{
			Date:          time.Now().AddDate(0, 0, 7+i),
			RoomID:        "room-1",
			InvigilatorID: owner,
		})
	}
}

// ════════════════════════════════════════════════════════════
// Merge 测试
// ════════════════════════════════════════════════════════════

func TestInvigilatorService_Merge_Success(t *testing.T) {
	svc, repos := setupTestInvigilatorService()
	seedMergeData(repos)
	ctx := context.Background()

	resp, err := svc.Merge(ctx, &dto.MergeInvigilatorRequest{
		SourceID: "inv-src",
		TargetID: "inv-dst",
	}, "admin-1")
	if err != nil {
		t.Fatalf("Merge 应成功: %v", err)
	}

	if resp.TransferredSlot != 2 {
		t.Errorf("应转移 2 个场次，实际 %d", resp.TransferredSlot)
	}
	// 目标继承来源的已分配配额：1 + 2 = 3
	if resp.AssignedQuota != 3 {
		t.Errorf("合并后已分配配额期望 3，实际 %d", resp.AssignedQuota)
	}

	// source 已删除
	if _, err := repos.invigilator.GetByID(ctx, "inv-src"); err == nil {
		t.Error("来源档案应已删除")
	}

	// 全部场次归属 target
	mine, _ := repos.schedule.ListByInvigilator(ctx, "inv-dst")
	if len(mine) != 3 {
		t.Errorf("目标名下应有 3 个场次，实际 %d", len(mine))
	}
	orphan, _ := repos.schedule.ListByInvigilator(ctx, "inv-src")
	if len(orphan) != 0 {
		t.Errorf("来源名下不应再有场次，实际 %d", len(orphan))
	}
}

func TestInvigilatorService_Merge_Self(t *testing.T) {
	svc, repos := setupTestInvigilatorService()
	seedMergeData(repos)

	_, err := svc.Merge(context.Background(), &dto.MergeInvigilatorRequest{
		SourceID: "inv-src",
		TargetID: "inv-src",
	}, "admin-1")
	if !errors.Is(err, ErrMergeSelf) {
		t.Errorf("期望 ErrMergeSelf，实际: %v", err)
	}
}

// 合并前置条件只有 source != target 且双方存在，跨类型合并同样允许
func TestInvigilatorService_Merge_CrossType(t *testing.T) {
	svc, repos := setupTestInvigilatorService()
	seedMergeData(repos)
	ctx := context.Background()

	profID := "prof-x"
	_ = repos.invigilator.Create(ctx, &model.Invigilator{
		InvigilatorID: "inv-prof-x", Name: "陈明", Type: model.InvigilatorTypeProfessor,
		DepartmentID: "dept-1", ProfessorID: &profID, Quota: 4,
	})

	resp, err := svc.Merge(ctx, &dto.MergeInvigilatorRequest{
		SourceID: "inv-src",
		TargetID: "inv-prof-x",
	}, "admin-1")
	if err != nil {
		t.Fatalf("跨类型合并应成功: %v", err)
	}
	if resp.TransferredSlot != 2 {
		t.Errorf("应转移 2 个场次，实际 %d", resp.TransferredSlot)
	}
	if resp.AssignedQuota != 2 {
		t.Errorf("合并后已分配配额期望 2，实际 %d", resp.AssignedQuota)
	}
}

// 合并请求校验与事务执行之间 source 又被并发认领：
// 继承值必须取事务内重读的 assigned_quota，不能用过期快照
func TestInvigilatorService_Merge_InheritsConcurrentClaim(t *testing.T) {
	svc, repos := setupTestInvigilatorService()
	seedMergeData(repos)
	ctx := context.Background()

	// 首次 GetByID（事务外）返回后，模拟一笔已提交的并发认领落在 source 上
	repos.invigilator.afterGet = func() {
		src := repos.invigilator.invigilators["inv-src"]
		src.AssignedQuota++
		src.Version++
		owner := "inv-src"
		_ = repos.schedule.Create(ctx, &model.Schedule{
			Date:          time.Now().AddDate(0, 0, 30),
			RoomID:        "room-9",
			InvigilatorID: &owner,
		})
	}

	resp, err := svc.Merge(ctx, &dto.MergeInvigilatorRequest{
		SourceID: "inv-src",
		TargetID: "inv-dst",
	}, "admin-1")
	if err != nil {
		t.Fatalf("Merge 应成功: %v", err)
	}

	// 并发认领的第 3 个场次一并转移，继承值为最新的 3 而不是快照的 2
	if resp.TransferredSlot != 3 {
		t.Errorf("应转移 3 个场次，实际 %d", resp.TransferredSlot)
	}
	if resp.AssignedQuota != 4 {
		t.Errorf("合并后已分配配额期望 1+3=4，实际 %d", resp.AssignedQuota)
	}

	mine, _ := repos.schedule.ListByInvigilator(ctx, "inv-dst")
	if len(mine) != 4 {
		t.Errorf("目标名下应有 4 个场次，实际 %d", len(mine))
	}
}

func TestInvigilatorService_Merge_SourceNotFound(t *testing.T) {
	svc, repos := setupTestInvigilatorService()
	seedMergeData(repos)

	_, err := svc.Merge(context.Background(), &dto.MergeInvigilatorRequest{
		SourceID: "nonexistent",
		TargetID: "inv-dst",
	}, "admin-1")
	if !errors.Is(err, ErrInvigilatorNotFound) {
		t.Errorf("期望 ErrInvigilatorNotFound，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// Create / List 测试
// ════════════════════════════════════════════════════════════

func TestInvigilatorService_Create_DefaultQuota(t *testing.T) {
	svc, repos := setupTestInvigilatorService()
	repos.department.depts["dept-1"] = &model.Department{DepartmentID: "dept-1", Name: "计算机学院", Code: "CS", IsActive: true}
	ctx := context.Background()

	staff, err := svc.Create(ctx, &dto.CreateInvigilatorRequest{
		Name: "新职工", Type: model.InvigilatorTypeStaff, DepartmentID: "dept-1",
	}, "admin-1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if staff.Quota != 3 {
		t.Errorf("职工默认配额期望 3，实际 %d", staff.Quota)
	}

	prof, err := svc.Create(ctx, &dto.CreateInvigilatorRequest{
		Name: "新教师", Type: model.InvigilatorTypeProfessor, DepartmentID: "dept-1",
	}, "admin-1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if prof.Quota != 4 {
		t.Errorf("教师默认配额期望 4，实际 %d", prof.Quota)
	}
}

// 同院系同名（大小写不敏感）视为重复
func TestInvigilatorService_Create_DuplicateName(t *testing.T) {
	svc, repos := setupTestInvigilatorService()
	repos.department.depts["dept-1"] = &model.Department{DepartmentID: "dept-1", Name: "计算机学院", Code: "CS", IsActive: true}
	ctx := context.Background()

	if _, err := svc.Create(ctx, &dto.CreateInvigilatorRequest{
		Name: "Somchai", Type: model.InvigilatorTypeStaff, DepartmentID: "dept-1",
	}, "admin-1"); err != nil {
		t.Fatalf("首次 Create 应成功: %v", err)
	}

	_, err := svc.Create(ctx, &dto.CreateInvigilatorRequest{
		Name: "somchai", Type: model.InvigilatorTypeStaff, DepartmentID: "dept-1",
	}, "admin-1")
	if !errors.Is(err, ErrDuplicateInvigilator) {
		t.Errorf("期望 ErrDuplicateInvigilator，实际: %v", err)
	}
}

func TestInvigilatorService_List_RemainingClamped(t *testing.T) {
	svc, repos := setupTestInvigilatorService()
	seedMergeData(repos)
	ctx := context.Background()

	// 超额状态（管理路径允许）下 Remaining 不为负
	repos.invigilator.invigilators["inv-src"].AssignedQuota = 5

	list, err := svc.List(ctx, &dto.InvigilatorListRequest{DepartmentID: "dept-1"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	for _, item := range list {
		if item.ID == "inv-src" && item.Remaining != 0 {
			t.Errorf("超额时 Remaining 应钳为 0，实际 %d", item.Remaining)
		}
	}
}
