package service

import (
	"errors"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
)

// ── 认领资格错误 ──

var (
	ErrNotEligible    = errors.New("不符合该场次的认领条件")
	ErrQuotaExceeded  = errors.New("个人监考配额已用尽")
	ErrSlotNotOpen    = errors.New("该场次不开放认领")
	ErrDeptQuotaEmpty = errors.New("该场次的院系名额已用尽")
)

// claimEligibility 认领资格判定结果
type claimEligibility struct {
	eligible bool
	// teachingOverride 任课教师认领自己授课的场次，不受个人剩余配额限制
	teachingOverride bool
}

// evaluateClaim 判定监考人员能否认领某场次（纯函数，不触库）
//
// 满足下列任一条件即具备资格：
//  1. 优先场次 + 院系名额 > 0 + 监考人员属于该场次的归属院系
//  2. 通识课场次 + 院系名额 > 0（任何院系均可）
//  3. 监考人员是该教学班的任课教师（主讲或副讲）
//  4. 非优先场次 + 院系名额 > 0
//
// 除条件 3 外，还须有个人剩余配额（assigned_quota < quota）。
// group 允许为 nil（场次未关联教学班时条件 3 恒不成立）。
func evaluateClaim(inv *model.Invigilator, sched *model.Schedule, group *model.SubjectGroup) claimEligibility {
	if !sched.IsOpen() {
		return claimEligibility{}
	}

	var subjectDeptID string
	if group != nil && group.Subject != nil {
		subjectDeptID = group.Subject.DepartmentID
	}

	// 条件 3：任课教师直通
	if inv.Type == model.InvigilatorTypeProfessor && inv.ProfessorID != nil &&
		group != nil && group.TaughtBy(*inv.ProfessorID) {
		return claimEligibility{eligible: true, teachingOverride: true}
	}

	hasDeptQuota := sched.DepartmentQuota > 0
	switch {
	case sched.Priority && hasDeptQuota && inv.DepartmentID == subjectDeptID:
		// 条件 1
	case sched.IsGenEd && hasDeptQuota:
		// 条件 2
	case !sched.Priority && hasDeptQuota:
		// 条件 4
	default:
		return claimEligibility{}
	}

	if !inv.HasRemainingQuota() {
		return claimEligibility{}
	}
	return claimEligibility{eligible: true}
}

// claimError 将不合格原因映射为具体业务错误，便于前端提示
func claimError(inv *model.Invigilator, sched *model.Schedule, group *model.SubjectGroup) error {
	if !sched.IsOpen() {
		return ErrSlotNotOpen
	}
	if sched.DepartmentQuota <= 0 {
		return ErrDeptQuotaEmpty
	}
	// 院系名额尚在但仍不合格：要么个人配额用尽，要么院系不匹配
	probe := *inv
	probe.AssignedQuota = 0
	if probe.Quota == 0 {
		probe.Quota = 1
	}
	if evaluateClaim(&probe, sched, group).eligible {
		return ErrQuotaExceeded
	}
	return ErrNotEligible
}
