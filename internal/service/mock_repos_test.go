package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/repository"
	pkgerrors "github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/errors"
)

// ── Mock TxManager ──
// fn 直接收到同一个聚合：内存实现没有真正的回滚，
// 测试里只校验成功路径的最终状态与失败路径的错误返回。

type mockTxManager struct {
	repo *repository.Repository
}

func (m *mockTxManager) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	return fn(m.repo)
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "u-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	depts map[string]*model.Department
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{depts: make(map[string]*model.Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Code
	}
	m.depts[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) GetByCode(_ context.Context, code string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.Code == code {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) List(_ context.Context, includeInactive bool) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.depts {
		if !includeInactive && !d.IsActive {
			continue
		}
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	m.depts[dept.DepartmentID] = dept
	return nil
}

// ── Mock ProfessorRepository ──

type mockProfessorRepo struct {
	professors map[string]*model.Professor
}

func newMockProfessorRepo() *mockProfessorRepo {
	return &mockProfessorRepo{professors: make(map[string]*model.Professor)}
}

func (m *mockProfessorRepo) Create(_ context.Context, prof *model.Professor) error {
	if prof.ProfessorID == "" {
		prof.ProfessorID = "prof-" + prof.Name
	}
	m.professors[prof.ProfessorID] = prof
	return nil
}

func (m *mockProfessorRepo) GetByID(_ context.Context, id string) (*model.Professor, error) {
	if p, ok := m.professors[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfessorRepo) List(_ context.Context) ([]model.Professor, error) {
	var result []model.Professor
	for _, p := range m.professors {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockProfessorRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.professors)), nil
}

func (m *mockProfessorRepo) CountByDepartment(_ context.Context, departmentID string) (int64, error) {
	var n int64
	for _, p := range m.professors {
		if p.DepartmentID == departmentID {
			n++
		}
	}
	return n, nil
}

// ── Mock InvigilatorRepository ──

type mockInvigilatorRepo struct {
	invigilators map[string]*model.Invigilator
	idCounter    int
	seq          map[string]int // 固定枚举序：按插入顺序
	// afterGet 在 GetByID 返回快照后执行，用于模拟并发写入
	afterGet func()
}

func newMockInvigilatorRepo() *mockInvigilatorRepo {
	return &mockInvigilatorRepo{
		invigilators: make(map[string]*model.Invigilator),
		seq:          make(map[string]int),
	}
}

func (m *mockInvigilatorRepo) Create(_ context.Context, inv *model.Invigilator) error {
	m.idCounter++
	if inv.InvigilatorID == "" {
		inv.InvigilatorID = fmt.Sprintf("inv-%d", m.idCounter)
	}
	inv.CreatedAt = time.Now()
	m.invigilators[inv.InvigilatorID] = inv
	m.seq[inv.InvigilatorID] = m.idCounter
	return nil
}

// GetByID 返回快照副本（与 GORM First 一致），供并发语义测试使用
func (m *mockInvigilatorRepo) GetByID(_ context.Context, id string) (*model.Invigilator, error) {
	inv, ok := m.invigilators[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	snapshot := *inv
	if m.afterGet != nil {
		hook := m.afterGet
		m.afterGet = nil
		hook()
	}
	return &snapshot, nil
}

func (m *mockInvigilatorRepo) GetByUserID(_ context.Context, userID string) (*model.Invigilator, error) {
	for _, inv := range m.invigilators {
		if inv.UserID != nil && *inv.UserID == userID {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvigilatorRepo) GetByProfessorID(_ context.Context, professorID string) (*model.Invigilator, error) {
	for _, inv := range m.invigilators {
		if inv.ProfessorID != nil && *inv.ProfessorID == professorID {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ordered 按插入顺序返回（对应 created_at ASC, invigilator_id ASC）
func (m *mockInvigilatorRepo) ordered(filter func(*model.Invigilator) bool) []model.Invigilator {
	var ids []string
	for id, inv := range m.invigilators {
		if filter(inv) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return m.seq[ids[i]] < m.seq[ids[j]] })
	result := make([]model.Invigilator, 0, len(ids))
	for _, id := range ids {
		result = append(result, *m.invigilators[id])
	}
	return result
}

func (m *mockInvigilatorRepo) ListByType(_ context.Context, invType string) ([]model.Invigilator, error) {
	return m.ordered(func(i *model.Invigilator) bool { return i.Type == invType }), nil
}

func (m *mockInvigilatorRepo) ListByDepartmentAndType(_ context.Context, departmentID, invType string) ([]model.Invigilator, error) {
	return m.ordered(func(i *model.Invigilator) bool {
		return i.DepartmentID == departmentID && i.Type == invType
	}), nil
}

func (m *mockInvigilatorRepo) ListByDepartment(_ context.Context, departmentID string) ([]model.Invigilator, error) {
	return m.ordered(func(i *model.Invigilator) bool { return i.DepartmentID == departmentID }), nil
}

func (m *mockInvigilatorRepo) ExistsByNameInDepartment(_ context.Context, name, departmentID, invType string) (bool, error) {
	for _, inv := range m.invigilators {
		if inv.DepartmentID == departmentID && inv.Type == invType &&
			strings.EqualFold(inv.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockInvigilatorRepo) AdjustAssignedQuota(_ context.Context, id string, delta int) error {
	inv, ok := m.invigilators[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.AssignedQuota += delta
	if inv.AssignedQuota < 0 {
		inv.AssignedQuota = 0 // GREATEST(assigned_quota + delta, 0)
	}
	inv.Version++
	return nil
}

func (m *mockInvigilatorRepo) SetQuota(_ context.Context, id string, quota, assignedQuota int) error {
	inv, ok := m.invigilators[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.Quota = quota
	inv.AssignedQuota = assignedQuota
	inv.Version++
	return nil
}

func (m *mockInvigilatorRepo) Delete(_ context.Context, id string, expectedVersion int, _ string) error {
	inv, ok := m.invigilators[id]
	if !ok || inv.Version != expectedVersion {
		return pkgerrors.ErrOptimisticLock
	}
	delete(m.invigilators, id)
	delete(m.seq, id)
	return nil
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms map[string]*model.Room
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *mockRoomRepo) Create(_ context.Context, room *model.Room) error {
	if room.RoomID == "" {
		room.RoomID = "room-" + room.Building + room.RoomNumber
	}
	m.rooms[room.RoomID] = room
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) GetByBuildingAndNumber(_ context.Context, building, roomNumber string) (*model.Room, error) {
	for _, r := range m.rooms {
		if r.Building == building && r.RoomNumber == roomNumber {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) List(_ context.Context) ([]model.Room, error) {
	var result []model.Room
	for _, r := range m.rooms {
		result = append(result, *r)
	}
	return result, nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		subject.SubjectID = "subj-" + subject.Code
	}
	m.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByCode(_ context.Context, code string) (*model.Subject, error) {
	for _, s := range m.subjects {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) List(_ context.Context) ([]model.Subject, error) {
	var result []model.Subject
	for _, s := range m.subjects {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock SubjectGroupRepository ──

type mockSubjectGroupRepo struct {
	groups   map[string]*model.SubjectGroup
	subjects *mockSubjectRepo
}

func newMockSubjectGroupRepo(subjects *mockSubjectRepo) *mockSubjectGroupRepo {
	return &mockSubjectGroupRepo{groups: make(map[string]*model.SubjectGroup), subjects: subjects}
}

func (m *mockSubjectGroupRepo) Create(_ context.Context, group *model.SubjectGroup) error {
	if group.SubjectGroupID == "" {
		group.SubjectGroupID = "grp-" + group.GroupNumber
	}
	m.groups[group.SubjectGroupID] = group
	return nil
}

func (m *mockSubjectGroupRepo) GetByID(_ context.Context, id string) (*model.SubjectGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// 模拟 Preload Subject
	if g.Subject == nil {
		if s, ok := m.subjects.subjects[g.SubjectID]; ok {
			g.Subject = s
		}
	}
	return g, nil
}

func (m *mockSubjectGroupRepo) ListBySubject(_ context.Context, subjectID string) ([]model.SubjectGroup, error) {
	var result []model.SubjectGroup
	for _, g := range m.groups {
		if g.SubjectID == subjectID {
			result = append(result, *g)
		}
	}
	return result, nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules    map[string]*model.Schedule
	idCounter    int
	groups       *mockSubjectGroupRepo
	invigilators *mockInvigilatorRepo
	// afterGet 在 GetByID 返回快照后执行，用于模拟并发写入
	afterGet func()
}

func newMockScheduleRepo(groups *mockSubjectGroupRepo, invigilators *mockInvigilatorRepo) *mockScheduleRepo {
	return &mockScheduleRepo{
		schedules:    make(map[string]*model.Schedule),
		groups:       groups,
		invigilators: invigilators,
	}
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	m.idCounter++
	if schedule.ScheduleID == "" {
		schedule.ScheduleID = fmt.Sprintf("sch-%d", m.idCounter)
	}
	schedule.CreatedAt = time.Now()
	m.schedules[schedule.ScheduleID] = schedule
	return nil
}

// attach 模拟 Preload SubjectGroup（含课程）
func (m *mockScheduleRepo) attach(s *model.Schedule) *model.Schedule {
	if s.SubjectGroup == nil && m.groups != nil {
		if g, err := m.groups.GetByID(context.Background(), s.SubjectGroupID); err == nil {
			s.SubjectGroup = g
		}
	}
	return s
}

// GetByID 返回快照副本（与 GORM First 一致），供并发语义测试使用
func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	snapshot := *m.attach(s)
	// 模拟 Preload Invigilator
	if snapshot.Invigilator == nil && snapshot.InvigilatorID != nil && m.invigilators != nil {
		if inv, ok := m.invigilators.invigilators[*snapshot.InvigilatorID]; ok {
			snapshot.Invigilator = inv
		}
	}
	if m.afterGet != nil {
		hook := m.afterGet
		m.afterGet = nil
		hook()
	}
	return &snapshot, nil
}

func (m *mockScheduleRepo) ListOpen(_ context.Context, from time.Time) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.InvigilatorID == nil && !s.Date.Before(from) {
			result = append(result, *m.attach(s))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *mockScheduleRepo) ListByInvigilator(_ context.Context, invigilatorID string) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.InvigilatorID != nil && *s.InvigilatorID == invigilatorID {
			result = append(result, *m.attach(s))
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) List(_ context.Context, offset, limit int) ([]model.Schedule, int64, error) {
	var all []model.Schedule
	for _, s := range m.schedules {
		all = append(all, *m.attach(s))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockScheduleRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.schedules)), nil
}

func (m *mockScheduleRepo) CountByDepartment(ctx context.Context, departmentID string) (int64, error) {
	var n int64
	for _, s := range m.schedules {
		sched := m.attach(s)
		if sched.SubjectGroup != nil && sched.SubjectGroup.Subject != nil &&
			sched.SubjectGroup.Subject.DepartmentID == departmentID {
			n++
		}
	}
	return n, nil
}

func (m *mockScheduleRepo) CountByInvigilator(_ context.Context, invigilatorID string) (int64, error) {
	var n int64
	for _, s := range m.schedules {
		if s.InvigilatorID != nil && *s.InvigilatorID == invigilatorID {
			n++
		}
	}
	return n, nil
}

// ClaimOpen 复刻条件更新语义：只命中开放行，quota_filled 按减扣前取值
func (m *mockScheduleRepo) ClaimOpen(_ context.Context, scheduleID, invigilatorID string, updatedBy string) error {
	s, ok := m.schedules[scheduleID]
	if !ok || s.InvigilatorID != nil {
		return pkgerrors.ErrSlotTaken
	}
	s.InvigilatorID = &invigilatorID
	s.QuotaFilled = s.DepartmentQuota <= 1
	if s.DepartmentQuota > 0 {
		s.DepartmentQuota--
	}
	s.UpdatedBy = &updatedBy
	s.Version++
	return nil
}

// SetInvigilator 复刻版本条件更新：快照版本过期即落空
func (m *mockScheduleRepo) SetInvigilator(_ context.Context, scheduleID string, invigilatorID *string, expectedVersion int, updatedBy string) error {
	s, ok := m.schedules[scheduleID]
	if !ok || s.Version != expectedVersion {
		return pkgerrors.ErrOptimisticLock
	}
	s.InvigilatorID = invigilatorID
	s.UpdatedBy = &updatedBy
	s.Version++
	return nil
}

func (m *mockScheduleRepo) SetNote(_ context.Context, scheduleID, note string, updatedBy string) error {
	s, ok := m.schedules[scheduleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Note = &note
	s.UpdatedBy = &updatedBy
	s.Version++
	return nil
}

func (m *mockScheduleRepo) TransferOwnership(_ context.Context, fromInvigilatorID, toInvigilatorID string) (int64, error) {
	var n int64
	for _, s := range m.schedules {
		if s.InvigilatorID != nil && *s.InvigilatorID == fromInvigilatorID {
			to := toInvigilatorID
			s.InvigilatorID = &to
			s.Version++
			n++
		}
	}
	return n, nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string, expectedVersion int) error {
	s, ok := m.schedules[id]
	if !ok || s.Version != expectedVersion {
		return pkgerrors.ErrOptimisticLock
	}
	delete(m.schedules, id)
	return nil
}

// ── Mock AppealRepository ──

type mockAppealRepo struct {
	appeals   map[string]*model.Appeal
	idCounter int
	schedules *mockScheduleRepo
}

func newMockAppealRepo(schedules *mockScheduleRepo) *mockAppealRepo {
	return &mockAppealRepo{appeals: make(map[string]*model.Appeal), schedules: schedules}
}

func (m *mockAppealRepo) Create(_ context.Context, appeal *model.Appeal) error {
	m.idCounter++
	if appeal.AppealID == "" {
		appeal.AppealID = fmt.Sprintf("appeal-%d", m.idCounter)
	}
	if appeal.Status == "" {
		appeal.Status = model.AppealStatusPending
	}
	appeal.CreatedAt = time.Now()
	m.appeals[appeal.AppealID] = appeal
	return nil
}

func (m *mockAppealRepo) GetByID(_ context.Context, id string) (*model.Appeal, error) {
	a, ok := m.appeals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if a.Schedule == nil && m.schedules != nil {
		if s, err := m.schedules.GetByID(context.Background(), a.ScheduleID); err == nil {
			a.Schedule = s
		}
	}
	return a, nil
}

func (m *mockAppealRepo) ListByUser(_ context.Context, userID string) ([]model.Appeal, error) {
	var result []model.Appeal
	for _, a := range m.appeals {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAppealRepo) List(_ context.Context, status string, offset, limit int) ([]model.Appeal, int64, error) {
	var filtered []model.Appeal
	for _, a := range m.appeals {
		if status != "" && a.Status != status {
			continue
		}
		filtered = append(filtered, *a)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

// DecidePending 复刻条件更新语义：仅 PENDING 行可落终态
func (m *mockAppealRepo) DecidePending(_ context.Context, id, status string, adminResponse *string, decidedBy string) error {
	a, ok := m.appeals[id]
	if !ok || a.Status != model.AppealStatusPending {
		return pkgerrors.ErrAppealDecided
	}
	a.Status = status
	a.AdminResponse = adminResponse
	a.UpdatedBy = &decidedBy
	a.Version++
	return nil
}

func (m *mockAppealRepo) MarkRead(_ context.Context, id string) error {
	a, ok := m.appeals[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.IsRead = true
	return nil
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	activities []model.Activity
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{}
}

func (m *mockActivityRepo) Create(_ context.Context, activity *model.Activity) error {
	activity.CreatedAt = time.Now()
	m.activities = append(m.activities, *activity)
	return nil
}

func (m *mockActivityRepo) List(_ context.Context, offset, limit int) ([]model.Activity, int64, error) {
	total := int64(len(m.activities))
	if offset >= len(m.activities) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(m.activities) {
		end = len(m.activities)
	}
	return m.activities[offset:end], total, nil
}

// ── Mock QuotaRecomputeRepository ──

type mockQuotaRecomputeRepo struct {
	records []model.QuotaRecompute
}

func newMockQuotaRecomputeRepo() *mockQuotaRecomputeRepo {
	return &mockQuotaRecomputeRepo{}
}

func (m *mockQuotaRecomputeRepo) Create(_ context.Context, record *model.QuotaRecompute) error {
	if record.RecomputeID == "" {
		record.RecomputeID = fmt.Sprintf("rc-%d", len(m.records)+1)
	}
	record.CreatedAt = time.Now()
	m.records = append(m.records, *record)
	return nil
}

func (m *mockQuotaRecomputeRepo) ListRecent(_ context.Context, limit int) ([]model.QuotaRecompute, error) {
	result := make([]model.QuotaRecompute, len(m.records))
	copy(result, m.records)
	// 新的在前
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ── 测试聚合 ──

// testRepos 聚合所有 mock repo 便于 seed 数据
type testRepos struct {
	user           *mockUserRepo
	department     *mockDepartmentRepo
	professor      *mockProfessorRepo
	invigilator    *mockInvigilatorRepo
	room           *mockRoomRepo
	subject        *mockSubjectRepo
	subjectGroup   *mockSubjectGroupRepo
	schedule       *mockScheduleRepo
	appeal         *mockAppealRepo
	activity       *mockActivityRepo
	quotaRecompute *mockQuotaRecomputeRepo
}

func newTestRepos() *testRepos {
	subjects := newMockSubjectRepo()
	groups := newMockSubjectGroupRepo(subjects)
	invigilators := newMockInvigilatorRepo()
	schedules := newMockScheduleRepo(groups, invigilators)
	return &testRepos{
		user:           newMockUserRepo(),
		department:     newMockDepartmentRepo(),
		professor:      newMockProfessorRepo(),
		invigilator:    invigilators,
		room:           newMockRoomRepo(),
		subject:        subjects,
		subjectGroup:   groups,
		schedule:       schedules,
		appeal:         newMockAppealRepo(schedules),
		activity:       newMockActivityRepo(),
		quotaRecompute: newMockQuotaRecomputeRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	agg := &repository.Repository{
		User:           r.user,
		Department:     r.department,
		Professor:      r.professor,
		Invigilator:    r.invigilator,
		Room:           r.room,
		Subject:        r.subject,
		SubjectGroup:   r.subjectGroup,
		Schedule:       r.schedule,
		Appeal:         r.appeal,
		Activity:       r.activity,
		QuotaRecompute: r.quotaRecompute,
	}
	agg.Tx = &mockTxManager{repo: agg}
	return agg
}

// ── Mock Publisher ──

type capturedEvent struct {
	room    string
	event   string
	payload interface{}
}

type mockPublisher struct {
	events []capturedEvent
}

func (p *mockPublisher) Publish(_ context.Context, room, event string, payload interface{}) {
	p.events = append(p.events, capturedEvent{room: room, event: event, payload: payload})
}
