package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/skolaris/timetable-api/internal/dto"
	"github.com/skolaris/timetable-api/internal/models"
	appErrors "github.com/skolaris/timetable-api/pkg/errors"
)

type planRepository interface {
	FindByID(ctx context.Context, id string) (*models.Plan, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.PlanStatus) error
}

type templateRepository interface {
	FindByID(ctx context.Context, id string) (*models.Template, error)
	ListLessonSlots(ctx context.Context, templateID string) ([]models.PeriodSlot, error)
}

type classConfigReader interface {
	ListByPlan(ctx context.Context, planID string) ([]models.ClassConfig, error)
}

type subjectQuotaReader interface {
	ListByPlan(ctx context.Context, planID string) ([]models.SubjectQuota, error)
}

type subjectReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Subject, error)
}

type teacherAssignmentReader interface {
	ListByClasses(ctx context.Context, classIDs []string) ([]models.TeacherAssignment, error)
}

type timetableVersionWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error
}

type timetableEntryWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, entry *models.TimetableEntry) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type generationObserver interface {
	ObserveGeneration(placed, unplaced int, duration time.Duration)
}

// TimetableGeneratorService fills a plan's weekly grid from subject quotas and
// teacher assignments, recording the outcome as a new timetable version.
//
// The pass does not check whether a teacher or room already holds an entry for a
// different class at the same day and slot. Known limitation, kept until the
// cross-class conflict policy is decided.
type TimetableGeneratorService struct {
	plans       planRepository
	templates   templateRepository
	configs     classConfigReader
	quotas      subjectQuotaReader
	subjects    subjectReader
	assignments teacherAssignmentReader
	versions    timetableVersionWriter
	entries     timetableEntryWriter
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     generationObserver
	defaultCap  int
}

// TimetableGeneratorConfig governs generator behaviour.
type TimetableGeneratorConfig struct {
	// MaxTeacherLessonsPerDay is the default daily ceiling per teacher; zero
	// disables the cap. A request value overrides it.
	MaxTeacherLessonsPerDay int
}

// NewTimetableGeneratorService wires generator dependencies.
func NewTimetableGeneratorService(
	plans planRepository,
	templates templateRepository,
	configs classConfigReader,
	quotas subjectQuotaReader,
	subjects subjectReader,
	assignments teacherAssignmentReader,
	versions timetableVersionWriter,
	entries timetableEntryWriter,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics generationObserver,
	cfg TimetableGeneratorConfig,
) *TimetableGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableGeneratorService{
		plans:       plans,
		templates:   templates,
		configs:     configs,
		quotas:      quotas,
		subjects:    subjects,
		assignments: assignments,
		versions:    versions,
		entries:     entries,
		tx:          tx,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		defaultCap:  cfg.MaxTeacherLessonsPerDay,
	}
}

// Generate runs one synchronous placement pass for the plan. The new version,
// its entries and the plan status flip share a single transaction: either the
// whole run commits or nothing is persisted. Two "nothing to do" cases (no class
// configs, no lesson periods) return a normal result without opening a
// transaction. Concurrent calls for the same plan are not mutually excluded;
// each produces its own version.
func (s *TimetableGeneratorService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	start := time.Now()

	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}

	configs, err := s.configs.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class configs")
	}
	if len(configs) == 0 {
		return &dto.GenerationResult{Unplaced: []models.UnplacedSubject{}, Detail: "no class configurations defined for this plan"}, nil
	}

	template, err := s.templates.FindByID(ctx, plan.TemplateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period template")
	}
	days := activeDays(template)
	slots, err := s.templates.ListLessonSlots(ctx, template.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson periods")
	}
	if len(slots) == 0 {
		return &dto.GenerationResult{Unplaced: []models.UnplacedSubject{}, Detail: "template has no lesson periods defined"}, nil
	}

	inScope := make(map[string]bool, len(configs))
	classIDs := make([]string, 0, len(configs))
	roomByClass := make(map[string]*string, len(configs))
	for _, cfg := range configs {
		inScope[cfg.ClassID] = true
		classIDs = append(classIDs, cfg.ClassID)
		roomByClass[cfg.ClassID] = cfg.RoomID
	}

	quotas, err := s.quotas.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject quotas")
	}
	scoped := make([]models.SubjectQuota, 0, len(quotas))
	for _, quota := range quotas {
		if inScope[quota.ClassID] {
			scoped = append(scoped, quota)
		}
	}

	priority, err := s.subjectPriorities(ctx, scoped)
	if err != nil {
		return nil, err
	}
	tracker := newQuotaTracker(scoped, priority)

	assignments, err := s.assignments.ListByClasses(ctx, classIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher assignments")
	}
	teacherFor := resolveTeacherAssignments(assignments)

	dailyCap := req.MaxTeacherLessonsPerDay
	if dailyCap <= 0 {
		dailyCap = s.defaultCap
	}

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin generation transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	version := &models.TimetableVersion{
		PlanID:    plan.ID,
		Label:     "Generated " + now.Format("2006-01-02 15:04:05"),
		CreatedAt: now,
	}
	if err = s.versions.Create(ctx, tx, version); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable version")
		return nil, err
	}

	guard := newTeacherLoadGuard()
	placed := 0

	for _, day := range days {
		for _, slot := range slots {
			for _, cfg := range configs {
				entry, placeErr := s.placeCell(ctx, tx, plan, version, tracker, teacherFor, guard, dailyCap, day, slot, cfg, roomByClass[cfg.ClassID])
				if placeErr != nil {
					err = placeErr
					return nil, err
				}
				if entry != nil {
					placed++
				}
			}
		}
	}

	if err = s.plans.UpdateStatus(ctx, tx, plan.ID, models.PlanStatusGenerated); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update plan status")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit generation transaction")
		return nil, err
	}

	unplaced := tracker.unplaced()
	if s.metrics != nil {
		s.metrics.ObserveGeneration(placed, len(unplaced), time.Since(start))
	}
	s.logger.Info("timetable generated",
		zap.String("plan_id", plan.ID),
		zap.String("version_id", version.ID),
		zap.Int("placed", placed),
		zap.Int("unplaced", len(unplaced)),
	)

	return &dto.GenerationResult{
		VersionID:   &version.ID,
		PlacedCount: placed,
		Unplaced:    unplaced,
		Detail:      fmt.Sprintf("generated %d entries for %d classes; %d subject quotas not fully placed", placed, len(configs), len(unplaced)),
	}, nil
}

// placeCell tries ranked candidates for one (day, slot, class) cell. It returns
// the placed entry, or nil when every candidate was rejected and the cell stays
// empty. A persistence failure is the only error path; rejections are not errors.
func (s *TimetableGeneratorService) placeCell(
	ctx context.Context,
	tx *sqlx.Tx,
	plan *models.Plan,
	version *models.TimetableVersion,
	tracker *quotaTracker,
	teacherFor map[classSubject]string,
	guard *teacherLoadGuard,
	dailyCap int,
	day int,
	slot models.PeriodSlot,
	cfg models.ClassConfig,
	room *string,
) (*models.TimetableEntry, error) {
	for _, candidate := range tracker.candidates(cfg.ClassID) {
		var teacherID *string
		if id, ok := teacherFor[classSubject{classID: cfg.ClassID, subjectID: candidate.subjectID}]; ok {
			teacherID = &id
		}

		if teacherID != nil && guard.wouldExceed(day, *teacherID, dailyCap) {
			continue
		}

		entry := &models.TimetableEntry{
			PlanID:    plan.ID,
			VersionID: version.ID,
			TermID:    plan.TermID,
			ClassID:   cfg.ClassID,
			SubjectID: candidate.subjectID,
			TeacherID: teacherID,
			RoomID:    room,
			DayOfWeek: day,
			SlotIndex: slot.SlotIndex,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		}
		if reason := s.validateCandidate(entry); reason != "" {
			s.logger.Debug("candidate rejected",
				zap.String("class_id", cfg.ClassID),
				zap.String("subject_id", candidate.subjectID),
				zap.String("reason", string(reason)),
			)
			continue
		}

		if err := s.entries.Create(ctx, tx, entry); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable entry")
		}
		tracker.decrement(cfg.ClassID, candidate.subjectID)
		if teacherID != nil {
			guard.increment(day, *teacherID)
		}
		return entry, nil
	}
	return nil, nil
}

// rejectionReason classifies why a candidate was skipped for a cell.
type rejectionReason string

const rejectionInvalidEntry rejectionReason = "INVALID_ENTRY"

func (s *TimetableGeneratorService) validateCandidate(entry *models.TimetableEntry) rejectionReason {
	if err := s.validator.Struct(entry); err != nil {
		return rejectionInvalidEntry
	}
	return ""
}

func (s *TimetableGeneratorService) subjectPriorities(ctx context.Context, quotas []models.SubjectQuota) (map[string]bool, error) {
	seen := make(map[string]bool, len(quotas))
	ids := make([]string, 0, len(quotas))
	for _, quota := range quotas {
		if seen[quota.SubjectID] {
			continue
		}
		seen[quota.SubjectID] = true
		ids = append(ids, quota.SubjectID)
	}
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}
	subjects, err := s.subjects.ListByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	priority := make(map[string]bool, len(subjects))
	for _, subject := range subjects {
		priority[subject.ID] = subject.Priority
	}
	return priority, nil
}

// activeDays returns the template's weekday list filtered to valid weekdays,
// falling back to Monday through Friday when the template names none.
func activeDays(template *models.Template) []int {
	days := make([]int, 0, len(template.ActiveDays))
	seen := make(map[int]bool, len(template.ActiveDays))
	for _, raw := range template.ActiveDays {
		day := int(raw)
		if day < 1 || day > 7 || seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	if len(days) == 0 {
		return []int{1, 2, 3, 4, 5}
	}
	return days
}

// --- Teacher resolution ---

type classSubject struct {
	classID   string
	subjectID string
}

// resolveTeacherAssignments maps each (class, subject) pair to its single
// assigned teacher. A pair with more than one distinct teacher is omitted so the
// lesson is placed without a teacher; picking one arbitrarily is never correct.
func resolveTeacherAssignments(assignments []models.TeacherAssignment) map[classSubject]string {
	grouped := make(map[classSubject]map[string]struct{})
	for _, assignment := range assignments {
		key := classSubject{classID: assignment.ClassID, subjectID: assignment.SubjectID}
		if grouped[key] == nil {
			grouped[key] = make(map[string]struct{})
		}
		grouped[key][assignment.TeacherID] = struct{}{}
	}

	resolved := make(map[classSubject]string, len(grouped))
	for key, teachers := range grouped {
		if len(teachers) != 1 {
			continue
		}
		for teacherID := range teachers {
			resolved[key] = teacherID
		}
	}
	return resolved
}

// --- Quota tracking ---

type quotaItem struct {
	subjectID string
	remaining int
	priority  bool
}

// quotaTracker holds, per class, insertion-ordered remaining weekly period
// counts. Quotas with a non-positive target are never tracked.
type quotaTracker struct {
	byClass    map[string][]*quotaItem
	classOrder []string
}

func newQuotaTracker(quotas []models.SubjectQuota, priority map[string]bool) *quotaTracker {
	tracker := &quotaTracker{byClass: make(map[string][]*quotaItem)}
	for _, quota := range quotas {
		if quota.WeeklyPeriods <= 0 {
			continue
		}
		if _, ok := tracker.byClass[quota.ClassID]; !ok {
			tracker.classOrder = append(tracker.classOrder, quota.ClassID)
		}
		tracker.byClass[quota.ClassID] = append(tracker.byClass[quota.ClassID], &quotaItem{
			subjectID: quota.SubjectID,
			remaining: quota.WeeklyPeriods,
			priority:  priority[quota.SubjectID],
		})
	}
	return tracker
}

// candidates returns the class's pending subjects ranked for the current cell:
// priority-flagged first, then by descending remaining count. The stable sort
// keeps insertion order as the final tie-break.
func (t *quotaTracker) candidates(classID string) []*quotaItem {
	var pending []*quotaItem
	for _, item := range t.byClass[classID] {
		if item.remaining > 0 {
			pending = append(pending, item)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].priority != pending[j].priority {
			return pending[i].priority
		}
		return pending[i].remaining > pending[j].remaining
	})
	return pending
}

// decrement is called only after a successful placement; counts never go negative.
func (t *quotaTracker) decrement(classID, subjectID string) {
	for _, item := range t.byClass[classID] {
		if item.subjectID == subjectID && item.remaining > 0 {
			item.remaining--
			return
		}
	}
}

// unplaced lists every (class, subject) pair still above zero, in tracker order.
func (t *quotaTracker) unplaced() []models.UnplacedSubject {
	result := make([]models.UnplacedSubject, 0)
	for _, classID := range t.classOrder {
		for _, item := range t.byClass[classID] {
			if item.remaining > 0 {
				result = append(result, models.UnplacedSubject{
					ClassID:   classID,
					SubjectID: item.subjectID,
					Remaining: item.remaining,
				})
			}
		}
	}
	return result
}

// --- Teacher load guard ---

// teacherLoadGuard counts lessons placed per (day, teacher) within one run. It
// is allocated at run start and discarded with the run; unassigned lessons are
// never counted.
type teacherLoadGuard struct {
	counts map[int]map[string]int
}

func newTeacherLoadGuard() *teacherLoadGuard {
	return &teacherLoadGuard{counts: make(map[int]map[string]int)}
}

func (g *teacherLoadGuard) wouldExceed(day int, teacherID string, dailyCap int) bool {
	if dailyCap <= 0 {
		return false
	}
	return g.counts[day][teacherID] >= dailyCap
}

func (g *teacherLoadGuard) increment(day int, teacherID string) {
	if g.counts[day] == nil {
		g.counts[day] = make(map[string]int)
	}
	g.counts[day][teacherID]++
}
