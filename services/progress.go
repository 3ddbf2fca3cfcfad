package services

import (
	"math"

	"github.com/alphabatem/common/context"

	"github.com/ascent-learning/ascent_api/dto"
)

// ProgressService derives completion percentages from attempt records.
// Intentionally order-independent: it counts passing attempts without
// re-verifying lock state, unlocking is the access verifier's job.
type ProgressService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const PROGRESS_SVC = "progress_svc"

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// CourseProgress returns the user's completion percentage for a course
// in [0,100]. A course with no lessons is 0%, not a division error.
func (svc *ProgressService) CourseProgress(userID, courseID string) (int, error) {
	lessonIDs, err := svc.courseLessonIDs(courseID)
	if err != nil {
		return 0, err
	}
	return svc.percentPassed(userID, lessonIDs)
}

// ProgramProgress returns the completion percentage over the union of
// lessons across all of the program's courses.
func (svc *ProgressService) ProgramProgress(userID, programID string) (int, error) {
	lessonIDs, err := svc.programLessonIDs(programID)
	if err != nil {
		return 0, err
	}
	return svc.percentPassed(userID, lessonIDs)
}

// CourseProgressDetail expands CourseProgress with the per-lesson
// completion map used by the course page.
func (svc *ProgressService) CourseProgressDetail(userID, courseID string) (*dto.CourseProgressResponse, error) {
	courseLessons, err := svc.sqlSvc.GetCourseLessons(courseID)
	if err != nil {
		return nil, err
	}

	lessonIDs := make([]string, len(courseLessons))
	for i, cl := range courseLessons {
		lessonIDs[i] = cl.LessonID
	}

	attempts, err := svc.sqlSvc.GetLessonAttemptsByLessons(userID, lessonIDs)
	if err != nil {
		return nil, err
	}

	byLesson := make(map[string]int, len(attempts))
	for i, a := range attempts {
		byLesson[a.LessonID] = i
	}

	statuses := make([]dto.LessonStatus, len(courseLessons))
	passedCount := 0
	for i, cl := range courseLessons {
		status := dto.LessonStatus{LessonID: cl.LessonID, Order: cl.Order}
		if idx, ok := byLesson[cl.LessonID]; ok {
			status.Passed = attempts[idx].Passed
			status.CompletedAt = attempts[idx].CompletedAt
		}
		if status.Passed {
			passedCount++
		}
		statuses[i] = status
	}

	return &dto.CourseProgressResponse{
		CourseID:       courseID,
		Progress:       percentage(passedCount, len(courseLessons)),
		TotalLessons:   len(courseLessons),
		PassedLessons:  passedCount,
		LessonStatuses: statuses,
	}, nil
}

// ProgramProgressDetail reports program progress plus the per-course
// breakdown, in program order.
func (svc *ProgressService) ProgramProgressDetail(userID, programID string) (*dto.ProgramProgressResponse, error) {
	programCourses, err := svc.sqlSvc.GetProgramCourses(programID)
	if err != nil {
		return nil, err
	}

	courses := make([]dto.CourseProgressResponse, 0, len(programCourses))
	totalLessons := 0
	totalPassed := 0
	for _, pc := range programCourses {
		detail, err := svc.CourseProgressDetail(userID, pc.CourseID)
		if err != nil {
			return nil, err
		}
		totalLessons += detail.TotalLessons
		totalPassed += detail.PassedLessons
		courses = append(courses, *detail)
	}

	return &dto.ProgramProgressResponse{
		ProgramID: programID,
		Progress:  percentage(totalPassed, totalLessons),
		Courses:   courses,
	}, nil
}

func (svc *ProgressService) courseLessonIDs(courseID string) ([]string, error) {
	courseLessons, err := svc.sqlSvc.GetCourseLessons(courseID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(courseLessons))
	for i, cl := range courseLessons {
		ids[i] = cl.LessonID
	}
	return ids, nil
}

func (svc *ProgressService) programLessonIDs(programID string) ([]string, error) {
	programCourses, err := svc.sqlSvc.GetProgramCourses(programID)
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	for _, pc := range programCourses {
		courseIDs, err := svc.courseLessonIDs(pc.CourseID)
		if err != nil {
			return nil, err
		}
		for _, id := range courseIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (svc *ProgressService) percentPassed(userID string, lessonIDs []string) (int, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}

	attempts, err := svc.sqlSvc.GetLessonAttemptsByLessons(userID, lessonIDs)
	if err != nil {
		return 0, err
	}

	passed := 0
	for _, a := range attempts {
		if a.Passed {
			passed++
		}
	}
	return percentage(passed, len(lessonIDs)), nil
}

func percentage(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
