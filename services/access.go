package services

import (
	"errors"

	"github.com/alphabatem/common/context"
	"gorm.io/gorm"

	"github.com/ascent-learning/ascent_api/dto"
	"github.com/ascent-learning/ascent_api/shared"
)

// AccessService decides whether a learner may enter a lesson or course.
// Pure reads; every failing precondition short-circuits with its own
// reason code and is never retried here.
type AccessService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const ACCESS_SVC = "access_svc"

func (svc AccessService) Id() string {
	return ACCESS_SVC
}

func (svc *AccessService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AccessService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// CheckLessonAccess gates lesson entry: enrollment, hierarchy
// membership, then unlock order. A lesson at order 0 is always
// unlocked; any other lesson requires a passing attempt on the lesson
// immediately before it. A gap in the ordering denies.
func (svc *AccessService) CheckLessonAccess(userID, programID, courseID, lessonID string) (*dto.LessonAccessResponse, error) {
	if _, err := svc.sqlSvc.GetProgram(programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denied(shared.AccessReasonNotFound), nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}
	if _, err := svc.sqlSvc.GetCourse(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denied(shared.AccessReasonNotFound), nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}
	if _, err := svc.sqlSvc.GetLesson(lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denied(shared.AccessReasonNotFound), nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	if _, err := svc.sqlSvc.GetActiveAssignment(userID, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denied(shared.AccessReasonNotEnrolled), nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	if _, err := svc.sqlSvc.GetProgramCourse(programID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denied(shared.AccessReasonNotInHierarchy), nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	courseLesson, err := svc.sqlSvc.GetCourseLesson(courseID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denied(shared.AccessReasonNotInHierarchy), nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	unlocked, err := svc.lessonUnlocked(userID, courseID, courseLesson.Order)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		return denied(shared.AccessReasonLocked), nil
	}

	return &dto.LessonAccessResponse{CanAccess: true}, nil
}

func (svc *AccessService) lessonUnlocked(userID, courseID string, order int) (bool, error) {
	if order == 0 {
		return true, nil
	}

	prev, err := svc.sqlSvc.GetCourseLessonByOrder(courseID, order-1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Gap in the ordering, nothing to have passed.
			return false, nil
		}
		return false, svc.sqlSvc.HandleError(err)
	}

	attempt, err := svc.sqlSvc.GetLessonAttempt(userID, prev.LessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, svc.sqlSvc.HandleError(err)
	}

	return attempt.Passed, nil
}

// CheckCourseAccess gates course entry one level up. Unlike lessons,
// a course unlocks only when every lesson of the preceding course has a
// passing attempt, not just the last one.
func (svc *AccessService) CheckCourseAccess(userID, programID, courseID string) (*dto.CourseAccessResponse, error) {
	if _, err := svc.sqlSvc.GetProgram(programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return courseDenied(shared.AccessReasonNotFound), nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}
	if _, err := svc.sqlSvc.GetCourse(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return courseDenied(shared.AccessReasonNotFound), nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	if _, err := svc.sqlSvc.GetActiveAssignment(userID, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return courseDenied(shared.AccessReasonNotEnrolled), nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	programCourse, err := svc.sqlSvc.GetProgramCourse(programID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return courseDenied(shared.AccessReasonNotInHierarchy), nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	unlocked, err := svc.courseUnlocked(userID, programID, programCourse.Order)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		return courseDenied(shared.AccessReasonLocked), nil
	}

	return &dto.CourseAccessResponse{CanAccess: true}, nil
}

func (svc *AccessService) courseUnlocked(userID, programID string, order int) (bool, error) {
	if order == 0 {
		return true, nil
	}

	prev, err := svc.sqlSvc.GetProgramCourseByOrder(programID, order-1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, svc.sqlSvc.HandleError(err)
	}

	lessons, err := svc.sqlSvc.GetCourseLessons(prev.CourseID)
	if err != nil {
		return false, err
	}
	if len(lessons) == 0 {
		// An empty predecessor course has nothing left to pass.
		return true, nil
	}

	lessonIDs := make([]string, len(lessons))
	for i, cl := range lessons {
		lessonIDs[i] = cl.LessonID
	}

	attempts, err := svc.sqlSvc.GetLessonAttemptsByLessons(userID, lessonIDs)
	if err != nil {
		return false, err
	}

	passed := make(map[string]bool, len(attempts))
	for _, a := range attempts {
		if a.Passed {
			passed[a.LessonID] = true
		}
	}

	for _, id := range lessonIDs {
		if !passed[id] {
			return false, nil
		}
	}
	return true, nil
}

func denied(reason string) *dto.LessonAccessResponse {
	return &dto.LessonAccessResponse{CanAccess: false, Reason: reason}
}

func courseDenied(reason string) *dto.CourseAccessResponse {
	return &dto.CourseAccessResponse{CanAccess: false, Reason: reason}
}
