package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ascent-learning/ascent_api/dto"
	"github.com/ascent-learning/ascent_api/shared"
)

type ProgressionHandler struct {
	submissionSvc SubmissionServiceInterface
	accessSvc     AccessServiceInterface
	progressSvc   ProgressServiceInterface
}

func NewProgressionHandler(submissionSvc SubmissionServiceInterface, accessSvc AccessServiceInterface, progressSvc ProgressServiceInterface) *ProgressionHandler {
	return &ProgressionHandler{
		submissionSvc: submissionSvc,
		accessSvc:     accessSvc,
		progressSvc:   progressSvc,
	}
}

// @Summary Submit a lesson attempt
// @Description Record a quiz result, award XP and badges, update progress
// @Tags progression
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param submitRequest body dto.SubmitLessonRequest true "Lesson submission"
// @Success 200 {object} shared.Response{data=dto.SubmitLessonResponse}
// @Router /api/v1/lessons/submit [post]
func (h *ProgressionHandler) SubmitLesson(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SubmitLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.submissionSvc.SubmitLesson(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Lesson submitted", resp)
}

// @Summary Check lesson access
// @Description Report whether the user can open a lesson and why not
// @Tags progression
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param programId path string true "Program ID"
// @Param courseId path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.LessonAccessResponse}
// @Router /api/v1/programs/{programId}/courses/{courseId}/lessons/{lessonId}/access [get]
func (h *ProgressionHandler) CheckLessonAccess(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.accessSvc.CheckLessonAccess(userID, c.Params("programId"), c.Params("courseId"), c.Params("lessonId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Check course access
// @Description Report whether the user can open a course and why not
// @Tags progression
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param programId path string true "Program ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} shared.Response{data=dto.CourseAccessResponse}
// @Router /api/v1/programs/{programId}/courses/{courseId}/access [get]
func (h *ProgressionHandler) CheckCourseAccess(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.accessSvc.CheckCourseAccess(userID, c.Params("programId"), c.Params("courseId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get course progress
// @Description Per-lesson completion breakdown for a course
// @Tags progression
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param courseId path string true "Course ID"
// @Success 200 {object} shared.Response{data=dto.CourseProgressResponse}
// @Router /api/v1/courses/{courseId}/progress [get]
func (h *ProgressionHandler) GetCourseProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.progressSvc.CourseProgressDetail(userID, c.Params("courseId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get program progress
// @Description Per-course completion breakdown for a program
// @Tags progression
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param programId path string true "Program ID"
// @Success 200 {object} shared.Response{data=dto.ProgramProgressResponse}
// @Router /api/v1/programs/{programId}/progress [get]
func (h *ProgressionHandler) GetProgramProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.progressSvc.ProgramProgressDetail(userID, c.Params("programId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
