package controller

import (
	"errors"

	"quiz_edu_backend/internal/service"
	"quiz_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CatalogService *service.CatalogService
}

func NewCourseController(catalogService *service.CatalogService) *CourseController {
	return &CourseController{CatalogService: catalogService}
}

// ListCourses godoc
// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CatalogService.ListCourses()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourseMap godoc
// @Summary 课程关卡地图
// @Description 单元与关卡列表，附带当前用户的解锁状态
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseMap}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{courseId}/map [get]
func (c *CourseController) GetCourseMap(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParsePathID(ctx, "courseId")
	if !ok {
		return
	}

	courseMap, err := c.CatalogService.GetCourseMap(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, courseMap)
}

// swagger:model SelectCourseRequest
type SelectCourseRequest struct {
	Grade   string `json:"grade" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Term    string `json:"term" binding:"required"`
}

// SelectCourse godoc
// @Summary 选课
// @Description 按年级/科目/学期选择课程，记住本次选择
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body SelectCourseRequest true "选课信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/select [post]
func (c *CourseController) SelectCourse(ctx *gin.Context) {
	var req SelectCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CatalogService.SelectCourse(claims.UserID, req.Grade, req.Subject, req.Term)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}
