package controller

import (
	"errors"

	"quiz_edu_backend/internal/service"
	"quiz_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// GetCourseProgress godoc
// @Summary 课程进度
// @Description 课程下全部关卡的状态表，首次访问时物化默认状态
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/progress/courses/{courseId} [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParsePathID(ctx, "courseId")
	if !ok {
		return
	}

	statuses, err := c.ProgressService.GetCourseProgress(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, statuses)
}

// GetLevelProgress godoc
// @Summary 单关进度
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param levelId path int true "关卡ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "关卡不存在"
// @Router /api/progress/levels/{levelId} [get]
func (c *ProgressController) GetLevelProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	levelID, ok := util.ParsePathID(ctx, "levelId")
	if !ok {
		return
	}

	status, err := c.ProgressService.GetLevelProgress(claims.UserID, levelID)
	if err != nil {
		if errors.Is(err, util.ErrLevelNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"levelId": levelID, "status": status})
}

// swagger:model ResetProgressRequest
type ResetProgressRequest struct {
	UserID   uint `json:"userId" binding:"required"`
	CourseID uint `json:"courseId"` // 0 表示清空全部课程
}

// ResetProgress godoc
// @Summary 重置用户进度（管理员）
// @Description 清空指定用户的进度与答题记录，courseId 为 0 时清全部
// @Tags 进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ResetProgressRequest true "重置范围"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/admin/progress/reset [post]
func (c *ProgressController) ResetProgress(ctx *gin.Context) {
	var req ResetProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ProgressService.ResetProgress(req.UserID, req.CourseID); err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// swagger:model CompleteLevelRequest
type CompleteLevelRequest struct {
	UserID  uint `json:"userId" binding:"required"`
	LevelID uint `json:"levelId" binding:"required"`
}

// CompleteLevel godoc
// @Summary 直接标记关卡完成（管理员/测试）
// @Description 越过答题流程将关卡置为已完成并触发解锁级联
// @Tags 进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CompleteLevelRequest true "目标关卡"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "关卡不存在"
// @Router /api/admin/progress/complete [post]
func (c *ProgressController) CompleteLevel(ctx *gin.Context) {
	var req CompleteLevelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	unlocked, err := c.ProgressService.MarkCompleted(req.UserID, req.LevelID)
	if err != nil {
		if errors.Is(err, util.ErrLevelNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"unlockedLevelIds": unlocked})
}
