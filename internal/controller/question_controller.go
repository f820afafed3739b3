package controller

import (
	"encoding/json"
	"errors"

	"quiz_edu_backend/internal/service"
	"quiz_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuizService *service.QuizService
}

func NewQuestionController(quizService *service.QuizService) *QuestionController {
	return &QuestionController{QuizService: quizService}
}

// ListLevelQuestions godoc
// @Summary 关卡题目列表
// @Description 关卡全部题目与当前用户已有的答题记录
// @Tags 答题
// @Produce json
// @Security ApiKeyAuth
// @Param levelId path int true "关卡ID"
// @Success 200 {object} util.Response{data=[]service.LevelQuestionView}
// @Failure 404 {object} util.Response "关卡不存在"
// @Router /api/levels/{levelId}/questions [get]
func (c *QuestionController) ListLevelQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	levelID, ok := util.ParsePathID(ctx, "levelId")
	if !ok {
		return
	}

	questions, err := c.QuizService.GetLevelQuestions(claims.UserID, levelID)
	if err != nil {
		if errors.Is(err, util.ErrLevelNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, questions)
}

// GetQuestion godoc
// @Summary 单题详情
// @Tags 答题
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path int true "题目ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{questionId} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	questionID, ok := util.ParsePathID(ctx, "questionId")
	if !ok {
		return
	}

	question, answer, err := c.QuizService.GetQuestion(claims.UserID, questionID)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"question": question, "userAnswer": answer})
}

// swagger:model SubmitAnswerRequest
type SubmitAnswerRequest struct {
	// Answer 原始答案，结构随题型不同（选项ID数组 / 布尔 / 字符串数组 / 连线对数组）
	Answer           json.RawMessage `json:"answer" binding:"required"`
	TimeSpentSeconds int             `json:"timeSpentSeconds"`
}

// SubmitAnswer godoc
// @Summary 提交答案
// @Description 判题并记录结果；答完关卡全部题目时自动完成关卡并解锁后续关卡
// @Tags 答题
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path int true "题目ID"
// @Param body body SubmitAnswerRequest true "答案"
// @Success 200 {object} util.Response{data=service.SubmitAnswerResult}
// @Failure 404 {object} util.Response "题目不存在"
// @Failure 409 {object} util.Response "并发冲突，请重试"
// @Router /api/questions/{questionId}/answer [post]
func (c *QuestionController) SubmitAnswer(ctx *gin.Context) {
	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	questionID, ok := util.ParsePathID(ctx, "questionId")
	if !ok {
		return
	}

	result, err := c.QuizService.SubmitAnswer(claims.UserID, questionID, req.Answer, req.TimeSpentSeconds)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrConflict):
			util.Conflict(ctx, "提交冲突，请重试")
		case util.IsValidationError(err):
			// 题库数据损坏，不能静默降级
			util.LogInternalError(ctx, err)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// GetLevelResult godoc
// @Summary 关卡结算
// @Description 得分、正确率与按知识点聚合的统计
// @Tags 答题
// @Produce json
// @Security ApiKeyAuth
// @Param levelId path int true "关卡ID"
// @Success 200 {object} util.Response{data=service.LevelResult}
// @Failure 404 {object} util.Response "关卡不存在"
// @Router /api/levels/{levelId}/result [get]
func (c *QuestionController) GetLevelResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	levelID, ok := util.ParsePathID(ctx, "levelId")
	if !ok {
		return
	}

	result, err := c.QuizService.GetLevelResult(claims.UserID, levelID)
	if err != nil {
		if errors.Is(err, util.ErrLevelNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}
