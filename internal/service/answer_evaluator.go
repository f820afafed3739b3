package service

import (
	"encoding/json"
	"strings"
	"unicode"

	"quiz_edu_backend/internal/model"
)

// EvalResult 判题结果。得分是全对得满分、否则 0 分，没有部分得分。
type EvalResult struct {
	IsCorrect bool
	Score     int
}

// evaluators 按题型分发。每个策略只回答"这份提交对不对"；
// 提交格式不合法一律按答错处理，绝不报错。
var evaluators = map[string]func(*AnswerKey, json.RawMessage) bool{
	model.QuestionMultipleChoice: evaluateMultipleChoice,
	model.QuestionTrueFalse:      evaluateTrueFalse,
	model.QuestionFillBlank:      evaluateFillBlank,
	model.QuestionMatching:       evaluateMatching,
}

// Evaluate 判定一次提交。纯函数，不做任何 I/O。
// 只有题库数据本身损坏时才返回 error（ValidationError）。
func Evaluate(q *model.Question, submitted json.RawMessage) (EvalResult, error) {
	key, err := DecodeAnswerKey(q)
	if err != nil {
		return EvalResult{}, err
	}

	correct := evaluators[key.Kind](key, submitted)
	result := EvalResult{IsCorrect: correct}
	if correct {
		result.Score = q.Score
	}
	return result, nil
}

// 选择题：提交的选项ID集合与答案键完全一致才算对，顺序无关。
// 多选少选都算错。空提交算错。
func evaluateMultipleChoice(key *AnswerKey, submitted json.RawMessage) bool {
	var ids []uint
	if err := json.Unmarshal(submitted, &ids); err != nil {
		return false
	}
	got := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		got[id] = struct{}{}
	}
	if len(got) != len(key.OptionIDs) {
		return false
	}
	for id := range got {
		if _, ok := key.OptionIDs[id]; !ok {
			return false
		}
	}
	return true
}

func evaluateTrueFalse(key *AnswerKey, submitted json.RawMessage) bool {
	var answer bool
	if err := json.Unmarshal(submitted, &answer); err != nil {
		return false
	}
	return answer == key.Bool
}

// 填空题：逐空模糊比对，空数不符直接判错。每空命中任一可接受答案即可，
// 所有空都对才算对。
func evaluateFillBlank(key *AnswerKey, submitted json.RawMessage) bool {
	var answers []string
	if err := json.Unmarshal(submitted, &answers); err != nil {
		return false
	}
	if len(answers) != len(key.Blanks) {
		return false
	}
	for i, answer := range answers {
		got := normalizeBlank(answer)
		matched := false
		for _, accepted := range key.Blanks[i] {
			if got == normalizeBlank(accepted) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// 连线题：按无序对集合比对，对内左右顺序与对间顺序都无关。
func evaluateMatching(key *AnswerKey, submitted json.RawMessage) bool {
	var pairs []model.MatchPair
	if err := json.Unmarshal(submitted, &pairs); err != nil {
		return false
	}
	got := make(map[pairKey]struct{}, len(pairs))
	for _, p := range pairs {
		got[newPairKey(p.Left, p.Right)] = struct{}{}
	}
	if len(got) != len(key.Pairs) {
		return false
	}
	for pk := range got {
		if _, ok := key.Pairs[pk]; !ok {
			return false
		}
	}
	return true
}

// normalizeBlank 填空答案归一化：去首尾空白、转小写、去掉标点
// （只保留字母、数字和空白，中文等按字母处理）。
func normalizeBlank(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
