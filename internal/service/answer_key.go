package service

import (
	"encoding/json"

	"quiz_edu_backend/internal/model"
	"quiz_edu_backend/internal/util"
)

// pairKey 连线题的无序对：左右两项按字典序排列后作为键
type pairKey [2]string

func newPairKey(left, right string) pairKey {
	if left <= right {
		return pairKey{left, right}
	}
	return pairKey{right, left}
}

// AnswerKey 题目答案键的解码结果。各题型只填充自己的字段。
type AnswerKey struct {
	Kind      string
	OptionIDs map[uint]struct{} // multiple_choice：正确选项ID集合
	Bool      bool              // true_false
	Blanks    [][]string        // fill_blank：每空的可接受答案列表
	Pairs     map[pairKey]struct{}
}

// DecodeAnswerKey 解码并校验题目的答案键。题型与键结构不匹配返回
// ValidationError，属于题库数据错误，与用户提交无关。
func DecodeAnswerKey(q *model.Question) (*AnswerKey, error) {
	key := &AnswerKey{Kind: q.QuestionType}

	switch q.QuestionType {
	case model.QuestionMultipleChoice:
		var options []model.ChoiceOption
		if err := json.Unmarshal([]byte(q.Options), &options); err != nil || len(options) == 0 {
			return nil, util.NewValidationError(q.ID, "multiple_choice requires a non-empty options array")
		}
		var correct []uint
		if err := json.Unmarshal([]byte(q.CorrectAnswer), &correct); err != nil || len(correct) == 0 {
			return nil, util.NewValidationError(q.ID, "multiple_choice requires a non-empty correct option id array")
		}
		known := make(map[uint]struct{}, len(options))
		for _, o := range options {
			known[o.ID] = struct{}{}
		}
		key.OptionIDs = make(map[uint]struct{}, len(correct))
		for _, id := range correct {
			if _, ok := known[id]; !ok {
				return nil, util.NewValidationError(q.ID, "correct answer references unknown option id %d", id)
			}
			key.OptionIDs[id] = struct{}{}
		}

	case model.QuestionTrueFalse:
		if err := json.Unmarshal([]byte(q.CorrectAnswer), &key.Bool); err != nil {
			return nil, util.NewValidationError(q.ID, "true_false requires a boolean correct answer")
		}

	case model.QuestionFillBlank:
		if q.BlanksCount < 1 {
			return nil, util.NewValidationError(q.ID, "fill_blank requires blanksCount >= 1, got %d", q.BlanksCount)
		}
		// 每空一项：字符串，或字符串数组表示多个可接受答案
		var slots []json.RawMessage
		if err := json.Unmarshal([]byte(q.CorrectAnswer), &slots); err != nil {
			return nil, util.NewValidationError(q.ID, "fill_blank requires an array answer key")
		}
		if len(slots) != q.BlanksCount {
			return nil, util.NewValidationError(q.ID, "answer key has %d slots, blanksCount is %d", len(slots), q.BlanksCount)
		}
		key.Blanks = make([][]string, 0, len(slots))
		for i, raw := range slots {
			var single string
			if err := json.Unmarshal(raw, &single); err == nil {
				key.Blanks = append(key.Blanks, []string{single})
				continue
			}
			var many []string
			if err := json.Unmarshal(raw, &many); err != nil || len(many) == 0 {
				return nil, util.NewValidationError(q.ID, "slot %d must be a string or a non-empty string array", i)
			}
			key.Blanks = append(key.Blanks, many)
		}

	case model.QuestionMatching:
		var pairs []model.MatchPair
		if err := json.Unmarshal([]byte(q.CorrectAnswer), &pairs); err != nil || len(pairs) == 0 {
			return nil, util.NewValidationError(q.ID, "matching requires a non-empty pair array")
		}
		key.Pairs = make(map[pairKey]struct{}, len(pairs))
		for _, p := range pairs {
			if p.Left == "" || p.Right == "" {
				return nil, util.NewValidationError(q.ID, "matching pair sides must be non-empty")
			}
			key.Pairs[newPairKey(p.Left, p.Right)] = struct{}{}
		}
		if len(key.Pairs) != len(pairs) {
			return nil, util.NewValidationError(q.ID, "matching pairs must be distinct")
		}

	default:
		return nil, util.NewValidationError(q.ID, "unknown question type %q", q.QuestionType)
	}

	return key, nil
}
