package model

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionFillBlank      = "fill_blank"
	QuestionMatching       = "matching"
)

// swagger:model Question
type Question struct {
	BaseModel
	LevelID      uint   `gorm:"index;type:bigint unsigned;not null" json:"levelId"`
	QuestionType string `gorm:"size:50;not null" json:"questionType"`
	Content      string `gorm:"type:text;not null" json:"content"` // 题干
	// Options 选择题选项，JSON array of {id, text}；其他题型为空
	Options string `gorm:"type:json" json:"options,omitempty"`
	// CorrectAnswer 答案键，JSON，结构随题型不同：
	//   multiple_choice: [1,3]              选项ID集合
	//   true_false:      true
	//   fill_blank:      ["猫", ["狗","犬"]]  每空一项，数组表示多个可接受答案
	//   matching:        [{"left":"...","right":"..."}]
	CorrectAnswer string `gorm:"type:json;not null" json:"-"`
	BlanksCount   int    `gorm:"default:1" json:"blanksCount"` // 填空题空数
	Score         int    `gorm:"default:1" json:"score"`
	Order         int    `gorm:"default:0" json:"order"`
	Explanation   string `gorm:"type:text" json:"explanation"` // 解析

	KnowledgePoints []KnowledgePoint `gorm:"many2many:question_knowledge_points" json:"knowledgePoints,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model ChoiceOption
type ChoiceOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// swagger:model MatchPair
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}
