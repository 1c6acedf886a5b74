package study

// Flashcard は暗記カード1枚を表す
// QuestionとAnswerはいずれも空であってはならない
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MCQ は4択問題1問を表す
//
// 不変条件: Optionsのキー集合はちょうど {A, B, C, D} であり、
// CorrectAnswerはそのいずれかでなければならない
type MCQ struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
}

// optionKeys はMCQの選択肢として許可されるキー
var optionKeys = []string{"A", "B", "C", "D"}
