package study

// 各教材生成の固定指示テキスト
//
// いずれも「JSON配列のみを出力せよ」と強く指示するが、モデルが前後に
// 説明文を付けるケースは extract.go の寛容な抽出で吸収する
const (
	flashcardInstruction = `このドキュメントの重要な概念から学習用フラッシュカードを10枚作成してください。
各カードは "question" と "answer" の2つのフィールドを持つJSONオブジェクトとします。
questionとanswerはドキュメントと同じ言語で記述してください。
出力はJSON配列のみとし、配列の前後に説明文やコードブロック記法を付けないでください。
例: [{"question": "...", "answer": "..."}]`

	summaryInstruction = `このドキュメントの要点を10項目以内で箇条書きに要約してください。
各項目は1文の文字列とし、ドキュメントと同じ言語で記述してください。
出力は文字列のJSON配列のみとし、配列の前後に説明文やコードブロック記法を付けないでください。
例: ["要点1", "要点2"]`

	mcqInstruction = `このドキュメントの内容から4択問題を5問作成してください。
各問題は "question"、"options"、"correct_answer" のフィールドを持つJSONオブジェクトとします。
"options" はキーが "A"、"B"、"C"、"D" の4つちょうどのオブジェクト、
"correct_answer" はそのいずれかのキーとします。
問題文と選択肢はドキュメントと同じ言語で記述してください。
出力はJSON配列のみとし、配列の前後に説明文やコードブロック記法を付けないでください。
例: [{"question": "...", "options": {"A": "...", "B": "...", "C": "...", "D": "..."}, "correct_answer": "A"}]`
)
