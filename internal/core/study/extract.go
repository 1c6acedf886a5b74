package study

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput はモデル出力から構造化データを抽出できなかった場合のエラー
var ErrMalformedOutput = errors.New("malformed model output")

// extractJSONArray はモデルの自由形式テキストからJSON配列を取り出す
//
// モデルには「JSON配列のみを出力せよ」と指示しているが、ホスト型モデルは
// 前後に説明文を付けてくることが多い。そのため最初の「[」から最後の「]」
// までを切り出して解析する、意図的に寛容な復旧戦略を取る
//
// 既知の制限: 本来の配列より前の本文にブラケット文字が含まれる場合は
// 誤った範囲を切り出す。これは受け入れ済みの制限であり、黙って直すべき
// バグではない
func extractJSONArray(raw string) ([]json.RawMessage, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || start > end {
		return nil, fmt.Errorf("%w: no JSON array found in model output", ErrMalformedOutput)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &elements); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON array: %v", ErrMalformedOutput, err)
	}

	return elements, nil
}

// ExtractFlashcards はモデル出力からフラッシュカードの配列を抽出する
// 要素の検証は最初の違反で打ち切り、違反した要素の位置とルールを返す
func ExtractFlashcards(raw string) ([]Flashcard, error) {
	elements, err := extractJSONArray(raw)
	if err != nil {
		return nil, err
	}

	cards := make([]Flashcard, 0, len(elements))
	for i, element := range elements {
		var card Flashcard
		if err := json.Unmarshal(element, &card); err != nil {
			return nil, fmt.Errorf("%w: element %d: expected object with string fields: %v", ErrMalformedOutput, i, err)
		}
		if card.Question == "" {
			return nil, fmt.Errorf("%w: element %d: question must be a non-empty string", ErrMalformedOutput, i)
		}
		if card.Answer == "" {
			return nil, fmt.Errorf("%w: element %d: answer must be a non-empty string", ErrMalformedOutput, i)
		}
		cards = append(cards, card)
	}

	return cards, nil
}

// ExtractSummary はモデル出力から要約ポイントの配列を抽出する
func ExtractSummary(raw string) ([]string, error) {
	elements, err := extractJSONArray(raw)
	if err != nil {
		return nil, err
	}

	points := make([]string, 0, len(elements))
	for i, element := range elements {
		var point string
		if err := json.Unmarshal(element, &point); err != nil {
			return nil, fmt.Errorf("%w: element %d: expected a string: %v", ErrMalformedOutput, i, err)
		}
		if point == "" {
			return nil, fmt.Errorf("%w: element %d: summary point must be non-empty", ErrMalformedOutput, i)
		}
		points = append(points, point)
	}

	return points, nil
}

// ExtractMCQs はモデル出力から4択問題の配列を抽出する
func ExtractMCQs(raw string) ([]MCQ, error) {
	elements, err := extractJSONArray(raw)
	if err != nil {
		return nil, err
	}

	mcqs := make([]MCQ, 0, len(elements))
	for i, element := range elements {
		var mcq MCQ
		if err := json.Unmarshal(element, &mcq); err != nil {
			return nil, fmt.Errorf("%w: element %d: expected MCQ object: %v", ErrMalformedOutput, i, err)
		}
		if err := validateMCQ(mcq); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedOutput, i, err)
		}
		mcqs = append(mcqs, mcq)
	}

	return mcqs, nil
}

// validateMCQ はMCQ1問の形状不変条件を検証する
func validateMCQ(mcq MCQ) error {
	if mcq.Question == "" {
		return errors.New("question must be a non-empty string")
	}

	// キー集合はちょうど {A, B, C, D} でなければならない
	if len(mcq.Options) != len(optionKeys) {
		return fmt.Errorf("invalid option-key set: expected exactly {A, B, C, D}, got %d keys", len(mcq.Options))
	}
	for _, key := range optionKeys {
		if _, ok := mcq.Options[key]; !ok {
			return fmt.Errorf("invalid option-key set: missing option %q", key)
		}
	}

	if _, ok := mcq.Options[mcq.CorrectAnswer]; !ok {
		return fmt.Errorf("correct_answer must be one of {A, B, C, D}, got %q", mcq.CorrectAnswer)
	}

	return nil
}
