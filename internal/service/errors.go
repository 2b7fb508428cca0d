package service

import "errors"

var (
	ErrInvalidStage         = errors.New("unknown stage")
	ErrStageAlreadySelected = errors.New("stage already selected, reset first")
	ErrWrongStage           = errors.New("action not available in the current stage")
	ErrWrongStep            = errors.New("action not available at the current step")
	ErrEmptyInput           = errors.New("input must not be empty")
	ErrQuestionOutOfRange   = errors.New("no such suggested question")
	ErrLLMUnavailable       = errors.New("language model request failed")
)
