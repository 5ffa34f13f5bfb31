package service

import "errors"

// ErrEssayNotFound indicates the essay cannot be located.
var ErrEssayNotFound = errors.New("essay not found")

// ErrEssayForbidden indicates the caller does not own the essay.
var ErrEssayForbidden = errors.New("forbidden")

// ErrVersionNotFound indicates the version cannot be located for the essay.
var ErrVersionNotFound = errors.New("essay version not found")

// ErrLastVersion indicates a delete would leave the essay without any version.
var ErrLastVersion = errors.New("cannot delete the only remaining version of an essay")

// ErrPromptNotFound indicates the essay prompt reference cannot be resolved.
var ErrPromptNotFound = errors.New("essay prompt not found")

// ErrContentTooShort indicates the content is below the analysis minimum.
var ErrContentTooShort = errors.New("content too short for analysis")

// ErrNotEvaluable indicates completion cannot be evaluated because the word
// limit reference is missing or invalid. Callers fall back to a plain update.
var ErrNotEvaluable = errors.New("completion not evaluable")
