package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrConsentRequired = &AppError{
		Code:       "CONSENT_REQUIRED",
		Message:    "Privacy policy must be agreed before a search can run",
		StatusCode: 400,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Captured image is empty or not a decodable bitmap",
		StatusCode: 400,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the captured image",
		StatusCode: 400,
	}

	ErrEmbeddingFailed = &AppError{
		Code:       "EMBEDDING_FAILED",
		Message:    "Identity embedding could not be extracted from the face",
		StatusCode: 500,
	}

	ErrNoMatchesFound = &AppError{
		Code:       "NO_MATCHES_FOUND",
		Message:    "No similar faces found above the similarity threshold",
		StatusCode: 404,
	}

	ErrEmotionAnalysisFailed = &AppError{
		Code:       "EMOTION_ANALYSIS_FAILED",
		Message:    "Emotion analysis failed for every matched image",
		StatusCode: 500,
	}

	ErrStorage = &AppError{
		Code:       "STORAGE_ERROR",
		Message:    "A storage operation failed",
		StatusCode: 500,
	}

	ErrSessionNotFound = &AppError{
		Code:       "SESSION_NOT_FOUND",
		Message:    "Session not found",
		StatusCode: 404,
	}

	ErrDuplicateAggregate = &AppError{
		Code:       "DUPLICATE_AGGREGATE",
		Message:    "An aggregated result already exists for this session",
		StatusCode: 409,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 400,
	}
)
