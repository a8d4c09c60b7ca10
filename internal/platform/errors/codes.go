// Package errors provides structured domain errors with HTTP status mapping.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Room errors
	CodeRoomIDEmpty        Code = "ROOM_ID_EMPTY"
	CodeRoomIDMismatch     Code = "ROOM_ID_MISMATCH"
	CodeRoomNameEmpty      Code = "ROOM_NAME_EMPTY"
	CodeRoomOwnerEmpty     Code = "ROOM_OWNER_EMPTY"
	CodeRoomMetadataDrift  Code = "ROOM_METADATA_DRIFT"
	CodeEventNotFound      Code = "EVENT_NOT_FOUND"
	CodeEventTitleEmpty    Code = "EVENT_TITLE_EMPTY"
	CodeQuestionNotFound   Code = "QUESTION_NOT_FOUND"
	CodeQuestionLabelEmpty Code = "QUESTION_LABEL_EMPTY"
	CodeQuestionBadType    Code = "QUESTION_INVALID_TYPE"

	// Participant errors
	CodeParticipantFieldMissing Code = "PARTICIPANT_FIELD_MISSING"
	CodeParticipantEmailInvalid Code = "PARTICIPANT_EMAIL_INVALID"

	// Sequencer errors
	CodeNoEventsSelected      Code = "NO_EVENTS_SELECTED"
	CodeRequiredAnswerMissing Code = "REQUIRED_ANSWER_MISSING"
	CodeStepOrderViolation    Code = "STEP_ORDER_VIOLATION"
	CodeRunFinished           Code = "RUN_FINISHED"

	// Auth errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeBadCredentials  Code = "BAD_CREDENTIALS"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, malformed input
	case CodeRoomIDEmpty,
		CodeRoomIDMismatch,
		CodeRoomNameEmpty,
		CodeRoomOwnerEmpty,
		CodeRoomMetadataDrift,
		CodeEventTitleEmpty,
		CodeQuestionLabelEmpty,
		CodeQuestionBadType,
		CodeParticipantFieldMissing,
		CodeParticipantEmailInvalid,
		CodeNoEventsSelected,
		CodeRequiredAnswerMissing:
		return http.StatusBadRequest

	// Conflict - state doesn't allow the operation
	case CodeStepOrderViolation,
		CodeRunFinished:
		return http.StatusConflict

	case CodeUnauthenticated,
		CodeBadCredentials:
		return http.StatusUnauthorized

	case CodeNotFound,
		CodeEventNotFound,
		CodeQuestionNotFound:
		return http.StatusNotFound

	case CodeStorageFailure:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
