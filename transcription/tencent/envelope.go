package tencent

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/asrgate/errors"
)

// outcomeKind tags the variant held by an outcome.
type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeError
	outcomeMalformed
)

// outcome is a decoded API reply. Exactly one variant is meaningful:
// response for success, code/message for error, reason for malformed.
type outcome struct {
	kind      outcomeKind
	requestID string
	response  json.RawMessage
	code      string
	message   string
	reason    string
}

type apiError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type envelope struct {
	Response *struct {
		RequestID string    `json:"RequestId"`
		Error     *apiError `json:"Error"`
	} `json:"Response"`
}

// decodeEnvelope classifies a reply body. Every API reply is wrapped in a
// Response object, which carries an Error object on failure.
func decodeEnvelope(body []byte) outcome {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return outcome{kind: outcomeMalformed, reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if env.Response == nil {
		return outcome{kind: outcomeMalformed, reason: "missing Response object"}
	}
	if e := env.Response.Error; e != nil {
		if e.Code == "" {
			return outcome{kind: outcomeMalformed, requestID: env.Response.RequestID, reason: "error without code"}
		}
		return outcome{kind: outcomeError, requestID: env.Response.RequestID, code: e.Code, message: e.Message}
	}

	var raw struct {
		Response json.RawMessage `json:"Response"`
	}
	_ = json.Unmarshal(body, &raw)
	return outcome{kind: outcomeSuccess, requestID: env.Response.RequestID, response: raw.Response}
}

// err converts a non-success outcome into an AppError.
func (o outcome) err() error {
	switch o.kind {
	case outcomeError:
		appErr := errors.RemoteRejected(ProviderName, o.code, o.message)
		if o.requestID != "" {
			appErr.WithDetail("request_id", o.requestID)
		}
		return appErr
	case outcomeMalformed:
		return errors.MalformedResponse(ProviderName, o.reason)
	default:
		return nil
	}
}

// --- action payloads ---

type sentenceRecognitionRequest struct {
	EngSerViceType string `json:"EngSerViceType"`
	SourceType     int    `json:"SourceType"`
	VoiceFormat    string `json:"VoiceFormat"`
	UsrAudioKey    string `json:"UsrAudioKey"`
	Data           string `json:"Data"`
	DataLen        int    `json:"DataLen"`
}

type sentenceRecognitionResponse struct {
	Result        *string `json:"Result"`
	AudioDuration int64   `json:"AudioDuration"`
}

type createRecTaskRequest struct {
	EngineModelType string `json:"EngineModelType"`
	ChannelNum      int    `json:"ChannelNum"`
	ResTextFormat   int    `json:"ResTextFormat"`
	SourceType      int    `json:"SourceType"`
	URL             string `json:"Url"`
}

type createRecTaskResponse struct {
	Data *struct {
		TaskID *uint64 `json:"TaskId"`
	} `json:"Data"`
}

type describeTaskStatusRequest struct {
	TaskID uint64 `json:"TaskId"`
}

type describeTaskStatusResponse struct {
	Data *struct {
		TaskID    uint64 `json:"TaskId"`
		Status    *int   `json:"Status"`
		StatusStr string `json:"StatusStr"`
		Result    string `json:"Result"`
		ErrorMsg  string `json:"ErrorMsg"`
	} `json:"Data"`
}
