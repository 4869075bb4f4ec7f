package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
)

// HTTPTriggerRequest represents the structure of the JSON payload for HTTP triggers.
type HTTPTriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// HTTPTriggerResponse represents the structure of the JSON response for HTTP triggers.
type HTTPTriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// HandleHTTPTrigger unwraps an Azure Functions HTTP trigger invocation, runs
// it through next and wraps the recorded response for the host.
func HandleHTTPTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var invokeReq HTTPTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}

		reqData := invokeReq.Data.Req
		slog.Debug("forwarding wrapped HTTP request", "method", reqData.Method, "url", reqData.URL)

		newReq, err := http.NewRequestWithContext(r.Context(), reqData.Method, reqData.URL, triggerBody(reqData.Body, reqData.IsBase64Encoded))
		if err != nil {
			slog.Error("failed to create internal request", "method", reqData.Method, "url", reqData.URL, "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}
		for k, v := range reqData.Headers {
			for _, val := range v {
				newReq.Header.Add(k, val)
			}
		}

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, newReq)

		result := recorder.Result()
		respBody, _ := io.ReadAll(result.Body)
		result.Body.Close()

		var jsonResp HTTPTriggerResponse
		jsonResp.Outputs.Res.StatusCode = result.StatusCode
		jsonResp.Outputs.Res.Headers = make(map[string]string, len(result.Header))
		for k, v := range result.Header {
			jsonResp.Outputs.Res.Headers[k] = strings.Join(v, ", ")
		}
		jsonResp.Outputs.Res.Body = string(respBody)

		WriteJSON(w, http.StatusOK, jsonResp)
	}
}

// triggerBody decodes the forwarded body. Some hosts send base64 without
// setting isBase64Encoded, so a plain JSON body is tried as-is first.
func triggerBody(body string, isBase64 bool) io.Reader {
	if body == "" {
		return http.NoBody
	}
	if isBase64 || !json.Valid([]byte(body)) {
		if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
			return bytes.NewReader(decoded)
		}
	}
	return strings.NewReader(body)
}
