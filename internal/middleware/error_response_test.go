package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/volunteerhub/internal/model"
)

// TestWriteErrorResponse_WritesUnifiedFormat は統一エラーフォーマットでレスポンスが書き込まれることを検証する。
func TestWriteErrorResponse_WritesUnifiedFormat(t *testing.T) {
	w := httptest.NewRecorder()

	apiErr := &model.APIError{
		Code:     "TEST_ERROR",
		Message:  "テストエラーです。",
		Category: "validation",
		Action:   "正しい値を入力してください。",
	}

	WriteErrorResponse(w, http.StatusBadRequest, apiErr)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}

	if body.Code != "TEST_ERROR" {
		t.Errorf("code = %q, want %q", body.Code, "TEST_ERROR")
	}
	if body.Message != "テストエラーです。" {
		t.Errorf("message = %q, want %q", body.Message, "テストエラーです。")
	}
	if body.Category != "validation" {
		t.Errorf("category = %q, want %q", body.Category, "validation")
	}
	if body.Action != "正しい値を入力してください。" {
		t.Errorf("action = %q, want %q", body.Action, "正しい値を入力してください。")
	}
}

// TestWriteErrorResponse_DifferentStatusCodes は異なるステータスコードで正しく動作することを検証する。
func TestWriteErrorResponse_DifferentStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		code       string
		category   string
	}{
		{"Unauthorized", http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "authentication"},
		{"Forbidden", http.StatusForbidden, "NOT_EVENT_OWNER", "authorization"},
		{"NotFound", http.StatusNotFound, "EVENT_NOT_FOUND", "not_found"},
		{"Conflict", http.StatusConflict, "ROLE_FULL", "conflict"},
		{"Internal", http.StatusInternalServerError, "INTERNAL_ERROR", "system"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteErrorResponse(w, tt.statusCode, &model.APIError{
				Code:     tt.code,
				Message:  "test",
				Category: tt.category,
				Action:   "test action",
			})

			resp := w.Result()
			if resp.StatusCode != tt.statusCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.statusCode)
			}

			var body ErrorResponseBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}

			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
			if body.Category != tt.category {
				t.Errorf("category = %q, want %q", body.Category, tt.category)
			}
		})
	}
}

// TestInternalServerError_ReturnsSystemError は内部エラーが統一フォーマットで返ることを検証する。
func TestInternalServerError_ReturnsSystemError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want %q", body.Code, "INTERNAL_ERROR")
	}
	if body.Category != "system" {
		t.Errorf("category = %q, want %q", body.Category, "system")
	}
	if body.Action == "" {
		t.Error("action should not be empty")
	}
}

// TestErrorResponseBody_AllFieldsPresent は全フィールドがJSONレスポンスに含まれることを検証する。
func TestErrorResponseBody_AllFieldsPresent(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "CODE",
		Message:  "MSG",
		Category: "CAT",
		Action:   "ACT",
	})

	var raw map[string]interface{}
	if err := json.NewDecoder(w.Result().Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	requiredFields := []string{"code", "message", "category", "action"}
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing required field: %s", field)
		}
	}
}

// TestHTTPStatusFor はエラー種別ごとのHTTPステータスを検証する。
func TestHTTPStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  *model.APIError
		want int
	}{
		{"Validation", model.NewValidationError("title は必須です"), http.StatusBadRequest},
		{"InvalidRequest", model.NewInvalidRequestError(), http.StatusBadRequest},
		{"AuthenticationRequired", model.NewAuthenticationRequiredError(), http.StatusUnauthorized},
		{"LoginFailed", model.NewLoginFailedError(), http.StatusUnauthorized},
		{"InvalidCredential", model.NewInvalidCredentialError(errors.New("expired")), http.StatusForbidden},
		{"ForbiddenKind", model.NewForbiddenAccountKindError(model.AccountKindVolunteer), http.StatusForbidden},
		{"NotEventOwner", model.NewNotEventOwnerError(), http.StatusForbidden},
		{"EventNotFound", model.NewEventNotFoundError("e-1"), http.StatusNotFound},
		{"RoleNotFound", model.NewRoleNotFoundError("r-1"), http.StatusNotFound},
		{"AssignmentNotFound", model.NewAssignmentNotFoundError("a-1"), http.StatusNotFound},
		{"AlreadySignedUp", model.NewAlreadySignedUpError(), http.StatusBadRequest},
		{"RoleFull", model.NewRoleFullError(), http.StatusConflict},
		{"EmailTaken", model.NewEmailTakenError(), http.StatusConflict},
		{"TransactionFailed", model.NewTransactionFailedError(errors.New("deadlock")), http.StatusInternalServerError},
		{"Persistence", model.NewPersistenceError(errors.New("conn refused")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFor(tt.err); got != tt.want {
				t.Errorf("HTTPStatusFor(%s) = %d, want %d", tt.err.Code, got, tt.want)
			}
		})
	}
}

// TestWriteServiceError_HidesInternalCause は5xxで内部原因がレスポンスに含まれないことを検証する。
func TestWriteServiceError_HidesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/events", nil)

	WriteServiceError(w, r, model.NewTransactionFailedError(errors.New("pq: deadlock detected")))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	body := w.Body.String()
	if contains(body, "deadlock") {
		t.Errorf("response body leaks internal cause: %s", body)
	}
}

// TestWriteServiceError_NonAPIError はAPIError以外のエラーがINTERNAL_ERRORになることを検証する。
func TestWriteServiceError_NonAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/events", nil)

	WriteServiceError(w, r, errors.New("boom"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want %q", body.Code, "INTERNAL_ERROR")
	}
}

// TestWriteServiceError_WrappedAPIError はラップされたAPIErrorも判別されることを検証する。
func TestWriteServiceError_WrappedAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/events/x", nil)

	WriteServiceError(w, r, fmt.Errorf("get event: %w", model.NewEventNotFoundError("x")))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
