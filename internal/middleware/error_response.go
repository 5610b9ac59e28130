package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/volunteerhub/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。内部原因（APIError.Err）は含めない。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// HTTPStatusFor はAPIErrorに対応するHTTPステータスコードを返す。
func HTTPStatusFor(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeAlreadySignedUp:
		// 既存クライアントとの互換のため重複応募は400で返す
		return http.StatusBadRequest
	case model.ErrCodeLoginFailed:
		return http.StatusUnauthorized
	}

	switch apiErr.Category {
	case model.CategoryValidation:
		return http.StatusBadRequest
	case model.CategoryAuthentication:
		return http.StatusUnauthorized
	case model.CategoryAuthorization:
		return http.StatusForbidden
	case model.CategoryNotFound:
		return http.StatusNotFound
	case model.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError はサービス層のエラーをレスポンスに変換する。
// 5xxの場合は内部原因をログに記録し、メッセージは汎用のものに限る。
// APIError以外のエラーはINTERNAL_ERRORとして扱う。
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		slog.ErrorContext(r.Context(), "internal server error",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
		WriteInternalServerError(w)
		return
	}

	status := HTTPStatusFor(apiErr)
	if status >= http.StatusInternalServerError {
		cause := "unknown"
		if apiErr.Err != nil {
			cause = apiErr.Err.Error()
		}
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("code", apiErr.Code),
			slog.String("error", cause),
			slog.String("path", r.URL.Path),
		)
	}
	WriteErrorResponse(w, status, apiErr)
}
