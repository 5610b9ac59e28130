// Package validation はリクエスト入力の構造体検証を提供する。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/volunteerhub/internal/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// エラーメッセージにはJSONのフィールド名を使う
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// Struct は構造体のvalidateタグを検証する。
// 違反がある場合は最初の違反内容を含むValidationErrorを返す。
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return model.NewValidationError(err.Error())
	}
	return model.NewValidationError(describe(verrs[0]))
}

// describe は検証エラー1件を利用者向けの短い文に変換する。
func describe(fe validator.FieldError) string {
	field := trimRoot(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s は必須です", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s は %s 件以上必要です", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s は %s 文字以上で入力してください", field, fe.Param())
		}
		return fmt.Sprintf("%s は %s 以上で入力してください", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s は %s 件以下にしてください", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s は %s 文字以下で入力してください", field, fe.Param())
		}
		return fmt.Sprintf("%s は %s 以下で入力してください", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s は %s 以上で入力してください", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s はメールアドレスの形式で入力してください", field)
	case "oneof":
		return fmt.Sprintf("%s は %s のいずれかを指定してください", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s が不正です (%s)", field, fe.Tag())
	}
}

// trimRoot は "CreateEventInput.roles[0].name" から構造体名を除く。
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
