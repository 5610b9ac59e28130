// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"time"
)

// AccountKind はアカウント種別を表す。
// Organization と Volunteer の2種のみが存在する。
type AccountKind int

const (
	// AccountKindUnknown は未解決の種別。有効なトークンからは決して生成されない。
	AccountKindUnknown AccountKind = iota
	// AccountKindOrganization はイベントを主催する団体アカウント。
	AccountKindOrganization
	// AccountKindVolunteer はロールに応募するボランティアアカウント。
	AccountKindVolunteer
)

// String はトークンやAPIで使用する文字列表現を返す。
func (k AccountKind) String() string {
	switch k {
	case AccountKindOrganization:
		return "organization"
	case AccountKindVolunteer:
		return "volunteer"
	default:
		return "unknown"
	}
}

// ParseAccountKind は文字列表現からAccountKindを解決する。
func ParseAccountKind(s string) (AccountKind, error) {
	switch s {
	case "organization":
		return AccountKindOrganization, nil
	case "volunteer":
		return AccountKindVolunteer, nil
	default:
		return AccountKindUnknown, fmt.Errorf("unknown account kind: %q", s)
	}
}

// Account は Organization と Volunteer のタグ付きユニオン。
// 実装はこのパッケージ内の2型に限られる。
type Account interface {
	AccountID() string
	Kind() AccountKind
	isAccount()
}

// Organization はイベントを主催する団体を表す。
type Organization struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Description  string
	CreatedAt    time.Time
}

// AccountID はアカウントIDを返す。
func (o *Organization) AccountID() string { return o.ID }

// Kind はAccountKindOrganizationを返す。
func (o *Organization) Kind() AccountKind { return AccountKindOrganization }

func (o *Organization) isAccount() {}

// Volunteer はボランティアを表す。
type Volunteer struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Interests    []string
	CreatedAt    time.Time
}

// AccountID はアカウントIDを返す。
func (v *Volunteer) AccountID() string { return v.ID }

// Kind はAccountKindVolunteerを返す。
func (v *Volunteer) Kind() AccountKind { return AccountKindVolunteer }

func (v *Volunteer) isAccount() {}

// Principal はBearerトークンから解決された認証済みの呼び出し元を表す。
type Principal struct {
	AccountID string
	Kind      AccountKind
}

// AccountView はアカウントの外部公開用の射影。
// パスワードハッシュは含まない。
type AccountView struct {
	ID          string    `json:"id"`
	Kind        string    `json:"account_type"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Description string    `json:"description,omitempty"`
	Interests   []string  `json:"interests,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAccountView はAccountを外部公開用のAccountViewに変換する。
// アカウントが外部に出る経路はこの関数のみとする。
func NewAccountView(a Account) AccountView {
	switch acc := a.(type) {
	case *Organization:
		return AccountView{
			ID:          acc.ID,
			Kind:        AccountKindOrganization.String(),
			Name:        acc.Name,
			Email:       acc.Email,
			Description: acc.Description,
			CreatedAt:   acc.CreatedAt,
		}
	case *Volunteer:
		interests := acc.Interests
		if interests == nil {
			interests = []string{}
		}
		return AccountView{
			ID:        acc.ID,
			Kind:      AccountKindVolunteer.String(),
			Name:      acc.Name,
			Email:     acc.Email,
			Interests: interests,
			CreatedAt: acc.CreatedAt,
		}
	default:
		return AccountView{}
	}
}
