package ads

import (
	"time"

	"gorm.io/gorm"
)

type Platform struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:name;size:255" json:"name"`
}

func (Platform) TableName() string { return "platforms" }

type Company struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Name    string  `gorm:"column:name;size:255" json:"name"`
	Email   *string `gorm:"column:email;size:255" json:"email,omitempty"`
	Website *string `gorm:"column:website;size:255" json:"website,omitempty"`
}

func (Company) TableName() string { return "companies" }

type Brand struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CompanyID uint           `gorm:"column:company_id;index" json:"company_id"`
	Name      string         `gorm:"column:name;size:100" json:"name"`
	IsActive  bool           `gorm:"column:is_active;index" json:"is_active"`
	Locale    *string        `gorm:"column:locale;size:5" json:"locale,omitempty"`
	Currency  *string        `gorm:"column:currency;size:5" json:"currency,omitempty"`
	Logo      *string        `gorm:"column:logo;size:255" json:"logo,omitempty"`
	LogoDate  *time.Time     `gorm:"column:logo_date;type:date" json:"logo_date,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

func (Brand) TableName() string { return "brands" }

// PlatformInfo binds one external ad account to a brand and a platform. It
// scopes every natural key of the ingested entities.
type PlatformInfo struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PlatformID  uint           `gorm:"column:platform_id;index" json:"platform_id"`
	BrandID     uint           `gorm:"column:brand_id;index" json:"brand_id"`
	AccountID   string         `gorm:"column:account_id;size:255;index" json:"account_id"`
	AccountName *string        `gorm:"column:account_name;size:255" json:"account_name,omitempty"`
	Token1      *string        `gorm:"column:token1;size:255" json:"-"`
	Token2      *string        `gorm:"column:token2;size:255" json:"-"`
	PageID      *string        `gorm:"column:page_id;size:255" json:"page_id,omitempty"`
	TargetWords *string        `gorm:"column:target_words;type:text" json:"target_words,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

func (PlatformInfo) TableName() string { return "platform_info" }

func (p PlatformInfo) Channel() Channel { return Channel(p.PlatformID) }

// AccountDetails is the fetcher-facing view of a platform_info row.
type AccountDetails struct {
	AccountID   string  `json:"account_id"`
	Channel     Channel `json:"channel"`
	BrandID     *uint   `json:"brand_id,omitempty"`
	AccountName *string `json:"account_name,omitempty"`
	Token1      *string `json:"-"`
	Token2      *string `json:"-"`
	TargetWords *string `json:"target_words,omitempty"`
}

func AccountDetailsFrom(pi PlatformInfo) AccountDetails {
	brandID := pi.BrandID
	return AccountDetails{
		AccountID:   pi.AccountID,
		Channel:     pi.Channel(),
		BrandID:     &brandID,
		AccountName: pi.AccountName,
		Token1:      pi.Token1,
		Token2:      pi.Token2,
		TargetWords: pi.TargetWords,
	}
}

// Description renders "(CHANNEL)[account | name]" for log lines.
func (a AccountDetails) Description() string {
	name := "UNKNOWN"
	if a.AccountName != nil {
		name = *a.AccountName
	}
	return "(" + a.Channel.String() + ")[" + a.AccountID + " | " + name + "]"
}
