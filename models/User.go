package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email" gorm:"uniqueIndex;size:256"`
	Password            string         `json:"-"`
	Role                string         `json:"role" gorm:"type:varchar(20);default:farmer;index"` // farmer, expert, admin
	Expertise           string         `json:"expertise" gorm:"size:256"`                         // experts only, e.g. "soil science"
	IsActive            *bool          `json:"isActive" gorm:"default:true"`
	IsBlocked           bool           `json:"isBlocked" gorm:"default:false"`
	LastActiveAt        *time.Time     `json:"lastActiveAt"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
}

// Custom JSON marshaling so the push token JSON column renders as an array
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		PushTokens []string `json:"pushTokens,omitempty"`
		*Alias
	}{
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	if u.PushTokens != nil {
		var tokens []string
		if err := json.Unmarshal(u.PushTokens, &tokens); err == nil {
			aux.PushTokens = tokens
		}
	}

	return json.Marshal(aux)
}
