package profile

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSkillCategory is used when a skill is created without a category.
const DefaultSkillCategory = "General"

// User: корневая запись профиля. Создаётся при регистрации.
type User struct {
	ID                       uuid.UUID `json:"id"`
	Email                    string    `json:"email"`
	Name                     string    `json:"name"`
	Title                    string    `json:"title"`
	Location                 string    `json:"location"`
	Bio                      string    `json:"bio"`
	Phone                    string    `json:"phone"`
	ProfileEmail             string    `json:"profileEmail"`
	HasCompletedProfileSetup bool      `json:"hasCompletedProfileSetup"`
	IsUploadResumeForProfile bool      `json:"isUploadResumeForProfile"`
	CreatedAt                time.Time `json:"createdAt"`
	UpdatedAt                time.Time `json:"updatedAt"`
}

type Skill struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"userId"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Level    *int      `json:"level,omitempty"` // 1..5
}

type Experience struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"userId"`
	Position          string     `json:"position"`
	Company           string     `json:"company"`
	Location          string     `json:"location"`
	StartDate         time.Time  `json:"startDate"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	Description       string     `json:"description"`
	IsCurrentPosition bool       `json:"isCurrentPosition"`
}

type Education struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	Institution  string    `json:"institution"`
	Degree       string    `json:"degree"`
	FieldOfStudy string    `json:"fieldOfStudy"`
	StartYear    int       `json:"startYear"`
	EndYear      int       `json:"endYear"`
	Description  string    `json:"description"`
}

// Patch is a sparse update of the user's scalar fields: nil means "leave as is".
// The two flags are only ever switched on.
type Patch struct {
	Name         *string `json:"name,omitempty"`
	Title        *string `json:"title,omitempty"`
	Location     *string `json:"location,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	ProfileEmail *string `json:"profileEmail,omitempty"`

	MarkProfileSetupCompleted bool `json:"-"`
	MarkResumeUploaded        bool `json:"-"`
}

// Empty reports whether the patch carries no scalar field.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Title == nil && p.Location == nil &&
		p.Bio == nil && p.Phone == nil && p.ProfileEmail == nil
}

// Apply writes the patch onto u.
func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Title != nil {
		u.Title = *p.Title
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.ProfileEmail != nil {
		u.ProfileEmail = *p.ProfileEmail
	}
	if p.MarkProfileSetupCompleted {
		u.HasCompletedProfileSetup = true
	}
	if p.MarkResumeUploaded {
		u.IsUploadResumeForProfile = true
	}
}

// Profile is the full read model returned to clients.
type Profile struct {
	User        User         `json:"user"`
	Skills      []Skill      `json:"skills"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
}
