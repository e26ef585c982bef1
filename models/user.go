package models

import (
	"strings"
	"time"
)

// Role separates the two kinds of marketplace participants.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
)

func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleProvider
}

// ServiceCategory is the trade a provider offers.
type ServiceCategory string

const (
	CategoryPlumbing   ServiceCategory = "plumbing"
	CategoryElectrical ServiceCategory = "electrical"
)

func (c ServiceCategory) IsValid() bool {
	return c == CategoryPlumbing || c == CategoryElectrical
}

// Actor is a registered customer or provider.
type Actor struct {
	ID          string `bson:"id" json:"id"`
	Role        Role   `bson:"role" json:"role"`
	DisplayName string `bson:"displayName" json:"displayName"`
	Email       string `bson:"email" json:"email"`
	Phone       string `bson:"phone" json:"phone"`
	City        string `bson:"city" json:"city"`
	AvatarURL   string `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`

	// Provider attributes; zero for customers.
	ServiceCategory   ServiceCategory `bson:"serviceCategory,omitempty" json:"serviceCategory,omitempty"`
	HourlyRate        int64           `bson:"hourlyRate,omitempty" json:"hourlyRate,omitempty"`
	Availability      bool            `bson:"availability" json:"availability"`
	Rating            float64         `bson:"rating" json:"rating"`
	CompletedJobCount int             `bson:"completedJobCount" json:"completedJobCount"`
	ExperienceYears   int             `bson:"experienceYears,omitempty" json:"experienceYears,omitempty"`
	Description       string          `bson:"description,omitempty" json:"description,omitempty"`
	Skills            []string        `bson:"skills,omitempty" json:"skills,omitempty"`

	PasswordHash string     `bson:"passwordHash" json:"-"`
	TokenHash    string     `bson:"tokenHash,omitempty" json:"-"`
	FCMToken     string     `bson:"fcmToken,omitempty" json:"-"`
	LastLoginAt  *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (a *Actor) IsProvider() bool { return a != nil && a.Role == RoleProvider }

// Offers reports whether the actor is a provider currently taking work in category.
func (a *Actor) Offers(category ServiceCategory) bool {
	return a.IsProvider() && a.Availability && a.ServiceCategory == category
}

// PublicProfile is the directory view of a provider.
type PublicProfile struct {
	ID                string          `json:"id"`
	DisplayName       string          `json:"displayName"`
	City              string          `json:"city"`
	AvatarURL         string          `json:"avatarUrl,omitempty"`
	ServiceCategory   ServiceCategory `json:"serviceCategory"`
	HourlyRate        int64           `json:"hourlyRate"`
	Availability      bool            `json:"availability"`
	Rating            float64         `json:"rating"`
	CompletedJobCount int             `json:"completedJobCount"`
	ExperienceYears   int             `json:"experienceYears,omitempty"`
	Description       string          `json:"description,omitempty"`
	Skills            []string        `json:"skills,omitempty"`
}

func (a *Actor) Public() PublicProfile {
	return PublicProfile{
		ID:                a.ID,
		DisplayName:       a.DisplayName,
		City:              a.City,
		AvatarURL:         a.AvatarURL,
		ServiceCategory:   a.ServiceCategory,
		HourlyRate:        a.HourlyRate,
		Availability:      a.Availability,
		Rating:            a.Rating,
		CompletedJobCount: a.CompletedJobCount,
		ExperienceYears:   a.ExperienceYears,
		Description:       a.Description,
		Skills:            a.Skills,
	}
}

// SignUpRequest is the registration payload.
type SignUpRequest struct {
	Role        Role   `json:"role" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Phone       string `json:"phone"`
	City        string `json:"city"`

	ServiceCategory ServiceCategory `json:"serviceCategory,omitempty"`
	HourlyRate      int64           `json:"hourlyRate,omitempty"`
	ExperienceYears int             `json:"experienceYears,omitempty"`
	Description     string          `json:"description,omitempty"`
	Skills          []string        `json:"skills,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfilePatch carries self-service edits. Nil fields are left untouched.
// Rating and completed job count cannot be patched.
type ProfilePatch struct {
	DisplayName     *string          `json:"displayName,omitempty"`
	Phone           *string          `json:"phone,omitempty"`
	City            *string          `json:"city,omitempty"`
	AvatarURL       *string          `json:"avatarUrl,omitempty"`
	FCMToken        *string          `json:"fcmToken,omitempty"`
	ServiceCategory *ServiceCategory `json:"serviceCategory,omitempty"`
	HourlyRate      *int64           `json:"hourlyRate,omitempty"`
	Availability    *bool            `json:"availability,omitempty"`
	ExperienceYears *int             `json:"experienceYears,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Skills          *[]string        `json:"skills,omitempty"`
}

// TouchesProviderFields reports whether the patch edits provider-only attributes.
func (p ProfilePatch) TouchesProviderFields() bool {
	return p.ServiceCategory != nil || p.HourlyRate != nil || p.Availability != nil ||
		p.ExperienceYears != nil || p.Description != nil || p.Skills != nil
}

func (p ProfilePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.Phone == nil && p.City == nil && p.AvatarURL == nil &&
		p.FCMToken == nil && !p.TouchesProviderFields()
}

// Apply copies the set fields onto a.
func (p ProfilePatch) Apply(a *Actor) {
	if p.DisplayName != nil {
		a.DisplayName = strings.TrimSpace(*p.DisplayName)
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.City != nil {
		a.City = *p.City
	}
	if p.AvatarURL != nil {
		a.AvatarURL = *p.AvatarURL
	}
	if p.FCMToken != nil {
		a.FCMToken = *p.FCMToken
	}
	if p.ServiceCategory != nil {
		a.ServiceCategory = *p.ServiceCategory
	}
	if p.HourlyRate != nil {
		a.HourlyRate = *p.HourlyRate
	}
	if p.Availability != nil {
		a.Availability = *p.Availability
	}
	if p.ExperienceYears != nil {
		a.ExperienceYears = *p.ExperienceYears
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Skills != nil {
		a.Skills = append([]string(nil), (*p.Skills)...)
	}
}

// ProviderFilter narrows the provider directory.
type ProviderFilter struct {
	Category      ServiceCategory `form:"category"`
	City          string          `form:"city"`
	AvailableOnly bool            `form:"available"`
	Query         string          `form:"q"`
}

// Matches applies the filter to a single actor.
func (f ProviderFilter) Matches(a *Actor) bool {
	if !a.IsProvider() {
		return false
	}
	if f.Category != "" && a.ServiceCategory != f.Category {
		return false
	}
	if f.City != "" && !strings.EqualFold(a.City, f.City) {
		return false
	}
	if f.AvailableOnly && !a.Availability {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if strings.Contains(strings.ToLower(a.DisplayName), q) ||
			strings.Contains(strings.ToLower(a.Description), q) {
			return true
		}
		for _, s := range a.Skills {
			if strings.Contains(strings.ToLower(s), q) {
				return true
			}
		}
		return false
	}
	return true
}

// App routes announced to a session observer.
const (
	RouteOnboarding   = "onboarding"
	RouteCustomerHome = "customer_home"
	RouteProviderHome = "provider_home"
)

// RouteFor maps the current actor to the landing route.
func RouteFor(a *Actor) string {
	switch {
	case a == nil:
		return RouteOnboarding
	case a.Role == RoleProvider:
		return RouteProviderHome
	default:
		return RouteCustomerHome
	}
}

// SessionEvent is published whenever the current actor for a session changes.
type SessionEvent struct {
	Actor *Actor `json:"actor"`
	Route string `json:"route"`
}
