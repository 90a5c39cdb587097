package domain

import "fmt"

// Role is the closed set of user roles. Role checks dispatch on this enum,
// never on raw strings from the store.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleTranslator Role = "translator"
	RoleAdmin      Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleTranslator, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// ConsumerType is the customer's billing category.
type ConsumerType string

const (
	ConsumerPaid ConsumerType = "paid"
	ConsumerRWS  ConsumerType = "rwsconsumer"
	ConsumerNGO  ConsumerType = "ngo"
)

// TranslatorType is the translator's engagement category.
type TranslatorType string

const (
	TranslatorProfessional TranslatorType = "professional"
	TranslatorRWS          TranslatorType = "rwstranslator"
	TranslatorVolunteer    TranslatorType = "volunteer"
)

// TranslatorTypeForJob maps a job type onto the translator category allowed
// to take it.
func TranslatorTypeForJob(t JobType) TranslatorType {
	switch t {
	case JobTypePaid:
		return TranslatorProfessional
	case JobTypeRWS:
		return TranslatorRWS
	}
	return TranslatorVolunteer
}

// TranslatorLevel is a certification capability a translator holds.
type TranslatorLevel string

const (
	LevelCertified       TranslatorLevel = "certified"
	LevelCertifiedLaw    TranslatorLevel = "certified_law"
	LevelCertifiedHealth TranslatorLevel = "certified_health"
	LevelLayman          TranslatorLevel = "layman"
	LevelReadCourses     TranslatorLevel = "read_courses"
)

// AllTranslatorLevels is the level set used when a job has no certification
// requirement.
var AllTranslatorLevels = []TranslatorLevel{
	LevelCertified, LevelCertifiedLaw, LevelCertifiedHealth, LevelLayman, LevelReadCourses,
}

// LevelsForCertification maps the customer's requested certification onto the
// translator levels that satisfy it.
func LevelsForCertification(c Certification) []TranslatorLevel {
	switch c {
	case CertificationYes, CertificationBoth:
		return []TranslatorLevel{LevelCertified, LevelCertifiedLaw, LevelCertifiedHealth}
	case CertificationLaw, CertificationNLaw:
		return []TranslatorLevel{LevelCertifiedLaw}
	case CertificationHealth, CertificationNHealth:
		return []TranslatorLevel{LevelCertifiedHealth}
	case CertificationNormal:
		return []TranslatorLevel{LevelLayman}
	}
	return AllTranslatorLevels
}

// User is a customer, translator or admin account.
type User struct {
	ID        string `db:"id"`
	Role      Role   `db:"role"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Mobile    string `db:"mobile"`
	City      string `db:"city"`
	Gender    Gender `db:"gender"` // empty when not stated
	Suspended bool   `db:"suspended"`

	// customer fields
	ConsumerType ConsumerType `db:"consumer_type"`

	// translator fields
	TranslatorType   TranslatorType    `db:"translator_type"`
	TranslatorLevels []TranslatorLevel `db:"-"`
	Languages        []string          `db:"-"` // spoken language ids
	Blacklist        []string          `db:"-"` // customer ids this translator is never matched to

	// notification preferences
	SuppressEmergency bool `db:"suppress_emergency"`
	SuppressNighttime bool `db:"suppress_nighttime"`
	SuppressAll       bool `db:"suppress_all"`
}

// Speaks reports whether the translator's spoken-language set includes the
// given language.
func (u *User) Speaks(languageID string) bool {
	for _, l := range u.Languages {
		if l == languageID {
			return true
		}
	}
	return false
}

// HasLevel reports whether the translator holds any of the given levels.
func (u *User) HasLevel(levels []TranslatorLevel) bool {
	for _, want := range levels {
		for _, have := range u.TranslatorLevels {
			if want == have {
				return true
			}
		}
	}
	return false
}

// Blacklists reports whether this translator must never serve the customer.
func (u *User) Blacklists(customerID string) bool {
	for _, id := range u.Blacklist {
		if id == customerID {
			return true
		}
	}
	return false
}
