package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"customer", "translator", "admin"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, Role(valid), role)
	}

	_, err := ParseRole("superuser")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestTranslatorTypeForJob(t *testing.T) {
	assert.Equal(t, TranslatorProfessional, TranslatorTypeForJob(JobTypePaid))
	assert.Equal(t, TranslatorRWS, TranslatorTypeForJob(JobTypeRWS))
	assert.Equal(t, TranslatorVolunteer, TranslatorTypeForJob(JobTypeUnpaid))
	assert.Equal(t, TranslatorVolunteer, TranslatorTypeForJob(JobTypeUnknown))
}

func TestLevelsForCertification(t *testing.T) {
	tests := []struct {
		certification Certification
		want          []TranslatorLevel
	}{
		{CertificationYes, []TranslatorLevel{LevelCertified, LevelCertifiedLaw, LevelCertifiedHealth}},
		{CertificationBoth, []TranslatorLevel{LevelCertified, LevelCertifiedLaw, LevelCertifiedHealth}},
		{CertificationLaw, []TranslatorLevel{LevelCertifiedLaw}},
		{CertificationNLaw, []TranslatorLevel{LevelCertifiedLaw}},
		{CertificationHealth, []TranslatorLevel{LevelCertifiedHealth}},
		{CertificationNHealth, []TranslatorLevel{LevelCertifiedHealth}},
		{CertificationNormal, []TranslatorLevel{LevelLayman}},
		{Certification(""), AllTranslatorLevels},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelsForCertification(tt.certification), "certification %q", tt.certification)
	}
}

func TestUser_Speaks(t *testing.T) {
	translator := &User{Languages: []string{"lang-sv", "lang-ar"}}

	assert.True(t, translator.Speaks("lang-sv"))
	assert.True(t, translator.Speaks("lang-ar"))
	assert.False(t, translator.Speaks("lang-fi"))

	empty := &User{}
	assert.False(t, empty.Speaks("lang-sv"))
}

func TestUser_HasLevel(t *testing.T) {
	translator := &User{TranslatorLevels: []TranslatorLevel{LevelCertified, LevelLayman}}

	assert.True(t, translator.HasLevel([]TranslatorLevel{LevelCertified}))
	assert.True(t, translator.HasLevel([]TranslatorLevel{LevelCertifiedLaw, LevelLayman}))
	assert.False(t, translator.HasLevel([]TranslatorLevel{LevelCertifiedHealth}))
	assert.False(t, translator.HasLevel(nil))
}

func TestUser_Blacklists(t *testing.T) {
	translator := &User{Blacklist: []string{"cust-1", "cust-2"}}

	assert.True(t, translator.Blacklists("cust-1"))
	assert.False(t, translator.Blacklists("cust-3"))
	assert.False(t, (&User{}).Blacklists("cust-1"))
}
