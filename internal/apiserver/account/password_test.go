package account

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"qa-server/internal/shared/model"
)

func TestMinimumLength(t *testing.T) {
	v := MinimumLength(8)
	assert.NotEmpty(t, v("short", nil))
	assert.Empty(t, v("longenough", nil))
	assert.Empty(t, v("八个字符八个字符", nil))
}

func TestNotNumeric(t *testing.T) {
	v := NotNumeric()
	assert.NotEmpty(t, v("4815162342", nil))
	assert.Empty(t, v("4815162342a", nil))
}

func TestCommonPassword(t *testing.T) {
	v := CommonPassword()
	assert.NotEmpty(t, v("password", nil))
	assert.NotEmpty(t, v("  PassWord123 ", nil))
	assert.Empty(t, v("velvet-otter-harbor", nil))
}

func TestUserAttributeSimilarity(t *testing.T) {
	user := &model.User{Username: "johnsmith", FirstName: "John", LastName: "Smith", Email: "jsmith@example.com"}
	v := UserAttributeSimilarity(DefaultMaxSimilarity)

	assert.Contains(t, v("johnsmith1", user), "username")
	assert.Contains(t, v("smithers", &model.User{Username: "jdoe", LastName: "Smithers"}), "last name")
	assert.Empty(t, v("velvet-otter-harbor", user))
	assert.Empty(t, v("johnsmith1", nil))
}

func TestQuickRatio(t *testing.T) {
	assert.Equal(t, 1.0, quickRatio("abc", "cba"))
	assert.Equal(t, 0.0, quickRatio("abc", "xyz"))
	assert.InDelta(t, 0.5, quickRatio("ab", "ac"), 1e-9)
}

func TestValidatePassword_CollectsAll(t *testing.T) {
	problems := ValidatePassword("123", &model.User{Username: "bob"}, DefaultPasswordValidators())
	assert.Len(t, problems, 2) // too short + entirely numeric

	assert.Empty(t, ValidatePassword("velvet-otter-harbor", &model.User{Username: "bob"}, DefaultPasswordValidators()))
}
