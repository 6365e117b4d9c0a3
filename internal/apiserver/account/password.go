package account

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"qa-server/internal/shared/model"
)

// PasswordValidator 密码强度校验，通过时返回空串
type PasswordValidator func(password string, user *model.User) string

// DefaultMinLength 默认最小密码长度
const DefaultMinLength = 8

// DefaultMaxSimilarity 密码与用户资料的最大相似度
const DefaultMaxSimilarity = 0.7

// DefaultPasswordValidators 默认校验链：相似度、最小长度、常见密码、纯数字
func DefaultPasswordValidators() []PasswordValidator {
	return []PasswordValidator{
		UserAttributeSimilarity(DefaultMaxSimilarity),
		MinimumLength(DefaultMinLength),
		CommonPassword(),
		NotNumeric(),
	}
}

// ValidatePassword 依次执行全部校验，返回所有未通过的提示
func ValidatePassword(password string, user *model.User, validators []PasswordValidator) []string {
	var problems []string
	for _, v := range validators {
		if msg := v(password, user); msg != "" {
			problems = append(problems, msg)
		}
	}
	return problems
}

// MinimumLength 最小长度（按字符计）
func MinimumLength(n int) PasswordValidator {
	return func(password string, _ *model.User) string {
		if utf8.RuneCountInString(password) < n {
			return fmt.Sprintf("this password is too short, it must contain at least %d characters", n)
		}
		return ""
	}
}

// NotNumeric 不能全是数字
func NotNumeric() PasswordValidator {
	return func(password string, _ *model.User) string {
		if password == "" {
			return ""
		}
		for _, r := range password {
			if !unicode.IsDigit(r) {
				return ""
			}
		}
		return "this password is entirely numeric"
	}
}

//go:embed common-passwords.txt
var commonPasswordsRaw string

var (
	commonOnce      sync.Once
	commonPasswords map[string]struct{}
)

func loadCommonPasswords() map[string]struct{} {
	commonOnce.Do(func() {
		commonPasswords = make(map[string]struct{})
		for _, line := range strings.Split(commonPasswordsRaw, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				commonPasswords[strings.ToLower(line)] = struct{}{}
			}
		}
	})
	return commonPasswords
}

// CommonPassword 拒绝常见密码（忽略大小写和首尾空白）
func CommonPassword() PasswordValidator {
	return func(password string, _ *model.User) string {
		if _, ok := loadCommonPasswords()[strings.ToLower(strings.TrimSpace(password))]; ok {
			return "this password is too common"
		}
		return ""
	}
}

var nonWord = regexp.MustCompile(`\W+`)

// UserAttributeSimilarity 密码不能与用户名、姓名、邮箱过于相似
//
// 属性值整体及其按非单词字符切分的每一段分别比较
func UserAttributeSimilarity(maxSimilarity float64) PasswordValidator {
	return func(password string, user *model.User) string {
		if user == nil {
			return ""
		}
		attrs := []struct {
			name  string
			value string
		}{
			{"username", user.Username},
			{"first name", user.FirstName},
			{"last name", user.LastName},
			{"email address", user.Email},
		}
		pw := strings.ToLower(password)
		for _, attr := range attrs {
			if attr.value == "" {
				continue
			}
			value := strings.ToLower(attr.value)
			parts := append(nonWord.Split(value, -1), value)
			for _, part := range parts {
				if part == "" || exceedsLengthRatio(pw, part, maxSimilarity) {
					continue
				}
				if quickRatio(pw, part) >= maxSimilarity {
					return fmt.Sprintf("the password is too similar to the %s", attr.name)
				}
			}
		}
		return ""
	}
}

// exceedsLengthRatio 密码远长于属性值时不可能达到相似度阈值
func exceedsLengthRatio(password, value string, maxSimilarity float64) bool {
	pwLen := utf8.RuneCountInString(password)
	valueLen := utf8.RuneCountInString(value)
	return pwLen >= 10*valueLen && float64(valueLen) < maxSimilarity/2*float64(pwLen)
}

// quickRatio 基于字符多重集交集的相似度上界：2*M/T
func quickRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}
	avail := make(map[rune]int)
	for _, r := range b {
		avail[r]++
	}
	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}
