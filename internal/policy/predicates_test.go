package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRepeatedChar(t *testing.T) {
	assert.True(t, isRepeatedChar("aaaaaa"))
	assert.True(t, isRepeatedChar("xxaaaaaayy"))
	assert.True(t, isRepeatedChar("わわわわわわ"))
	assert.False(t, isRepeatedChar("aaaaa"))
	assert.False(t, isRepeatedChar("ababababab"))
	assert.False(t, isRepeatedChar(""))
}

func TestIsAllCaps(t *testing.T) {
	assert.True(t, isAllCaps("HELLO WORLD!!"))
	assert.True(t, isAllCaps("THIS IS LOUD"))
	assert.False(t, isAllCaps("SHORTCAPS"), "10 chars or less is allowed")
	assert.False(t, isAllCaps("Hello World, longer"))
	assert.False(t, isAllCaps("1234567890123"), "no letters at all")
	assert.False(t, isAllCaps("こんにちは、これは長いテキスト"), "no cased letters")
}

func TestIsExcessivePunctuation(t *testing.T) {
	assert.True(t, isExcessivePunctuation("what!!!"))
	assert.True(t, isExcessivePunctuation("really?!?"))
	assert.True(t, isExcessivePunctuation("???"))
	assert.False(t, isExcessivePunctuation("what!!"))
	assert.False(t, isExcessivePunctuation("a! b! c!"))
}

func TestMatchesBannedWord(t *testing.T) {
	assert.True(t, matchesBannedWord("just 死ね already", defaultBannedWords))
	assert.True(t, matchesBannedWord("KYS", defaultBannedWords))
	assert.False(t, matchesBannedWord("nice стрим", defaultBannedWords))
	assert.False(t, matchesBannedWord("", defaultBannedWords))
}

func TestMatchesSpamSignature(t *testing.T) {
	assert.True(t, matchesSpamSignature("check https://example.com/win"))
	assert.True(t, matchesSpamSignature("join discord.gg/abc123"))
	assert.True(t, matchesSpamSignature("mail me at spam@example.com"))
	assert.True(t, matchesSpamSignature("call 080123456789"))
	assert.False(t, matchesSpamSignature("regular comment 123"))
	assert.False(t, matchesSpamSignature("great play"))
}
