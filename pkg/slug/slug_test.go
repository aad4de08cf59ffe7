package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Hello World":          "hello-world",
		"  Café déjà vu  ":     "cafe-deja-vu",
		"Go -- is   fun!":      "go-is-fun",
		"snake_case stays":     "snake_case-stays",
		"Ünïcödé & Symbols #1": "unicode-symbols-1",
		"---trim---":           "trim",
		"日本語":                  Fallback,
		"":                     Fallback,
		"Ｆｕｌｌｗｉｄｔｈ Letters":    "fullwidth-letters",
	}
	for input, want := range cases {
		assert.Equal(t, want, Make(input), input)
	}
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "post", WithSuffix("post", 1))
	assert.Equal(t, "post-2", WithSuffix("post", 2))
	assert.Equal(t, "post-10", WithSuffix("post", 10))
}
