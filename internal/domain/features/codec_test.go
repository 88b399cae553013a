package features

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCompose_PatternBeforeColor(t *testing.T) {
	c := NewCodec(English)
	got := c.Compose(Parts{Color: "black", Pattern: "tabby"})
	assert.Equal(t, "tabby black", got)
}

func TestRoundTrip_StructuredSelection(t *testing.T) {
	cases := []struct {
		name  string
		vocab Vocabulary
		parts Parts
	}{
		{"en pattern+color", English, Parts{Pattern: "tabby", Color: "black"}},
		{"en all fields", English, Parts{Pattern: "brown tabby", Color: "white", Fur: "long hair", Tail: "kinked"}},
		{"ja all fields", Japanese, Parts{Pattern: "キジトラ", Color: "黒", Fur: "短毛", Tail: "長い"}},
		{"ja pattern embeds color", Japanese, Parts{Pattern: "茶トラ", Color: "茶"}},
		{"ja tail only", Japanese, Parts{Tail: "カギ"}},
		{"ja fur short tail short", Japanese, Parts{Fur: "短毛", Tail: "短い"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCodec(tc.vocab)
			got := c.Decompose(c.Compose(tc.parts))
			if diff := cmp.Diff(tc.parts, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecompose(t *testing.T) {
	c := NewCodec(Japanese)

	cases := []struct {
		in   string
		want Parts
	}{
		{"", Parts{}},
		{"   ", Parts{}},
		{"黒 キジトラ 短毛", Parts{Pattern: "キジトラ", Color: "黒", Fur: "短毛"}},
		{"ハチワレ、白、人懐っこい", Parts{Pattern: "ハチワレ", Color: "白", Other: "人懐っこい"}},
		{"三毛 / 長い尻尾 / 左耳カット", Parts{Pattern: "三毛", Tail: "長い", Other: "左耳カット"}},
		{"大きい体", Parts{Other: "大きい体"}},
		// 不明 nunca se toma como valor.
		{"不明", Parts{Other: "不明"}},
	}

	for _, tc := range cases {
		got := c.Decompose(tc.in)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Decompose(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestDecompose_OnlyOneTokenPerCategory(t *testing.T) {
	c := NewCodec(Japanese)
	got := c.Decompose("黒 白")
	assert.Equal(t, "黒", got.Color)
	assert.Equal(t, "白", got.Other)
}

func TestCompose(t *testing.T) {
	c := NewCodec(Japanese)

	cases := []struct {
		name string
		in   Parts
		want string
	}{
		{"empty", Parts{}, ""},
		{"drops unknown", Parts{Pattern: "不明", Color: "黒", Fur: "不明", Tail: "不明"}, "黒"},
		{"tail suffix", Parts{Tail: "団子"}, "団子尻尾"},
		{"tail already suffixed", Parts{Tail: "団子尻尾"}, "団子尻尾"},
		{"other verbatim", Parts{Color: "白", Other: "左耳カット、人懐っこい"}, "白 左耳カット、人懐っこい"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Compose(tc.in))
		})
	}
}

func TestCompose_PreservesTokensThroughDecompose(t *testing.T) {
	c := NewCodec(Japanese)
	text := "黒っぽいキジ、サバトラ"
	parts := c.Decompose(text)
	out := c.Compose(parts)

	assert.Contains(t, out, "サバトラ")
	assert.Contains(t, out, "黒")
	assert.Contains(t, out, parts.Other)
}

func TestForLocale(t *testing.T) {
	assert.Equal(t, "en", ForLocale("EN").Locale)
	assert.Equal(t, "ja", ForLocale("").Locale)
	assert.Equal(t, "ja", ForLocale("fr").Locale)
}

func TestDecompose_EnglishMatchesWholeWords(t *testing.T) {
	c := NewCodec(English)

	cases := []struct {
		in   string
		want Parts
	}{
		{"colored tuxedo", Parts{Pattern: "tuxedo", Other: "colored"}},
		{"redish longhaired", Parts{Other: "redish longhaired"}},
		{"red tabby, long tail", Parts{Pattern: "tabby", Color: "red", Tail: "long"}},
		{"shortly brown", Parts{Color: "brown", Other: "shortly"}},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Decompose(tc.in))
		})
	}
}

func TestDecompose_JapaneseMatchesInsideWords(t *testing.T) {
	c := NewCodec(Japanese)
	got := c.Decompose("黒っぽいキジトラ")
	assert.Equal(t, "キジトラ", got.Pattern)
	assert.Equal(t, "黒", got.Color)
	assert.Equal(t, "っぽい", got.Other)
}
