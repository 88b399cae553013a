package features

import "strings"

// Vocabulary define los términos reconocidos por categoría.
// El orden importa: se toma el primer término que aparezca en el texto,
// así que los términos largos van antes que sus subcadenas.
type Vocabulary struct {
	Locale     string   `json:"locale"`
	Colors     []string `json:"colors"`
	Patterns   []string `json:"patterns"`
	Fur        []string `json:"fur"`
	Tails      []string `json:"tails"`
	Unknown    string   `json:"unknown"`
	Other      string   `json:"other"`
	TailSuffix string   `json:"tail_suffix"`

	// WordBounded: los términos solo cuentan como palabras completas ("red" no matchea en "colored").
	// El japonés no separa palabras, así que ahí se busca por subcadena.
	WordBounded bool `json:"-"`
}

var Japanese = Vocabulary{
	Locale:     "ja",
	Colors:     []string{"黒", "白", "茶", "グレー", "クリーム", "赤", "銀", "不明"},
	Patterns:   []string{"単色", "キジトラ", "茶トラ", "サバトラ", "三毛", "サビ", "ハチワレ", "ブチ", "ポイント", "縞模様", "不明"},
	Fur:        []string{"短毛", "長毛", "中毛", "不明"},
	Tails:      []string{"長い", "短い", "中くらい", "カギ", "団子", "ボブテイル", "なし", "不明"},
	Unknown:    "不明",
	Other:      "その他",
	TailSuffix: "尻尾",
}

var English = Vocabulary{
	Locale:     "en",
	Colors:     []string{"black", "white", "brown", "gray", "cream", "red", "silver", "unknown"},
	Patterns:   []string{"solid", "brown tabby", "silver tabby", "tabby", "calico", "tortoiseshell", "tuxedo", "spotted", "colorpoint", "striped", "unknown"},
	Fur:        []string{"short hair", "long hair", "medium hair", "unknown"},
	Tails:      []string{"long", "short", "medium", "kinked", "pom-pom", "bobtail", "none", "unknown"},
	Unknown:    "unknown",
	Other:      "other",
	TailSuffix: "tail",

	WordBounded: true,
}

// ForLocale devuelve el vocabulario del locale; default japonés.
func ForLocale(locale string) Vocabulary {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "en", "en-us", "en-gb":
		return English
	default:
		return Japanese
	}
}

func (v Vocabulary) isSentinel(term string) bool {
	return term == v.Unknown || term == v.Other
}
